// Package guard decides whether protected routes may be entered. It is a
// pure predicate over the session store; redirecting or refusing is the
// caller's job.
package guard

import "github.com/adminkit/adminctl/internal/client/models"

// SessionSource is anything that can produce the current session snapshot.
// *session.Store satisfies it.
type SessionSource interface {
	Get() models.Session
}

// Allowed reports whether navigation into protected areas is permitted.
// No side effects.
func Allowed(src SessionSource) bool {
	return src.Get().Authenticated()
}
