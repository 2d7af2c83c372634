package models

import (
	"strings"

	"github.com/adminkit/adminctl/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// Session is a snapshot of the current authentication state.
//
// Token and User are set together or not at all; LastError records the most
// recent failed auth operation and is never persisted.
type Session struct {
	User      *Profile
	Token     string
	Loading   bool
	LastError *apperr.Error
}

// Authenticated reports whether the session holds a usable token and a user.
func (s Session) Authenticated() bool {
	return s.User != nil && ValidTokenFormat(s.Token)
}

// ValidTokenFormat is the trivial format check applied to tokens at load
// time: the token must be non-blank, and if it is shaped like a JWT it must
// at least be structurally parseable. No signature or expiry verification
// happens here.
func ValidTokenFormat(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if strings.Count(token, ".") == 2 {
		_, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
		return err == nil
	}
	return true
}
