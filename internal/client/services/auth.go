// Package services contains the application services of the admin console:
// the auth gateway over the session store and the typed resource clients.
package services

import (
	"context"
	"strings"

	"github.com/adminkit/adminctl/internal/apperr"
	"github.com/adminkit/adminctl/internal/client/api"
	"github.com/adminkit/adminctl/internal/client/models"
	"github.com/adminkit/adminctl/internal/client/session"
	"github.com/adminkit/adminctl/internal/logging"
)

// AuthState is the gateway's position in the login state machine.
type AuthState string

const (
	StateAnonymous      AuthState = "anonymous"
	StateAuthenticating AuthState = "authenticating"
	StateAuthenticated  AuthState = "authenticated"
	StateError          AuthState = "error"
)

// AuthService orchestrates login, signup and logout against the backend and
// is the only component that mutates the session store.
//
// Contract:
//   - Login: validates locally, exchanges credentials, fetches the profile,
//     and persists both-or-neither. Any failure leaves the store as it was.
//   - Register: creates an account; never touches the session.
//   - Logout: always ends unauthenticated, even when storage cleanup fails.
//   - Restore: hydrates a previously persisted session at startup.
type AuthService interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) (string, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) error
	State() AuthState
	Session() models.Session
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client api.Client
	store  *session.Store
	logger logging.Logger
	state  AuthState
}

// NewAuthService constructs an AuthService bound to the given transport and
// session store.
func NewAuthService(client api.Client, store *session.Store, logger logging.Logger) AuthService {
	return &authService{client: client, store: store, logger: logger, state: StateAnonymous}
}

func (a *authService) State() AuthState                { return a.state }
func (a *authService) Session() models.Session         { return a.store.Get() }
func (a *authService) Ping(ctx context.Context) error  { return a.client.Ping(ctx) }
func (a *authService) Close(ctx context.Context) error { return a.client.Close() }

// fail records e as the outcome of the current attempt and moves the machine
// to the error state.
func (a *authService) fail(e *apperr.Error) error {
	a.state = StateError
	a.store.SetError(e)
	return e
}

// Login runs the two-step login sequence: credential exchange, then a
// profile fetch with the fresh token. The session store is written once,
// after both steps succeed, so a failure at any point leaves it exactly as
// it was before the attempt.
func (a *authService) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		// Local validation failures never reach the network.
		return a.fail(apperr.New(apperr.CodeInvalidInput, "Email and password are required"))
	}

	a.state = StateAuthenticating
	a.store.SetError(nil)
	a.store.SetLoading(true)
	defer a.store.SetLoading(false)

	res, err := a.client.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return a.fail(apperr.ForAuth(apperr.Normalize(err)))
	}
	if res == nil || strings.TrimSpace(res.Token) == "" {
		return a.fail(apperr.New(apperr.CodeClientError, "Invalid response from server"))
	}

	// The profile fetch is only issued after the exchange resolved; the
	// token is passed explicitly because it is not session-stored yet.
	profile, err := a.client.CurrentUser(ctx, res.Token)
	if err != nil {
		return a.fail(apperr.ForAuth(apperr.Normalize(err)))
	}
	if profile == nil || profile.Email == "" {
		// An empty profile after a successful exchange fails the whole login.
		return a.fail(apperr.New(apperr.CodeClientError, "User data not found"))
	}

	if err := a.store.Set(ctx, res.Token, profile); err != nil {
		return a.fail(apperr.Wrap(apperr.CodeClientError, "Failed to store authentication data", err))
	}

	a.state = StateAuthenticated
	a.logger.Info(ctx, "user logged in", "email", profile.Email, "role", profile.Role)
	return nil
}

// Register validates locally, calls the registration endpoint, and returns
// the server's confirmation message. Registration does not imply login: the
// session store is never touched here.
func (a *authService) Register(ctx context.Context, name, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", apperr.New(apperr.CodeInvalidInput, "Email and password are required")
	}

	msg, err := a.client.Register(ctx, models.Registration{Name: name, Email: email, Password: password})
	if err != nil {
		return "", apperr.Normalize(err)
	}
	if msg == "" {
		return "", apperr.New(apperr.CodeClientError, "Invalid response from server")
	}
	return msg, nil
}

// Logout clears the session unconditionally. A storage cleanup failure is
// logged and suppressed: from the caller's perspective logout always
// succeeds and forces re-authentication.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		a.logger.Warn(ctx, "failed to clear persisted session on logout", "error", err)
	}
	a.state = StateAnonymous
	a.store.SetError(nil)
	a.logger.Info(ctx, "user logged out")
	return nil
}

// Restore hydrates the session from persisted storage. A valid restored
// session moves the machine straight to authenticated; anything else leaves
// it anonymous.
func (a *authService) Restore(ctx context.Context) error {
	if err := a.store.Hydrate(ctx); err != nil {
		return err
	}
	if a.store.Get().Authenticated() {
		a.state = StateAuthenticated
	}
	return nil
}
