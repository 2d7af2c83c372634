// Package api is the REST transport used by the console services. It speaks
// the backend surface served by cmd/adminapi: /login, /register, /me for the
// current profile, and /user[/:id] CRUD with json-server style listing
// parameters.
package api

import (
	"context"

	"github.com/adminkit/adminctl/internal/client/models"
)

// Client is the transport boundary consumed by the services. Implementations
// must return errors already normalized into the apperr taxonomy and must
// not retry failed calls.
type Client interface {
	// Login exchanges credentials for a token and the embedded login user.
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)

	// Register creates an account and returns the server's confirmation
	// message. It never affects the current session.
	Register(ctx context.Context, reg models.Registration) (string, error)

	// CurrentUser fetches the profile belonging to token. The token is passed
	// explicitly because it may not be session-stored yet during login.
	CurrentUser(ctx context.Context, token string) (*models.Profile, error)

	ListUsers(ctx context.Context, params models.ListParams) (*models.UserPage, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, u models.UserCreate) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, u models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	// Ping checks backend liveness.
	Ping(ctx context.Context) error

	Close() error
}
