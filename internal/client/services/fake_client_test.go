package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/adminkit/adminctl/internal/client/models"
	"github.com/adminkit/adminctl/internal/client/session"
	"github.com/adminkit/adminctl/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeClient implements api.Client for unit tests. Every call is counted so
// tests can assert that local validation short-circuits the network.
type fakeClient struct {
	LoginRet *models.LoginResult
	LoginErr error

	RegisterRet string
	RegisterErr error

	CurrentUserRet *models.Profile
	CurrentUserErr error

	ListRet *models.UserPage
	ListErr error

	GetRet *models.User
	GetErr error

	CreateRet *models.User
	CreateErr error

	UpdateRet *models.User
	UpdateErr error

	DeleteErr error
	PingErr   error
	CloseErr  error

	LoginCalls    int
	RegisterCalls int
	CurrentCalls  int
	ListCalls     int
	GetCalls      int
	CreateCalls   int
	UpdateCalls   int
	DeleteCalls   int

	LastCreds        models.Credentials
	LastRegistration models.Registration
	LastToken        string
	LastID           int64
	LastCreate       models.UserCreate
	LastUpdate       models.UserUpdate
	LastParams       models.ListParams
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	f.LoginCalls++
	f.LastCreds = creds
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, reg models.Registration) (string, error) {
	f.RegisterCalls++
	f.LastRegistration = reg
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) CurrentUser(ctx context.Context, token string) (*models.Profile, error) {
	f.CurrentCalls++
	f.LastToken = token
	return f.CurrentUserRet, f.CurrentUserErr
}

func (f *fakeClient) ListUsers(ctx context.Context, params models.ListParams) (*models.UserPage, error) {
	f.ListCalls++
	f.LastParams = params
	return f.ListRet, f.ListErr
}

func (f *fakeClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	f.GetCalls++
	f.LastID = id
	return f.GetRet, f.GetErr
}

func (f *fakeClient) CreateUser(ctx context.Context, u models.UserCreate) (*models.User, error) {
	f.CreateCalls++
	f.LastCreate = u
	return f.CreateRet, f.CreateErr
}

func (f *fakeClient) UpdateUser(ctx context.Context, id int64, u models.UserUpdate) (*models.User, error) {
	f.UpdateCalls++
	f.LastID = id
	f.LastUpdate = u
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeClient) DeleteUser(ctx context.Context, id int64) error {
	f.DeleteCalls++
	f.LastID = id
	return f.DeleteErr
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }
func (f *fakeClient) Close() error                   { return f.CloseErr }

// ---- shared helpers ----

func setupSessionStore(t *testing.T) (*session.Store, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:authsvc?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS state (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM state`)
	require.NoError(t, err)

	return session.NewStore(db), db
}

func newStoreOver(t *testing.T, db *sql.DB) *session.Store {
	t.Helper()
	return session.NewStore(db)
}

func testLogger() logging.Logger {
	return logging.NewNopLogger()
}
