// Package session owns the current authentication state: an in-memory
// snapshot plus its persisted copy in the local state database. Only the auth
// gateway mutates it; everyone else reads snapshots or subscribes to changes.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/adminkit/adminctl/internal/apperr"
	"github.com/adminkit/adminctl/internal/client/models"
	"github.com/adminkit/adminctl/internal/client/repositories/state"
	"github.com/adminkit/adminctl/internal/dbx"
)

// Storage keys. The token and the serialized user are always written and
// removed together.
const (
	tokenKey = "auth_token"
	userKey  = "auth_user"
)

// Store holds the session and keeps memory and persisted state in step.
//
// Mutations are atomic with respect to partial failure: a persistence error
// on Set leaves the in-memory session untouched, and Clear always resets the
// in-memory session even when the persisted delete fails.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	repo    state.Repository
	current models.Session
	subs    []func(models.Session)
}

// NewStore builds a Store over the state database. The session starts empty;
// call Hydrate to restore a persisted one.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repo: state.NewSQLiteRepository(db)}
}

// Get returns the current session snapshot. No side effects.
func (s *Store) Get() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token returns the current token, or "" when anonymous. Suitable as an
// api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Token
}

// Subscribe registers fn to be called after every session mutation with the
// new snapshot. Callbacks run synchronously on the mutating call, after the
// store's lock is released, so a callback may read the store back.
func (s *Store) Subscribe(fn func(models.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func notify(snapshot models.Session, subs []func(models.Session)) {
	for _, fn := range subs {
		fn(snapshot)
	}
}

// Set overwrites token and user atomically: both keys are persisted in one
// transaction, and memory is updated only after the commit. On persistence
// failure the in-memory session is left exactly as it was and the error is
// propagated.
func (s *Store) Set(ctx context.Context, token string, user *models.Profile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := state.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, tokenKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, userKey, data)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = models.Session{Token: token, User: user}
	snapshot, subs := s.current, s.subs
	s.mu.Unlock()
	notify(snapshot, subs)
	return nil
}

// Clear removes the session from memory and from persisted storage. The
// in-memory session is reset unconditionally before the persisted delete, so
// a storage failure still leaves the caller unauthenticated; the error is
// returned for logging.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = models.Session{}
	snapshot, subs := s.current, s.subs
	s.mu.Unlock()
	notify(snapshot, subs)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := state.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, tokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, userKey)
	})
}

// Hydrate restores a persisted session at startup. Stored records are
// untrusted input: absence of either key, a token failing the format check,
// or an unparseable user record all leave the session anonymous and purge
// whatever half-state was found.
func (s *Store) Hydrate(ctx context.Context) error {
	token, err := s.repo.Get(ctx, tokenKey)
	if err != nil {
		return err
	}
	userData, err := s.repo.Get(ctx, userKey)
	if err != nil {
		return err
	}

	if len(token) == 0 || len(userData) == 0 {
		if len(token) != 0 || len(userData) != 0 {
			return s.Clear(ctx)
		}
		return nil
	}

	if !models.ValidTokenFormat(string(token)) {
		return s.Clear(ctx)
	}

	var user models.Profile
	if err := json.Unmarshal(userData, &user); err != nil || user.Email == "" {
		return s.Clear(ctx)
	}

	s.mu.Lock()
	s.current = models.Session{Token: string(token), User: &user}
	snapshot, subs := s.current, s.subs
	s.mu.Unlock()
	notify(snapshot, subs)
	return nil
}

// SetLoading flips the in-flight flag on the session. In-memory only.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.current.Loading = loading
	snapshot, subs := s.current, s.subs
	s.mu.Unlock()
	notify(snapshot, subs)
}

// SetError records the outcome of the last auth operation. In-memory only;
// pass nil to clear.
func (s *Store) SetError(e *apperr.Error) {
	s.mu.Lock()
	s.current.LastError = e
	snapshot, subs := s.current, s.subs
	s.mu.Unlock()
	notify(snapshot, subs)
}
