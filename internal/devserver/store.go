package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"

	"github.com/adminkit/adminctl/internal/client/models"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrBadCredentials = errors.New("bad credentials")
)

type record struct {
	user         models.User
	passwordHash string
}

// Store is the in-memory account table backing the development server.
// Every account doubles as a sign-in identity and a managed user record.
type Store struct {
	mu     sync.RWMutex
	users  map[int64]*record
	nextID int64
}

func NewStore() *Store {
	return &Store{users: make(map[int64]*record), nextID: 1}
}

// Seed creates the default administrator account so the console has a
// known identity to sign in with on a fresh server.
func (s *Store) Seed() error {
	_, err := s.Create(models.User{
		Name:   "Administrator",
		Email:  "admin@example.com",
		Role:   "admin",
		Status: "active",
	}, "admin123")
	return err
}

func (s *Store) Create(u models.User, password string) (*models.User, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.users {
		if strings.EqualFold(r.user.Email, u.Email) {
			return nil, ErrDuplicateEmail
		}
	}

	u.ID = s.nextID
	s.nextID++
	if u.Status == "" {
		u.Status = "active"
	}
	s.users[u.ID] = &record{user: u, passwordHash: hash}

	out := u
	return &out, nil
}

func (s *Store) Get(id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r.user
	return &out, nil
}

// Update applies the non-empty fields of patch to the stored record.
func (s *Store) Update(id int64, patch models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Email != "" && !strings.EqualFold(patch.Email, r.user.Email) {
		for _, other := range s.users {
			if strings.EqualFold(other.user.Email, patch.Email) {
				return nil, ErrDuplicateEmail
			}
		}
		r.user.Email = patch.Email
	}
	if patch.Name != "" {
		r.user.Name = patch.Name
	}
	if patch.Role != "" {
		r.user.Role = patch.Role
	}
	if patch.Status != "" {
		r.user.Status = patch.Status
	}

	out := r.user
	return &out, nil
}

func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// Authenticate verifies a credential pair and returns the matching record.
func (s *Store) Authenticate(email, password string) (*models.User, error) {
	s.mu.RLock()
	var found *record
	for _, r := range s.users {
		if strings.EqualFold(r.user.Email, email) {
			found = r
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return nil, ErrBadCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(password, found.passwordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrBadCredentials
	}

	out := found.user
	return &out, nil
}

// List filters, sorts and paginates the user table. The returned total is
// the match count before pagination so clients can compute page counts.
func (s *Store) List(p models.ListParams) ([]models.User, int) {
	s.mu.RLock()
	matched := make([]models.User, 0, len(s.users))
	for _, r := range s.users {
		if p.Role != "" && r.user.Role != p.Role {
			continue
		}
		if p.Status != "" && r.user.Status != p.Status {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(p.Search)); q != "" {
			name := strings.ToLower(r.user.Name)
			email := strings.ToLower(r.user.Email)
			if !strings.Contains(name, q) && !strings.Contains(email, q) {
				continue
			}
		}
		matched = append(matched, r.user)
	}
	s.mu.RUnlock()

	sortUsers(matched, p.Sort, p.Order)
	total := len(matched)

	page := p.Page
	if page <= 0 {
		page = 1
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= total {
		return []models.User{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total
}

func sortUsers(users []models.User, field, order string) {
	less := func(a, b models.User) bool { return a.ID < b.ID }
	switch field {
	case "name":
		less = func(a, b models.User) bool { return a.Name < b.Name }
	case "email":
		less = func(a, b models.User) bool { return a.Email < b.Email }
	case "role":
		less = func(a, b models.User) bool { return a.Role < b.Role }
	case "status":
		less = func(a, b models.User) bool { return a.Status < b.Status }
	}

	sort.SliceStable(users, func(i, j int) bool {
		if order == "desc" {
			return less(users[j], users[i])
		}
		return less(users[i], users[j])
	})
}
