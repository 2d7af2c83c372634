// Package devserver is a self-contained development backend for the admin
// console. It serves the authentication, user-management and file-upload
// endpoints from in-memory state so the console can be exercised without
// deploying the real API.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adminkit/adminctl/internal/client/models"
	"github.com/adminkit/adminctl/internal/logging"
)

const tusVersion = "1.0.0"

type ctxKey int

const claimsKey ctxKey = 0

// Server bundles the in-memory stores and exposes the HTTP API.
type Server struct {
	store    *Store
	uploads  *Uploads
	secret   []byte
	tokenTTL time.Duration
	logger   logging.Logger
}

// NewServer builds a dev backend with a seeded administrator account
// (admin@example.com / admin123).
func NewServer(secret []byte, tokenTTL time.Duration, logger logging.Logger) (*Server, error) {
	store := NewStore()
	if err := store.Seed(); err != nil {
		return nil, err
	}
	return &Server{
		store:    store,
		uploads:  NewUploads(),
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}, nil
}

// Router assembles the route tree. Everything except login, register and
// the health probe requires a bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/me", s.handleMe)

		r.Route("/user", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Get("/{id}", s.handleGetUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/", s.handleCreateUpload)
			r.Head("/{id}", s.handleUploadOffset)
			r.Patch("/{id}", s.handleUploadChunk)
		})
	})

	return r
}

// requireAuth verifies the bearer token and stores its claims in the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := ParseToken(token, s.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.Authenticate(creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.internalError(w, r, err)
		return
	}

	token, err := GenerateToken(user.ID, user.Email, s.secret, s.tokenTTL)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResult{
		Token: token,
		User:  profileOf(user),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reg.Email == "" || reg.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	_, err := s.store.Create(models.User{
		Name:   reg.Name,
		Email:  reg.Email,
		Role:   "user",
		Status: "active",
	}, reg.Password)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Account created. You can now sign in.",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	user, err := s.store.Get(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.Profile{"user": profileOf(user)})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	params := listParamsFrom(r)
	data, total := s.store.List(params)
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "total": total})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload models.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.store.Create(models.User{
		Name:   payload.Name,
		Email:  payload.Email,
		Role:   payload.Role,
		Status: "active",
	}, payload.Password)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var patch models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.Update(id, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	length, err := strconv.ParseInt(r.Header.Get("Upload-Length"), 10, 64)
	if err != nil || length < 0 {
		writeError(w, http.StatusBadRequest, "missing or invalid Upload-Length")
		return
	}

	session := s.uploads.create(length, r.Header.Get("Upload-Metadata"))
	s.logger.Info(r.Context(), "upload created", "id", session.id, "length", length)

	w.Header().Set("Tus-Resumable", tusVersion)
	w.Header().Set("Location", "http://"+r.Host+"/files/"+session.id)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUploadOffset(w http.ResponseWriter, r *http.Request) {
	offset, length, ok := s.uploads.offset(chi.URLParam(r, "id"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Tus-Resumable", tusVersion)
	w.Header().Set("Upload-Offset", strconv.FormatInt(offset, 10))
	w.Header().Set("Upload-Length", strconv.FormatInt(length, 10))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUploadChunk(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != "application/offset+octet-stream" {
		writeError(w, http.StatusUnsupportedMediaType, "expected application/offset+octet-stream")
		return
	}
	offset, err := strconv.ParseInt(r.Header.Get("Upload-Offset"), 10, 64)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "missing or invalid Upload-Offset")
		return
	}

	chunk, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable chunk body")
		return
	}

	id := chi.URLParam(r, "id")
	if _, found := s.uploads.get(id); !found {
		writeError(w, http.StatusNotFound, "unknown upload")
		return
	}

	newOffset, ok := s.uploads.append(id, offset, chunk)
	if !ok {
		// Offset mismatch: the client must HEAD for the current offset.
		w.Header().Set("Upload-Offset", strconv.FormatInt(newOffset, 10))
		writeError(w, http.StatusConflict, "upload offset mismatch")
		return
	}

	w.Header().Set("Tus-Resumable", tusVersion)
	w.Header().Set("Upload-Offset", strconv.FormatInt(newOffset, 10))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func profileOf(u *models.User) *models.Profile {
	return &models.Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// listParamsFrom parses the json-server style listing query.
func listParamsFrom(r *http.Request) models.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("_page"))
	limit, _ := strconv.Atoi(q.Get("_limit"))
	return models.ListParams{
		Page:   page,
		Limit:  limit,
		Sort:   q.Get("_sort"),
		Order:  q.Get("_order"),
		Search: q.Get("q"),
		Role:   q.Get("role"),
		Status: q.Get("status"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
