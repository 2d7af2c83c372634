package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminctl/internal/apperr"
	"github.com/adminkit/adminctl/internal/client/api"
	"github.com/adminkit/adminctl/internal/client/models"
	"github.com/adminkit/adminctl/internal/client/upload"
	"github.com/adminkit/adminctl/internal/logging"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer([]byte("test-secret"), time.Hour, logging.NewNopLogger())
	require.NoError(t, err)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func login(t *testing.T, ts *httptest.Server, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(models.Credentials{Email: email, Password: password})
	resp, err := http.Post(ts.URL+"/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res models.LoginResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestLogin_BadCredentials(t *testing.T) {
	_, ts := newTestServer(t)

	body, _ := json.Marshal(models.Credentials{Email: "admin@example.com", Password: "wrong"})
	resp, err := http.Post(ts.URL+"/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterThenLogin(t *testing.T) {
	_, ts := newTestServer(t)

	body, _ := json.Marshal(models.Registration{Name: "Alice", Email: "alice@example.com", Password: "password1"})
	resp, err := http.Post(ts.URL+"/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Second registration with the same email conflicts.
	resp, err = http.Post(ts.URL+"/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	login(t, ts, "alice@example.com", "password1")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/me", "/user", "/user/1"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

// The remaining tests drive the server through the real console client so
// both ends of the wire format are checked at once.
func authedClient(t *testing.T, ts *httptest.Server) *api.HTTPClient {
	t.Helper()
	token := login(t, ts, "admin@example.com", "admin123")
	return api.NewHTTPClient(ts.URL, 5*time.Second, func() string { return token })
}

func TestCurrentUser_ViaClient(t *testing.T) {
	_, ts := newTestServer(t)
	c := authedClient(t, ts)

	p, err := c.CurrentUser(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", p.Email)
	require.Equal(t, "admin", p.Role)
}

func TestUserCRUD_ViaClient(t *testing.T) {
	_, ts := newTestServer(t)
	c := authedClient(t, ts)
	ctx := context.Background()

	created, err := c.CreateUser(ctx, models.UserCreate{
		Name: "Bob", Email: "bob@example.com", Role: "moderator", Password: "password1",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "active", created.Status)

	got, err := c.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", got.Email)

	updated, err := c.UpdateUser(ctx, created.ID, models.UserUpdate{Status: "inactive"})
	require.NoError(t, err)
	require.Equal(t, "inactive", updated.Status)
	require.Equal(t, "Bob", updated.Name)

	require.NoError(t, c.DeleteUser(ctx, created.ID))

	_, err = c.GetUser(ctx, created.ID)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestListUsers_ViaClient(t *testing.T) {
	_, ts := newTestServer(t)
	c := authedClient(t, ts)
	ctx := context.Background()

	for _, email := range []string{"u1@example.com", "u2@example.com", "u3@example.com"} {
		_, err := c.CreateUser(ctx, models.UserCreate{
			Name: email, Email: email, Role: "user", Password: "password1",
		})
		require.NoError(t, err)
	}

	page, err := c.ListUsers(ctx, models.ListParams{Role: "user", Limit: 2, Page: 2, Sort: "email"})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 1)
	require.Equal(t, "u3@example.com", page.Data[0].Email)
}

func TestChunkedUpload_EndToEnd(t *testing.T) {
	s, ts := newTestServer(t)
	token := login(t, ts, "admin@example.com", "admin123")

	payload := bytes.Repeat([]byte("adminctl"), 600) // 4800 bytes, 3 chunks
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	u := upload.NewChunkUploader(ts.URL+"/files", 5*time.Second,
		upload.WithChunkSize(2000),
		upload.WithTokenSource(func() string { return token }))

	var last int64
	location, err := u.Upload(context.Background(), path, func(sent, total int64) {
		require.Equal(t, int64(4800), total)
		last = sent
	})
	require.NoError(t, err)
	require.Contains(t, location, "/files/")
	require.Equal(t, int64(4800), last)

	id := filepath.Base(location)
	session, ok := s.uploads.get(id)
	require.True(t, ok)
	require.Equal(t, payload, session.data)
}

func TestUploadChunk_OffsetMismatch(t *testing.T) {
	_, ts := newTestServer(t)
	token := login(t, ts, "admin@example.com", "admin123")

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Upload-Length", "10")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.NotEmpty(t, location)

	patch, _ := http.NewRequest(http.MethodPatch, location, bytes.NewReader([]byte("abc")))
	patch.Header.Set("Authorization", "Bearer "+token)
	patch.Header.Set("Content-Type", "application/offset+octet-stream")
	patch.Header.Set("Upload-Offset", "5")
	resp, err = http.DefaultClient.Do(patch)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "0", resp.Header.Get("Upload-Offset"))
}
