package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adminkit/adminctl/internal/apperr"
	"github.com/adminkit/adminctl/internal/client/models"
)

// TokenSource supplies the bearer token attached to authenticated requests.
// An empty return value means the request goes out anonymous.
type TokenSource func() string

// HTTPClient is the Client implementation over net/http.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	tokenFn TokenSource
}

// NewHTTPClient builds a client for the backend at baseURL. tokenFn may be
// nil for an always-anonymous client.
func NewHTTPClient(baseURL string, timeout time.Duration, tokenFn TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		tokenFn: tokenFn,
	}
}

// do issues one request and decodes the JSON response into out (if non-nil).
// A transport failure becomes CLIENT_ERROR; a non-2xx response is mapped
// through the status table. A single attempt, never retried.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, out any, token string) error {
	u := path
	if strings.HasPrefix(path, "/") {
		u = c.baseURL + path
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.CodeClientError, err.Error(), err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apperr.Wrap(apperr.CodeClientError, err.Error(), err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" && c.tokenFn != nil {
		token = c.tokenFn()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return apperr.Normalize(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := apperr.FromStatus(resp.StatusCode)
		if b, rerr := io.ReadAll(io.LimitReader(resp.Body, 4096)); rerr == nil && len(b) > 0 {
			e.Err = fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return e
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperr.Wrap(apperr.CodeClientError, "invalid response from server", err)
		}
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var res models.LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", nil, creds, &res, ""); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/register", nil, reg, &res, ""); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context, token string) (*models.Profile, error) {
	var res struct {
		User *models.Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &res, token); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context, params models.ListParams) (*models.UserPage, error) {
	var res struct {
		Data  []models.User `json:"data"`
		Total int           `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/user", listQuery(params), nil, &res, ""); err != nil {
		return nil, err
	}

	page := params.Page
	if page <= 0 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	totalPages := (res.Total + limit - 1) / limit

	return &models.UserPage{
		Data:       res.Data,
		Total:      res.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/user/"+strconv.FormatInt(id, 10), nil, nil, &u, ""); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, payload models.UserCreate) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/user", nil, payload, &u, ""); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id int64, payload models.UserUpdate) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPut, "/user/"+strconv.FormatInt(id, 10), nil, payload, &u, ""); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/user/"+strconv.FormatInt(id, 10), nil, nil, nil, "")
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil, "")
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// listQuery builds the json-server style listing parameters. Blank or
// out-of-range values are omitted rather than sent empty.
func listQuery(p models.ListParams) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("_page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("_limit", strconv.Itoa(p.Limit))
	}
	if s := strings.TrimSpace(p.Sort); s != "" {
		q.Set("_sort", s)
	}
	if p.Order == "asc" || p.Order == "desc" {
		q.Set("_order", p.Order)
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		q.Set("q", s)
	}
	if s := strings.TrimSpace(p.Role); s != "" {
		q.Set("role", s)
	}
	if s := strings.TrimSpace(p.Status); s != "" {
		q.Set("status", s)
	}
	return q
}
