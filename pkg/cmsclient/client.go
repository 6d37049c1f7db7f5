// Package cmsclient is a Go client for the CMS HTTP API. It keeps the issued
// token in a TokenStore, sends it on every request and drops it as soon as the
// server rejects it.
package cmsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL matches the server's default listen address.
const DefaultBaseURL = "http://localhost:3000"

const defaultTimeout = 10 * time.Second

var (
	// ErrNotLoggedIn is returned by protected calls when no session is stored.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired means the server rejected the stored token. The
	// session has already been cleared; the caller should log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// APIError is a non-2xx answer carrying the server's {"error": ...} body.
type APIError struct {
	StatusCode int
	Message    string

	expired bool
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrSessionExpired) match a rejected token.
func (e *APIError) Unwrap() error {
	if e.expired {
		return ErrSessionExpired
	}
	return nil
}

// StatusCode returns the HTTP status of an *APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool { return u.Role == "admin" }

// ClientRecord is a client as returned by the API.
type ClientRecord struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Notes     string     `json:"notes"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ClientInput is the writable part of a client.
type ClientInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Stats mirrors GET /api/dashboard/stats. TotalUsers is only set for admins.
type Stats struct {
	TotalClients int64  `json:"totalClients"`
	TotalUsers   *int64 `json:"totalUsers,omitempty"`
}

type InteractionList struct {
	Message      string            `json:"message"`
	Interactions []json.RawMessage `json:"interactions"`
	Count        int               `json:"count"`
}

type DependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Health struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore replaces the default in-memory session store.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

// Client talks to one CMS server. It is safe for concurrent use as long as
// the TokenStore is.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
}

// New returns a client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the stored session, or nil.
func (c *Client) Session() (*Session, error) {
	return c.store.Load()
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var resp authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &resp, public()); err != nil {
		return nil, err
	}
	return c.saveSession(resp)
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp, public()); err != nil {
		return nil, err
	}
	return c.saveSession(resp)
}

func (c *Client) saveSession(resp authResponse) (*User, error) {
	if resp.Token == "" {
		return nil, errors.New("server returned no token")
	}
	if err := c.store.Save(&Session{Token: resp.Token, User: resp.User, SavedAt: time.Now().UTC()}); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout forgets the stored session. Tokens are stateless, so the server is
// not contacted.
func (c *Client) Logout() error {
	return c.store.Clear()
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

type clientResponse struct {
	Message string       `json:"message"`
	Client  ClientRecord `json:"client"`
}

// ListClients returns active clients, newest first. An empty search lists all.
func (c *Client) ListClients(ctx context.Context, search string) ([]ClientRecord, error) {
	path := "/api/clients"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var resp struct {
		Clients []ClientRecord `json:"clients"`
		Count   int            `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Clients, nil
}

func (c *Client) GetClient(ctx context.Context, id int64) (*ClientRecord, error) {
	var resp clientResponse
	if err := c.do(ctx, http.MethodGet, clientPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Client, nil
}

// CreateClient creates a client. A non-empty idempotencyKey makes retries
// safe; replayed reports whether the server returned an earlier result.
func (c *Client) CreateClient(ctx context.Context, in ClientInput, idempotencyKey string) (client *ClientRecord, replayed bool, err error) {
	var resp clientResponse
	var status int
	opts := []requestOption{captureStatus(&status)}
	if idempotencyKey != "" {
		opts = append(opts, withHeader("Idempotency-Key", idempotencyKey))
	}
	if err := c.do(ctx, http.MethodPost, "/api/clients", in, &resp, opts...); err != nil {
		return nil, false, err
	}
	return &resp.Client, status == http.StatusOK, nil
}

func (c *Client) UpdateClient(ctx context.Context, id int64, in ClientInput) (*ClientRecord, error) {
	var resp clientResponse
	if err := c.do(ctx, http.MethodPut, clientPath(id), in, &resp); err != nil {
		return nil, err
	}
	return &resp.Client, nil
}

// DeleteClient soft-deletes a client. Admin only.
func (c *Client) DeleteClient(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, clientPath(id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var resp struct {
		Stats Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

func (c *Client) ListInteractions(ctx context.Context) (*InteractionList, error) {
	var resp InteractionList
	if err := c.do(ctx, http.MethodGet, "/api/interactions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetInteraction always fails with a 501 *APIError until the server
// implements interactions.
func (c *Client) GetInteraction(ctx context.Context, id int64) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/interactions/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateInteraction always fails with a 501 *APIError until the server
// implements interactions.
func (c *Client) CreateInteraction(ctx context.Context, body any) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/interactions", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Health calls the readiness probe. A 503 is reported through Health.Status,
// not as an error.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp, public(), acceptStatus(http.StatusServiceUnavailable))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func clientPath(id int64) string {
	return "/api/clients/" + strconv.FormatInt(id, 10)
}

type requestConfig struct {
	public  bool
	headers map[string]string
	status  *int
	accept  []int
}

type requestOption func(*requestConfig)

// public marks a route that needs no token and whose 401 says nothing about
// the session.
func public() requestOption {
	return func(r *requestConfig) { r.public = true }
}

func withHeader(k, v string) requestOption {
	return func(r *requestConfig) {
		if r.headers == nil {
			r.headers = map[string]string{}
		}
		r.headers[k] = v
	}
}

func captureStatus(dst *int) requestOption {
	return func(r *requestConfig) { r.status = dst }
}

func acceptStatus(codes ...int) requestOption {
	return func(r *requestConfig) { r.accept = append(r.accept, codes...) }
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...requestOption) error {
	var cfg requestConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var token string
	if !cfg.public {
		session, err := c.store.Load()
		if err != nil {
			return err
		}
		if session == nil {
			return ErrNotLoggedIn
		}
		token = session.Token
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range cfg.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if cfg.status != nil {
		*cfg.status = resp.StatusCode
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 && !slices.Contains(cfg.accept, resp.StatusCode) {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Message = envelope.Error
		}
		if resp.StatusCode == http.StatusUnauthorized && !cfg.public {
			apiErr.expired = true
			if err := c.store.Clear(); err != nil {
				return errors.Join(apiErr, err)
			}
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
