package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/n1fty/cms/internal/api/middleware"
	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newContext builds an echo context for a JSON request, optionally
// authenticated as id.
func newContext(e *echo.Echo, method, target string, body io.Reader, id *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != nil {
		middleware.SetIdentity(c, *id)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

var (
	adminID = &domain.Identity{UserID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}
	userID  = &domain.Identity{UserID: 2, Email: "user@example.com", Role: domain.RoleUser}
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	meFn       func(ctx context.Context, id domain.Identity) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, id domain.Identity) (*domain.User, error) {
	return s.meFn(ctx, id)
}

func (s *stubAuthService) SeedAdmin(context.Context, string, string, string) (*domain.User, bool, error) {
	return nil, false, nil
}

type stubClientService struct {
	listFn   func(ctx context.Context, search string) ([]*domain.Client, error)
	getFn    func(ctx context.Context, id int64) (*domain.Client, error)
	createFn func(ctx context.Context, in ports.CreateClientInput) (*ports.CreateClientResult, error)
	updateFn func(ctx context.Context, id int64, in ports.ClientInput) (*domain.Client, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (s *stubClientService) ListClients(ctx context.Context, search string) ([]*domain.Client, error) {
	return s.listFn(ctx, search)
}

func (s *stubClientService) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	return s.getFn(ctx, id)
}

func (s *stubClientService) CreateClient(ctx context.Context, in ports.CreateClientInput) (*ports.CreateClientResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubClientService) UpdateClient(ctx context.Context, id int64, in ports.ClientInput) (*domain.Client, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubClientService) DeleteClient(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

