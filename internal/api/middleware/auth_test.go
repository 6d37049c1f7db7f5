package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/pkg/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubResolver struct {
	users map[int64]*domain.User
	err   error
}

func (r stubResolver) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func newResolver(users ...*domain.User) stubResolver {
	m := make(map[int64]*domain.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return stubResolver{users: m}
}

func runAuth(t *testing.T, resolver stubResolver, header string) (*httptest.ResponseRecorder, *domain.Identity, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *domain.Identity
	mw := Auth(security.NewJWTManager(testSecret, time.Hour), resolver)
	err := mw(func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			t.Fatalf("identity not set")
		}
		got = &id
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, got, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	alice := &domain.User{ID: 7, Email: "alice@example.com", Role: domain.RoleAdmin}
	token, err := security.NewJWTManager(testSecret, time.Hour).Issue(alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, id, err := runAuth(t, newResolver(alice), "Bearer "+token)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if id == nil || id.UserID != 7 || id.Email != "alice@example.com" || id.Role != domain.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthMiddleware_IdentityComesFromStore(t *testing.T) {
	// Token minted while the account was admin; it has since been demoted.
	token, _ := security.NewJWTManager(testSecret, time.Hour).Issue(&domain.User{ID: 3, Email: "bob@example.com", Role: domain.RoleAdmin})
	stored := &domain.User{ID: 3, Email: "bob@example.com", Role: domain.RoleUser}

	_, id, err := runAuth(t, newResolver(stored), "Bearer "+token)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if id.Role != domain.RoleUser {
		t.Fatalf("expected stored role user, got %s", id.Role)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	user := &domain.User{ID: 1, Email: "u@example.com", Role: domain.RoleUser}
	valid, _ := security.NewJWTManager(testSecret, time.Hour).Issue(user)
	foreign, _ := security.NewJWTManager("another-secret-another-secret-xx", time.Hour).Issue(user)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": user.Role,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := []struct {
		name     string
		header   string
		resolver stubResolver
		want     error
	}{
		{"missing header", "", newResolver(user), domain.ErrMissingToken},
		{"wrong scheme", "Token " + valid, newResolver(user), domain.ErrMissingToken},
		{"empty bearer", "Bearer ", newResolver(user), domain.ErrMissingToken},
		{"garbage", "Bearer not-a-jwt", newResolver(user), domain.ErrInvalidToken},
		{"wrong secret", "Bearer " + foreign, newResolver(user), domain.ErrInvalidToken},
		{"expired", "Bearer " + expired, newResolver(user), domain.ErrExpiredToken},
		{"deleted subject", "Bearer " + valid, newResolver(), domain.ErrUnknownSubject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _, err := runAuth(t, tc.resolver, tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) || !errors.Is(he.Internal, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if he.Message != tc.want.Error() {
				t.Fatalf("expected message %q, got %v", tc.want.Error(), he.Message)
			}
		})
	}
}

func TestAuthMiddleware_StoreFailurePropagates(t *testing.T) {
	user := &domain.User{ID: 1, Email: "u@example.com", Role: domain.RoleUser}
	token, _ := security.NewJWTManager(testSecret, time.Hour).Issue(user)
	boom := errors.New("db down")

	_, _, err := runAuth(t, stubResolver{err: boom}, "Bearer "+token)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
