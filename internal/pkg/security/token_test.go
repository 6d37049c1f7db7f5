package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/n1fty/cms/internal/core/domain"
)

var testUser = &domain.User{ID: 42, Email: "alice@example.com", Role: domain.RoleAdmin}

func TestJWTManager_IssueAndVerify(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)

	token, err := m.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "alice@example.com" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if d := time.Until(claims.ExpiresAt); d <= 0 || d > time.Hour {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestJWTManager_DefaultTTL(t *testing.T) {
	if got := NewJWTManager("s", 0).TTL(); got != 24*time.Hour {
		t.Fatalf("expected 24h default, got %v", got)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = time.Now
	if _, err := m.Verify(token); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, _ := NewJWTManager("secret-a", time.Hour).Issue(testUser)

	_, err := NewJWTManager("secret-b", time.Hour).Verify(token)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTManager_ExpiredWithWrongSecretIsInvalid(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _ := issuer.Issue(testUser)

	_, err := NewJWTManager("secret-b", time.Hour).Verify(token)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTManager_Malformed(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c", strings.Repeat("x", 300)} {
		if _, err := m.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestJWTManager_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "42",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewJWTManager("secret", time.Hour).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512, got %v", err)
	}
}

func TestJWTManager_RejectsMissingClaims(t *testing.T) {
	cases := map[string]jwt.MapClaims{
		"no exp":      {"sub": "42", "role": "admin"},
		"bad subject": {"sub": "alice", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()},
		"bad role":    {"sub": "42", "role": "root", "exp": time.Now().Add(time.Hour).Unix()},
	}
	for name, claims := range cases {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("%s: sign: %v", name, err)
		}
		if _, err := NewJWTManager("secret", time.Hour).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
