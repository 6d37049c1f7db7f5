package ports

import (
	"context"

	"github.com/n1fty/cms/internal/core/domain"
)

// RegisterInput carries the self-service registration fields. There is no
// role: new accounts are always plain users.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, id domain.Identity) (*domain.User, error)
	// SeedAdmin creates an admin account, or promotes an existing one and
	// resets its password. created reports which of the two happened.
	SeedAdmin(ctx context.Context, name, email, password string) (user *domain.User, created bool, err error)
}

// PasswordHasher is a salted, adaptive one-way hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never fails: a mismatch or a malformed hash is simply false.
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier validates a token and returns its claims, or one of
// domain.ErrInvalidToken / domain.ErrExpiredToken.
type TokenVerifier interface {
	Verify(token string) (*domain.TokenClaims, error)
}

// SubjectResolver loads the user a verified token refers to.
type SubjectResolver interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
