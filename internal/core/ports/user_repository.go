package ports

import (
	"context"

	"github.com/n1fty/cms/internal/core/domain"
)

// UserRepository defines the credential store. Email lookups expect an
// already normalized address.
type UserRepository interface {
	// Create inserts the user and returns the stored row. A duplicate email
	// yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// UpdateCredentials replaces the password hash and role of an existing user.
	UpdateCredentials(ctx context.Context, id int64, passwordHash string, role domain.Role) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
