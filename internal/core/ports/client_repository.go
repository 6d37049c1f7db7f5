package ports

import (
	"context"

	"github.com/n1fty/cms/internal/core/domain"
)

// ListClientsFilter carries the query parameters for listing clients.
// Only active rows are ever returned, newest first.
type ListClientsFilter struct {
	Search string // optional: case-insensitive substring of name or email
}

// ClientRepository defines persistence operations for clients. Every read and
// update is restricted to rows whose deleted_at is unset.
type ClientRepository interface {
	// Create inserts the client. A duplicate active email yields domain.ErrDuplicateEmail.
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	List(ctx context.Context, filter ListClientsFilter) ([]*domain.Client, error)
	// Update replaces name, email, phone and notes of an active client.
	Update(ctx context.Context, c *domain.Client) (*domain.Client, error)
	// SoftDelete stamps deleted_at. Absent or already deleted rows yield
	// domain.ErrClientNotFound.
	SoftDelete(ctx context.Context, id int64) error
	CountActive(ctx context.Context) (int64, error)
}
