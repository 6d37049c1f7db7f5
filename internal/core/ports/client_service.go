package ports

import (
	"context"
	"time"

	"github.com/n1fty/cms/internal/core/domain"
)

// ClientInput carries the writable fields of a client. Create and Update share
// it: updates are full replacements.
type ClientInput struct {
	Name  string
	Email string
	Phone string
	Notes string
}

// CreateClientInput adds the caller and an optional idempotency key.
type CreateClientInput struct {
	ClientInput
	CreatedBy      int64
	IdempotencyKey string
}

// CreateClientResult is returned by CreateClient.
type CreateClientResult struct {
	Client *domain.Client
	// Replayed is true when the Idempotency-Key matched an earlier create.
	Replayed bool
}

type ClientService interface {
	ListClients(ctx context.Context, search string) ([]*domain.Client, error)
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	CreateClient(ctx context.Context, in CreateClientInput) (*CreateClientResult, error)
	UpdateClient(ctx context.Context, id int64, in ClientInput) (*domain.Client, error)
	DeleteClient(ctx context.Context, id int64) error
}

// IdempotencyStore remembers which client a (user, key) pair created.
type IdempotencyStore interface {
	// Lookup returns the remembered client id; found is false on a miss.
	Lookup(ctx context.Context, userID int64, key string) (clientID int64, found bool, err error)
	Remember(ctx context.Context, userID int64, key string, clientID int64, ttl time.Duration) error
}
