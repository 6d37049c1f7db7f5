package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

// ClientService implements client CRUD. Access is flat: any authenticated
// user may read or update any client; deletion is gated by role at the router.
type ClientService struct {
	repo   ports.ClientRepository
	idem   ports.IdempotencyStore // optional
	idemTT time.Duration
	logger zerolog.Logger
}

// NewClientService returns a ClientService. idem may be nil, which disables
// Idempotency-Key handling.
func NewClientService(repo ports.ClientRepository, idem ports.IdempotencyStore, idemTTL time.Duration, logger zerolog.Logger) *ClientService {
	if idemTTL <= 0 {
		idemTTL = defaultIdempotencyTTL
	}
	return &ClientService{repo: repo, idem: idem, idemTT: idemTTL, logger: logger}
}

func (s *ClientService) ListClients(ctx context.Context, search string) ([]*domain.Client, error) {
	return s.repo.List(ctx, ports.ListClientsFilter{Search: strings.TrimSpace(search)})
}

func (s *ClientService) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	if id <= 0 {
		return nil, domain.ErrClientNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// CreateClient inserts a new client. If an idempotency key is provided and was
// already used by the same caller, the previously created client is returned
// without side effects.
func (s *ClientService) CreateClient(ctx context.Context, in ports.CreateClientInput) (*ports.CreateClientResult, error) {
	fields, err := normalizeClientInput(in.ClientInput)
	if err != nil {
		return nil, err
	}

	if replay := s.replay(ctx, in.CreatedBy, in.IdempotencyKey); replay != nil {
		return &ports.CreateClientResult{Client: replay, Replayed: true}, nil
	}

	now := time.Now().UTC()
	client := &domain.Client{
		Name:      fields.Name,
		Email:     fields.Email,
		Phone:     fields.Phone,
		Notes:     fields.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.CreatedBy > 0 {
		createdBy := in.CreatedBy
		client.CreatedBy = &createdBy
	}

	created, err := s.repo.Create(ctx, client)
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			s.logger.Error().Err(err).Msg("failed to create client")
		}
		return nil, err
	}

	if s.idem != nil && in.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, in.CreatedBy, in.IdempotencyKey, created.ID, s.idemTT); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.logger.Info().Int64("client_id", created.ID).Int64("created_by", in.CreatedBy).Msg("client created")
	return &ports.CreateClientResult{Client: created}, nil
}

// replay returns the client an earlier request with the same key created, or
// nil. Store errors are logged and treated as a miss.
func (s *ClientService) replay(ctx context.Context, userID int64, key string) *domain.Client {
	if s.idem == nil || key == "" {
		return nil
	}

	clientID, found, err := s.idem.Lookup(ctx, userID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}

	existing, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		// The earlier client was deleted since; treat the key as spent.
		return nil
	}
	s.logger.Info().Str("idempotency_key", key).Int64("client_id", existing.ID).Msg("idempotent replay")
	return existing
}

// UpdateClient replaces the writable fields of an active client.
func (s *ClientService) UpdateClient(ctx context.Context, id int64, in ports.ClientInput) (*domain.Client, error) {
	if id <= 0 {
		return nil, domain.ErrClientNotFound
	}
	fields, err := normalizeClientInput(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Client{
		ID:        id,
		Name:      fields.Name,
		Email:     fields.Email,
		Phone:     fields.Phone,
		Notes:     fields.Notes,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteClient soft-deletes an active client. Deleting twice is a not-found.
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrClientNotFound
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("client_id", id).Msg("client deleted")
	return nil
}

func normalizeClientInput(in ports.ClientInput) (ports.ClientInput, error) {
	out := ports.ClientInput{
		Name:  strings.TrimSpace(in.Name),
		Email: domain.NormalizeEmail(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Notes: strings.TrimSpace(in.Notes),
	}
	if out.Name == "" {
		return out, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return out, nil
}
