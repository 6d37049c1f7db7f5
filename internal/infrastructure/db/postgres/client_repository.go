package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

const (
	clientColumns     = `id, name, email, phone, notes, created_by, created_at, updated_at, deleted_at`
	clientEmailUnique = "clients_active_email_key"
)

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, email, phone, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+clientColumns,
		c.Name, domain.NormalizeEmail(c.Email), c.Phone, c.Notes, c.CreatedBy)

	created, err := scanClient(row)
	if err != nil {
		if isUniqueViolation(err, clientEmailUnique) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return created, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND deleted_at IS NULL`, id)

	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context, filter ports.ListClientsFilter) ([]*domain.Client, error) {
	query, args := listClientsQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Client, error) {
		return scanClient(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func listClientsQuery(filter ports.ListClientsFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + clientColumns + ` FROM clients WHERE deleted_at IS NULL`)

	var args []any
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		b.WriteString(` AND (name ILIKE $1 ESCAPE '\' OR email ILIKE $1 ESCAPE '\')`)
	}
	b.WriteString(` ORDER BY created_at DESC, id DESC`)
	return b.String(), args
}

// escapeLike makes %, _ and \ match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE clients
		 SET name = $2, email = $3, phone = $4, notes = $5, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+clientColumns,
		c.ID, c.Name, domain.NormalizeEmail(c.Email), c.Phone, c.Notes)

	updated, err := scanClient(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrClientNotFound
		case isUniqueViolation(err, clientEmailUnique):
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return updated, nil
}

func (r *ClientRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM clients WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}
