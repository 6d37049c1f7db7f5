// Package memory is a process-local store used for development and tests.
// It honours the same uniqueness, soft-delete and ordering rules as the
// database-backed stores.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

// Store holds users and clients in maps guarded by a single mutex.
type Store struct {
	mu           sync.RWMutex
	users        map[int64]*domain.User
	clients      map[int64]*domain.Client
	nextUserID   int64
	nextClientID int64
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[int64]*domain.User),
		clients: make(map[int64]*domain.Client),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the store as a ports.UserRepository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Clients returns the store as a ports.ClientRepository.
func (s *Store) Clients() *ClientRepository { return &ClientRepository{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type UserRepository struct{ s *Store }

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	for _, u := range s.users {
		if u.Email == email {
			return nil, domain.ErrUserExists
		}
	}

	s.nextUserID++
	stored := *user
	stored.ID = s.nextUserID
	stored.Email = email
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	stored.UpdatedAt = stored.CreatedAt
	s.users[stored.ID] = &stored
	return copyUser(&stored), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = domain.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) UpdateCredentials(_ context.Context, id int64, passwordHash string, role domain.Role) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.Role = role
	u.UpdatedAt = s.now()
	return copyUser(u), nil
}

func (r *UserRepository) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

type ClientRepository struct{ s *Store }

var _ ports.ClientRepository = (*ClientRepository)(nil)

// emailTaken reports whether another active client already uses email.
// Callers hold the lock.
func (s *Store) emailTaken(email string, except int64) bool {
	if email == "" {
		return false
	}
	for id, c := range s.clients {
		if id != except && c.Active() && c.Email == email {
			return true
		}
	}
	return false
}

func (r *ClientRepository) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(c.Email)
	if s.emailTaken(email, 0) {
		return nil, domain.ErrDuplicateEmail
	}

	s.nextClientID++
	stored := *c
	stored.ID = s.nextClientID
	stored.Email = email
	stored.DeletedAt = nil
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	stored.UpdatedAt = stored.CreatedAt
	s.clients[stored.ID] = &stored
	return copyClient(&stored), nil
}

func (r *ClientRepository) FindByID(_ context.Context, id int64) (*domain.Client, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok || !c.Active() {
		return nil, domain.ErrClientNotFound
	}
	return copyClient(c), nil
}

func (r *ClientRepository) List(_ context.Context, filter ports.ListClientsFilter) ([]*domain.Client, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(filter.Search)
	out := make([]*domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if !c.Active() {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Email), needle) {
			continue
		}
		out = append(out, copyClient(c))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *ClientRepository) Update(_ context.Context, c *domain.Client) (*domain.Client, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.clients[c.ID]
	if !ok || !stored.Active() {
		return nil, domain.ErrClientNotFound
	}
	email := domain.NormalizeEmail(c.Email)
	if s.emailTaken(email, c.ID) {
		return nil, domain.ErrDuplicateEmail
	}

	stored.Name = c.Name
	stored.Email = email
	stored.Phone = c.Phone
	stored.Notes = c.Notes
	stored.UpdatedAt = s.now()
	return copyClient(stored), nil
}

func (r *ClientRepository) SoftDelete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok || !c.Active() {
		return domain.ErrClientNotFound
	}
	now := s.now()
	c.DeletedAt = &now
	c.UpdatedAt = now
	return nil
}

func (r *ClientRepository) CountActive(context.Context) (int64, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.clients {
		if c.Active() {
			n++
		}
	}
	return n, nil
}

// Raw returns a client regardless of its deleted state. Tests use it to check
// that soft-deleted rows are retained.
func (r *ClientRepository) Raw(id int64) (*domain.Client, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, false
	}
	return copyClient(c), true
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyClient(c *domain.Client) *domain.Client {
	out := *c
	if c.CreatedBy != nil {
		v := *c.CreatedBy
		out.CreatedBy = &v
	}
	if c.DeletedAt != nil {
		v := *c.DeletedAt
		out.DeletedAt = &v
	}
	return &out
}
