package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
	err    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateCredentials(_ context.Context, id int64, hash string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.Role = role
	return cloneUser(u), nil
}

func (r *stubUserRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.users)), nil
}

type stubClientRepo struct {
	mu      sync.Mutex
	nextID  int64
	clients map[int64]*domain.Client
	creates int
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[int64]*domain.Client)}
}

func cloneClient(c *domain.Client) *domain.Client {
	clone := *c
	return &clone
}

func (r *stubClientRepo) activeEmailTaken(email string, except int64) bool {
	if email == "" {
		return false
	}
	for id, c := range r.clients {
		if id != except && c.Active() && c.Email == email {
			return true
		}
	}
	return false
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.activeEmailTaken(c.Email, 0) {
		return nil, domain.ErrDuplicateEmail
	}
	r.nextID++
	stored := cloneClient(c)
	stored.ID = r.nextID
	r.clients[stored.ID] = stored
	return cloneClient(stored), nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id int64) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || !c.Active() {
		return nil, domain.ErrClientNotFound
	}
	return cloneClient(c), nil
}

func (r *stubClientRepo) List(_ context.Context, filter ports.ListClientsFilter) ([]*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(filter.Search)
	var out []*domain.Client
	for _, c := range r.clients {
		if !c.Active() {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) && !strings.Contains(c.Email, needle) {
			continue
		}
		out = append(out, cloneClient(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, c *domain.Client) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.clients[c.ID]
	if !ok || !stored.Active() {
		return nil, domain.ErrClientNotFound
	}
	if r.activeEmailTaken(c.Email, c.ID) {
		return nil, domain.ErrDuplicateEmail
	}
	stored.Name, stored.Email, stored.Phone, stored.Notes = c.Name, c.Email, c.Phone, c.Notes
	stored.UpdatedAt = c.UpdatedAt
	return cloneClient(stored), nil
}

func (r *stubClientRepo) SoftDelete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || !c.Active() {
		return domain.ErrClientNotFound
	}
	now := time.Now().UTC()
	c.DeletedAt = &now
	return nil
}

func (r *stubClientRepo) CountActive(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.clients {
		if c.Active() {
			n++
		}
	}
	return n, nil
}

type stubIdempotency struct {
	keys      map[string]int64
	lookupErr error
	ttl       time.Duration
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]int64)}
}

func idemKey(userID int64, key string) string {
	return fmt.Sprintf("%d:%s", userID, key)
}

func (s *stubIdempotency) Lookup(_ context.Context, userID int64, key string) (int64, bool, error) {
	if s.lookupErr != nil {
		return 0, false, s.lookupErr
	}
	id, ok := s.keys[idemKey(userID, key)]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, userID int64, key string, clientID int64, ttl time.Duration) error {
	s.keys[idemKey(userID, key)] = clientID
	s.ttl = ttl
	return nil
}

// plainHasher prefixes the plaintext so tests can assert without bcrypt cost.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Verify(p, h string) bool { return p != "" && h == "hashed:"+p }

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(u *domain.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + u.Email, nil
}

var errBoom = errors.New("boom")
