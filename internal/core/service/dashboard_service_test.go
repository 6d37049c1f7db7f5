package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

func TestDashboardService_Stats(t *testing.T) {
	clients := newStubClientRepo()
	users := newStubUserRepo()
	ctx := context.Background()

	clientSvc := NewClientService(clients, nil, 0, zerolog.Nop())
	for _, name := range []string{"a", "b", "c"} {
		if _, err := clientSvc.CreateClient(ctx, ports.CreateClientInput{ClientInput: ports.ClientInput{Name: name}}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := clientSvc.DeleteClient(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _ = users.Create(ctx, &domain.User{Email: "u1@x.io"})
	_, _ = users.Create(ctx, &domain.User{Email: "u2@x.io"})

	svc := NewDashboardService(clients, users)

	stats, err := svc.Stats(ctx, domain.Identity{UserID: 1, Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalClients != 2 {
		t.Fatalf("expected 2 active clients, got %d", stats.TotalClients)
	}
	if stats.TotalUsers != nil {
		t.Fatalf("non-admin must not see user count")
	}

	stats, err = svc.Stats(ctx, domain.Identity{UserID: 1, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Stats admin: %v", err)
	}
	if stats.TotalUsers == nil || *stats.TotalUsers != 2 {
		t.Fatalf("expected admin to see 2 users, got %v", stats.TotalUsers)
	}
}

func TestDashboardService_Stats_UserCountFailure(t *testing.T) {
	users := newStubUserRepo()
	users.err = errBoom
	svc := NewDashboardService(newStubClientRepo(), users)

	if _, err := svc.Stats(context.Background(), domain.Identity{Role: domain.RoleAdmin}); !errors.Is(err, errBoom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
}
