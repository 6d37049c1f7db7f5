package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

func TestClientService_CreateClient(t *testing.T) {
	repo := newStubClientRepo()
	svc := NewClientService(repo, nil, 0, zerolog.Nop())

	res, err := svc.CreateClient(context.Background(), ports.CreateClientInput{
		ClientInput: ports.ClientInput{Name: "  Acme  ", Email: "Ops@Acme.io", Phone: " 555 "},
		CreatedBy:   7,
	})
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}
	c := res.Client
	if c.ID == 0 || c.Name != "Acme" || c.Email != "ops@acme.io" || c.Phone != "555" {
		t.Fatalf("unexpected client: %+v", c)
	}
	if c.CreatedBy == nil || *c.CreatedBy != 7 {
		t.Fatalf("expected created_by 7, got %v", c.CreatedBy)
	}
	if res.Replayed {
		t.Fatalf("fresh create must not be a replay")
	}
}

func TestClientService_CreateClient_Validation(t *testing.T) {
	repo := newStubClientRepo()
	svc := NewClientService(repo, nil, 0, zerolog.Nop())

	_, err := svc.CreateClient(context.Background(), ports.CreateClientInput{ClientInput: ports.ClientInput{Name: "   "}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("repository must not be called on invalid input")
	}
}

func TestClientService_CreateClient_DuplicateEmail(t *testing.T) {
	svc := NewClientService(newStubClientRepo(), nil, 0, zerolog.Nop())
	ctx := context.Background()

	in := ports.CreateClientInput{ClientInput: ports.ClientInput{Name: "A", Email: "dup@x.io"}}
	if _, err := svc.CreateClient(ctx, in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	in.Email = "DUP@x.io"
	if _, err := svc.CreateClient(ctx, in); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// Clients without an email never collide.
	for i := 0; i < 2; i++ {
		if _, err := svc.CreateClient(ctx, ports.CreateClientInput{ClientInput: ports.ClientInput{Name: "NoMail"}}); err != nil {
			t.Fatalf("create without email #%d: %v", i, err)
		}
	}
}

func TestClientService_EmailReusableAfterDelete(t *testing.T) {
	svc := NewClientService(newStubClientRepo(), nil, 0, zerolog.Nop())
	ctx := context.Background()

	in := ports.CreateClientInput{ClientInput: ports.ClientInput{Name: "A", Email: "reuse@x.io"}}
	first, err := svc.CreateClient(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteClient(ctx, first.Client.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.CreateClient(ctx, in); err != nil {
		t.Fatalf("expected email to be reusable after delete, got %v", err)
	}
}

func TestClientService_IdempotentReplay(t *testing.T) {
	repo := newStubClientRepo()
	idem := newStubIdempotency()
	svc := NewClientService(repo, idem, time.Hour, zerolog.Nop())
	ctx := context.Background()

	in := ports.CreateClientInput{ClientInput: ports.ClientInput{Name: "Acme"}, CreatedBy: 1, IdempotencyKey: "k-1"}
	first, err := svc.CreateClient(ctx, in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if idem.ttl != time.Hour {
		t.Fatalf("expected ttl to be passed through, got %v", idem.ttl)
	}

	second, err := svc.CreateClient(ctx, in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !second.Replayed || second.Client.ID != first.Client.ID {
		t.Fatalf("expected replay of client %d, got %+v", first.Client.ID, second)
	}
	if repo.creates != 1 {
		t.Fatalf("expected a single insert, got %d", repo.creates)
	}

	// A different caller with the same key is a fresh create.
	in.CreatedBy = 2
	third, err := svc.CreateClient(ctx, in)
	if err != nil || third.Replayed {
		t.Fatalf("expected fresh create for other user, got %+v, %v", third, err)
	}
}

func TestClientService_IdempotencyFailureDoesNotBlock(t *testing.T) {
	repo := newStubClientRepo()
	idem := newStubIdempotency()
	idem.lookupErr = errBoom
	svc := NewClientService(repo, idem, 0, zerolog.Nop())

	res, err := svc.CreateClient(context.Background(), ports.CreateClientInput{
		ClientInput:    ports.ClientInput{Name: "Acme"},
		IdempotencyKey: "k",
	})
	if err != nil || res.Replayed {
		t.Fatalf("expected plain create when store fails, got %+v, %v", res, err)
	}
}

func TestClientService_ReplayOfDeletedClientCreatesAgain(t *testing.T) {
	repo := newStubClientRepo()
	svc := NewClientService(repo, newStubIdempotency(), 0, zerolog.Nop())
	ctx := context.Background()

	in := ports.CreateClientInput{ClientInput: ports.ClientInput{Name: "Acme"}, CreatedBy: 1, IdempotencyKey: "k"}
	first, _ := svc.CreateClient(ctx, in)
	if err := svc.DeleteClient(ctx, first.Client.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	second, err := svc.CreateClient(ctx, in)
	if err != nil || second.Replayed || second.Client.ID == first.Client.ID {
		t.Fatalf("expected new client, got %+v, %v", second, err)
	}
}

func TestClientService_GetUpdateDelete(t *testing.T) {
	svc := NewClientService(newStubClientRepo(), nil, 0, zerolog.Nop())
	ctx := context.Background()

	res, _ := svc.CreateClient(ctx, ports.CreateClientInput{ClientInput: ports.ClientInput{Name: "Old", Notes: "n"}})
	id := res.Client.ID

	updated, err := svc.UpdateClient(ctx, id, ports.ClientInput{Name: "New", Email: "new@x.io"})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.Name != "New" || updated.Email != "new@x.io" || updated.Notes != "" {
		t.Fatalf("expected full replacement, got %+v", updated)
	}

	got, err := svc.GetClient(ctx, id)
	if err != nil || got.Name != "New" {
		t.Fatalf("GetClient: %+v, %v", got, err)
	}

	if err := svc.DeleteClient(ctx, id); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if err := svc.DeleteClient(ctx, id); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound on second delete, got %v", err)
	}
	if _, err := svc.GetClient(ctx, id); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected deleted client to be hidden, got %v", err)
	}
	if _, err := svc.UpdateClient(ctx, id, ports.ClientInput{Name: "X"}); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected update of deleted client to fail, got %v", err)
	}
}

func TestClientService_InvalidIDs(t *testing.T) {
	svc := NewClientService(newStubClientRepo(), nil, 0, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.GetClient(ctx, 0); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("GetClient(0): %v", err)
	}
	if _, err := svc.UpdateClient(ctx, -1, ports.ClientInput{Name: "x"}); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("UpdateClient(-1): %v", err)
	}
	if err := svc.DeleteClient(ctx, 0); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("DeleteClient(0): %v", err)
	}
}

func TestClientService_ListClients(t *testing.T) {
	svc := NewClientService(newStubClientRepo(), nil, 0, zerolog.Nop())
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Beta", "Alphabet"} {
		if _, err := svc.CreateClient(ctx, ports.CreateClientInput{ClientInput: ports.ClientInput{Name: name}}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	all, err := svc.ListClients(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 clients, got %d, %v", len(all), err)
	}
	if all[0].Name != "Alphabet" {
		t.Fatalf("expected newest first, got %s", all[0].Name)
	}

	alphas, _ := svc.ListClients(ctx, "  alpha ")
	if len(alphas) != 2 {
		t.Fatalf("expected 2 matches for alpha, got %d", len(alphas))
	}
}
