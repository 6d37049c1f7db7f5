package service

import (
	"context"
	"fmt"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

// DashboardService aggregates summary counts. Nothing is cached.
type DashboardService struct {
	clients ports.ClientRepository
	users   ports.UserRepository
}

func NewDashboardService(clients ports.ClientRepository, users ports.UserRepository) *DashboardService {
	return &DashboardService{clients: clients, users: users}
}

// Stats counts active clients, and total users when the caller is an admin.
func (s *DashboardService) Stats(ctx context.Context, caller domain.Identity) (*ports.DashboardStats, error) {
	clients, err := s.clients.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	stats := &ports.DashboardStats{TotalClients: clients}

	if caller.IsAdmin() {
		users, err := s.users.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count users: %w", err)
		}
		stats.TotalUsers = &users
	}
	return stats, nil
}
