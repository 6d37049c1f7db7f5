package ports

import (
	"context"

	"github.com/n1fty/cms/internal/core/domain"
)

// DashboardStats is recomputed on every request.
type DashboardStats struct {
	TotalClients int64
	// TotalUsers is only populated for admins.
	TotalUsers *int64
}

type DashboardService interface {
	Stats(ctx context.Context, caller domain.Identity) (*DashboardStats, error)
}
