package handler

import "github.com/n1fty/cms/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type meResponse struct {
	User *domain.User `json:"user"`
}

// --- Clients ---

type clientRequest struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
	Phone string `json:"phone" validate:"max=50"`
	Notes string `json:"notes"`
}

type clientResponse struct {
	Message string         `json:"message,omitempty"`
	Client  *domain.Client `json:"client"`
}

type clientListResponse struct {
	Clients []*domain.Client `json:"clients"`
	Count   int              `json:"count"`
}

// --- Dashboard ---

type dashboardStats struct {
	TotalClients int64  `json:"totalClients"`
	TotalUsers   *int64 `json:"totalUsers,omitempty"`
}

type statsResponse struct {
	Stats dashboardStats `json:"stats"`
}

// --- Interactions ---

type interactionListResponse struct {
	Message      string `json:"message"`
	Interactions []any  `json:"interactions"`
	Count        int    `json:"count"`
}
