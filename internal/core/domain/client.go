package domain

import "time"

// Client is a business contact record. Rows are never hard-deleted: a non-nil
// DeletedAt marks the record inactive.
type Client struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Notes     string     `json:"notes"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the client has not been soft-deleted.
func (c *Client) Active() bool {
	return c.DeletedAt == nil
}
