package models

import (
	"time"

	"github.com/google/uuid"
)

// Category belongs to exactly one tenant. Uniqueness is by case-insensitive
// name within a tenant.
type Category struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
