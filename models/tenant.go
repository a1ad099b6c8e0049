package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a platform user who owns a storefront, its products and categories.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Email     string    `json:"email"`
	Plan      string    `json:"plan"`
	ItemLimit int       `json:"item_limit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
