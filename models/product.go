package models

import (
	"time"

	"github.com/google/uuid"
)

// Product belongs to exactly one tenant. Copies created by a transfer are
// always inserted with Visible=false, pending review by the target tenant.
type Product struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Price            float64    `json:"price"`
	PromoPrice       *float64   `json:"promo_price,omitempty"`
	Brand            string     `json:"brand,omitempty"`
	Sizes            []string   `json:"sizes,omitempty"`
	Colors           []string   `json:"colors,omitempty"`
	CategoryID       *uuid.UUID `json:"category_id,omitempty"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	Visible          bool       `json:"visible"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ProductImage references an externally stored image blob. StorageKey is
// always freshly generated for copies; the source key is never reused.
type ProductImage struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	URL        string    `json:"url"`
	StorageKey string    `json:"storage_key"`
	IsFeatured bool      `json:"is_featured"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}
