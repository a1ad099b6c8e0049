package repository

import (
	"context"

	"storefront-service/models"

	"github.com/google/uuid"
)

// TenantRepo defines the tenant lookups and the single mutation the
// transfer flow needs (the temporary item-limit raise/restore).
type TenantRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	UpdateItemLimit(ctx context.Context, id uuid.UUID, limit int) error
}

// ProductRepo defines the operations used by the transfer and catalog
// surfaces. This interface uses plain Go types (no store-driver types) to
// make swapping adapters easier.
type ProductRepo interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// CreateMany inserts products in batches using batch write operations.
	CreateMany(ctx context.Context, products []models.Product) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

// CategoryRepo defines the operations used for category reconciliation.
type CategoryRepo interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Category, error)
	CreateMany(ctx context.Context, categories []models.Category) error
}

// ImageRepo defines the operations used by the image duplication flow.
type ImageRepo interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error)
	Create(ctx context.Context, image *models.ProductImage) error
}

// SettingsRepo stores one storefront settings document per tenant.
type SettingsRepo interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.StorefrontSettings, error)
	Upsert(ctx context.Context, settings *models.StorefrontSettings) error
}
