package controllers

import (
	"context"
	"time"

	"storefront-service/models"
	"storefront-service/services"

	"github.com/google/uuid"
)

// Default configuration values
const (
	DefaultCacheTTL = 10 * time.Minute
	// Transfers download and re-upload binaries; they get a much longer
	// budget than regular requests.
	DefaultTransferTimeout = 10 * time.Minute
	DefaultContextTimeout  = 30 * time.Second
)

// TransferServiceAPI defines the transfer operations used by controllers.
type TransferServiceAPI interface {
	Transfer(ctx context.Context, sourceID, targetID uuid.UUID, opts services.TransferOptions, onProgress services.ProgressFunc) *models.TransferResult
}

// CatalogServiceAPI defines the public catalog read operations.
type CatalogServiceAPI interface {
	GetStorefront(ctx context.Context, slug string) (*models.Tenant, []*models.Product, error)
}
