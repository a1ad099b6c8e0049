package services

import (
	"context"

	"storefront-service/models"
	"storefront-service/repository"
)

// CatalogService serves the public storefront read surface.
type CatalogService struct {
	tenants  repository.TenantRepo
	products repository.ProductRepo
}

func NewCatalogService(tenants repository.TenantRepo, products repository.ProductRepo) *CatalogService {
	return &CatalogService{tenants: tenants, products: products}
}

// GetStorefront resolves a tenant by slug and returns its visible products.
// Hidden products (including fresh transfer copies) never appear here.
func (s *CatalogService) GetStorefront(ctx context.Context, slug string) (*models.Tenant, []*models.Product, error) {
	tenant, err := s.tenants.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.products.FindByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, nil, err
	}
	visible := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if p.Visible {
			visible = append(visible, p)
		}
	}
	return tenant, visible, nil
}
