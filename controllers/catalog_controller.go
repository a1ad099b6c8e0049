package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront-service/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogController serves the public per-tenant storefront.
type CatalogController struct {
	catalogService CatalogServiceAPI
	cache          *CacheManager
}

func NewCatalogController(cs CatalogServiceAPI, cache *CacheManager) *CatalogController {
	return &CatalogController{catalogService: cs, cache: cache}
}

// GetStorefront returns a tenant's visible products by slug.
func (cc *CatalogController) GetStorefront(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultContextTimeout)
	defer cancel()

	if cc.cache != nil {
		if cached, ok := cc.cache.GetStorefront(ctx, slug); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	tenant, products, err := cc.catalogService.GetStorefront(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "storefront not found"})
			return
		}
		zap.L().Error("failed to load storefront", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load storefront"})
		return
	}

	response := map[string]interface{}{
		"store": map[string]interface{}{
			"name": tenant.Name,
			"slug": tenant.Slug,
		},
		"products": products,
	}
	if cc.cache != nil {
		cc.cache.SetStorefrontAsync(slug, response)
	}
	c.JSON(http.StatusOK, response)
}
