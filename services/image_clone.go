package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"storefront-service/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cloneImage physically duplicates one image: download the source blob,
// upload it under a freshly generated key in the destination product's
// namespace, and insert the new image record. The source storage key is
// never reused. Any failure aborts this image only; if the record insert
// fails after the upload succeeded, the orphaned object is removed
// best-effort.
func (s *TransferService) cloneImage(ctx context.Context, src models.ProductImage, destProductID uuid.UUID, index int) (*models.ProductImage, error) {
	data, contentType, err := s.store.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	key := newStorageKey(destProductID, src.URL, index)
	if err := s.store.Upload(ctx, key, data, contentType); err != nil {
		return nil, err
	}

	img := &models.ProductImage{
		ID:         uuid.New(),
		ProductID:  destProductID,
		URL:        s.store.PublicURL(key),
		StorageKey: key,
		IsFeatured: src.IsFeatured,
		Position:   index,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.images.Create(ctx, img); err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			zap.L().Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}
	return img, nil
}

// newStorageKey builds a collision-free destination key from the product
// id, a timestamp, a short random token and the positional index,
// preserving the source file extension when derivable from its URL.
func newStorageKey(productID uuid.UUID, sourceURL string, index int) string {
	ext := ""
	if u, err := url.Parse(sourceURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
		if len(ext) > 5 {
			ext = ""
		}
	}
	token := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("products/%s/%d_%s_%d%s", productID, time.Now().Unix(), token, index, ext)
}
