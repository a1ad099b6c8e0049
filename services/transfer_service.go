package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/models"
	"storefront-service/repository"
	"storefront-service/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService copies categories, products and image assets from one
// tenant's storefront to another's.
//
// A transfer temporarily raises the target tenant's item limit and restores
// it on every exit path after the raise. The service does not serialize
// transfers internally: callers must not run two transfers against the same
// target tenant concurrently, or the restore of one can clobber the raise
// of the other.
type TransferService struct {
	tenants    repository.TenantRepo
	products   repository.ProductRepo
	categories repository.CategoryRepo
	images     repository.ImageRepo
	settings   repository.SettingsRepo
	store      storage.ObjectStore
	journal    *QuotaJournal
}

// NewTransferService wires the transfer engine. journal may be nil, in
// which case orphaned-quota recovery is unavailable.
func NewTransferService(
	tenants repository.TenantRepo,
	products repository.ProductRepo,
	categories repository.CategoryRepo,
	images repository.ImageRepo,
	settings repository.SettingsRepo,
	store storage.ObjectStore,
	journal *QuotaJournal,
) *TransferService {
	return &TransferService{
		tenants:    tenants,
		products:   products,
		categories: categories,
		images:     images,
		settings:   settings,
		store:      store,
		journal:    journal,
	}
}

// Transfer runs the end-to-end copy sequence and returns the accumulated
// summary. Only two failures are fatal: a tenant lookup failing, and the
// source having no products. Everything after that is per-item
// continue-on-error; one bad product or image never aborts the run.
func (s *TransferService) Transfer(ctx context.Context, sourceID, targetID uuid.UUID, opts TransferOptions, onProgress ProgressFunc) *models.TransferResult {
	result := &models.TransferResult{Errors: []string{}}

	source, err := s.tenants.FindByID(ctx, sourceID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Usuário de origem não encontrado: %v", err))
		return result.Finish()
	}
	target, err := s.tenants.FindByID(ctx, targetID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Usuário de destino não encontrado: %v", err))
		return result.Finish()
	}

	zap.L().Info("transfer started",
		zap.String("source", source.Slug),
		zap.String("target", target.Slug),
		zap.Bool("batched", opts.Batched),
		zap.Bool("copy_images", opts.CopyImages),
	)

	if opts.CopyCategories {
		count, err := s.ReconcileCategories(ctx, sourceID, targetID)
		if err != nil {
			zap.L().Error("category reconciliation failed", zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Erro ao copiar categorias: %v", err))
		} else {
			result.CategoriesCloned = count
		}
	}

	if !opts.CopyProducts {
		return result.Finish()
	}

	sourceProducts, err := s.products.FindByTenant(ctx, sourceID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Erro ao buscar produtos de origem: %v", err))
		return result.Finish()
	}
	if len(sourceProducts) == 0 {
		result.Errors = append(result.Errors, "Nenhum produto encontrado no usuário de origem")
		return result.Finish()
	}

	// Progress totals: one slot per product plus the settings merge and the
	// final milestone.
	total := len(sourceProducts) + 2
	report := func(current int, message string) {
		if onProgress != nil {
			onProgress(current, total, message)
		}
	}
	report(0, fmt.Sprintf("Copiando %d produtos", len(sourceProducts)))

	categoryIDs, err := s.mapCategories(ctx, sourceID, targetID)
	if err != nil {
		zap.L().Warn("failed to map categories", zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("Erro ao mapear categorias: %v", err))
	}

	s.withElevatedQuota(ctx, target, result, func() {
		if opts.Batched {
			s.copyProductsBatched(ctx, sourceProducts, targetID, categoryIDs, opts, result, report)
		} else {
			s.copyProductsSequential(ctx, sourceProducts, targetID, categoryIDs, opts, result, report)
		}
	})

	s.mergeStorefrontSettings(ctx, sourceID, targetID, result)
	report(total-1, "Mesclando configurações da loja")
	report(total, "Transferência concluída")

	zap.L().Info("transfer finished",
		zap.Int("categories", result.CategoriesCloned),
		zap.Int("products", result.ProductsCloned),
		zap.Int("images", result.ImagesCloned),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result.Finish()
}

// withElevatedQuota captures the target's item limit, raises it to the
// sentinel, runs fn, and restores the original limit on every exit path,
// panics included. The journal entry lets startup recovery repair a hard
// crash between raise and restore.
func (s *TransferService) withElevatedQuota(ctx context.Context, target *models.Tenant, result *models.TransferResult, fn func()) {
	originalLimit := target.ItemLimit

	if s.journal != nil {
		if err := s.journal.Record(ctx, target.ID, originalLimit); err != nil {
			zap.L().Warn("failed to journal quota raise", zap.String("tenant", target.ID.String()), zap.Error(err))
		}
	}
	if err := s.tenants.UpdateItemLimit(ctx, target.ID, elevatedItemLimit); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Erro ao elevar limite de itens: %v", err))
		if s.journal != nil {
			if err := s.journal.Clear(ctx, target.ID); err != nil {
				zap.L().Warn("failed to clear quota journal", zap.Error(err))
			}
		}
		fn()
		return
	}

	defer func() {
		// The request context may already be canceled; the restore must
		// still run.
		restoreCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.tenants.UpdateItemLimit(restoreCtx, target.ID, originalLimit); err != nil {
			zap.L().Error("failed to restore item limit",
				zap.String("tenant", target.ID.String()),
				zap.Int("original_limit", originalLimit),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, fmt.Sprintf("Erro ao restaurar limite de itens: %v", err))
			return
		}
		if s.journal != nil {
			if err := s.journal.Clear(restoreCtx, target.ID); err != nil {
				zap.L().Warn("failed to clear quota journal", zap.Error(err))
			}
		}
	}()

	fn()
}

// mapCategories resolves each source category id to the target's category
// of the same name, matching case-insensitively. Run after reconciliation
// so freshly inserted target categories participate.
func (s *TransferService) mapCategories(ctx context.Context, sourceID, targetID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	sourceCats, err := s.categories.FindByTenant(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("fetch source categories: %w", err)
	}
	targetCats, err := s.categories.FindByTenant(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("fetch target categories: %w", err)
	}
	byName := make(map[string]uuid.UUID, len(targetCats))
	for _, c := range targetCats {
		byName[strings.ToLower(c.Name)] = c.ID
	}
	mapping := make(map[uuid.UUID]uuid.UUID, len(sourceCats))
	for _, c := range sourceCats {
		if targetCatID, ok := byName[strings.ToLower(c.Name)]; ok {
			mapping[c.ID] = targetCatID
		}
	}
	return mapping, nil
}

// copyProductRecord builds the target-tenant copy of a source product. All
// descriptive fields carry over verbatim; ownership is rebound, the
// category reference is rebound through the name-matched mapping (nil when
// the target has no category of that name), and the copy is always hidden
// pending review.
func copyProductRecord(src *models.Product, targetID uuid.UUID, categoryIDs map[uuid.UUID]uuid.UUID) *models.Product {
	now := time.Now().UTC()
	cp := &models.Product{
		ID:               uuid.New(),
		TenantID:         targetID,
		Title:            src.Title,
		Description:      src.Description,
		Price:            src.Price,
		PromoPrice:       src.PromoPrice,
		Brand:            src.Brand,
		Sizes:            src.Sizes,
		Colors:           src.Colors,
		FeaturedImageURL: src.FeaturedImageURL,
		Visible:          false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if src.CategoryID != nil {
		if targetCatID, ok := categoryIDs[*src.CategoryID]; ok {
			cp.CategoryID = &targetCatID
		}
	}
	return cp
}

func (s *TransferService) copyProductsSequential(ctx context.Context, sourceProducts []*models.Product, targetID uuid.UUID, categoryIDs map[uuid.UUID]uuid.UUID, opts TransferOptions, result *models.TransferResult, report func(int, string)) {
	for i, src := range sourceProducts {
		cp := copyProductRecord(src, targetID, categoryIDs)
		if err := s.products.Create(ctx, cp); err != nil {
			zap.L().Error("failed to copy product", zap.String("title", src.Title), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Erro ao copiar produto '%s': %v", src.Title, err))
			result.Skipped++
			report(i+1, fmt.Sprintf("Produto '%s' ignorado", src.Title))
			continue
		}
		result.ProductsCloned++

		if opts.CopyImages {
			s.cloneProductImages(ctx, src, cp, result)
		}
		report(i+1, fmt.Sprintf("Produto '%s' copiado", src.Title))
	}
}

// copyProductsBatched is the fast path: product rows keep their original
// image references and are inserted in fixed-size batches. The inter-batch
// delay is backpressure against the store, not a correctness requirement.
func (s *TransferService) copyProductsBatched(ctx context.Context, sourceProducts []*models.Product, targetID uuid.UUID, categoryIDs map[uuid.UUID]uuid.UUID, opts TransferOptions, result *models.TransferResult, report func(int, string)) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	for start := 0; start < len(sourceProducts); start += batchSize {
		end := start + batchSize
		if end > len(sourceProducts) {
			end = len(sourceProducts)
		}
		batch := make([]models.Product, 0, end-start)
		for _, src := range sourceProducts[start:end] {
			batch = append(batch, *copyProductRecord(src, targetID, categoryIDs))
		}
		if err := s.products.CreateMany(ctx, batch); err != nil {
			zap.L().Error("failed to copy product batch", zap.Int("start", start), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Erro ao copiar lote de produtos (%d-%d): %v", start+1, end, err))
			result.Skipped += len(batch)
		} else {
			result.ProductsCloned += len(batch)
		}
		report(end, fmt.Sprintf("Copiados %d de %d produtos", end, len(sourceProducts)))

		if end < len(sourceProducts) && opts.BatchDelay > 0 {
			time.Sleep(opts.BatchDelay)
		}
	}
}

// cloneProductImages duplicates every image of src onto dst. Per-image
// failure is recorded and skipped. Should the source erroneously carry more
// than one featured image, the last one in position order wins: only that
// copy keeps the flag, and its new URL becomes the product's featured
// image. The destination product therefore never ends up with two featured
// images.
func (s *TransferService) cloneProductImages(ctx context.Context, src, dst *models.Product, result *models.TransferResult) {
	sourceImages, err := s.images.FindByProduct(ctx, src.ID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Erro ao buscar imagens do produto '%s': %v", src.Title, err))
		return
	}

	featuredIdx := -1
	for i, img := range sourceImages {
		if img.IsFeatured {
			featuredIdx = i
		}
	}

	var featuredURL string
	for i, img := range sourceImages {
		img.IsFeatured = i == featuredIdx
		copied, err := s.cloneImage(ctx, img, dst.ID, i)
		if err != nil {
			zap.L().Error("failed to clone image",
				zap.String("product", src.Title),
				zap.String("source_url", img.URL),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, fmt.Sprintf("Erro ao copiar imagem %d do produto '%s': %v", i+1, src.Title, err))
			continue
		}
		result.ImagesCloned++
		if copied.IsFeatured {
			featuredURL = copied.URL
		}
	}

	if featuredURL != "" && featuredURL != dst.FeaturedImageURL {
		if err := s.products.Update(ctx, dst.ID, map[string]interface{}{"featured_image_url": featuredURL}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Erro ao definir imagem destaque do produto '%s': %v", src.Title, err))
		}
	}
}

// ReconcileCategories inserts under the target every source category name
// the target does not already have, matching case-insensitively. Existing
// target categories are never updated or deleted. Running it twice inserts
// nothing the second time.
func (s *TransferService) ReconcileCategories(ctx context.Context, sourceID, targetID uuid.UUID) (int, error) {
	sourceCats, err := s.categories.FindByTenant(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("fetch source categories: %w", err)
	}
	targetCats, err := s.categories.FindByTenant(ctx, targetID)
	if err != nil {
		return 0, fmt.Errorf("fetch target categories: %w", err)
	}

	existing := make(map[string]struct{}, len(targetCats))
	for _, c := range targetCats {
		existing[strings.ToLower(c.Name)] = struct{}{}
	}

	now := time.Now().UTC()
	var missing []models.Category
	for _, c := range sourceCats {
		key := strings.ToLower(c.Name)
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		missing = append(missing, models.Category{
			ID:        uuid.New(),
			TenantID:  targetID,
			Name:      c.Name,
			Slug:      strings.ToLower(strings.ReplaceAll(c.Name, " ", "-")),
			CreatedAt: now,
		})
	}
	if len(missing) == 0 {
		return 0, nil
	}
	if err := s.categories.CreateMany(ctx, missing); err != nil {
		return 0, fmt.Errorf("insert categories: %w", err)
	}
	return len(missing), nil
}

// mergeStorefrontSettings merges the source tenant's storefront settings
// into the target's and upserts the result. Best-effort: failures are
// logged and recorded but never affect the outcome.
func (s *TransferService) mergeStorefrontSettings(ctx context.Context, sourceID, targetID uuid.UUID, result *models.TransferResult) {
	sourceSettings, err := s.settings.FindByTenant(ctx, sourceID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			zap.L().Warn("failed to fetch source settings", zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Erro ao buscar configurações de origem: %v", err))
		}
		return
	}

	targetSettings, err := s.settings.FindByTenant(ctx, targetID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			zap.L().Warn("failed to fetch target settings", zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Erro ao buscar configurações de destino: %v", err))
			return
		}
		targetSettings = &models.StorefrontSettings{TenantID: targetID}
	}

	merged := mergeSettings(sourceSettings, targetSettings)
	if err := s.settings.Upsert(ctx, merged); err != nil {
		zap.L().Warn("failed to upsert merged settings", zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("Erro ao mesclar configurações da loja: %v", err))
	}
}

// RecoverOrphanedQuotas restores any item limit left inflated by a crash
// between a quota raise and its restore. Intended to run at startup.
func (s *TransferService) RecoverOrphanedQuotas(ctx context.Context) int {
	if s.journal == nil {
		return 0
	}
	pending, err := s.journal.Pending(ctx)
	if err != nil {
		zap.L().Warn("failed to read quota journal", zap.Error(err))
		return 0
	}
	restored := 0
	for tenantID, limit := range pending {
		if err := s.tenants.UpdateItemLimit(ctx, tenantID, limit); err != nil {
			zap.L().Error("failed to restore orphaned quota",
				zap.String("tenant", tenantID.String()),
				zap.Int("limit", limit),
				zap.Error(err),
			)
			continue
		}
		if err := s.journal.Clear(ctx, tenantID); err != nil {
			zap.L().Warn("failed to clear quota journal", zap.Error(err))
		}
		zap.L().Info("restored orphaned quota", zap.String("tenant", tenantID.String()), zap.Int("limit", limit))
		restored++
	}
	return restored
}
