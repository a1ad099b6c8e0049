package services

import (
	"context"
	"strings"
	"testing"

	"storefront-service/models"

	"github.com/google/uuid"
)

type transferFixture struct {
	svc      *TransferService
	tenants  *fakeTenantRepo
	products *fakeProductRepo
	cats     *fakeCategoryRepo
	images   *fakeImageRepo
	settings *fakeSettingsRepo
	store    *fakeObjectStore
	source   *models.Tenant
	target   *models.Tenant
}

func newTransferFixture() *transferFixture {
	source := &models.Tenant{ID: uuid.New(), Name: "Loja Origem", Slug: "origem", ItemLimit: 100}
	target := &models.Tenant{ID: uuid.New(), Name: "Loja Destino", Slug: "destino", ItemLimit: 50}

	f := &transferFixture{
		tenants:  newFakeTenantRepo(source, target),
		products: newFakeProductRepo(),
		cats:     &fakeCategoryRepo{},
		images:   newFakeImageRepo(),
		settings: newFakeSettingsRepo(),
		store:    newFakeObjectStore(),
		source:   source,
		target:   target,
	}
	f.svc = NewTransferService(f.tenants, f.products, f.cats, f.images, f.settings, f.store, nil)
	return f
}

func (f *transferFixture) addSourceProduct(title string, imageURLs []string, featuredIdx int) *models.Product {
	p := &models.Product{
		ID:       uuid.New(),
		TenantID: f.source.ID,
		Title:    title,
		Price:    99.9,
		Visible:  true,
	}
	f.products.products = append(f.products.products, p)
	for i, u := range imageURLs {
		f.images.byProduct[p.ID] = append(f.images.byProduct[p.ID], models.ProductImage{
			ID:         uuid.New(),
			ProductID:  p.ID,
			URL:        u,
			StorageKey: "products/src/" + u,
			IsFeatured: i == featuredIdx,
			Position:   i,
		})
		f.store.blobs[u] = []byte("image-bytes-" + u)
	}
	return p
}

func (f *transferFixture) addSourceCategory(name string) uuid.UUID {
	id := uuid.New()
	f.cats.categories = append(f.cats.categories, models.Category{
		ID:       id,
		TenantID: f.source.ID,
		Name:     name,
	})
	return id
}

func (f *transferFixture) targetProducts() []*models.Product {
	out, _ := f.products.FindByTenant(context.Background(), f.target.ID)
	return out
}

func TestTransferHappyPath(t *testing.T) {
	f := newTransferFixture()
	f.addSourceCategory("Shoes")
	f.addSourceCategory("Hats")
	f.addSourceCategory("Bags")
	f.addSourceProduct("Tênis Runner", []string{"https://img.test/a.jpg"}, 0)
	f.addSourceProduct("Boné Classic", []string{"https://img.test/b.jpg"}, 0)

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)

	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if result.CategoriesCloned != 3 {
		t.Fatalf("expected 3 categories cloned, got %d", result.CategoriesCloned)
	}
	if result.ProductsCloned != 2 {
		t.Fatalf("expected 2 products cloned, got %d", result.ProductsCloned)
	}
	if result.ImagesCloned != 2 {
		t.Fatalf("expected 2 images cloned, got %d", result.ImagesCloned)
	}
	if result.Skipped != 0 {
		t.Fatalf("expected 0 skipped, got %d", result.Skipped)
	}

	if f.tenants.tenants[f.target.ID].ItemLimit != 50 {
		t.Fatalf("target item limit not restored: got %d", f.tenants.tenants[f.target.ID].ItemLimit)
	}
	if len(f.tenants.limitUpdates) != 2 || f.tenants.limitUpdates[0] != elevatedItemLimit || f.tenants.limitUpdates[1] != 50 {
		t.Fatalf("unexpected limit update sequence: %v", f.tenants.limitUpdates)
	}
}

func TestTransferCopiesAreHidden(t *testing.T) {
	f := newTransferFixture()
	f.addSourceProduct("Visível", nil, -1)

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}

	for _, p := range f.targetProducts() {
		if p.Visible {
			t.Fatalf("copied product %q is visible; copies must be hidden", p.Title)
		}
	}
}

func TestTransferEmptySource(t *testing.T) {
	f := newTransferFixture()

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)

	if result.Success {
		t.Fatal("expected failure for empty source")
	}
	if result.ProductsCloned != 0 {
		t.Fatalf("expected 0 products cloned, got %d", result.ProductsCloned)
	}
	if len(errorsContaining(result.Errors, "Nenhum produto encontrado no usuário de origem")) != 1 {
		t.Fatalf("expected empty-source error, got %v", result.Errors)
	}
	if len(f.tenants.limitUpdates) != 0 {
		t.Fatalf("quota must not be touched for an empty source, got updates %v", f.tenants.limitUpdates)
	}
}

func TestTransferUnknownTenantIsFatal(t *testing.T) {
	f := newTransferFixture()
	f.addSourceProduct("Produto", nil, -1)

	result := f.svc.Transfer(context.Background(), f.source.ID, uuid.New(), DefaultTransferOptions(), nil)

	if result.Success {
		t.Fatal("expected failure for unknown target tenant")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", result.Errors)
	}
	if result.ProductsCloned != 0 || result.CategoriesCloned != 0 {
		t.Fatalf("nothing should be copied: %+v", result)
	}
}

func TestTransferPartialFailureContainment(t *testing.T) {
	f := newTransferFixture()
	f.addSourceProduct("Bom 1", nil, -1)
	f.addSourceProduct("Quebrado", nil, -1)
	f.addSourceProduct("Bom 2", nil, -1)
	f.products.failTitles["Quebrado"] = true

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)

	if !result.Success {
		t.Fatalf("expected success despite one bad product, got errors: %v", result.Errors)
	}
	if result.ProductsCloned != 2 {
		t.Fatalf("expected 2 products cloned, got %d", result.ProductsCloned)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped, got %d", result.Skipped)
	}
	if len(errorsContaining(result.Errors, "Quebrado")) != 1 {
		t.Fatalf("expected one error naming the bad product, got %v", result.Errors)
	}
	if f.tenants.tenants[f.target.ID].ItemLimit != 50 {
		t.Fatalf("target item limit not restored after partial failure")
	}
}

func TestTransferSuccessDefinition(t *testing.T) {
	f := newTransferFixture()
	f.addSourceProduct("Único", nil, -1)
	f.products.failTitles["Único"] = true

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)

	if result.Success != (result.ProductsCloned > 0) {
		t.Fatalf("success flag inconsistent: success=%v productsCloned=%d", result.Success, result.ProductsCloned)
	}
	if result.Success {
		t.Fatal("expected failure when every product insert fails")
	}
	if f.tenants.tenants[f.target.ID].ItemLimit != 50 {
		t.Fatalf("target item limit not restored after total failure")
	}
}

func TestTransferImageFetchFailure(t *testing.T) {
	f := newTransferFixture()
	p := f.addSourceProduct("Com Imagens", []string{"https://img.test/ok.jpg", "https://img.test/missing.jpg"}, 0)
	delete(f.store.blobs, "https://img.test/missing.jpg")

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)

	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if result.ProductsCloned != 1 {
		t.Fatalf("product should still be counted, got %d", result.ProductsCloned)
	}
	if result.ImagesCloned != 1 {
		t.Fatalf("expected 1 image cloned, got %d", result.ImagesCloned)
	}
	if len(errorsContaining(result.Errors, p.Title)) != 1 {
		t.Fatalf("expected one image error for %q, got %v", p.Title, result.Errors)
	}
}

func TestTransferFeaturedImageLastWins(t *testing.T) {
	f := newTransferFixture()
	// Both source images erroneously flagged featured; the last in position
	// order must win on the destination.
	p := f.addSourceProduct("Dupla Destaque", []string{"https://img.test/1.jpg", "https://img.test/2.jpg"}, 0)
	imgs := f.images.byProduct[p.ID]
	imgs[1].IsFeatured = true
	f.images.byProduct[p.ID] = imgs

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}

	copies := f.targetProducts()
	if len(copies) != 1 {
		t.Fatalf("expected 1 copied product, got %d", len(copies))
	}
	featured := 0
	var featuredURL string
	for _, img := range f.images.byProduct[copies[0].ID] {
		if img.IsFeatured {
			featured++
			featuredURL = img.URL
		}
	}
	if featured != 1 {
		t.Fatalf("expected exactly one featured image on destination, got %d", featured)
	}
	if copies[0].FeaturedImageURL != featuredURL {
		t.Fatalf("featured pointer %q does not match featured image %q", copies[0].FeaturedImageURL, featuredURL)
	}
	if !strings.HasSuffix(featuredURL, "_1.jpg") {
		t.Fatalf("expected the second image (last featured) to win, got %q", featuredURL)
	}
}

func TestTransferRebindsCategoryToTarget(t *testing.T) {
	f := newTransferFixture()
	sourceCatID := f.addSourceCategory("Shoes")
	p := f.addSourceProduct("Tênis Runner", nil, -1)
	p.CategoryID = &sourceCatID

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}

	copies := f.targetProducts()
	if len(copies) != 1 {
		t.Fatalf("expected 1 copied product, got %d", len(copies))
	}
	if copies[0].CategoryID == nil {
		t.Fatal("copied product lost its category assignment")
	}
	if *copies[0].CategoryID == sourceCatID {
		t.Fatal("copy must reference the target's category, not the source's")
	}
	targetCats, _ := f.cats.FindByTenant(context.Background(), f.target.ID)
	var targetShoes uuid.UUID
	for _, c := range targetCats {
		if c.Name == "Shoes" {
			targetShoes = c.ID
		}
	}
	if targetShoes == uuid.Nil {
		t.Fatalf("target is missing the reconciled category, has %v", targetCats)
	}
	if *copies[0].CategoryID != targetShoes {
		t.Fatalf("copy bound to %s, want target category %s", *copies[0].CategoryID, targetShoes)
	}
}

func TestTransferCategoryWithoutNameMatchIsDropped(t *testing.T) {
	f := newTransferFixture()
	sourceCatID := f.addSourceCategory("Shoes")
	p := f.addSourceProduct("Tênis Runner", nil, -1)
	p.CategoryID = &sourceCatID

	// No reconciliation: the target has no category named Shoes, so the
	// copy has nothing valid to point at.
	opts := DefaultTransferOptions()
	opts.CopyCategories = false
	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, opts, nil)
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}

	copies := f.targetProducts()
	if len(copies) != 1 {
		t.Fatalf("expected 1 copied product, got %d", len(copies))
	}
	if copies[0].CategoryID != nil {
		t.Fatalf("copy must be uncategorized when the target has no matching category, got %s", *copies[0].CategoryID)
	}
}

func TestTransferQuotaRestoredOnPanic(t *testing.T) {
	f := newTransferFixture()
	f.addSourceProduct("Produto", nil, -1)
	f.products.panicOnCreate = true

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected the transfer to panic")
			}
		}()
		f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)
	}()

	if f.tenants.tenants[f.target.ID].ItemLimit != 50 {
		t.Fatalf("target item limit not restored after panic: got %d", f.tenants.tenants[f.target.ID].ItemLimit)
	}
	if len(f.tenants.limitUpdates) != 2 || f.tenants.limitUpdates[1] != 50 {
		t.Fatalf("unexpected limit update sequence: %v", f.tenants.limitUpdates)
	}
}

func TestTransferBatchedFastPath(t *testing.T) {
	f := newTransferFixture()
	for i := 0; i < 25; i++ {
		f.addSourceProduct("Produto "+string(rune('A'+i)), []string{"https://img.test/x.jpg"}, 0)
	}

	opts := FastTransferOptions()
	opts.BatchDelay = 0
	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, opts, nil)

	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if result.ProductsCloned != 25 {
		t.Fatalf("expected 25 products cloned, got %d", result.ProductsCloned)
	}
	if result.ImagesCloned != 0 {
		t.Fatalf("fast path must not duplicate images, got %d", result.ImagesCloned)
	}
	wantBatches := []int{10, 10, 5}
	if len(f.products.batchSizes) != len(wantBatches) {
		t.Fatalf("expected %d batches, got %v", len(wantBatches), f.products.batchSizes)
	}
	for i, want := range wantBatches {
		if f.products.batchSizes[i] != want {
			t.Fatalf("batch %d: expected size %d, got %v", i, want, f.products.batchSizes)
		}
	}
	if f.tenants.tenants[f.target.ID].ItemLimit != 50 {
		t.Fatalf("target item limit not restored after batched transfer")
	}
}

func TestTransferBatchFailureSkipsWholeBatch(t *testing.T) {
	f := newTransferFixture()
	for i := 0; i < 5; i++ {
		f.addSourceProduct("Produto "+string(rune('A'+i)), nil, -1)
	}
	f.products.failCreateMany = true

	opts := FastTransferOptions()
	opts.BatchDelay = 0
	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, opts, nil)

	if result.Success {
		t.Fatal("expected failure when every batch fails")
	}
	if result.Skipped != 5 {
		t.Fatalf("expected 5 skipped, got %d", result.Skipped)
	}
	if f.tenants.tenants[f.target.ID].ItemLimit != 50 {
		t.Fatalf("target item limit not restored after batch failure")
	}
}

func TestTransferProgressIsMonotonic(t *testing.T) {
	f := newTransferFixture()
	f.addSourceProduct("P1", nil, -1)
	f.addSourceProduct("P2", nil, -1)
	f.addSourceProduct("P3", nil, -1)

	type call struct{ current, total int }
	var calls []call
	onProgress := func(current, total int, message string) {
		calls = append(calls, call{current, total})
	}

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), onProgress)
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if len(calls) == 0 {
		t.Fatal("expected progress callbacks")
	}
	prev := -1
	for i, c := range calls {
		if c.current < prev {
			t.Fatalf("progress went backward at call %d: %v", i, calls)
		}
		prev = c.current
	}
	last := calls[len(calls)-1]
	if last.current != last.total {
		t.Fatalf("progress must reach total on completion, got %d/%d", last.current, last.total)
	}
}

func TestTransferMergesSettings(t *testing.T) {
	f := newTransferFixture()
	f.addSourceProduct("Produto", nil, -1)
	f.settings.docs[f.source.ID] = &models.StorefrontSettings{
		TenantID:       f.source.ID,
		ThemeColor:     "#ff0000",
		WhatsApp:       "+5511999999999",
		PaymentMethods: []string{"pix", "cartao"},
	}
	f.settings.docs[f.target.ID] = &models.StorefrontSettings{
		TenantID:       f.target.ID,
		ThemeColor:     "#0000ff",
		PaymentMethods: []string{"cartao", "boleto"},
	}

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}

	merged := f.settings.upserted
	if merged == nil {
		t.Fatal("expected settings upsert")
	}
	if merged.TenantID != f.target.ID {
		t.Fatalf("merged settings bound to wrong tenant: %s", merged.TenantID)
	}
	if merged.ThemeColor != "#0000ff" {
		t.Fatalf("target theme must win, got %q", merged.ThemeColor)
	}
	if merged.WhatsApp != "+5511999999999" {
		t.Fatalf("source value must fill empty target field, got %q", merged.WhatsApp)
	}
	want := []string{"cartao", "boleto", "pix"}
	if len(merged.PaymentMethods) != len(want) {
		t.Fatalf("expected payment methods %v, got %v", want, merged.PaymentMethods)
	}
	for i, m := range want {
		if merged.PaymentMethods[i] != m {
			t.Fatalf("expected payment methods %v, got %v", want, merged.PaymentMethods)
		}
	}
}

func TestTransferSettingsFailureIsNotFatal(t *testing.T) {
	f := newTransferFixture()
	f.addSourceProduct("Produto", nil, -1)
	f.settings.docs[f.source.ID] = &models.StorefrontSettings{TenantID: f.source.ID, ThemeColor: "#fff"}
	f.settings.failUpsert = true

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)

	if !result.Success {
		t.Fatal("settings merge failure must not fail the transfer")
	}
	if len(errorsContaining(result.Errors, "configurações")) == 0 {
		t.Fatalf("expected a recorded settings error, got %v", result.Errors)
	}
}

func TestReconcileCategoriesCaseInsensitive(t *testing.T) {
	f := newTransferFixture()
	f.addSourceCategory("Shoes")
	f.addSourceCategory("Hats")
	f.cats.categories = append(f.cats.categories, models.Category{
		ID:       uuid.New(),
		TenantID: f.target.ID,
		Name:     "shoes",
	})

	count, err := f.svc.ReconcileCategories(context.Background(), f.source.ID, f.target.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 category inserted, got %d", count)
	}

	targetCats, _ := f.cats.FindByTenant(context.Background(), f.target.ID)
	names := make(map[string]bool)
	for _, c := range targetCats {
		names[c.Name] = true
	}
	if !names["Hats"] {
		t.Fatalf("expected Hats to be inserted, target has %v", targetCats)
	}
	if len(targetCats) != 2 {
		t.Fatalf("expected 2 target categories, got %d", len(targetCats))
	}
}

func TestReconcileCategoriesIdempotent(t *testing.T) {
	f := newTransferFixture()
	f.addSourceCategory("Shoes")
	f.addSourceCategory("Hats")

	first, err := f.svc.ReconcileCategories(context.Background(), f.source.ID, f.target.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 2 {
		t.Fatalf("expected 2 inserted on first run, got %d", first)
	}

	second, err := f.svc.ReconcileCategories(context.Background(), f.source.ID, f.target.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected 0 inserted on second run, got %d", second)
	}
}

func TestTransferCategoryFailureIsNotFatal(t *testing.T) {
	f := newTransferFixture()
	f.addSourceCategory("Shoes")
	f.addSourceProduct("Produto", nil, -1)
	f.cats.failCreate = true

	result := f.svc.Transfer(context.Background(), f.source.ID, f.target.ID, DefaultTransferOptions(), nil)

	if !result.Success {
		t.Fatal("category failure must not abort the transfer")
	}
	if result.CategoriesCloned != 0 {
		t.Fatalf("expected 0 categories cloned, got %d", result.CategoriesCloned)
	}
	if len(errorsContaining(result.Errors, "categorias")) != 1 {
		t.Fatalf("expected recorded category error, got %v", result.Errors)
	}
}
