package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-service/models"
	"storefront-service/repository"

	"github.com/google/uuid"
)

type fakeTenantRepo struct {
	tenants      map[uuid.UUID]*models.Tenant
	limitUpdates []int
	failUpdate   bool
}

func newFakeTenantRepo(tenants ...*models.Tenant) *fakeTenantRepo {
	m := make(map[uuid.UUID]*models.Tenant)
	for _, t := range tenants {
		m[t.ID] = t
	}
	return &fakeTenantRepo{tenants: m}
}

func (f *fakeTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTenantRepo) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	for _, t := range f.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTenantRepo) UpdateItemLimit(ctx context.Context, id uuid.UUID, limit int) error {
	if f.failUpdate {
		return errors.New("update failed")
	}
	t, ok := f.tenants[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.limitUpdates = append(f.limitUpdates, limit)
	t.ItemLimit = limit
	return nil
}

type fakeProductRepo struct {
	products       []*models.Product
	updates        map[uuid.UUID]map[string]interface{}
	failTitles     map[string]bool
	failCreateMany bool
	panicOnCreate  bool
	batchSizes     []int
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	return &fakeProductRepo{
		products:   products,
		updates:    make(map[uuid.UUID]map[string]interface{}),
		failTitles: make(map[string]bool),
	}
}

func (f *fakeProductRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range f.products {
		if p.TenantID == tenantID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	if f.panicOnCreate {
		panic("product store blew up")
	}
	if f.failTitles[product.Title] {
		return fmt.Errorf("constraint violation on %q", product.Title)
	}
	cp := *product
	f.products = append(f.products, &cp)
	return nil
}

func (f *fakeProductRepo) CreateMany(ctx context.Context, products []models.Product) error {
	f.batchSizes = append(f.batchSizes, len(products))
	if f.failCreateMany {
		return errors.New("batch write failed")
	}
	for i := range products {
		cp := products[i]
		f.products = append(f.products, &cp)
	}
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.updates[id] = updates
	for _, p := range f.products {
		if p.ID == id {
			if v, ok := updates["featured_image_url"].(string); ok {
				p.FeaturedImageURL = v
			}
		}
	}
	return nil
}

type fakeCategoryRepo struct {
	categories []models.Category
	failCreate bool
}

func (f *fakeCategoryRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) CreateMany(ctx context.Context, categories []models.Category) error {
	if f.failCreate {
		return errors.New("batch write failed")
	}
	f.categories = append(f.categories, categories...)
	return nil
}

type fakeImageRepo struct {
	byProduct  map[uuid.UUID][]models.ProductImage
	created    []models.ProductImage
	failCreate bool
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{byProduct: make(map[uuid.UUID][]models.ProductImage)}
}

func (f *fakeImageRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	return f.byProduct[productID], nil
}

func (f *fakeImageRepo) Create(ctx context.Context, image *models.ProductImage) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	f.created = append(f.created, *image)
	f.byProduct[image.ProductID] = append(f.byProduct[image.ProductID], *image)
	return nil
}

type fakeSettingsRepo struct {
	docs       map[uuid.UUID]*models.StorefrontSettings
	upserted   *models.StorefrontSettings
	failUpsert bool
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{docs: make(map[uuid.UUID]*models.StorefrontSettings)}
}

func (f *fakeSettingsRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.StorefrontSettings, error) {
	s, ok := f.docs[tenantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, settings *models.StorefrontSettings) error {
	if f.failUpsert {
		return errors.New("upsert failed")
	}
	cp := *settings
	f.upserted = &cp
	f.docs[settings.TenantID] = &cp
	return nil
}

type fakeObjectStore struct {
	blobs      map[string][]byte
	uploads    map[string][]byte
	removed    []string
	failUpload bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		blobs:   make(map[string][]byte),
		uploads: make(map[string][]byte),
	}
}

func (f *fakeObjectStore) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	data, ok := f.blobs[url]
	if !ok {
		return nil, "", errors.New("failed to download image: status 404")
	}
	return data, "image/jpeg", nil
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if f.failUpload {
		return errors.New("upload failed")
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeObjectStore) Remove(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.uploads, key)
	return nil
}

// errorsContaining returns the result errors that mention substr.
func errorsContaining(errs []string, substr string) []string {
	var out []string
	for _, e := range errs {
		if strings.Contains(e, substr) {
			out = append(out, e)
		}
	}
	return out
}
