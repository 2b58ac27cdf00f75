package kvrepo

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/kv"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

const catalogProductsKey = "catalog/products"

//go:embed seed_products.json
var seedProductsJSON []byte

// CatalogRepository persists the product list as a single shared document.
// When the store holds no catalog yet, the embedded seed is written on first
// read so every deployment starts with a browsable shop.
type CatalogRepository struct {
	store kv.Store
}

// NewCatalogRepository constructs a kv-backed catalog repository.
func NewCatalogRepository(store kv.Store) (*CatalogRepository, error) {
	if store == nil {
		return nil, errors.New("catalog repository requires kv store")
	}
	return &CatalogRepository{store: store}, nil
}

// ListProducts returns the catalog in stored order, seeding it when absent.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	found, err := r.store.Get(ctx, catalogProductsKey, &products)
	if err != nil {
		return nil, wrapError("catalog.list", err)
	}
	if found {
		return products, nil
	}

	products, err = SeedProducts()
	if err != nil {
		return nil, wrapError("catalog.list", err)
	}
	if err := r.store.Set(ctx, catalogProductsKey, products); err != nil {
		return nil, wrapError("catalog.list", err)
	}
	return products, nil
}

// SaveProducts rewrites the catalog document.
func (r *CatalogRepository) SaveProducts(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	if err := r.store.Set(ctx, catalogProductsKey, products); err != nil {
		return wrapError("catalog.save", err)
	}
	return nil
}

// SeedProducts decodes the embedded default catalog.
func SeedProducts() ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(seedProductsJSON, &products); err != nil {
		return nil, fmt.Errorf("decode product seed: %w", err)
	}
	return products, nil
}

// Ensure interface compliance.
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)
