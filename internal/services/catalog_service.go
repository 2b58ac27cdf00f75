package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

var errCatalogRepositoryRequired = errors.New("catalog service: repository is required")

// ErrCatalogInvalidInput indicates the caller supplied invalid input.
var ErrCatalogInvalidInput = errors.New("catalog service: invalid input")

// ErrCatalogNotFound indicates the requested product does not exist.
var ErrCatalogNotFound = errors.New("catalog service: not found")

// ErrCatalogUnavailable indicates the backing store cannot fulfil the request.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// CatalogServiceDeps wires the product repository.
type CatalogServiceDeps struct {
	Repository repositories.CatalogRepository
	Logger     func(context.Context, string, map[string]any)
}

type catalogService struct {
	repo   repositories.CatalogRepository
	logger func(context.Context, string, map[string]any)
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, errCatalogRepositoryRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{repo: deps.Repository, logger: logger}, nil
}

// Query applies category, search, and sort controls over the stored catalog.
// The index is rebuilt per query from the canonical product list, so the
// result never depends on what a previous caller filtered.
func (s *catalogService) Query(ctx context.Context, query CatalogQuery) (CatalogPage, error) {
	if s == nil || s.repo == nil {
		return CatalogPage{}, ErrCatalogUnavailable
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return CatalogPage{}, s.translateRepoError(err)
	}

	index := domain.NewCatalogIndex(products)
	index.SetCategoryFilter(query.Category)
	index.SetSearchTerm(query.Search)
	index.SetSort(domain.SortKey(strings.TrimSpace(query.Sort)))

	items := index.VisibleItems()
	return CatalogPage{Items: items, Total: len(items)}, nil
}

// Product returns a single catalog product by id.
func (s *catalogService) Product(ctx context.Context, productID string) (domain.Product, error) {
	if s == nil || s.repo == nil {
		return domain.Product{}, ErrCatalogUnavailable
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return domain.Product{}, ErrCatalogInvalidInput
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, s.translateRepoError(err)
	}
	for _, product := range products {
		if strings.EqualFold(product.ID, pid) {
			return product, nil
		}
	}
	return domain.Product{}, ErrCatalogNotFound
}

// Categories lists the distinct category keys in lexical order.
func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	if s == nil || s.repo == nil {
		return nil, ErrCatalogUnavailable
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, s.translateRepoError(err)
	}

	seen := make(map[string]struct{})
	var categories []string
	for _, product := range products {
		key := strings.ToLower(strings.TrimSpace(product.Category))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		categories = append(categories, key)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *catalogService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		return ErrCatalogNotFound
	}
	return ErrCatalogUnavailable
}
