package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
)

func catalogFixture() []domain.Product {
	return []domain.Product{
		{ID: "p1", Title: "红色牡丹绒花发簪", Description: "经典南京绒花工艺", Category: "finished", PriceMinor: 12800, Popularity: 96},
		{ID: "p2", Title: "Silk Strip Kit", Description: "practice material for beginners", Category: "materials", PriceMinor: 4500, Popularity: 69},
		{ID: "p3", Title: "绒花制作工具六件套", Description: "基础工具套装", Category: "tools", PriceMinor: 9900, Popularity: 62},
		{ID: "p4", Title: "白色茉莉绒花耳饰", Description: "小巧茉莉花苞耳饰", Category: "finished", PriceMinor: 6800, Popularity: 81},
	}
}

func newTestCatalogService(t *testing.T, products []domain.Product) CatalogService {
	t.Helper()
	repo := &stubCatalogRepository{
		listFunc: func(ctx context.Context) ([]domain.Product, error) {
			return products, nil
		},
	}
	service, err := NewCatalogService(CatalogServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing catalog service: %v", err)
	}
	return service
}

func TestCatalogServiceQueryFiltersByCategory(t *testing.T) {
	service := newTestCatalogService(t, catalogFixture())

	page, err := service.Query(context.Background(), CatalogQuery{Category: "finished"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 finished products, got %d", page.Total)
	}
	for _, item := range page.Items {
		if item.Category != "finished" {
			t.Fatalf("unexpected category %q", item.Category)
		}
	}
}

func TestCatalogServiceQueryAllCategoriesReturnsEverything(t *testing.T) {
	service := newTestCatalogService(t, catalogFixture())

	for _, category := range []string{"", "all", "ALL"} {
		page, err := service.Query(context.Background(), CatalogQuery{Category: category})
		if err != nil {
			t.Fatalf("query %q: %v", category, err)
		}
		if page.Total != 4 {
			t.Fatalf("expected all 4 products for category %q, got %d", category, page.Total)
		}
	}
}

func TestCatalogServiceSearchIsCaseInsensitiveOverTitleAndDescription(t *testing.T) {
	service := newTestCatalogService(t, catalogFixture())

	// Matches the title of p2.
	page, err := service.Query(context.Background(), CatalogQuery{Search: "SILK"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "p2" {
		t.Fatalf("expected title match on p2, got %+v", page.Items)
	}

	// Matches only the description of p2.
	page, err = service.Query(context.Background(), CatalogQuery{Search: "Beginners"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "p2" {
		t.Fatalf("expected description match on p2, got %+v", page.Items)
	}
}

func TestCatalogServiceEmptySearchMatchesEverything(t *testing.T) {
	service := newTestCatalogService(t, catalogFixture())

	page, err := service.Query(context.Background(), CatalogQuery{Search: "   "})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("expected blank search to match everything, got %d", page.Total)
	}
}

func TestCatalogServiceSortOrders(t *testing.T) {
	service := newTestCatalogService(t, catalogFixture())
	ctx := context.Background()

	page, err := service.Query(ctx, CatalogQuery{Sort: "price-low"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i-1].PriceMinor > page.Items[i].PriceMinor {
			t.Fatalf("price-low out of order at %d: %+v", i, page.Items)
		}
	}

	page, err = service.Query(ctx, CatalogQuery{Sort: "price-high"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i-1].PriceMinor < page.Items[i].PriceMinor {
			t.Fatalf("price-high out of order at %d: %+v", i, page.Items)
		}
	}

	page, err = service.Query(ctx, CatalogQuery{Sort: "popularity"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i-1].Popularity < page.Items[i].Popularity {
			t.Fatalf("popularity out of order at %d: %+v", i, page.Items)
		}
	}

	// Newest keeps the catalog's insertion order.
	page, err = service.Query(ctx, CatalogQuery{Sort: "newest"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if page.Items[0].ID != "p1" || page.Items[3].ID != "p4" {
		t.Fatalf("expected insertion order for newest, got %+v", page.Items)
	}
}

func TestCatalogServiceUnknownSortKeepsCurrentOrder(t *testing.T) {
	service := newTestCatalogService(t, catalogFixture())

	page, err := service.Query(context.Background(), CatalogQuery{Sort: "bogus"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if page.Items[0].ID != "p1" {
		t.Fatalf("expected unknown sort to be ignored, got %+v", page.Items)
	}
}

func TestCatalogServiceProductLookup(t *testing.T) {
	service := newTestCatalogService(t, catalogFixture())
	ctx := context.Background()

	product, err := service.Product(ctx, "P2")
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if product.ID != "p2" {
		t.Fatalf("expected case-insensitive id match, got %+v", product)
	}

	if _, err := service.Product(ctx, "ghost"); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
	if _, err := service.Product(ctx, "  "); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected ErrCatalogInvalidInput, got %v", err)
	}
}

func TestCatalogServiceCategories(t *testing.T) {
	service := newTestCatalogService(t, catalogFixture())

	categories, err := service.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	want := []string{"finished", "materials", "tools"}
	if len(categories) != len(want) {
		t.Fatalf("expected %v, got %v", want, categories)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, categories)
		}
	}
}
