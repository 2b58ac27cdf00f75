package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// SortKey selects the ordering applied to the visible catalog subset.
type SortKey string

const (
	SortPriceLow   SortKey = "price-low"
	SortPriceHigh  SortKey = "price-high"
	SortPopularity SortKey = "popularity"
	SortNewest     SortKey = "newest"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

var searchFolder = cases.Fold()

// CatalogIndex is the filtered and sorted view over the product list. The
// visible subset is derived on demand and never persisted; filter parameters
// are the only state it carries besides the catalog itself.
type CatalogIndex struct {
	products []Product
	category string
	search   string
	sortKey  SortKey
}

// NewCatalogIndex builds an index over a copy of the given products. The
// original slice order defines the "newest" baseline ordering.
func NewCatalogIndex(products []Product) *CatalogIndex {
	dup := make([]Product, len(products))
	copy(dup, products)
	return &CatalogIndex{
		products: dup,
		category: CategoryAll,
		sortKey:  SortNewest,
	}
}

// Add appends a product at the tail of the catalog.
func (ix *CatalogIndex) Add(p Product) {
	ix.products = append(ix.products, p)
}

// Len reports the full (unfiltered) catalog size.
func (ix *CatalogIndex) Len() int {
	return len(ix.products)
}

// SetCategoryFilter restricts visibility to an exact category match. An empty
// value or CategoryAll shows every category.
func (ix *CatalogIndex) SetCategoryFilter(category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = CategoryAll
	}
	ix.category = category
}

// SetSearchTerm sets the substring matched against title and description.
// A term that is empty after trimming matches everything.
func (ix *CatalogIndex) SetSearchTerm(term string) {
	ix.search = strings.TrimSpace(term)
}

// SetSort selects the active ordering. Unknown keys are ignored.
func (ix *CatalogIndex) SetSort(key SortKey) {
	switch key {
	case SortPriceLow, SortPriceHigh, SortPopularity, SortNewest:
		ix.sortKey = key
	}
}

// Sort returns the active sort key.
func (ix *CatalogIndex) Sort() SortKey {
	return ix.sortKey
}

// VisibleItems applies the category filter, then the search term, then the
// active sort, and returns the resulting ordered subset. Sorting is stable:
// ties keep their prior relative order, and "newest" is catalog insertion
// order untouched.
func (ix *CatalogIndex) VisibleItems() []Product {
	visible := make([]Product, 0, len(ix.products))
	for _, p := range ix.products {
		if !ix.matchesCategory(p) {
			continue
		}
		if !ix.matchesSearch(p) {
			continue
		}
		visible = append(visible, p)
	}

	switch ix.sortKey {
	case SortPriceLow:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].PriceMinor < visible[j].PriceMinor
		})
	case SortPriceHigh:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].PriceMinor > visible[j].PriceMinor
		})
	case SortPopularity:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].Popularity > visible[j].Popularity
		})
	case SortNewest:
		// Insertion order is the newest baseline.
	}

	return visible
}

func (ix *CatalogIndex) matchesCategory(p Product) bool {
	if ix.category == "" || strings.EqualFold(ix.category, CategoryAll) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(p.Category), ix.category)
}

func (ix *CatalogIndex) matchesSearch(p Product) bool {
	if ix.search == "" {
		return true
	}
	needle := searchFolder.String(ix.search)
	if strings.Contains(searchFolder.String(p.Title), needle) {
		return true
	}
	return strings.Contains(searchFolder.String(p.Description), needle)
}
