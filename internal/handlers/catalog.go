package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ronghua-heritage/storefront/internal/platform/httpx"
	"github.com/ronghua-heritage/storefront/internal/services"
)

// CatalogHandlers exposes the public shop catalog endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers over the catalog service.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the /shop endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/categories", h.listCategories)
}

// listProducts answers the shop page query: ?category=, ?search=, ?sort=.
func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	query := services.CatalogQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Sort:     r.URL.Query().Get("sort"),
	}
	page, err := h.catalog.Query(ctx, query)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", page)
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	product, err := h.catalog.Product(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", product)
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", categories)
}

func (h *CatalogHandlers) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid catalog query", http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product does not exist", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service failed", http.StatusServiceUnavailable))
	}
}
