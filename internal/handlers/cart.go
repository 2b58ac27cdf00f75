package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/httpx"
	"github.com/ronghua-heritage/storefront/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the authenticated cart ledger endpoints.
type CartHandlers struct {
	carts services.CartService
}

// NewCartHandlers constructs handlers over the cart service.
func NewCartHandlers(carts services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Routes wires the /cart endpoints onto the provided router. The auth
// middleware is applied by the router group.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Get("/summary", h.getSummary)
	r.Post("/items", h.addItem)
	r.Put("/items/{productID}", h.setQuantity)
	r.Patch("/items/{productID}", h.incrementQuantity)
	r.Delete("/items/{productID}", h.removeItem)
	r.Delete("/", h.clearCart)
}

// cartResponse wraps the ledger with its derived totals so clients never
// recompute them from rendered values.
type cartResponse struct {
	Cart    domain.Cart          `json:"cart"`
	Summary services.CartSummary `json:"summary"`
	Total   string               `json:"total"`
}

func buildCartResponse(cart domain.Cart) cartResponse {
	return cartResponse{
		Cart: cart,
		Summary: services.CartSummary{
			TotalMinor: cart.TotalMinor(),
			ItemCount:  cart.ItemCount(),
		},
		Total: domain.FormatMinor(cart.TotalMinor()),
	}
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(ctx, identity.UID)
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", buildCartResponse(cart))
}

func (h *CartHandlers) getSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	summary, err := h.carts.Summary(ctx, identity.UID)
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", summary)
}

type addCartItemRequest struct {
	Product domain.Product `json:"product"`
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	cart, err := h.carts.AddItem(ctx, services.AddCartItemCommand{
		UserID:  identity.UID,
		Product: req.Product,
	})
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "已加入购物车", buildCartResponse(cart))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandlers) setQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req setQuantityRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	cart, err := h.carts.SetQuantity(ctx, services.SetCartQuantityCommand{
		UserID:    identity.UID,
		ProductID: chi.URLParam(r, "productID"),
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", buildCartResponse(cart))
}

type incrementQuantityRequest struct {
	Delta int `json:"delta"`
}

func (h *CartHandlers) incrementQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req incrementQuantityRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	cart, err := h.carts.IncrementQuantity(ctx, services.IncrementCartQuantityCommand{
		UserID:    identity.UID,
		ProductID: chi.URLParam(r, "productID"),
		Delta:     req.Delta,
	})
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", buildCartResponse(cart))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(ctx, identity.UID, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "已移除商品", buildCartResponse(cart))
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(ctx, identity.UID); err != nil {
		h.writeCartError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "购物车已清空", nil)
}

func (h *CartHandlers) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid cart request", http.StatusBadRequest))
	case errors.Is(err, services.ErrCartNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_item_not_found", "cart entry does not exist", http.StatusNotFound))
	case errors.Is(err, services.ErrCartConflict):
		httpx.WriteError(ctx, w, httpx.NewError("cart_conflict", "cart was modified concurrently", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service failed", http.StatusServiceUnavailable))
	}
}
