package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/httpx"
	"github.com/ronghua-heritage/storefront/internal/services"
)

const maxWishlistBodySize = 16 * 1024

// WishlistHandlers exposes the authenticated wishlist endpoints.
type WishlistHandlers struct {
	wishlists services.WishlistService
}

// NewWishlistHandlers constructs handlers over the wishlist service.
func NewWishlistHandlers(wishlists services.WishlistService) *WishlistHandlers {
	return &WishlistHandlers{wishlists: wishlists}
}

// Routes wires the /wishlist endpoints onto the provided router.
func (h *WishlistHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
	r.Get("/contains/{productID}", h.contains)
	r.Post("/toggle", h.toggle)
	r.Delete("/", h.clear)
}

func (h *WishlistHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wishlists == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_unavailable", "wishlist service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	wishlist, err := h.wishlists.List(ctx, identity.UID)
	if err != nil {
		h.writeWishlistError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", wishlist)
}

func (h *WishlistHandlers) contains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wishlists == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_unavailable", "wishlist service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	contains, err := h.wishlists.Contains(ctx, identity.UID, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeWishlistError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", map[string]bool{"contains": contains})
}

type toggleWishlistRequest struct {
	Product domain.Product `json:"product"`
}

func (h *WishlistHandlers) toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wishlists == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_unavailable", "wishlist service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req toggleWishlistRequest
	if err := decodeJSONBody(r, maxWishlistBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	result, err := h.wishlists.Toggle(ctx, services.ToggleWishlistCommand{
		UserID:  identity.UID,
		Product: req.Product,
	})
	if err != nil {
		h.writeWishlistError(w, r, err)
		return
	}

	message := "已从心愿单移除"
	if result.Added {
		message = "已加入心愿单"
	}
	httpx.WriteSuccess(w, http.StatusOK, message, result)
}

func (h *WishlistHandlers) clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wishlists == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_unavailable", "wishlist service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.wishlists.Clear(ctx, identity.UID); err != nil {
		h.writeWishlistError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "心愿单已清空", nil)
}

func (h *WishlistHandlers) writeWishlistError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrWishlistInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid wishlist request", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_unavailable", "wishlist service failed", http.StatusServiceUnavailable))
	}
}
