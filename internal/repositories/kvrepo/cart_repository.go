// Package kvrepo implements the repository interfaces over a kv.Store.
// Each repository owns one document per user (or one shared document for the
// community feed) and rewrites it whole on save, which matches the
// last-write-wins contract of the store.
package kvrepo

import (
	"context"
	"errors"
	"strings"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/kv"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

// CartRepository persists one cart document per user.
type CartRepository struct {
	store kv.Store
}

// NewCartRepository constructs a kv-backed cart repository.
func NewCartRepository(store kv.Store) (*CartRepository, error) {
	if store == nil {
		return nil, errors.New("cart repository requires kv store")
	}
	return &CartRepository{store: store}, nil
}

// GetCart loads the user's cart. A missing document is a not-found error so
// the service layer can distinguish "never saved" from an empty cart.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	uid, err := requireUserID(userID, "cart repository")
	if err != nil {
		return domain.Cart{}, err
	}

	var cart domain.Cart
	found, err := r.store.Get(ctx, kv.UserKey(uid, kv.KeyCart), &cart)
	if err != nil {
		return domain.Cart{}, wrapError("cart.get", err)
	}
	if !found {
		return domain.Cart{}, notFoundError("cart.get")
	}
	cart.UserID = uid
	return cart, nil
}

// SaveCart rewrites the user's cart document.
func (r *CartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	uid, err := requireUserID(cart.UserID, "cart repository")
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, kv.UserKey(uid, kv.KeyCart), cart); err != nil {
		return wrapError("cart.save", err)
	}
	return nil
}

// DeleteCart removes the cart document. Deleting an absent cart is a no-op.
func (r *CartRepository) DeleteCart(ctx context.Context, userID string) error {
	uid, err := requireUserID(userID, "cart repository")
	if err != nil {
		return err
	}
	if err := r.store.Remove(ctx, kv.UserKey(uid, kv.KeyCart)); err != nil {
		return wrapError("cart.delete", err)
	}
	return nil
}

func requireUserID(userID, who string) (string, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return "", errors.New(who + ": user id is required")
	}
	return uid, nil
}

// Ensure interface compliance.
var _ repositories.CartRepository = (*CartRepository)(nil)
