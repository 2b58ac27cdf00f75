package kvrepo

import (
	"context"
	"errors"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/kv"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

// WishlistRepository persists one wishlist document per user.
type WishlistRepository struct {
	store kv.Store
}

// NewWishlistRepository constructs a kv-backed wishlist repository.
func NewWishlistRepository(store kv.Store) (*WishlistRepository, error) {
	if store == nil {
		return nil, errors.New("wishlist repository requires kv store")
	}
	return &WishlistRepository{store: store}, nil
}

// GetWishlist loads the user's wishlist, reporting not-found when the user
// has never saved one.
func (r *WishlistRepository) GetWishlist(ctx context.Context, userID string) (domain.Wishlist, error) {
	uid, err := requireUserID(userID, "wishlist repository")
	if err != nil {
		return domain.Wishlist{}, err
	}

	var wishlist domain.Wishlist
	found, err := r.store.Get(ctx, kv.UserKey(uid, kv.KeyWishlist), &wishlist)
	if err != nil {
		return domain.Wishlist{}, wrapError("wishlist.get", err)
	}
	if !found {
		return domain.Wishlist{}, notFoundError("wishlist.get")
	}
	wishlist.UserID = uid
	return wishlist, nil
}

// SaveWishlist rewrites the user's wishlist document.
func (r *WishlistRepository) SaveWishlist(ctx context.Context, wishlist domain.Wishlist) error {
	uid, err := requireUserID(wishlist.UserID, "wishlist repository")
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, kv.UserKey(uid, kv.KeyWishlist), wishlist); err != nil {
		return wrapError("wishlist.save", err)
	}
	return nil
}

// DeleteWishlist removes the wishlist document.
func (r *WishlistRepository) DeleteWishlist(ctx context.Context, userID string) error {
	uid, err := requireUserID(userID, "wishlist repository")
	if err != nil {
		return err
	}
	if err := r.store.Remove(ctx, kv.UserKey(uid, kv.KeyWishlist)); err != nil {
		return wrapError("wishlist.delete", err)
	}
	return nil
}

// Ensure interface compliance.
var _ repositories.WishlistRepository = (*WishlistRepository)(nil)
