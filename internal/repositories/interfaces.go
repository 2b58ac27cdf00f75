package repositories

import (
	"context"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
)

// RepositoryError is implemented by storage errors so services can translate
// them into their own sentinel errors without knowing the backing store.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository owns cart ledger persistence. GetCart returns a not-found
// repository error when the user has no saved cart yet.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

// WishlistRepository owns wishlist persistence, independent of the cart.
type WishlistRepository interface {
	GetWishlist(ctx context.Context, userID string) (domain.Wishlist, error)
	SaveWishlist(ctx context.Context, wishlist domain.Wishlist) error
	DeleteWishlist(ctx context.Context, userID string) error
}

// ChatHistoryRepository stores the assistant transcript per user.
type ChatHistoryRepository interface {
	History(ctx context.Context, userID string) ([]domain.ChatMessage, error)
	SaveHistory(ctx context.Context, userID string, messages []domain.ChatMessage) error
	ClearHistory(ctx context.Context, userID string) error
}

// PostRepository stores the shared community feed.
type PostRepository interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	SavePosts(ctx context.Context, posts []domain.Post) error
}

// CatalogRepository exposes the product list backing the catalog index.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SaveProducts(ctx context.Context, products []domain.Product) error
}
