// Package services contains the storefront's application logic. Services own
// validation and state transitions; repositories only persist what services
// hand them. Every service reports failures through its own sentinel errors
// so handlers can map them to HTTP statuses without inspecting internals.
package services

import (
	"context"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
)

// CartService maintains the per-user cart ledger.
type CartService interface {
	// GetCart loads the user's cart, returning an empty ledger when the
	// user has never added anything.
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	// AddItem increments the quantity of an existing entry by one, or
	// appends a new entry with quantity one.
	AddItem(ctx context.Context, cmd AddCartItemCommand) (domain.Cart, error)
	// SetQuantity replaces an entry's quantity. A quantity of zero or
	// less removes the entry.
	SetQuantity(ctx context.Context, cmd SetCartQuantityCommand) (domain.Cart, error)
	// IncrementQuantity adjusts an entry's quantity by a signed delta,
	// removing the entry when the result drops to zero or below.
	IncrementQuantity(ctx context.Context, cmd IncrementCartQuantityCommand) (domain.Cart, error)
	// RemoveItem deletes the entry for the given product id.
	RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error)
	// ClearCart empties the ledger.
	ClearCart(ctx context.Context, userID string) error
	// Summary reports the monetary total and item count of the cart.
	Summary(ctx context.Context, userID string) (CartSummary, error)
}

// AddCartItemCommand carries the product snapshot taken at add time.
type AddCartItemCommand struct {
	UserID  string
	Product domain.Product
}

// SetCartQuantityCommand replaces a quantity outright.
type SetCartQuantityCommand struct {
	UserID    string
	ProductID string
	Quantity  int
}

// IncrementCartQuantityCommand adjusts a quantity by a signed delta.
type IncrementCartQuantityCommand struct {
	UserID    string
	ProductID string
	Delta     int
}

// CartSummary is the derived cart state shown in the header badge and the
// checkout panel.
type CartSummary struct {
	TotalMinor int64 `json:"total_minor"`
	ItemCount  int   `json:"item_count"`
}

// WishlistService maintains the per-user wishlist membership set.
type WishlistService interface {
	// Toggle flips membership for the product and reports the new state.
	Toggle(ctx context.Context, cmd ToggleWishlistCommand) (ToggleWishlistResult, error)
	// Contains reports whether the product is currently wishlisted.
	Contains(ctx context.Context, userID, productID string) (bool, error)
	// List returns the wishlist entries in the order they were added.
	List(ctx context.Context, userID string) (domain.Wishlist, error)
	// Clear empties the wishlist.
	Clear(ctx context.Context, userID string) error
}

// ToggleWishlistCommand carries the product snapshot for a toggle-on.
type ToggleWishlistCommand struct {
	UserID  string
	Product domain.Product
}

// ToggleWishlistResult reports the membership state after the toggle.
type ToggleWishlistResult struct {
	Added    bool            `json:"added"`
	Wishlist domain.Wishlist `json:"wishlist"`
}

// CatalogService answers catalog queries by filter, search, and sort.
type CatalogService interface {
	// Query applies the filter controls and returns the visible products.
	Query(ctx context.Context, query CatalogQuery) (CatalogPage, error)
	// Product returns a single product by id.
	Product(ctx context.Context, productID string) (domain.Product, error)
	// Categories lists the distinct category keys present in the catalog.
	Categories(ctx context.Context) ([]string, error)
}

// CatalogQuery mirrors the shop page filter controls.
type CatalogQuery struct {
	Category string
	Search   string
	Sort     string
}

// CatalogPage is the result of a catalog query.
type CatalogPage struct {
	Items []domain.Product `json:"items"`
	Total int              `json:"total"`
}

// ChatService runs the heritage assistant conversation.
type ChatService interface {
	// Send records the user's message, produces the assistant reply, and
	// appends both to the transcript. It honours context cancellation
	// while the reply is pending.
	Send(ctx context.Context, cmd SendChatMessageCommand) (ChatExchange, error)
	// History returns the transcript in append order.
	History(ctx context.Context, userID string) ([]domain.ChatMessage, error)
	// ClearHistory discards the transcript.
	ClearHistory(ctx context.Context, userID string) error
	// Export renders the transcript as a plain-text document.
	Export(ctx context.Context, userID string) (string, error)
}

// SendChatMessageCommand carries one user utterance.
type SendChatMessageCommand struct {
	UserID  string
	Content string
}

// ChatExchange is the pair of messages produced by one Send call.
type ChatExchange struct {
	UserMessage domain.ChatMessage `json:"user_message"`
	Reply       domain.ChatMessage `json:"reply"`
}

// CommunityService maintains the shared post feed.
type CommunityService interface {
	// ListPosts returns the feed filtered by topic and sorted by the
	// requested order.
	ListPosts(ctx context.Context, query CommunityFeedQuery) ([]domain.Post, error)
	// CreatePost appends a new post to the feed.
	CreatePost(ctx context.Context, cmd CreatePostCommand) (domain.Post, error)
	// ToggleLike flips the user's like on a post and reports the new count.
	ToggleLike(ctx context.Context, cmd ToggleLikeCommand) (domain.Post, error)
	// RecordView increments a post's view counter.
	RecordView(ctx context.Context, postID string) (domain.Post, error)
}

// CommunityOrder selects the feed sort.
type CommunityOrder string

// Feed orderings.
const (
	CommunityOrderLatest   CommunityOrder = "latest"
	CommunityOrderHottest  CommunityOrder = "hottest"
	CommunityOrderComments CommunityOrder = "comments"
)

// CommunityFeedQuery mirrors the feed page controls. An empty or "all" topic
// matches every post.
type CommunityFeedQuery struct {
	Order CommunityOrder
	Topic string
}

// CreatePostCommand carries a new community post.
type CreatePostCommand struct {
	AuthorID   string
	AuthorName string
	Topic      string
	Title      string
	Content    string
	Images     []string
}

// ToggleLikeCommand flips one user's like on one post.
type ToggleLikeCommand struct {
	UserID string
	PostID string
}
