package handlers

import (
	"context"
	"net/http"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/auth"
	"github.com/ronghua-heritage/storefront/internal/services"
)

type stubCartService struct {
	getFunc       func(ctx context.Context, userID string) (domain.Cart, error)
	addFunc       func(ctx context.Context, cmd services.AddCartItemCommand) (domain.Cart, error)
	setFunc       func(ctx context.Context, cmd services.SetCartQuantityCommand) (domain.Cart, error)
	incrementFunc func(ctx context.Context, cmd services.IncrementCartQuantityCommand) (domain.Cart, error)
	removeFunc    func(ctx context.Context, userID, productID string) (domain.Cart, error)
	clearFunc     func(ctx context.Context, userID string) error
	summaryFunc   func(ctx context.Context, userID string) (services.CartSummary, error)
}

func (s *stubCartService) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	return s.getFunc(ctx, userID)
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddCartItemCommand) (domain.Cart, error) {
	return s.addFunc(ctx, cmd)
}

func (s *stubCartService) SetQuantity(ctx context.Context, cmd services.SetCartQuantityCommand) (domain.Cart, error) {
	return s.setFunc(ctx, cmd)
}

func (s *stubCartService) IncrementQuantity(ctx context.Context, cmd services.IncrementCartQuantityCommand) (domain.Cart, error) {
	return s.incrementFunc(ctx, cmd)
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	return s.removeFunc(ctx, userID, productID)
}

func (s *stubCartService) ClearCart(ctx context.Context, userID string) error {
	return s.clearFunc(ctx, userID)
}

func (s *stubCartService) Summary(ctx context.Context, userID string) (services.CartSummary, error) {
	return s.summaryFunc(ctx, userID)
}

type stubCatalogService struct {
	queryFunc      func(ctx context.Context, query services.CatalogQuery) (services.CatalogPage, error)
	productFunc    func(ctx context.Context, productID string) (domain.Product, error)
	categoriesFunc func(ctx context.Context) ([]string, error)
}

func (s *stubCatalogService) Query(ctx context.Context, query services.CatalogQuery) (services.CatalogPage, error) {
	return s.queryFunc(ctx, query)
}

func (s *stubCatalogService) Product(ctx context.Context, productID string) (domain.Product, error) {
	return s.productFunc(ctx, productID)
}

func (s *stubCatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.categoriesFunc(ctx)
}

type stubCommunityService struct {
	listFunc   func(ctx context.Context, query services.CommunityFeedQuery) ([]domain.Post, error)
	createFunc func(ctx context.Context, cmd services.CreatePostCommand) (domain.Post, error)
	likeFunc   func(ctx context.Context, cmd services.ToggleLikeCommand) (domain.Post, error)
	viewFunc   func(ctx context.Context, postID string) (domain.Post, error)
}

func (s *stubCommunityService) ListPosts(ctx context.Context, query services.CommunityFeedQuery) ([]domain.Post, error) {
	return s.listFunc(ctx, query)
}

func (s *stubCommunityService) CreatePost(ctx context.Context, cmd services.CreatePostCommand) (domain.Post, error) {
	return s.createFunc(ctx, cmd)
}

func (s *stubCommunityService) ToggleLike(ctx context.Context, cmd services.ToggleLikeCommand) (domain.Post, error) {
	return s.likeFunc(ctx, cmd)
}

func (s *stubCommunityService) RecordView(ctx context.Context, postID string) (domain.Post, error) {
	return s.viewFunc(ctx, postID)
}

// injectIdentity is the test stand-in for the auth middleware.
func injectIdentity(uid, username string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithIdentity(r.Context(), &auth.Identity{UID: uid, Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
