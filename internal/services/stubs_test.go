package services

import (
	"context"
	"errors"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
)

type stubCartRepository struct {
	getFunc    func(ctx context.Context, userID string) (domain.Cart, error)
	saveFunc   func(ctx context.Context, cart domain.Cart) error
	deleteFunc func(ctx context.Context, userID string) error
}

func (s *stubCartRepository) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	if s.getFunc == nil {
		return domain.Cart{}, stubNotFound{}
	}
	return s.getFunc(ctx, userID)
}

func (s *stubCartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if s.saveFunc == nil {
		return nil
	}
	return s.saveFunc(ctx, cart)
}

func (s *stubCartRepository) DeleteCart(ctx context.Context, userID string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, userID)
}

type stubWishlistRepository struct {
	getFunc    func(ctx context.Context, userID string) (domain.Wishlist, error)
	saveFunc   func(ctx context.Context, wishlist domain.Wishlist) error
	deleteFunc func(ctx context.Context, userID string) error
}

func (s *stubWishlistRepository) GetWishlist(ctx context.Context, userID string) (domain.Wishlist, error) {
	if s.getFunc == nil {
		return domain.Wishlist{}, stubNotFound{}
	}
	return s.getFunc(ctx, userID)
}

func (s *stubWishlistRepository) SaveWishlist(ctx context.Context, wishlist domain.Wishlist) error {
	if s.saveFunc == nil {
		return nil
	}
	return s.saveFunc(ctx, wishlist)
}

func (s *stubWishlistRepository) DeleteWishlist(ctx context.Context, userID string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, userID)
}

type stubChatRepository struct {
	historyFunc func(ctx context.Context, userID string) ([]domain.ChatMessage, error)
	saveFunc    func(ctx context.Context, userID string, messages []domain.ChatMessage) error
	clearFunc   func(ctx context.Context, userID string) error
}

func (s *stubChatRepository) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	if s.historyFunc == nil {
		return []domain.ChatMessage{}, nil
	}
	return s.historyFunc(ctx, userID)
}

func (s *stubChatRepository) SaveHistory(ctx context.Context, userID string, messages []domain.ChatMessage) error {
	if s.saveFunc == nil {
		return nil
	}
	return s.saveFunc(ctx, userID, messages)
}

func (s *stubChatRepository) ClearHistory(ctx context.Context, userID string) error {
	if s.clearFunc == nil {
		return nil
	}
	return s.clearFunc(ctx, userID)
}

type stubPostRepository struct {
	listFunc func(ctx context.Context) ([]domain.Post, error)
	saveFunc func(ctx context.Context, posts []domain.Post) error
}

func (s *stubPostRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	if s.listFunc == nil {
		return []domain.Post{}, nil
	}
	return s.listFunc(ctx)
}

func (s *stubPostRepository) SavePosts(ctx context.Context, posts []domain.Post) error {
	if s.saveFunc == nil {
		return nil
	}
	return s.saveFunc(ctx, posts)
}

type stubCatalogRepository struct {
	listFunc func(ctx context.Context) ([]domain.Product, error)
	saveFunc func(ctx context.Context, products []domain.Product) error
}

func (s *stubCatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if s.listFunc == nil {
		return []domain.Product{}, nil
	}
	return s.listFunc(ctx)
}

func (s *stubCatalogRepository) SaveProducts(ctx context.Context, products []domain.Product) error {
	if s.saveFunc == nil {
		return nil
	}
	return s.saveFunc(ctx, products)
}

// stubNotFound satisfies repositories.RepositoryError for missing records.
type stubNotFound struct{}

func (stubNotFound) Error() string       { return "not found" }
func (stubNotFound) IsNotFound() bool    { return true }
func (stubNotFound) IsConflict() bool    { return false }
func (stubNotFound) IsUnavailable() bool { return false }

// stubUnavailable satisfies repositories.RepositoryError for outages.
type stubUnavailable struct{}

func (stubUnavailable) Error() string       { return "backend down" }
func (stubUnavailable) IsNotFound() bool    { return false }
func (stubUnavailable) IsConflict() bool    { return false }
func (stubUnavailable) IsUnavailable() bool { return true }

var errStubBoom = errors.New("boom")
