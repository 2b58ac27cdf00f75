package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
)

func memoryWishlistRepository() *stubWishlistRepository {
	var saved *domain.Wishlist
	repo := &stubWishlistRepository{}
	repo.getFunc = func(ctx context.Context, userID string) (domain.Wishlist, error) {
		if saved == nil {
			return domain.Wishlist{}, stubNotFound{}
		}
		return *saved, nil
	}
	repo.saveFunc = func(ctx context.Context, wishlist domain.Wishlist) error {
		saved = &wishlist
		return nil
	}
	repo.deleteFunc = func(ctx context.Context, userID string) error {
		saved = nil
		return nil
	}
	return repo
}

func newTestWishlistService(t *testing.T, repo *stubWishlistRepository) WishlistService {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewWishlistService(WishlistServiceDeps{
		Repository: repo,
		Clock:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing wishlist service: %v", err)
	}
	return service
}

func TestWishlistServiceToggleTwiceRestoresOriginalState(t *testing.T) {
	service := newTestWishlistService(t, memoryWishlistRepository())
	ctx := context.Background()

	result, err := service.Toggle(ctx, ToggleWishlistCommand{UserID: "u1", Product: productA()})
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !result.Added {
		t.Fatalf("expected first toggle to add")
	}

	contains, err := service.Contains(ctx, "u1", "prod-a")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if !contains {
		t.Fatalf("expected product to be wishlisted")
	}

	result, err = service.Toggle(ctx, ToggleWishlistCommand{UserID: "u1", Product: productA()})
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if result.Added {
		t.Fatalf("expected second toggle to remove")
	}

	contains, err = service.Contains(ctx, "u1", "prod-a")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if contains {
		t.Fatalf("expected product removed after second toggle")
	}
}

func TestWishlistServiceListKeepsAdditionOrder(t *testing.T) {
	service := newTestWishlistService(t, memoryWishlistRepository())
	ctx := context.Background()

	for _, p := range []domain.Product{productA(), productB()} {
		if _, err := service.Toggle(ctx, ToggleWishlistCommand{UserID: "u1", Product: p}); err != nil {
			t.Fatalf("toggle %s: %v", p.ID, err)
		}
	}

	wishlist, err := service.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(wishlist.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(wishlist.Entries))
	}
	if wishlist.Entries[0].Product.ID != "prod-a" || wishlist.Entries[1].Product.ID != "prod-b" {
		t.Fatalf("unexpected order: %+v", wishlist.Entries)
	}
}

func TestWishlistServiceContainsOnEmptyWishlist(t *testing.T) {
	service := newTestWishlistService(t, memoryWishlistRepository())
	contains, err := service.Contains(context.Background(), "u1", "prod-a")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if contains {
		t.Fatalf("expected empty wishlist to contain nothing")
	}
}

func TestWishlistServiceClear(t *testing.T) {
	service := newTestWishlistService(t, memoryWishlistRepository())
	ctx := context.Background()

	if _, err := service.Toggle(ctx, ToggleWishlistCommand{UserID: "u1", Product: productA()}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := service.Clear(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	wishlist, err := service.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(wishlist.Entries) != 0 {
		t.Fatalf("expected empty wishlist after clear")
	}
}

func TestWishlistServiceRejectsInvalidInput(t *testing.T) {
	service := newTestWishlistService(t, memoryWishlistRepository())
	ctx := context.Background()

	if _, err := service.Toggle(ctx, ToggleWishlistCommand{UserID: " ", Product: productA()}); !errors.Is(err, ErrWishlistInvalidInput) {
		t.Fatalf("expected ErrWishlistInvalidInput, got %v", err)
	}
	if _, err := service.Contains(ctx, "u1", ""); !errors.Is(err, ErrWishlistInvalidInput) {
		t.Fatalf("expected ErrWishlistInvalidInput, got %v", err)
	}
}
