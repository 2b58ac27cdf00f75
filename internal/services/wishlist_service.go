package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

var (
	errWishlistRepositoryRequired = errors.New("wishlist service: repository is required")
	errWishlistClockRequired      = errors.New("wishlist service: clock is required")
)

// ErrWishlistInvalidInput indicates the caller supplied invalid input.
var ErrWishlistInvalidInput = errors.New("wishlist service: invalid input")

// ErrWishlistUnavailable indicates the backing store cannot fulfil the request.
var ErrWishlistUnavailable = errors.New("wishlist service: unavailable")

// WishlistServiceDeps wires the repository and ambient dependencies.
type WishlistServiceDeps struct {
	Repository repositories.WishlistRepository
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type wishlistService struct {
	repo   repositories.WishlistRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewWishlistService constructs a WishlistService enforcing dependency validation.
func NewWishlistService(deps WishlistServiceDeps) (WishlistService, error) {
	if deps.Repository == nil {
		return nil, errWishlistRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errWishlistClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &wishlistService{
		repo:   deps.Repository,
		now:    func() time.Time { return deps.Clock().UTC() },
		logger: logger,
	}, nil
}

// Toggle flips membership: absent products are appended with their snapshot,
// present products are removed. Toggling twice restores the original state.
func (s *wishlistService) Toggle(ctx context.Context, cmd ToggleWishlistCommand) (ToggleWishlistResult, error) {
	if s == nil || s.repo == nil {
		return ToggleWishlistResult{}, ErrWishlistUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return ToggleWishlistResult{}, ErrWishlistInvalidInput
	}
	product := cmd.Product
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		return ToggleWishlistResult{}, ErrWishlistInvalidInput
	}

	wishlist, err := s.loadWishlist(ctx, uid)
	if err != nil {
		return ToggleWishlistResult{}, err
	}

	now := s.now()
	added := false
	if idx := indexOfWishlistEntry(wishlist.Entries, product.ID); idx >= 0 {
		wishlist.Entries = append(wishlist.Entries[:idx], wishlist.Entries[idx+1:]...)
	} else {
		wishlist.Entries = append(wishlist.Entries, domain.WishlistEntry{
			Product: product,
			AddedAt: now,
		})
		added = true
	}
	wishlist.UpdatedAt = now

	if err := s.repo.SaveWishlist(ctx, wishlist); err != nil {
		return ToggleWishlistResult{}, s.translateRepoError(err)
	}
	s.logger(ctx, "wishlist.toggled", map[string]any{
		"user_id":    uid,
		"product_id": product.ID,
		"added":      added,
	})
	return ToggleWishlistResult{Added: added, Wishlist: wishlist}, nil
}

// Contains reports membership without mutating state.
func (s *wishlistService) Contains(ctx context.Context, userID, productID string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, ErrWishlistUnavailable
	}
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" {
		return false, ErrWishlistInvalidInput
	}

	wishlist, err := s.loadWishlist(ctx, uid)
	if err != nil {
		return false, err
	}
	return wishlist.Contains(pid), nil
}

// List returns the wishlist in the order products were added.
func (s *wishlistService) List(ctx context.Context, userID string) (domain.Wishlist, error) {
	if s == nil || s.repo == nil {
		return domain.Wishlist{}, ErrWishlistUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Wishlist{}, ErrWishlistInvalidInput
	}
	return s.loadWishlist(ctx, uid)
}

// Clear empties the wishlist by deleting the stored document.
func (s *wishlistService) Clear(ctx context.Context, userID string) error {
	if s == nil || s.repo == nil {
		return ErrWishlistUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return ErrWishlistInvalidInput
	}
	if err := s.repo.DeleteWishlist(ctx, uid); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

func (s *wishlistService) loadWishlist(ctx context.Context, uid string) (domain.Wishlist, error) {
	wishlist, err := s.repo.GetWishlist(ctx, uid)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Wishlist{
				UserID:    uid,
				Entries:   []domain.WishlistEntry{},
				UpdatedAt: s.now(),
			}, nil
		}
		return domain.Wishlist{}, s.translateRepoError(err)
	}
	wishlist.UserID = uid
	return wishlist, nil
}

func indexOfWishlistEntry(entries []domain.WishlistEntry, productID string) int {
	for i, entry := range entries {
		if strings.EqualFold(strings.TrimSpace(entry.Product.ID), productID) {
			return i
		}
	}
	return -1
}

func (s *wishlistService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrWishlistUnavailable
}
