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
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartNotFound indicates the referenced cart entry does not exist.
var ErrCartNotFound = errors.New("cart service: not found")

// ErrCartConflict indicates the cart could not be updated due to a rejected write.
var ErrCartConflict = errors.New("cart service: conflict")

// ErrCartUnavailable indicates the backing store cannot fulfil the request.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// CartServiceDeps wires the repository and ambient dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo   repositories.CartRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:   deps.Repository,
		now:    func() time.Time { return deps.Clock().UTC() },
		logger: logger,
	}, nil
}

// GetCart loads the user's cart. A user who has never saved a cart gets an
// empty ledger rather than an error; nothing is persisted until a write.
func (s *cartService) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	if s == nil || s.repo == nil {
		return domain.Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.loadCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// AddItem appends a quantity-one entry for a new product or increments the
// existing entry by one.
func (s *cartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (domain.Cart, error) {
	if s == nil || s.repo == nil {
		return domain.Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}
	product, err := normaliseProduct(cmd.Product)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.loadCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}

	now := s.now()
	if idx := cart.IndexOf(product.ID); idx >= 0 {
		cart.Entries[idx].Quantity++
		cart.Entries[idx].UpdatedAt = &now
	} else {
		cart.Entries = append(cart.Entries, domain.CartEntry{
			Product:  product,
			Quantity: 1,
			AddedAt:  now,
		})
	}
	cart.UpdatedAt = now

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return domain.Cart{}, s.translateRepoError(err)
	}
	s.logger(ctx, "cart.item_added", map[string]any{
		"user_id":    uid,
		"product_id": product.ID,
		"item_count": cart.ItemCount(),
	})
	return cart, nil
}

// SetQuantity replaces an entry's quantity. Zero or negative removes the entry.
func (s *cartService) SetQuantity(ctx context.Context, cmd SetCartQuantityCommand) (domain.Cart, error) {
	if s == nil || s.repo == nil {
		return domain.Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	pid := strings.TrimSpace(cmd.ProductID)
	if uid == "" || pid == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.loadCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}

	idx := cart.IndexOf(pid)
	if idx < 0 {
		return domain.Cart{}, ErrCartNotFound
	}

	now := s.now()
	if cmd.Quantity <= 0 {
		cart.Entries = append(cart.Entries[:idx], cart.Entries[idx+1:]...)
	} else {
		cart.Entries[idx].Quantity = cmd.Quantity
		cart.Entries[idx].UpdatedAt = &now
	}
	cart.UpdatedAt = now

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return domain.Cart{}, s.translateRepoError(err)
	}
	return cart, nil
}

// IncrementQuantity adjusts an entry's quantity by a signed delta. A result
// of zero or below removes the entry, mirroring SetQuantity.
func (s *cartService) IncrementQuantity(ctx context.Context, cmd IncrementCartQuantityCommand) (domain.Cart, error) {
	if s == nil || s.repo == nil {
		return domain.Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	pid := strings.TrimSpace(cmd.ProductID)
	if uid == "" || pid == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.loadCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}

	idx := cart.IndexOf(pid)
	if idx < 0 {
		return domain.Cart{}, ErrCartNotFound
	}

	return s.SetQuantity(ctx, SetCartQuantityCommand{
		UserID:    uid,
		ProductID: pid,
		Quantity:  cart.Entries[idx].Quantity + cmd.Delta,
	})
}

// RemoveItem deletes the entry for the product. Removing an absent product is
// a no-op so retries stay safe.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	if s == nil || s.repo == nil {
		return domain.Cart{}, ErrCartUnavailable
	}
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	cart, err := s.loadCart(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}

	idx := cart.IndexOf(pid)
	if idx < 0 {
		return cart, nil
	}
	cart.Entries = append(cart.Entries[:idx], cart.Entries[idx+1:]...)
	cart.UpdatedAt = s.now()

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return domain.Cart{}, s.translateRepoError(err)
	}
	s.logger(ctx, "cart.item_removed", map[string]any{
		"user_id":    uid,
		"product_id": pid,
	})
	return cart, nil
}

// ClearCart empties the ledger by deleting the stored document.
func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	if s == nil || s.repo == nil {
		return ErrCartUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return ErrCartInvalidInput
	}
	if err := s.repo.DeleteCart(ctx, uid); err != nil {
		return s.translateRepoError(err)
	}
	s.logger(ctx, "cart.cleared", map[string]any{"user_id": uid})
	return nil
}

// Summary derives the badge numbers from the canonical ledger, never from any
// rendered view of it.
func (s *cartService) Summary(ctx context.Context, userID string) (CartSummary, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return CartSummary{}, err
	}
	return CartSummary{
		TotalMinor: cart.TotalMinor(),
		ItemCount:  cart.ItemCount(),
	}, nil
}

func (s *cartService) loadCart(ctx context.Context, uid string) (domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, uid)
	if err != nil {
		if isRepoNotFound(err) {
			now := s.now()
			return domain.Cart{
				UserID:    uid,
				Entries:   []domain.CartEntry{},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return domain.Cart{}, s.translateRepoError(err)
	}
	return normaliseCart(cart, uid), nil
}

// normaliseCart repairs stored state so the quantity invariants hold even if
// an older document predates them: one entry per product, no entry at or
// below zero.
func normaliseCart(cart domain.Cart, uid string) domain.Cart {
	cart.UserID = uid
	entries := make([]domain.CartEntry, 0, len(cart.Entries))
	seen := make(map[string]struct{}, len(cart.Entries))
	for _, entry := range cart.Entries {
		id := strings.ToLower(strings.TrimSpace(entry.Product.ID))
		if id == "" || entry.Quantity <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		entries = append(entries, entry)
	}
	cart.Entries = entries
	return cart
}

func normaliseProduct(product domain.Product) (domain.Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	product.Title = strings.TrimSpace(product.Title)
	if product.ID == "" || product.Title == "" {
		return domain.Product{}, ErrCartInvalidInput
	}
	if product.PriceMinor < 0 {
		return domain.Product{}, ErrCartInvalidInput
	}
	return product, nil
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrCartNotFound
		case repoErr.IsConflict():
			return ErrCartConflict
		case repoErr.IsUnavailable():
			return ErrCartUnavailable
		}
	}
	return ErrCartUnavailable
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
