package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product is the catalog entry as displayed to shoppers. Prices are carried in
// minor currency units (fen) so ledger arithmetic stays exact.
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PriceMinor  int64  `json:"price_minor"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Popularity  int    `json:"popularity"`
}

// Snapshot returns a detached copy of the product captured at add time.
// Later catalog edits never propagate into existing cart or wishlist entries.
func (p Product) Snapshot() Product {
	return p
}

// CartEntry pairs a product snapshot with the selected quantity.
// A persisted entry always has Quantity >= 1.
type CartEntry struct {
	Product   Product    `json:"product"`
	Quantity  int        `json:"quantity"`
	AddedAt   time.Time  `json:"added_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Cart is the per-user ledger of items selected for purchase. Entries keep
// insertion order; new products are appended at the tail.
type Cart struct {
	UserID    string      `json:"user_id"`
	Entries   []CartEntry `json:"entries"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TotalMinor sums price*quantity over all entries in minor units.
func (c Cart) TotalMinor() int64 {
	var total int64
	for _, entry := range c.Entries {
		if entry.Quantity <= 0 || entry.Product.PriceMinor < 0 {
			continue
		}
		total += entry.Product.PriceMinor * int64(entry.Quantity)
	}
	return total
}

// ItemCount sums quantities across entries. Zero maps to a hidden badge in
// the rendering layer.
func (c Cart) ItemCount() int {
	count := 0
	for _, entry := range c.Entries {
		if entry.Quantity > 0 {
			count += entry.Quantity
		}
	}
	return count
}

// IndexOf returns the position of the entry for productID, or -1.
func (c Cart) IndexOf(productID string) int {
	target := strings.TrimSpace(productID)
	if target == "" {
		return -1
	}
	for i, entry := range c.Entries {
		if strings.EqualFold(strings.TrimSpace(entry.Product.ID), target) {
			return i
		}
	}
	return -1
}

// WishlistEntry records a favorited product snapshot. Membership is keyed by
// product id; there is no quantity.
type WishlistEntry struct {
	Product Product   `json:"product"`
	AddedAt time.Time `json:"added_at"`
}

// Wishlist is the ordered set of favorited products for one user.
type Wishlist struct {
	UserID    string          `json:"user_id"`
	Entries   []WishlistEntry `json:"entries"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Contains reports membership by product id.
func (w Wishlist) Contains(productID string) bool {
	target := strings.TrimSpace(productID)
	if target == "" {
		return false
	}
	for _, entry := range w.Entries {
		if strings.EqualFold(strings.TrimSpace(entry.Product.ID), target) {
			return true
		}
	}
	return false
}

// MessageType distinguishes the two sides of the assistant transcript.
type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeBot  MessageType = "bot"
)

// ChatMessage is one transcript line of the heritage assistant.
type ChatMessage struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Post is a community feed entry.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Topic      string    `json:"topic"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Images     []string  `json:"images,omitempty"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	Views      int       `json:"views"`
	LikedBy    []string  `json:"liked_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Hotness ranks posts for the "hot" feed ordering.
func (p Post) Hotness() int {
	return p.Likes*2 + p.Comments*3 + p.Views
}

// LikedByUser reports whether uid already liked the post.
func (p Post) LikedByUser(uid string) bool {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return false
	}
	for _, liker := range p.LikedBy {
		if liker == uid {
			return true
		}
	}
	return false
}

// User is the locally registered account record.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session binds a signed token to the user it was issued for.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.After(s.ExpiresAt)
}

// FormatMinor renders a minor-unit amount as a display string with two
// decimal places, e.g. 12800 -> "128.00".
func FormatMinor(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
