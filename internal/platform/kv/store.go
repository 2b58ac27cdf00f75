// Package kv provides the durable key-value storage the storefront keeps its
// per-user session state in: carts, wishlists, chat transcripts, and auth
// sessions. Values are JSON documents; keys are slash-separated paths such as
// users/<uid>/cart.
package kv

import (
	"context"
	"errors"
	"strings"
)

// Fixed leaf key names shared by every store implementation.
const (
	KeyCart        = "cart"
	KeyWishlist    = "wishlist"
	KeyChatHistory = "chat_history"
	KeySession     = "session"
)

// ErrInvalidKey indicates the caller supplied an empty or malformed key.
var ErrInvalidKey = errors.New("kv: invalid key")

// Store persists JSON-serializable values under string keys. Implementations
// must make Set atomic from the caller's perspective (read-your-writes within
// a process); conflicting writers follow last-write-wins.
type Store interface {
	// Get decodes the value stored under key into out. A missing key
	// reports found=false with a nil error.
	Get(ctx context.Context, key string, out any) (found bool, err error)
	// Set serializes value and writes it under key.
	Set(ctx context.Context, key string, value any) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Clear deletes every key owned by this store.
	Clear(ctx context.Context) error
}

// UserKey namespaces a fixed leaf key under a user identifier.
func UserKey(userID, leaf string) string {
	return "users/" + strings.TrimSpace(userID) + "/" + leaf
}

// ValidateKey rejects keys that are empty or escape the store's namespace.
func ValidateKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}
