package kvrepo

import (
	"context"
	"errors"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/kv"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

// ChatHistoryRepository persists the assistant transcript per user. Unlike
// carts, a missing transcript is an empty one, not an error.
type ChatHistoryRepository struct {
	store kv.Store
}

// NewChatHistoryRepository constructs a kv-backed chat history repository.
func NewChatHistoryRepository(store kv.Store) (*ChatHistoryRepository, error) {
	if store == nil {
		return nil, errors.New("chat history repository requires kv store")
	}
	return &ChatHistoryRepository{store: store}, nil
}

// History returns the stored transcript in append order.
func (r *ChatHistoryRepository) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	uid, err := requireUserID(userID, "chat history repository")
	if err != nil {
		return nil, err
	}

	var messages []domain.ChatMessage
	found, err := r.store.Get(ctx, kv.UserKey(uid, kv.KeyChatHistory), &messages)
	if err != nil {
		return nil, wrapError("chat.history", err)
	}
	if !found {
		return []domain.ChatMessage{}, nil
	}
	return messages, nil
}

// SaveHistory rewrites the stored transcript.
func (r *ChatHistoryRepository) SaveHistory(ctx context.Context, userID string, messages []domain.ChatMessage) error {
	uid, err := requireUserID(userID, "chat history repository")
	if err != nil {
		return err
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	if err := r.store.Set(ctx, kv.UserKey(uid, kv.KeyChatHistory), messages); err != nil {
		return wrapError("chat.save", err)
	}
	return nil
}

// ClearHistory removes the transcript document.
func (r *ChatHistoryRepository) ClearHistory(ctx context.Context, userID string) error {
	uid, err := requireUserID(userID, "chat history repository")
	if err != nil {
		return err
	}
	if err := r.store.Remove(ctx, kv.UserKey(uid, kv.KeyChatHistory)); err != nil {
		return wrapError("chat.clear", err)
	}
	return nil
}

// Ensure interface compliance.
var _ repositories.ChatHistoryRepository = (*ChatHistoryRepository)(nil)
