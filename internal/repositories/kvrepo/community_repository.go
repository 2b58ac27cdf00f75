package kvrepo

import (
	"context"
	"errors"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/kv"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

const communityPostsKey = "community/posts"

// PostRepository persists the community feed as a single shared document.
type PostRepository struct {
	store kv.Store
}

// NewPostRepository constructs a kv-backed community post repository.
func NewPostRepository(store kv.Store) (*PostRepository, error) {
	if store == nil {
		return nil, errors.New("post repository requires kv store")
	}
	return &PostRepository{store: store}, nil
}

// ListPosts returns every post in append order. A missing document is an
// empty feed.
func (r *PostRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	found, err := r.store.Get(ctx, communityPostsKey, &posts)
	if err != nil {
		return nil, wrapError("posts.list", err)
	}
	if !found {
		return []domain.Post{}, nil
	}
	return posts, nil
}

// SavePosts rewrites the shared feed document.
func (r *PostRepository) SavePosts(ctx context.Context, posts []domain.Post) error {
	if posts == nil {
		posts = []domain.Post{}
	}
	if err := r.store.Set(ctx, communityPostsKey, posts); err != nil {
		return wrapError("posts.save", err)
	}
	return nil
}

// Ensure interface compliance.
var _ repositories.PostRepository = (*PostRepository)(nil)
