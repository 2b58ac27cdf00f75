package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

var (
	errCommunityRepositoryRequired = errors.New("community service: repository is required")
	errCommunityClockRequired      = errors.New("community service: clock is required")
)

// ErrCommunityInvalidInput indicates the caller supplied invalid input.
var ErrCommunityInvalidInput = errors.New("community service: invalid input")

// ErrCommunityNotFound indicates the referenced post does not exist.
var ErrCommunityNotFound = errors.New("community service: not found")

// ErrCommunityUnavailable indicates the feed store cannot fulfil the request.
var ErrCommunityUnavailable = errors.New("community service: unavailable")

const (
	maxPostTitleLength   = 120
	maxPostContentLength = 5000
)

// CommunityServiceDeps wires the feed repository and ambient dependencies.
type CommunityServiceDeps struct {
	Repository  repositories.PostRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type communityService struct {
	repo   repositories.PostRepository
	now    func() time.Time
	newID  func() string
	titles *bluemonday.Policy
	bodies *bluemonday.Policy
	logger func(context.Context, string, map[string]any)
}

// NewCommunityService constructs a CommunityService enforcing dependency validation.
func NewCommunityService(deps CommunityServiceDeps) (CommunityService, error) {
	if deps.Repository == nil {
		return nil, errCommunityRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCommunityClockRequired
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &communityService{
		repo:   deps.Repository,
		now:    func() time.Time { return deps.Clock().UTC() },
		newID:  idGen,
		titles: bluemonday.StrictPolicy(),
		bodies: bluemonday.UGCPolicy(),
		logger: logger,
	}, nil
}

// ListPosts returns the feed. Latest order is reverse append order; hottest
// ranks by the engagement score, with the tie broken by recency. The topic
// filter matches exactly, "all" and the empty string match everything.
func (s *communityService) ListPosts(ctx context.Context, query CommunityFeedQuery) ([]domain.Post, error) {
	if s == nil || s.repo == nil {
		return nil, ErrCommunityUnavailable
	}

	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, s.translateRepoError(err)
	}

	topic := strings.ToLower(strings.TrimSpace(query.Topic))
	if topic != "" && topic != "all" {
		filtered := posts[:0]
		for _, post := range posts {
			if strings.EqualFold(post.Topic, topic) {
				filtered = append(filtered, post)
			}
		}
		posts = filtered
	}

	switch query.Order {
	case CommunityOrderHottest:
		sort.SliceStable(posts, func(i, j int) bool {
			if posts[i].Hotness() != posts[j].Hotness() {
				return posts[i].Hotness() > posts[j].Hotness()
			}
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	case CommunityOrderComments:
		sort.SliceStable(posts, func(i, j int) bool {
			if posts[i].Comments != posts[j].Comments {
				return posts[i].Comments > posts[j].Comments
			}
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	case CommunityOrderLatest, "":
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	default:
		return nil, ErrCommunityInvalidInput
	}
	return posts, nil
}

// CreatePost sanitizes and appends a new post to the shared feed.
func (s *communityService) CreatePost(ctx context.Context, cmd CreatePostCommand) (domain.Post, error) {
	if s == nil || s.repo == nil {
		return domain.Post{}, ErrCommunityUnavailable
	}
	authorID := strings.TrimSpace(cmd.AuthorID)
	title := strings.TrimSpace(s.titles.Sanitize(cmd.Title))
	content := strings.TrimSpace(s.bodies.Sanitize(cmd.Content))
	if authorID == "" || title == "" || content == "" {
		return domain.Post{}, ErrCommunityInvalidInput
	}
	if len([]rune(title)) > maxPostTitleLength || len([]rune(content)) > maxPostContentLength {
		return domain.Post{}, ErrCommunityInvalidInput
	}

	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return domain.Post{}, s.translateRepoError(err)
	}

	post := domain.Post{
		ID:         s.newID(),
		AuthorID:   authorID,
		AuthorName: strings.TrimSpace(s.titles.Sanitize(cmd.AuthorName)),
		Topic:      strings.ToLower(strings.TrimSpace(cmd.Topic)),
		Title:      title,
		Content:    content,
		Images:     cmd.Images,
		CreatedAt:  s.now(),
	}
	posts = append(posts, post)

	if err := s.repo.SavePosts(ctx, posts); err != nil {
		return domain.Post{}, s.translateRepoError(err)
	}
	s.logger(ctx, "community.post_created", map[string]any{
		"post_id":   post.ID,
		"author_id": authorID,
	})
	return post, nil
}

// ToggleLike flips the user's like on the post. A second toggle removes it.
func (s *communityService) ToggleLike(ctx context.Context, cmd ToggleLikeCommand) (domain.Post, error) {
	if s == nil || s.repo == nil {
		return domain.Post{}, ErrCommunityUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	postID := strings.TrimSpace(cmd.PostID)
	if uid == "" || postID == "" {
		return domain.Post{}, ErrCommunityInvalidInput
	}

	return s.updatePost(ctx, postID, func(post *domain.Post) {
		for i, liker := range post.LikedBy {
			if liker == uid {
				post.LikedBy = append(post.LikedBy[:i], post.LikedBy[i+1:]...)
				if post.Likes > 0 {
					post.Likes--
				}
				return
			}
		}
		post.LikedBy = append(post.LikedBy, uid)
		post.Likes++
	})
}

// RecordView increments the post's view counter.
func (s *communityService) RecordView(ctx context.Context, postID string) (domain.Post, error) {
	if s == nil || s.repo == nil {
		return domain.Post{}, ErrCommunityUnavailable
	}
	pid := strings.TrimSpace(postID)
	if pid == "" {
		return domain.Post{}, ErrCommunityInvalidInput
	}
	return s.updatePost(ctx, pid, func(post *domain.Post) {
		post.Views++
	})
}

func (s *communityService) updatePost(ctx context.Context, postID string, mutate func(*domain.Post)) (domain.Post, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return domain.Post{}, s.translateRepoError(err)
	}

	for i := range posts {
		if posts[i].ID != postID {
			continue
		}
		mutate(&posts[i])
		if err := s.repo.SavePosts(ctx, posts); err != nil {
			return domain.Post{}, s.translateRepoError(err)
		}
		return posts[i], nil
	}
	return domain.Post{}, ErrCommunityNotFound
}

func (s *communityService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		return ErrCommunityNotFound
	}
	return ErrCommunityUnavailable
}
