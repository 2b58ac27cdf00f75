package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ronghua-heritage/storefront/internal/platform/httpx"
	"github.com/ronghua-heritage/storefront/internal/services"
)

const maxCommunityBodySize = 64 * 1024

// CommunityHandlers exposes the shared post feed. Reading is public; writing
// requires the auth middleware passed at construction.
type CommunityHandlers struct {
	community   services.CommunityService
	requireAuth func(http.Handler) http.Handler
}

// NewCommunityHandlers constructs handlers over the community service.
func NewCommunityHandlers(community services.CommunityService, requireAuth func(http.Handler) http.Handler) *CommunityHandlers {
	return &CommunityHandlers{community: community, requireAuth: requireAuth}
}

// Routes wires the /community endpoints onto the provided router.
func (h *CommunityHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/posts", h.listPosts)
	r.Post("/posts/{postID}/view", h.recordView)

	r.Group(func(authed chi.Router) {
		if h.requireAuth != nil {
			authed.Use(h.requireAuth)
		}
		authed.Post("/posts", h.createPost)
		authed.Post("/posts/{postID}/like", h.toggleLike)
	})
}

// listPosts answers ?order=latest|hottest|comments and ?topic=, defaulting
// to latest across all topics.
func (h *CommunityHandlers) listPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.community == nil {
		httpx.WriteError(ctx, w, httpx.NewError("community_unavailable", "community service is unavailable", http.StatusServiceUnavailable))
		return
	}

	posts, err := h.community.ListPosts(ctx, services.CommunityFeedQuery{
		Order: services.CommunityOrder(r.URL.Query().Get("order")),
		Topic: r.URL.Query().Get("topic"),
	})
	if err != nil {
		h.writeCommunityError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", posts)
}

type createPostRequest struct {
	Topic   string   `json:"topic"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

func (h *CommunityHandlers) createPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.community == nil {
		httpx.WriteError(ctx, w, httpx.NewError("community_unavailable", "community service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createPostRequest
	if err := decodeJSONBody(r, maxCommunityBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	post, err := h.community.CreatePost(ctx, services.CreatePostCommand{
		AuthorID:   identity.UID,
		AuthorName: identity.Username,
		Topic:      req.Topic,
		Title:      req.Title,
		Content:    req.Content,
		Images:     req.Images,
	})
	if err != nil {
		h.writeCommunityError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "发布成功", post)
}

func (h *CommunityHandlers) toggleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.community == nil {
		httpx.WriteError(ctx, w, httpx.NewError("community_unavailable", "community service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	post, err := h.community.ToggleLike(ctx, services.ToggleLikeCommand{
		UserID: identity.UID,
		PostID: chi.URLParam(r, "postID"),
	})
	if err != nil {
		h.writeCommunityError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", post)
}

func (h *CommunityHandlers) recordView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.community == nil {
		httpx.WriteError(ctx, w, httpx.NewError("community_unavailable", "community service is unavailable", http.StatusServiceUnavailable))
		return
	}

	post, err := h.community.RecordView(ctx, chi.URLParam(r, "postID"))
	if err != nil {
		h.writeCommunityError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", post)
}

func (h *CommunityHandlers) writeCommunityError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrCommunityInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid community request", http.StatusBadRequest))
	case errors.Is(err, services.ErrCommunityNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("post_not_found", "post does not exist", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("community_unavailable", "community service failed", http.StatusServiceUnavailable))
	}
}
