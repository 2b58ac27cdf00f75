package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/services"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return payload
}

func TestRouterUnknownRoute(t *testing.T) {
	router := NewRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["success"] != false {
		t.Fatalf("expected failure envelope, got %v", payload)
	}
}

func TestRouterHealthz(t *testing.T) {
	router := NewRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", payload)
	}
}

func TestRouterReadyzReportsFailingProbe(t *testing.T) {
	health := NewHealthHandlers(ReadinessProbe{
		Name:  "store",
		Check: func(ctx context.Context) error { return context.DeadlineExceeded },
	})
	router := NewRouter(WithHealthHandlers(health))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCatalogRoutesPassQueryParameters(t *testing.T) {
	var gotQuery services.CatalogQuery
	catalog := &stubCatalogService{
		queryFunc: func(ctx context.Context, query services.CatalogQuery) (services.CatalogPage, error) {
			gotQuery = query
			return services.CatalogPage{Items: []domain.Product{{ID: "p1"}}, Total: 1}, nil
		},
	}
	router := NewRouter(WithShopRoutes(NewCatalogHandlers(catalog).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shop/products?category=finished&search=牡丹&sort=price-low", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotQuery.Category != "finished" || gotQuery.Search != "牡丹" || gotQuery.Sort != "price-low" {
		t.Fatalf("unexpected query: %+v", gotQuery)
	}
	payload := decodeEnvelope(t, rec)
	if payload["success"] != true {
		t.Fatalf("expected success envelope, got %v", payload)
	}
}

func TestCartRoutesRequireIdentity(t *testing.T) {
	carts := &stubCartService{
		getFunc: func(ctx context.Context, userID string) (domain.Cart, error) {
			return domain.Cart{UserID: userID}, nil
		},
	}
	// No identity middleware configured: requests must be rejected.
	router := NewRouter(WithCartRoutes(NewCartHandlers(carts).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestCartAddItemRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	carts := &stubCartService{
		addFunc: func(ctx context.Context, cmd services.AddCartItemCommand) (domain.Cart, error) {
			if cmd.UserID != "u1" {
				t.Fatalf("unexpected user id %q", cmd.UserID)
			}
			return domain.Cart{
				UserID: "u1",
				Entries: []domain.CartEntry{
					{Product: cmd.Product, Quantity: 2, AddedAt: now},
				},
			}, nil
		},
	}
	router := NewRouter(
		WithCartRoutes(NewCartHandlers(carts).Routes),
		WithAuthenticatedMiddlewares(injectIdentity("u1", "user")),
	)

	body := strings.NewReader(`{"product":{"id":"prod-a","title":"红色牡丹绒花发簪","price_minor":5000}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeEnvelope(t, rec)
	data, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", payload)
	}
	summary, ok := data["summary"].(map[string]any)
	if !ok {
		t.Fatalf("expected summary, got %v", data)
	}
	if summary["total_minor"] != float64(10000) || summary["item_count"] != float64(2) {
		t.Fatalf("unexpected summary: %v", summary)
	}
	if data["total"] != "100.00" {
		t.Fatalf("unexpected formatted total: %v", data["total"])
	}
}

func TestCartSetQuantityNotFound(t *testing.T) {
	carts := &stubCartService{
		setFunc: func(ctx context.Context, cmd services.SetCartQuantityCommand) (domain.Cart, error) {
			return domain.Cart{}, services.ErrCartNotFound
		},
	}
	router := NewRouter(
		WithCartRoutes(NewCartHandlers(carts).Routes),
		WithAuthenticatedMiddlewares(injectIdentity("u1", "user")),
	)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/ghost", strings.NewReader(`{"quantity":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCartAddItemRejectsEmptyBody(t *testing.T) {
	carts := &stubCartService{}
	router := NewRouter(
		WithCartRoutes(NewCartHandlers(carts).Routes),
		WithAuthenticatedMiddlewares(injectIdentity("u1", "user")),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", rec.Code)
	}
}

func TestCommunityListIsPublicButCreateIsNot(t *testing.T) {
	community := &stubCommunityService{
		listFunc: func(ctx context.Context, query services.CommunityFeedQuery) ([]domain.Post, error) {
			if query.Order != services.CommunityOrderHottest {
				t.Fatalf("unexpected order %q", query.Order)
			}
			return []domain.Post{{ID: "post-1"}}, nil
		},
		createFunc: func(ctx context.Context, cmd services.CreatePostCommand) (domain.Post, error) {
			return domain.Post{ID: "post-2", AuthorID: cmd.AuthorID}, nil
		},
	}
	router := NewRouter(WithCommunityRoutes(NewCommunityHandlers(community, nil).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/community/posts?order=hottest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected public list to answer 200, got %d", rec.Code)
	}

	// Create without identity: the handler itself rejects the request.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/community/posts", strings.NewReader(`{"title":"t","content":"c"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous create, got %d", rec.Code)
	}
}

func TestCommunityCreateWithIdentity(t *testing.T) {
	var gotCmd services.CreatePostCommand
	community := &stubCommunityService{
		createFunc: func(ctx context.Context, cmd services.CreatePostCommand) (domain.Post, error) {
			gotCmd = cmd
			return domain.Post{ID: "post-1", AuthorID: cmd.AuthorID}, nil
		},
	}
	router := NewRouter(WithCommunityRoutes(NewCommunityHandlers(community, injectIdentity("u1", "绒花爱好者")).Routes))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/community/posts", strings.NewReader(`{"topic":"works","title":"t","content":"c"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotCmd.AuthorID != "u1" || gotCmd.AuthorName != "绒花爱好者" {
		t.Fatalf("unexpected command: %+v", gotCmd)
	}
}
