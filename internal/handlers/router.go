package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ronghua-heritage/storefront/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	basePath    string
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers

	auth      RouteRegistrar
	shop      RouteRegistrar
	cart      RouteRegistrar
	wishlist  RouteRegistrar
	chat      RouteRegistrar
	community RouteRegistrar

	authMiddlewares []func(http.Handler) http.Handler
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix  = "/api/v1"
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// NewRouter constructs the chi router with shared middleware and route groups.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath: defaultAPIPrefix,
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()

	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	r.Route(cfg.basePath, func(api chi.Router) {
		mount := func(path string, registrar RouteRegistrar, groupMW []func(http.Handler) http.Handler) {
			api.Route(path, func(group chi.Router) {
				for _, mw := range groupMW {
					if mw != nil {
						group.Use(mw)
					}
				}
				if registrar != nil {
					registrar(group)
					return
				}
				group.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
					httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", "endpoint not implemented", http.StatusNotImplemented))
				})
			})
		}

		mount("/auth", cfg.auth, nil)
		mount("/shop", cfg.shop, nil)
		mount("/cart", cfg.cart, cfg.authMiddlewares)
		mount("/wishlist", cfg.wishlist, cfg.authMiddlewares)
		mount("/chat", cfg.chat, cfg.authMiddlewares)
		mount("/community", cfg.community, nil)
	})

	return r
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithAuthRoutes configures the registrar responsible for account endpoints.
func WithAuthRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.auth = reg
	}
}

// WithShopRoutes configures the registrar responsible for catalog endpoints.
func WithShopRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.shop = reg
	}
}

// WithCartRoutes configures the registrar responsible for cart endpoints.
func WithCartRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.cart = reg
	}
}

// WithWishlistRoutes configures the registrar responsible for wishlist endpoints.
func WithWishlistRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.wishlist = reg
	}
}

// WithChatRoutes configures the registrar responsible for assistant endpoints.
func WithChatRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.chat = reg
	}
}

// WithCommunityRoutes configures the registrar responsible for feed endpoints.
func WithCommunityRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.community = reg
	}
}

// WithAuthenticatedMiddlewares configures middlewares applied to the groups
// that require a logged-in user.
func WithAuthenticatedMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.authMiddlewares = append(cfg.authMiddlewares, mw...)
	}
}
