package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ronghua-heritage/storefront/internal/handlers"
	"github.com/ronghua-heritage/storefront/internal/platform/auth"
	"github.com/ronghua-heritage/storefront/internal/platform/config"
	"github.com/ronghua-heritage/storefront/internal/platform/kv"
	"github.com/ronghua-heritage/storefront/internal/platform/observability"
	"github.com/ronghua-heritage/storefront/internal/repositories/kvrepo"
	"github.com/ronghua-heritage/storefront/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	store, probe, closeStore, err := newStore(cfg.Store, logger)
	if err != nil {
		logger.Fatal("failed to initialise store", zap.Error(err))
	}
	defer closeStore()

	manager, err := auth.NewManager(auth.ManagerDeps{
		Store:    store,
		Secret:   []byte(cfg.Auth.Secret),
		TokenTTL: cfg.Auth.TokenTTL,
		Clock:    time.Now,
		Logger:   observability.EventLogger(logger.Named("auth")),
	})
	if err != nil {
		logger.Fatal("failed to initialise auth manager", zap.Error(err))
	}

	cartRepo, err := kvrepo.NewCartRepository(store)
	if err != nil {
		logger.Fatal("failed to initialise cart repository", zap.Error(err))
	}
	wishlistRepo, err := kvrepo.NewWishlistRepository(store)
	if err != nil {
		logger.Fatal("failed to initialise wishlist repository", zap.Error(err))
	}
	chatRepo, err := kvrepo.NewChatHistoryRepository(store)
	if err != nil {
		logger.Fatal("failed to initialise chat repository", zap.Error(err))
	}
	postRepo, err := kvrepo.NewPostRepository(store)
	if err != nil {
		logger.Fatal("failed to initialise post repository", zap.Error(err))
	}
	catalogRepo, err := kvrepo.NewCatalogRepository(store)
	if err != nil {
		logger.Fatal("failed to initialise catalog repository", zap.Error(err))
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Repository: cartRepo,
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("cart")),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}
	wishlistService, err := services.NewWishlistService(services.WishlistServiceDeps{
		Repository: wishlistRepo,
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("wishlist")),
	})
	if err != nil {
		logger.Fatal("failed to initialise wishlist service", zap.Error(err))
	}
	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Repository: catalogRepo,
		Logger:     observability.EventLogger(logger.Named("catalog")),
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}
	chatService, err := services.NewChatService(services.ChatServiceDeps{
		Repository: chatRepo,
		Clock:      time.Now,
		ReplyDelay: cfg.Chat.ReplyDelay,
		Logger:     observability.EventLogger(logger.Named("chat")),
	})
	if err != nil {
		logger.Fatal("failed to initialise chat service", zap.Error(err))
	}
	communityService, err := services.NewCommunityService(services.CommunityServiceDeps{
		Repository: postRepo,
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("community")),
	})
	if err != nil {
		logger.Fatal("failed to initialise community service", zap.Error(err))
	}

	requireAuth := auth.RequireAuth(manager)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoverMiddleware(),
		observability.RequestLoggerMiddleware(),
	}

	healthHandlers := handlers.NewHealthHandlers(handlers.ReadinessProbe{
		Name:  "store",
		Check: probe,
	})

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithAuthRoutes(handlers.NewAuthHandlers(manager).Routes),
		handlers.WithShopRoutes(handlers.NewCatalogHandlers(catalogService).Routes),
		handlers.WithCartRoutes(handlers.NewCartHandlers(cartService).Routes),
		handlers.WithWishlistRoutes(handlers.NewWishlistHandlers(wishlistService).Routes),
		handlers.WithChatRoutes(handlers.NewChatHandlers(chatService).Routes),
		handlers.WithCommunityRoutes(handlers.NewCommunityHandlers(communityService, requireAuth).Routes),
		handlers.WithAuthenticatedMiddlewares(requireAuth),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("ronghua storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newStore builds the configured kv backend and returns it together with a
// readiness probe and a close function.
func newStore(cfg config.StoreConfig, logger *zap.Logger) (kv.Store, func(context.Context) error, func(), error) {
	switch cfg.Backend {
	case config.StoreBackendMemory:
		store := kv.NewMemoryStore()
		return store, storeProbe(store), func() {}, nil
	case config.StoreBackendFile:
		store, err := kv.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, storeProbe(store), func() {}, nil
	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store, err := kv.NewRedisStore(client, cfg.RedisPrefix)
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		probe := func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
			defer cancel()
			return client.Ping(pingCtx).Err()
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}
		return store, probe, closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func storeProbe(store kv.Store) func(context.Context) error {
	return func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
		defer cancel()
		_, err := store.Get(probeCtx, "health/probe", nil)
		return err
	}
}
