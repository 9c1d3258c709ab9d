package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Priya8975/melon-site/internal/api"
	"github.com/Priya8975/melon-site/internal/config"
	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/i18n"
	"github.com/Priya8975/melon-site/internal/mailer"
	"github.com/Priya8975/melon-site/internal/metrics"
	"github.com/Priya8975/melon-site/internal/notify"
	"github.com/Priya8975/melon-site/internal/site"
	"github.com/Priya8975/melon-site/internal/subscription"
	ws "github.com/Priya8975/melon-site/internal/websocket"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Info("no .env file loaded, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	catalog, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		logger.Error("failed to load language catalogs", "error", err)
		os.Exit(1)
	}

	renderer, err := site.NewRenderer(catalog)
	if err != nil {
		logger.Error("failed to parse site templates", "error", err)
		os.Exit(1)
	}

	// Notification store: Redis when configured, memory otherwise
	var store notify.Store
	if cfg.RedisURL != "" {
		redisStore, err := notify.NewRedisStore(ctx, cfg.RedisURL, cfg.NotifyTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("connected to Redis")
	} else {
		store = notify.NewMemoryStore(cfg.NotifyTTL)
		logger.Info("using in-memory notification store")
	}

	// The hub and inbox reference each other: the inbox publishes badges to
	// the hub, the hub asks the inbox for a badge when a client connects.
	var inbox *notify.Inbox
	hub := ws.NewHub(logger,
		ws.WithAllowedOrigins(cfg.AllowedOrigins),
		ws.WithSnapshot(func(ctx context.Context, owner string) (domain.Badge, error) {
			return inbox.Badge(ctx, owner)
		}),
	)
	inbox = notify.NewInbox(store, logger,
		notify.WithPublisher(hub),
		notify.WithWelcomeDelay(cfg.NotifyWelcomeDelay),
	)
	defer inbox.Close()

	go hub.Run(ctx)
	if err := metrics.RegisterWebsocketClients(hub.ClientCount); err != nil {
		logger.Warn("websocket client gauge not registered", "error", err)
	}

	registry := subscription.NewRegistry(logger,
		subscription.WithMailer(mailer.NewLogMailer(cfg.MailFrom, logger)),
	)

	// Setup router
	router := api.NewRouter(api.Deps{
		Registry:       registry,
		Inbox:          inbox,
		Catalog:        catalog,
		Renderer:       renderer,
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port, "default_language", catalog.Default())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	stop()

	logger.Info("server stopped")
}
