package api

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Priya8975/melon-site/internal/i18n"
	"github.com/Priya8975/melon-site/internal/metrics"
	"github.com/Priya8975/melon-site/internal/notify"
	"github.com/Priya8975/melon-site/internal/site"
	"github.com/Priya8975/melon-site/internal/subscription"
	"github.com/Priya8975/melon-site/internal/visitor"
	ws "github.com/Priya8975/melon-site/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the services the router hands to its handlers.
type Deps struct {
	Registry       *subscription.Registry
	Inbox          *notify.Inbox
	Catalog        *i18n.Catalog
	Renderer       *site.Renderer
	Hub            *ws.Hub
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Use(cors.Handler(corsOptions(d.AllowedOrigins)))

	r.Use(visitor.Middleware)
	r.Use(persistLanguage(d.Catalog))

	// Handlers
	subHandler := NewSubscriptionHandler(d.Registry, d.Catalog, d.Logger)
	i18nHandler := NewI18nHandler(d.Catalog)
	notifHandler := NewNotificationHandler(d.Inbox, d.Catalog, d.Logger)
	pageHandler := NewPageHandler(d.Renderer, d.Inbox, d.Catalog, d.Logger)

	// WebSocket endpoint
	if d.Hub != nil {
		r.Get("/ws", d.Hub.HandleWebSocket)
	}

	r.Handle("/metrics", metrics.Handler())

	// Server-rendered fragments
	r.Get("/", pageHandler.Index)
	r.Get("/components/header.html", pageHandler.Header)
	r.Get("/components/footer.html", pageHandler.Footer)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(recoverEnvelope(d.Catalog, d.Logger))

		r.Get("/health", HealthHandler(d.Hub))

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", subHandler.Create)
			r.Get("/stats", subHandler.Stats)
			r.Post("/cancel", subHandler.CancelByBody)
			r.Get("/{email}", subHandler.Get)
			r.Delete("/{email}", subHandler.Cancel)
		})

		r.Get("/i18n", i18nHandler.Current)
		r.Get("/i18n/{lang}", i18nHandler.ByLang)
		r.Post("/language", i18nHandler.SetLanguage)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notifHandler.List)
			r.Post("/", notifHandler.Create)
			r.Post("/read-all", notifHandler.MarkAllRead)
			r.Post("/{id}/read", notifHandler.MarkRead)
		})
	})

	return r
}

// corsOptions allows credentialed requests only for an explicit origin list.
// Browsers reject credentials paired with a wildcard origin.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		ExposedHeaders: []string{"Content-Language"},
		MaxAge:         300,
	}
	opts.AllowCredentials = !slices.Contains(origins, "*")
	return opts
}
