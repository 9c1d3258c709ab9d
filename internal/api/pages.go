package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/i18n"
	"github.com/Priya8975/melon-site/internal/notify"
	"github.com/Priya8975/melon-site/internal/site"
	"github.com/Priya8975/melon-site/internal/visitor"
)

// PageHandler serves the server-rendered header, footer and landing page.
type PageHandler struct {
	renderer *site.Renderer
	inbox    *notify.Inbox
	catalog  *i18n.Catalog
	logger   *slog.Logger
}

func NewPageHandler(renderer *site.Renderer, inbox *notify.Inbox, cat *i18n.Catalog, logger *slog.Logger) *PageHandler {
	return &PageHandler{renderer: renderer, inbox: inbox, catalog: cat, logger: logger}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.renderer.Index)
}

func (h *PageHandler) Header(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.renderer.Header)
}

func (h *PageHandler) Footer(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.renderer.Footer)
}

func (h *PageHandler) serve(w http.ResponseWriter, r *http.Request, render func(io.Writer, site.Page) error) {
	lang, _ := h.catalog.Resolve(r)
	owner := visitor.FromContext(r.Context())

	ns, err := h.inbox.List(r.Context(), owner)
	if err != nil {
		// The page still renders without the inbox.
		h.logger.WarnContext(r.Context(), "loading inbox for page", "error", err)
		ns = nil
	}

	page := h.renderer.NewPage(lang, domain.NewBadge(notify.UnreadCount(ns)), notify.Render(h.catalog, lang, ns, time.Now()))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", lang)
	if err := render(w, page); err != nil {
		h.logger.ErrorContext(r.Context(), "rendering page", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
