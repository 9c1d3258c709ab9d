package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/i18n"
	"github.com/Priya8975/melon-site/internal/metrics"
	"github.com/Priya8975/melon-site/internal/notify"
	"github.com/Priya8975/melon-site/internal/visitor"
	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	inbox   *notify.Inbox
	catalog *i18n.Catalog
	logger  *slog.Logger
	now     func() time.Time
}

func NewNotificationHandler(inbox *notify.Inbox, cat *i18n.Catalog, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{inbox: inbox, catalog: cat, logger: logger, now: time.Now}
}

type inboxResponse struct {
	Badge         domain.Badge                  `json:"badge"`
	Notifications []domain.RenderedNotification `json:"notifications"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	lang, _ := h.catalog.Resolve(r)
	owner := visitor.FromContext(r.Context())

	ns, err := h.inbox.List(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, lang, err)
		return
	}

	metrics.Notifications.WithLabelValues("list").Inc()
	respondEnvelope(w, http.StatusOK, h.catalog.T(lang, "notification-title"), h.render(lang, ns))
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	lang, _ := h.catalog.Resolve(r)
	owner := visitor.FromContext(r.Context())

	var req domain.CreateNotificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, h.catalog.T(lang, "notification.invalid"))
		return
	}

	n, err := h.inbox.Add(r.Context(), owner, req)
	if errors.Is(err, notify.ErrInvalidNotification) {
		respondError(w, http.StatusBadRequest, h.catalog.T(lang, "notification.invalid"))
		return
	}
	if err != nil {
		h.internalError(w, r, lang, err)
		return
	}

	metrics.Notifications.WithLabelValues("add").Inc()
	rendered := notify.Render(h.catalog, lang, []domain.Notification{n}, h.now())
	respondEnvelope(w, http.StatusCreated, h.catalog.T(lang, "notification.created"), rendered[0])
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	lang, _ := h.catalog.Resolve(r)
	owner := visitor.FromContext(r.Context())

	err := h.inbox.MarkRead(r.Context(), owner, chi.URLParam(r, "id"))
	if errors.Is(err, notify.ErrNotificationNotFound) {
		respondError(w, http.StatusNotFound, h.catalog.T(lang, "notification.not_found"))
		return
	}
	if err != nil {
		h.internalError(w, r, lang, err)
		return
	}

	metrics.Notifications.WithLabelValues("read").Inc()
	h.respondBadge(w, r, lang, owner)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	lang, _ := h.catalog.Resolve(r)
	owner := visitor.FromContext(r.Context())

	if err := h.inbox.MarkAllRead(r.Context(), owner); err != nil {
		h.internalError(w, r, lang, err)
		return
	}

	metrics.Notifications.WithLabelValues("read_all").Inc()
	h.respondBadge(w, r, lang, owner)
}

func (h *NotificationHandler) respondBadge(w http.ResponseWriter, r *http.Request, lang, owner string) {
	badge, err := h.inbox.Badge(r.Context(), owner)
	if err != nil {
		h.internalError(w, r, lang, err)
		return
	}
	respondEnvelope(w, http.StatusOK, h.catalog.T(lang, "notification.read"), badge)
}

func (h *NotificationHandler) render(lang string, ns []domain.Notification) inboxResponse {
	return inboxResponse{
		Badge:         domain.NewBadge(notify.UnreadCount(ns)),
		Notifications: notify.Render(h.catalog, lang, ns, h.now()),
	}
}

func (h *NotificationHandler) internalError(w http.ResponseWriter, r *http.Request, lang string, err error) {
	h.logger.ErrorContext(r.Context(), "notification request failed", "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, h.catalog.T(lang, "error.internal"))
}
