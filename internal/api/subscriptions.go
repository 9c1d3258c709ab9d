package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/i18n"
	"github.com/Priya8975/melon-site/internal/metrics"
	"github.com/Priya8975/melon-site/internal/subscription"
	"github.com/go-chi/chi/v5"
)

type SubscriptionHandler struct {
	registry *subscription.Registry
	catalog  *i18n.Catalog
	logger   *slog.Logger
}

func NewSubscriptionHandler(reg *subscription.Registry, cat *i18n.Catalog, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{registry: reg, catalog: cat, logger: logger}
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	lang, _ := h.catalog.Resolve(r)

	var req domain.SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.Subscriptions.WithLabelValues(metrics.ResultInvalid).Inc()
		respondError(w, http.StatusBadRequest, h.catalog.T(lang, "subscription.invalid"))
		return
	}

	sub, err := h.registry.Subscribe(r.Context(), req.Name, req.Email, req.Interests)
	if err != nil {
		metrics.Subscriptions.WithLabelValues(subscribeResult(err)).Inc()
		h.fail(w, r, lang, err)
		return
	}

	metrics.Subscriptions.WithLabelValues(metrics.ResultOK).Inc()
	metrics.ObserveStats(h.registry.Stats())

	respondEnvelope(w, http.StatusOK, h.catalog.T(lang, "subscription.ok"), domain.SubscribeResult{
		Email:        sub.Email,
		SubscribedAt: sub.SubscribedAt,
		Interests:    sub.Interests,
	})
}

func (h *SubscriptionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	lang, _ := h.catalog.Resolve(r)

	stats := h.registry.Stats()
	metrics.ObserveStats(stats)
	respondEnvelope(w, http.StatusOK, h.catalog.T(lang, "subscription.stats"), stats)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	lang, _ := h.catalog.Resolve(r)

	sub, err := h.registry.Get(emailParam(r))
	if err != nil {
		h.fail(w, r, lang, err)
		return
	}
	respondEnvelope(w, http.StatusOK, h.catalog.T(lang, "subscription.found"), sub)
}

// Cancel handles DELETE /subscriptions/{email}.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.cancel(w, r, emailParam(r))
}

// CancelByBody handles POST /subscriptions/cancel with {"email": ...}.
func (h *SubscriptionHandler) CancelByBody(w http.ResponseWriter, r *http.Request) {
	var req domain.CancelRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Email == "" {
		lang, _ := h.catalog.Resolve(r)
		metrics.Cancellations.WithLabelValues(metrics.ResultInvalid).Inc()
		respondError(w, http.StatusBadRequest, h.catalog.T(lang, "subscription.invalid"))
		return
	}
	h.cancel(w, r, req.Email)
}

func (h *SubscriptionHandler) cancel(w http.ResponseWriter, r *http.Request, email string) {
	lang, _ := h.catalog.Resolve(r)

	sub, err := h.registry.Cancel(r.Context(), email)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			metrics.Cancellations.WithLabelValues(metrics.ResultNotFound).Inc()
		} else {
			metrics.Cancellations.WithLabelValues(metrics.ResultError).Inc()
		}
		h.fail(w, r, lang, err)
		return
	}

	metrics.Cancellations.WithLabelValues(metrics.ResultOK).Inc()
	metrics.ObserveStats(h.registry.Stats())

	respondEnvelope(w, http.StatusOK, h.catalog.T(lang, "subscription.cancelled"), domain.CancelResult{
		Email:       sub.Email,
		CancelledAt: *sub.CancelledAt,
	})
}

// fail maps registry errors onto envelope responses.
func (h *SubscriptionHandler) fail(w http.ResponseWriter, r *http.Request, lang string, err error) {
	var conflict *subscription.ConflictError
	switch {
	case errors.Is(err, subscription.ErrValidation):
		respondError(w, http.StatusBadRequest, h.catalog.T(lang, "subscription.invalid"))
	case errors.Is(err, subscription.ErrFormat):
		respondError(w, http.StatusBadRequest, h.catalog.T(lang, "subscription.bad_format"))
	case errors.As(err, &conflict):
		respondEnvelope(w, http.StatusConflict, h.catalog.T(lang, "subscription.exists"), domain.ExistingSubscription{
			Email:        conflict.Existing.Email,
			SubscribedAt: conflict.Existing.SubscribedAt,
		})
	case errors.Is(err, subscription.ErrNotFound):
		respondError(w, http.StatusNotFound, h.catalog.T(lang, "subscription.not_found"))
	default:
		h.logger.ErrorContext(r.Context(), "subscription request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, h.catalog.T(lang, "error.internal"))
	}
}

func subscribeResult(err error) string {
	switch {
	case errors.Is(err, subscription.ErrValidation):
		return metrics.ResultInvalid
	case errors.Is(err, subscription.ErrFormat):
		return metrics.ResultBadFormat
	case errors.Is(err, subscription.ErrConflict):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}

func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}
