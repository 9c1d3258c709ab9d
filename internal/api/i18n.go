package api

import (
	"net/http"

	"github.com/Priya8975/melon-site/internal/i18n"
	"github.com/Priya8975/melon-site/internal/metrics"
	"github.com/go-chi/chi/v5"
)

type I18nHandler struct {
	catalog *i18n.Catalog
}

func NewI18nHandler(cat *i18n.Catalog) *I18nHandler {
	return &I18nHandler{catalog: cat}
}

type languageRequest struct {
	Language string `json:"language"`
}

type catalogResponse struct {
	i18n.Locale
	Languages []i18n.Option `json:"languages"`
}

// Current returns the catalog for the language resolved from the request.
func (h *I18nHandler) Current(w http.ResponseWriter, r *http.Request) {
	lang, _ := h.catalog.Resolve(r)
	h.respondCatalog(w, lang)
}

// ByLang returns the catalog for an explicit language.
func (h *I18nHandler) ByLang(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "lang")
	lang, ok := h.catalog.Match(requested)
	if !ok {
		reqLang, _ := h.catalog.Resolve(r)
		respondError(w, http.StatusNotFound, h.catalog.T(reqLang, "language.unsupported"))
		return
	}
	h.respondCatalog(w, lang)
}

// SetLanguage stores the visitor's preferred language in a cookie.
func (h *I18nHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		lang, _ := h.catalog.Resolve(r)
		respondError(w, http.StatusBadRequest, h.catalog.T(lang, "language.unsupported"))
		return
	}

	lang, ok := h.catalog.Match(req.Language)
	if !ok {
		reqLang, _ := h.catalog.Resolve(r)
		respondError(w, http.StatusBadRequest, h.catalog.T(reqLang, "language.unsupported"))
		return
	}

	i18n.SetLanguageCookie(w, lang)
	metrics.LanguageSelections.WithLabelValues(lang).Inc()
	respondEnvelope(w, http.StatusOK, h.catalog.T(lang, "language.updated"), i18n.Option{
		Code:  lang,
		Label: h.catalog.Label(lang),
	})
}

func (h *I18nHandler) respondCatalog(w http.ResponseWriter, lang string) {
	respondEnvelope(w, http.StatusOK, h.catalog.Label(lang), catalogResponse{
		Locale:    h.catalog.Locale(lang),
		Languages: h.catalog.Languages(),
	})
}
