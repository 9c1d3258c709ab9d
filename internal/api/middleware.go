package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Priya8975/melon-site/internal/i18n"
)

// recoverEnvelope turns a panic into a 500 envelope so JSON clients always
// get the response shape they expect.
func recoverEnvelope(cat *i18n.Catalog, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "handler panic",
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				lang, _ := cat.Resolve(r)
				respondError(w, http.StatusInternalServerError, cat.T(lang, "error.internal"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// persistLanguage stores an explicit ?lang= choice in the preference cookie.
func persistLanguage(cat *i18n.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lang, persist := cat.Resolve(r); persist {
				i18n.SetLanguageCookie(w, lang)
			}
			next.ServeHTTP(w, r)
		})
	}
}
