package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "preferred-language"
)

// Resolve picks the language for r: the lang query parameter, then the
// preference cookie, then Accept-Language, then the default. The bool reports
// whether the choice came from the query and should be persisted.
func (c *Catalog) Resolve(r *http.Request) (string, bool) {
	if r == nil {
		return c.defaultLang, false
	}

	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if lang, ok := c.match(v); ok {
			return lang, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if lang, ok := c.match(cookie.Value); ok {
			return lang, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := c.matcher.Match(tags...)
			if conf != language.No {
				return c.codes[idx], false
			}
		}
	}

	return c.defaultLang, false
}

// Match maps a user supplied value such as "en-US" or "zh" onto a loaded locale.
func (c *Catalog) Match(value string) (string, bool) {
	return c.match(value)
}

func (c *Catalog) match(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if _, ok := c.locales[value]; ok {
		return value, true
	}

	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	if _, ok := c.locales[base.String()]; ok {
		return base.String(), true
	}
	return "", false
}

// SetLanguageCookie persists lang on the response for a year.
func SetLanguageCookie(w http.ResponseWriter, lang string) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
