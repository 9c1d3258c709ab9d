// Package site renders the shared header and footer fragments and the
// landing page.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Interests offered on the subscription form.
var Interests = []string{"news", "offers", "music"}

// Page is the data every template renders from.
type Page struct {
	Lang          string
	LanguageLabel string
	Languages     []i18n.Option
	Badge         domain.Badge
	Notifications []domain.RenderedNotification
	Interests     []string
}

type Renderer struct {
	catalog *i18n.Catalog
	tmpl    *template.Template
}

func NewRenderer(cat *i18n.Catalog) (*Renderer, error) {
	funcs := template.FuncMap{
		"t": cat.T,
		// Only html-section keys reach here; they are trusted catalog content.
		"rawhtml": func(lang, key string) template.HTML {
			return template.HTML(cat.HTML(lang, key))
		},
	}

	tmpl, err := template.New("site").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing site templates: %w", err)
	}
	return &Renderer{catalog: cat, tmpl: tmpl}, nil
}

// NewPage fills the language fields of a Page for lang.
func (r *Renderer) NewPage(lang string, badge domain.Badge, ns []domain.RenderedNotification) Page {
	return Page{
		Lang:          lang,
		LanguageLabel: r.catalog.Label(lang),
		Languages:     r.catalog.Languages(),
		Badge:         badge,
		Notifications: ns,
		Interests:     Interests,
	}
}

func (r *Renderer) Header(w io.Writer, p Page) error { return r.render(w, "header", p) }
func (r *Renderer) Footer(w io.Writer, p Page) error { return r.render(w, "footer", p) }
func (r *Renderer) Index(w io.Writer, p Page) error  { return r.render(w, "index", p) }

// render executes into a buffer so a template error never leaves a partial page.
func (r *Renderer) render(w io.Writer, name string, p Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
