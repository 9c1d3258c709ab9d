package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when nothing on the request selects a language.
const DefaultLanguage = "zh"

//go:embed locales/*.yaml
var embedded embed.FS

// Locale is one parsed locales/<lang>.yaml file. Messages hold plain text;
// HTML values may carry markup and must only be rendered unescaped.
type Locale struct {
	Code     string            `yaml:"locale" json:"language"`
	Label    string            `yaml:"label" json:"label"`
	Messages map[string]string `yaml:"messages" json:"messages"`
	HTML     map[string]string `yaml:"html" json:"html"`
}

// Option is an entry for the language selector.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Catalog holds every loaded locale and the x/text catalog used for
// formatted messages.
type Catalog struct {
	defaultLang string
	locales     map[string]*Locale
	codes       []string
	tags        []language.Tag
	matcher     language.Matcher
	builder     *catalog.Builder
}

// New loads the embedded locales with defaultLang as the fallback language.
func New(defaultLang string) (*Catalog, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, fmt.Errorf("opening embedded locales: %w", err)
	}
	return Load(sub, defaultLang)
}

// Load reads every *.yaml file at the root of fsys.
func Load(fsys fs.FS, defaultLang string) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing locale files: %w", err)
	}

	locales := make(map[string]*Locale, len(files))
	for _, name := range files {
		loc, err := readLocale(fsys, name)
		if err != nil {
			return nil, err
		}
		if _, dup := locales[loc.Code]; dup {
			return nil, fmt.Errorf("locale %q defined twice", loc.Code)
		}
		locales[loc.Code] = loc
	}

	if _, ok := locales[defaultLang]; !ok {
		return nil, fmt.Errorf("default locale %q not found", defaultLang)
	}

	// The default goes first so an unmatched Accept-Language resolves to it.
	codes := make([]string, 0, len(locales))
	for code := range locales {
		if code != defaultLang {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	codes = append([]string{defaultLang}, codes...)

	tags := make([]language.Tag, len(codes))
	for i, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("parsing locale tag %q: %w", code, err)
		}
		tags[i] = tag
	}

	c := &Catalog{
		defaultLang: defaultLang,
		locales:     locales,
		codes:       codes,
		tags:        tags,
		matcher:     language.NewMatcher(tags),
		builder:     catalog.NewBuilder(catalog.Fallback(tags[0])),
	}
	if err := c.register(); err != nil {
		return nil, err
	}
	return c, nil
}

func readLocale(fsys fs.FS, name string) (*Locale, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	var loc Locale
	if err := yaml.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	if loc.Code == "" {
		loc.Code = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	if loc.Label == "" {
		loc.Label = loc.Code
	}
	if loc.Messages == nil {
		loc.Messages = map[string]string{}
	}
	if loc.HTML == nil {
		loc.HTML = map[string]string{}
	}

	for key := range loc.Messages {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%s: blank message key", name)
		}
		if _, both := loc.HTML[key]; both {
			return nil, fmt.Errorf("%s: key %q is in both messages and html", name, key)
		}
	}
	for key := range loc.HTML {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%s: blank html key", name)
		}
	}
	return &loc, nil
}

func (c *Catalog) register() error {
	for i, code := range c.codes {
		loc := c.locales[code]
		keys := make([]string, 0, len(loc.Messages))
		for key := range loc.Messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := c.builder.SetString(c.tags[i], key, loc.Messages[key]); err != nil {
				return fmt.Errorf("registering %s/%s: %w", code, key, err)
			}
		}
	}
	return nil
}

// Default returns the fallback language code.
func (c *Catalog) Default() string {
	return c.defaultLang
}

// Supports reports whether lang has a loaded locale.
func (c *Catalog) Supports(lang string) bool {
	_, ok := c.locales[lang]
	return ok
}

// Languages lists the selector options, default language first.
func (c *Catalog) Languages() []Option {
	out := make([]Option, len(c.codes))
	for i, code := range c.codes {
		out[i] = Option{Code: code, Label: c.locales[code].Label}
	}
	return out
}

// Label returns the display name of lang, e.g. "中文".
func (c *Catalog) Label(lang string) string {
	return c.locale(lang).Label
}

// Locale returns a copy of the locale for lang with missing keys filled in
// from the default language.
func (c *Catalog) Locale(lang string) Locale {
	loc := c.locale(lang)
	def := c.locales[c.defaultLang]

	out := Locale{
		Code:     loc.Code,
		Label:    loc.Label,
		Messages: make(map[string]string, len(def.Messages)),
		HTML:     make(map[string]string, len(def.HTML)),
	}
	for k, v := range def.Messages {
		out.Messages[k] = v
	}
	for k, v := range def.HTML {
		out.HTML[k] = v
	}
	for k, v := range loc.Messages {
		out.Messages[k] = v
	}
	for k, v := range loc.HTML {
		out.HTML[k] = v
	}
	return out
}

// T returns the plain-text message for key. Missing keys fall back to the
// default language and then to the key itself.
func (c *Catalog) T(lang, key string) string {
	if v, ok := c.locale(lang).Messages[key]; ok {
		return v
	}
	if v, ok := c.locales[c.defaultLang].Messages[key]; ok {
		return v
	}
	return key
}

// HTML is T for the html section.
func (c *Catalog) HTML(lang, key string) string {
	if v, ok := c.locale(lang).HTML[key]; ok {
		return v
	}
	if v, ok := c.locales[c.defaultLang].HTML[key]; ok {
		return v
	}
	return key
}

// Printer returns a message printer for lang backed by this catalog.
func (c *Catalog) Printer(lang string) *message.Printer {
	return message.NewPrinter(c.tag(lang), message.Catalog(c.builder))
}

func (c *Catalog) locale(lang string) *Locale {
	if loc, ok := c.locales[lang]; ok {
		return loc
	}
	return c.locales[c.defaultLang]
}

func (c *Catalog) tag(lang string) language.Tag {
	for i, code := range c.codes {
		if code == lang {
			return c.tags[i]
		}
	}
	return c.tags[0]
}
