// Package i18n holds the localized reply templates and language resolution.
package i18n

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"hotel_concierge/src/model"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var defaultLocales []byte

// Fallback is returned for a key the catalog does not know at all.
const Fallback = "I'm here to help!"

// Supported lists the languages the catalog may carry, English first.
var Supported = []model.Language{
	model.LanguageEnglish,
	model.LanguageArabic,
	model.LanguageMalay,
	model.LanguageFrench,
	model.LanguageIndonesian,
	model.LanguageHindi,
}

var matcher = language.NewMatcher(func() []language.Tag {
	tags := make([]language.Tag, len(Supported))
	for i, l := range Supported {
		tags[i] = language.MustParse(string(l))
	}
	return tags
}())

// Catalog maps (key, language) to a template. Lookups never fail: a missing
// language falls back to English, a missing key to Fallback.
type Catalog struct {
	texts map[string]map[model.Language]string
}

func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultLocales)
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded locales: %v", err))
	}
	return c
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading locales: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a locale file and rejects any key without English text.
func ParseCatalog(data []byte) (*Catalog, error) {
	var texts map[string]map[model.Language]string
	if err := yaml.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("error parsing locales: %w", err)
	}

	var missing []string
	for key, byLang := range texts {
		if strings.TrimSpace(byLang[model.LanguageEnglish]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("locales missing english text for: %s", strings.Join(missing, ", "))
	}
	return &Catalog{texts: texts}, nil
}

// Text returns the template for key in lang, falling back to English.
func (c *Catalog) Text(key string, lang model.Language) string {
	byLang, ok := c.texts[key]
	if !ok {
		return Fallback
	}
	if text, ok := byLang[lang]; ok && text != "" {
		return text
	}
	return byLang[model.LanguageEnglish]
}

// Has reports whether key has its own entry for lang, without fallback.
func (c *Catalog) Has(key string, lang model.Language) bool {
	text, ok := c.texts[key][lang]
	return ok && text != ""
}

// Keys returns every template key, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.texts))
	for k := range c.texts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render fills {placeholder} markers from params. Unknown markers are kept.
func (c *Catalog) Render(key string, lang model.Language, params map[string]string) string {
	text := c.Text(key, lang)
	if len(params) == 0 {
		return text
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Resolve maps a BCP 47 tag ("fr-CA", "ar_SA", "hi") onto a supported
// language, English when nothing is close.
func Resolve(tag string) model.Language {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return model.LanguageEnglish
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return model.LanguageEnglish
	}
	_, index, confidence := matcher.Match(parsed)
	if confidence == language.No {
		return model.LanguageEnglish
	}
	return Supported[index]
}

// IsSupported reports whether lang is one of the catalog languages.
func IsSupported(lang model.Language) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}
