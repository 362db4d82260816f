// Package i18n renders board messages from embedded TOML bundles with go-i18n.
package i18n

import (
	"embed"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"activityboard/internal/domain/locale"
)

//go:embed active.*.toml
var localeFS embed.FS

var bundleFiles = []string{"active.en.toml", "active.fr.toml"}

// Ensure Translator implements the locale.Translator port.
var _ locale.Translator = (*Translator)(nil)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// NewTranslator builds a Translator whose fallback language is defaultLocale (e.g. "en").
func NewTranslator(defaultLocale string) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range bundleFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			slog.Error("i18n_bundle_load_failed", "file", file, "error", err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
	}
}

// DefaultLanguage returns the fallback language.
func (t *Translator) DefaultLanguage() language.Tag {
	return t.defaultLanguage
}

// T renders the message identified by key for locale, which may be a tag or an
// Accept-Language header. A "Count" entry in data selects the plural form.
// Unknown keys fall back to the default language, then to the key itself.
func (t *Translator) T(loc, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	var languages []string
	if loc != "" {
		languages = append(languages, loc)
	}
	languages = append(languages, t.defaultLanguage.String())

	cfg := &i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	}
	if count, ok := data["Count"]; ok {
		cfg.PluralCount = count
	}

	msg, err := i18n.NewLocalizer(t.bundle, languages...).Localize(cfg)
	if err != nil {
		slog.Warn("i18n_localize_failed", "key", key, "locales", languages, "error", err)
		return key
	}
	return msg
}
