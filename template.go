package fluency

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// MissingTranslationHandler renders the output used when translate fails.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// HelperConfig configures template helper exports
type HelperConfig struct {
	LocaleKey         string
	TemplateHelperKey string
	OnMissing         MissingTranslationHandler
}

// TemplateHelpers exposes translator + number helpers for go-template. The
// translate helper accepts either a locale string or the template data as
// first argument and looks the locale up under LocaleKey.
func TemplateHelpers(t Translator, cfg HelperConfig) map[string]any {
	localeKey := cfg.LocaleKey
	if localeKey == "" {
		localeKey = "locale"
	}
	helperKey := cfg.TemplateHelperKey
	if helperKey == "" {
		helperKey = "translate"
	}

	currentLocale := func(ctx any) string {
		return localeFromContext(ctx, localeKey)
	}

	translate := func(ctx any, key string, args ...any) string {
		locale := localeFromContext(ctx, localeKey)
		if t == nil {
			return key
		}
		result, err := t.Translate(locale, key, args...)
		if err != nil {
			if cfg.OnMissing != nil {
				return cfg.OnMissing(locale, key, args, err)
			}
			return key
		}
		return result
	}

	formatNumber := func(locale string, value float64, decimals int) string {
		opts := DefaultNumberOptions()
		if decimals >= 0 {
			opts.MinimumFractionDigits = decimals
			opts.MaximumFractionDigits = decimals
		}
		tag, err := parseLocale(locale)
		if err != nil {
			tag = language.Und
		}
		return formatLocaleNumber(newNumberPrinter(tag), Number{Value: value, Options: opts})
	}

	return map[string]any{
		helperKey:        translate,
		"current_locale": currentLocale,
		"format_number":  formatNumber,
	}
}

func localeFromContext(ctx any, key string) string {
	switch v := ctx.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if locale, ok := v[key]; ok {
			return strings.TrimSpace(fmt.Sprint(locale))
		}
	case map[string]string:
		return v[key]
	case interface{ Locale() string }:
		return v.Locale()
	}
	return ""
}
