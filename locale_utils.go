package fluency

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// parseLocale validates a BCP 47 tag. Underscores are accepted as separators.
func parseLocale(locale string) (language.Tag, error) {
	normalized := normalizeLocale(locale)
	if normalized == "" {
		return language.Und, fmt.Errorf("%w: empty tag", ErrInvalidLocale)
	}
	tag, err := language.Parse(normalized)
	var unknown language.ValueError
	if errors.As(err, &unknown) {
		// well formed but carries a subtag missing from CLDR
		return tag, nil
	}
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q: %v", ErrInvalidLocale, locale, err)
	}
	return tag, nil
}

// parentLocales lists the locales consulted after locale, closest first.
// CLDR parents come first ("es-MX" -> "es-419" -> "es"), then plain subtag
// truncation covers tags x/text cannot parse.
func parentLocales(locale string) []string {
	if locale == "" {
		return nil
	}

	var chain []string
	seen := map[string]bool{locale: true}
	add := func(candidate string) bool {
		if candidate == "" || candidate == "und" || seen[candidate] {
			return false
		}
		seen[candidate] = true
		chain = append(chain, candidate)
		return true
	}

	if tag, err := language.Parse(locale); err == nil {
		for parent := tag.Parent(); parent != language.Und; parent = parent.Parent() {
			if !add(parent.String()) {
				break
			}
		}
	}

	for rest := locale; ; {
		idx := strings.LastIndexByte(rest, '-')
		if idx <= 0 {
			break
		}
		rest = rest[:idx]
		add(rest)
	}
	return chain
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
}

// sortedLocales normalizes locales, drops blanks and duplicates, and sorts.
func sortedLocales(locales []string) []string {
	out := make([]string, 0, len(locales))
	for _, locale := range locales {
		if normalized := normalizeLocale(locale); normalized != "" {
			out = append(out, normalized)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}
