package fluency

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

var pluralForms = map[plural.Form]PluralCategory{
	plural.Zero:  PluralZero,
	plural.One:   PluralOne,
	plural.Two:   PluralTwo,
	plural.Few:   PluralFew,
	plural.Many:  PluralMany,
	plural.Other: PluralOther,
}

// PluralCategoryOf returns the CLDR category of n in tag. Visible fraction
// digits count, so 1 and 1.0 may select different categories.
func PluralCategoryOf(tag language.Tag, typ PluralType, n Number) PluralCategory {
	rules := plural.Cardinal
	if typ == PluralOrdinal {
		rules = plural.Ordinal
	}
	i, v, w, f, t := n.operands()
	if category, ok := pluralForms[rules.MatchPlural(tag, i, v, w, f, t)]; ok {
		return category
	}
	return PluralOther
}

func (b *Bundle) pluralCategory(n Number) PluralCategory {
	typ := n.Options.Type
	key := "plural|" + b.locale.String() + "|" + pluralTypeName(typ) + "|" + n.withoutStyle().plain()
	category, err := memoize(b.memo, key, func() (PluralCategory, error) {
		return PluralCategoryOf(b.locale, typ, n), nil
	})
	if err != nil {
		return PluralCategoryOf(b.locale, typ, n)
	}
	return category
}

func pluralTypeName(typ PluralType) string {
	if typ == PluralOrdinal {
		return "ordinal"
	}
	return "cardinal"
}
