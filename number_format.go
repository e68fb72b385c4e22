package fluency

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// formatNumber renders n for the bundle. Without locale numbers the output
// is locale independent ("1234.5"); with them separators follow CLDR.
func (b *Bundle) formatNumber(n Number) string {
	if !b.localeNumbers {
		return n.String()
	}

	printer, err := memoize(b.memo, "printer|"+b.locale.String(), func() (*message.Printer, error) {
		return newNumberPrinter(b.locale), nil
	})
	if err != nil || printer == nil {
		return n.String()
	}
	return formatLocaleNumber(printer, n)
}

func newNumberPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

func formatLocaleNumber(printer *message.Printer, n Number) string {
	minDigits := n.Options.MinimumFractionDigits
	maxDigits := n.Options.MaximumFractionDigits
	if maxDigits < 0 {
		// keep every visible digit when no maximum was requested
		maxDigits = visibleFractionDigits(n.plain())
	}
	if maxDigits < minDigits {
		maxDigits = minDigits
	}

	opts := []number.Option{
		number.MinFractionDigits(minDigits),
		number.MaxFractionDigits(maxDigits),
	}
	if !n.Options.UseGrouping {
		opts = append(opts, number.NoSeparator())
	}

	if n.Options.Style == StylePercent {
		return printer.Sprintf("%v", number.Percent(n.Value, opts...))
	}
	return printer.Sprintf("%v", number.Decimal(n.Value, opts...))
}

func visibleFractionDigits(s string) int {
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		return len(s) - dot - 1
	}
	return 0
}
