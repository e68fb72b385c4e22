package fluency

import (
	"fmt"
	"strings"
)

// Function is a callable available to patterns as NAME(...). Errors are
// reported as diagnostics and the call renders as {NAME()}.
type Function func(positional []Value, named *Args) (Value, error)

func builtinFunctions() map[string]Function {
	return map[string]Function{
		"NUMBER": numberFunction,
	}
}

// numberFunction implements NUMBER($n, minimumFractionDigits: 2, ...).
func numberFunction(positional []Value, named *Args) (Value, error) {
	if len(positional) == 0 {
		return Value{}, fmt.Errorf("expected one positional argument")
	}

	var n Number
	switch arg := positional[0]; arg.Kind() {
	case ValueNumber:
		n, _ = arg.Number()
	default:
		text, _ := arg.Text()
		parsed, err := ParseNumber(text)
		if err != nil {
			return Value{}, err
		}
		n, _ = parsed.Number()
	}

	for _, key := range named.Keys() {
		value, _ := named.Get(key)
		if err := applyNumberOption(&n.Options, key, value); err != nil {
			return Value{}, err
		}
	}
	return NumberValueWithOptions(n.Value, n.Options), nil
}

func applyNumberOption(opts *NumberOptions, key string, value Value) error {
	switch key {
	case "minimumFractionDigits":
		digits, err := optionDigits(key, value)
		if err != nil {
			return err
		}
		opts.MinimumFractionDigits = digits
	case "maximumFractionDigits":
		digits, err := optionDigits(key, value)
		if err != nil {
			return err
		}
		opts.MaximumFractionDigits = digits
	case "useGrouping":
		switch strings.ToLower(value.String()) {
		case "false", "never":
			opts.UseGrouping = false
		default:
			opts.UseGrouping = true
		}
	case "type":
		switch value.String() {
		case "ordinal":
			opts.Type = PluralOrdinal
		case "cardinal":
			opts.Type = PluralCardinal
		default:
			return fmt.Errorf("unsupported type %q", value.String())
		}
	case "style":
		switch value.String() {
		case "decimal":
			opts.Style = StyleDecimal
		case "percent":
			opts.Style = StylePercent
		default:
			return fmt.Errorf("unsupported style %q", value.String())
		}
	}
	// unknown options are ignored, as in ICU
	return nil
}

func optionDigits(key string, value Value) (int, error) {
	n, ok := value.Number()
	if !ok || n.Value < 0 || n.Value > 20 || n.Value != float64(int(n.Value)) {
		return 0, fmt.Errorf("%s must be an integer between 0 and 20", key)
	}
	return int(n.Value), nil
}
