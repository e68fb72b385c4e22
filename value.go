package fluency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind tells which payload a Value carries.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
)

// NumberStyle selects how a number is rendered.
type NumberStyle int

const (
	StyleDecimal NumberStyle = iota
	StylePercent
)

// PluralType selects cardinal or ordinal plural rules for selection.
type PluralType int

const (
	PluralCardinal PluralType = iota
	PluralOrdinal
)

// NumberOptions mirror the NUMBER function arguments. A negative
// MaximumFractionDigits means unset.
type NumberOptions struct {
	MinimumFractionDigits int
	MaximumFractionDigits int
	UseGrouping           bool
	Type                  PluralType
	Style                 NumberStyle
}

// DefaultNumberOptions returns the options used by numeric setters.
func DefaultNumberOptions() NumberOptions {
	return NumberOptions{MaximumFractionDigits: -1, UseGrouping: true}
}

// Number is a numeric argument. Every integer and float width is stored as
// float64, so integers beyond 2^53 lose precision.
type Number struct {
	Value   float64
	Options NumberOptions
}

// Numeric lists the Go types accepted by NumberValue.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Value is a formatting argument: either text or a Number.
type Value struct {
	kind   ValueKind
	text   string
	number Number
}

// StringValue wraps text.
func StringValue(s string) Value {
	return Value{kind: ValueString, text: s}
}

// NumberValue wraps any numeric width.
func NumberValue[T Numeric](n T) Value {
	return Value{kind: ValueNumber, number: Number{Value: float64(n), Options: DefaultNumberOptions()}}
}

// NumberValueWithOptions wraps a float with explicit formatting options.
func NumberValueWithOptions(n float64, opts NumberOptions) Value {
	return Value{kind: ValueNumber, number: Number{Value: n, Options: opts}}
}

// ParseNumber reads a decimal numeral. The count of fraction digits becomes
// the minimum fraction digits so "1.50" renders back as "1.50".
func ParseNumber(text string) (Value, error) {
	trimmed := strings.TrimSpace(text)
	if !isDecimalNumeral(trimmed) {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}

	opts := DefaultNumberOptions()
	if dot := strings.IndexByte(trimmed, '.'); dot >= 0 {
		opts.MinimumFractionDigits = len(trimmed) - dot - 1
	}
	return NumberValueWithOptions(f, opts), nil
}

func isDecimalNumeral(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return false
	}
	if hasDot && fracPart == "" {
		return false
	}
	for _, part := range []string{intPart, fracPart} {
		for i := 0; i < len(part); i++ {
			if !isDigit(part[i]) {
				return false
			}
		}
	}
	return true
}

// Kind reports the payload kind.
func (v Value) Kind() ValueKind { return v.kind }

// Text returns the text payload.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == ValueString
}

// Number returns the numeric payload.
func (v Value) Number() (Number, bool) {
	return v.number, v.kind == ValueNumber
}

// String renders the value without locale data.
func (v Value) String() string {
	if v.kind == ValueNumber {
		return v.number.String()
	}
	return v.text
}

// String renders the number with "." as decimal separator and no grouping.
func (n Number) String() string {
	s := n.plain()
	if n.Options.Style == StylePercent {
		return s + "%"
	}
	return s
}

// plain renders the number honouring fraction digit options. Percent values
// are scaled and default to no fraction digits.
func (n Number) plain() string {
	v := n.Value
	if n.Options.Style == StylePercent {
		v *= 100
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	minDigits := n.Options.MinimumFractionDigits
	maxDigits := n.Options.MaximumFractionDigits
	if maxDigits < 0 && n.Options.Style == StylePercent {
		maxDigits = 0
	}
	if maxDigits >= 0 && maxDigits < minDigits {
		maxDigits = minDigits
	}

	var s string
	if maxDigits >= 0 {
		s = strconv.FormatFloat(v, 'f', maxDigits, 64)
		if strings.IndexByte(s, '.') >= 0 {
			s = trimFraction(s, minDigits)
		}
	} else if v == math.Trunc(v) {
		// exact digits of the stored float, not the shortest round trip
		s = strconv.FormatFloat(v, 'f', 0, 64)
	} else {
		s = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return padFraction(s, minDigits)
}

func trimFraction(s string, minDigits int) string {
	dot := strings.IndexByte(s, '.')
	end := len(s)
	for end > dot+1+minDigits && s[end-1] == '0' {
		end--
	}
	if end == dot+1 {
		end = dot
	}
	return s[:end]
}

func padFraction(s string, minDigits int) string {
	if minDigits <= 0 {
		return s
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s + "." + strings.Repeat("0", minDigits)
	}
	if have := len(s) - dot - 1; have < minDigits {
		return s + strings.Repeat("0", minDigits-have)
	}
	return s
}

// operands computes the CLDR plural operands of the visible number.
func (n Number) operands() (i, v, w, f, t int) {
	s := strings.TrimPrefix(n.withoutStyle().plain(), "-")
	intPart, frac, _ := strings.Cut(s, ".")

	i = atoiClamped(intPart)
	v = len(frac)
	f = atoiClamped(frac)
	trimmed := strings.TrimRight(frac, "0")
	w = len(trimmed)
	t = atoiClamped(trimmed)
	return i, v, w, f, t
}

func (n Number) withoutStyle() Number {
	n.Options.Style = StyleDecimal
	return n
}

func atoiClamped(s string) int {
	if s == "" {
		return 0
	}
	if len(s) > 18 {
		// plural rules only inspect the low order digits
		s = s[len(s)-18:]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
