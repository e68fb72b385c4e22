package fluency

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBundle(t *testing.T, locale, src string, opts ...BundleOption) *Bundle {
	t.Helper()
	b, err := NewBundle(locale, append([]BundleOption{WithUseIsolating(false)}, opts...)...)
	require.NoError(t, err)
	require.Empty(t, b.AddSource(src))
	return b
}

func formatID(t *testing.T, b *Bundle, id string, args *Args) (string, []error) {
	t.Helper()
	msg, ok := b.Message(id)
	require.True(t, ok, "message %q", id)
	out, errs, err := b.FormatMessage(msg, args)
	require.NoError(t, err)
	return out, errs
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func TestFormatPatterns(t *testing.T) {
	src := strings.Join([]string{
		"hello = Hello, world!",
		"greet = Hello, { $name }!",
		"-brand = Firefox",
		"    .gender = masculine",
		"about = About { -brand }",
		"login = Login",
		"    .title = Sign in",
		"hint = { login.title }!",
		"literal = { \"{\" } and { 1.50 }",
		"nested = { { $name } }",
		"emails = { $n ->",
		"    [0] no emails",
		"    [one] one email",
		"   *[other] { $n } emails",
		"}",
		"gender = { $g ->",
		"    [male] his",
		"   *[other] their",
		"}",
		"rank = { NUMBER($n, type: \"ordinal\") ->",
		"    [one] {$n}st",
		"    [two] {$n}nd",
		"    [few] {$n}rd",
		"   *[other] {$n}th",
		"}",
		"possessive = { -brand.gender ->",
		"    [masculine] his",
		"   *[other] its",
		"}",
		"price = { NUMBER($n, minimumFractionDigits: 2) }",
		"ratio = { NUMBER($r, style: \"percent\") }",
		"-product = { $case ->",
		"   *[nominative] Firefox",
		"    [genitive] Firefoxu",
		"}",
		"about-genitive = O { -product(case: \"genitive\") }",
		"about-default = O { -product }",
		"",
	}, "\n")
	b := newTestBundle(t, "en", src)

	tests := []struct {
		name string
		id   string
		args *Args
		want string
	}{
		{name: "plain text", id: "hello", want: "Hello, world!"},
		{name: "variable", id: "greet", args: NewArgs().SetString("name", "Anna"), want: "Hello, Anna!"},
		{name: "term", id: "about", want: "About Firefox"},
		{name: "attribute reference", id: "hint", want: "Sign in!"},
		{name: "literals", id: "literal", want: "{ and 1.50"},
		{name: "nested placeable", id: "nested", args: NewArgs().SetString("name", "Anna"), want: "Anna"},
		{name: "exact number key", id: "emails", args: NewArgs().SetInt("n", 0), want: "no emails"},
		{name: "plural one", id: "emails", args: NewArgs().SetInt("n", 1), want: "one email"},
		{name: "plural other", id: "emails", args: NewArgs().SetInt("n", 5), want: "5 emails"},
		{name: "string selector", id: "gender", args: NewArgs().SetString("g", "male"), want: "his"},
		{name: "string selector default", id: "gender", args: NewArgs().SetString("g", "x"), want: "their"},
		{name: "ordinal two", id: "rank", args: NewArgs().SetInt("n", 2), want: "2nd"},
		{name: "ordinal few", id: "rank", args: NewArgs().SetInt("n", 23), want: "23rd"},
		{name: "ordinal other", id: "rank", args: NewArgs().SetInt("n", 11), want: "11th"},
		{name: "term attribute selector", id: "possessive", want: "his"},
		{name: "minimum fraction digits", id: "price", args: NewArgs().SetInt("n", 3), want: "3.00"},
		{name: "percent", id: "ratio", args: NewArgs().SetNumber("r", 0.5), want: "50%"},
		{name: "term arguments", id: "about-genitive", want: "O Firefoxu"},
		{name: "term default variant", id: "about-default", want: "O Firefox"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, errs := formatID(t, b, tc.id, tc.args)
			assert.Empty(t, errs)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatVisibleFractionDigitsSelectPlural(t *testing.T) {
	b := newTestBundle(t, "en", "items = { $n ->\n    [one] one\n   *[other] other\n}\n")

	args := NewArgs()
	require.NoError(t, args.SetNumberFromString("n", "1"))
	got, _ := formatID(t, b, "items", args)
	assert.Equal(t, "one", got)

	require.NoError(t, args.SetNumberFromString("n", "1.0"))
	got, _ = formatID(t, b, "items", args)
	assert.Equal(t, "other", got)
}

func TestFormatFallbacks(t *testing.T) {
	src := strings.Join([]string{
		"var = Hi { $name }",
		"msg = See { missing }",
		"attr = See { hello.nope }",
		"term = See { -nope }",
		"term-attr = { -brand.nope ->",
		"   *[x] See",
		"}",
		"func = See { FOO() }",
		"func-arg = See { NUMBER($missing) }",
		"func-err = See { NUMBER(\"abc\") }",
		"selector = { $missing ->",
		"    [a] A",
		"   *[b] B",
		"}",
		"novalue = { only-attrs }",
		"only-attrs =",
		"    .title = Title",
		"hello = Hello",
		"-brand = Firefox",
		"",
	}, "\n")
	b := newTestBundle(t, "en", src)

	tests := []struct {
		id       string
		want     string
		wantErrs []string
	}{
		{id: "var", want: "Hi {$name}", wantErrs: []string{"unknown variable: $name"}},
		{id: "msg", want: "See {missing}", wantErrs: []string{"unknown message: missing"}},
		{id: "attr", want: "See {hello.nope}", wantErrs: []string{"unknown attribute: hello.nope"}},
		{id: "term", want: "See {-nope}", wantErrs: []string{"unknown term: -nope"}},
		{id: "term-attr", want: "See", wantErrs: []string{"unknown attribute: -brand.nope"}},
		{id: "func", want: "See {FOO()}", wantErrs: []string{"unknown function: FOO"}},
		{id: "func-arg", want: "See {NUMBER()}", wantErrs: []string{"unknown variable: $missing"}},
		{id: "func-err", want: "See {NUMBER()}", wantErrs: []string{`function NUMBER: fluency: invalid number: "abc"`}},
		{id: "selector", want: "B", wantErrs: []string{"unknown variable: $missing"}},
		{id: "novalue", want: "{only-attrs}", wantErrs: []string{"message has no value: only-attrs"}},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			got, errs := formatID(t, b, tc.id, nil)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantErrs, errorStrings(errs))
		})
	}
}

func TestFormatTermScope(t *testing.T) {
	src := strings.Join([]string{
		"-needs-arg = Value { $x }",
		"no-pass = { -needs-arg }",
		"-via-message = { shown }",
		"shown = { $x }",
		"through = { -via-message(x: \"term\") }",
		"",
	}, "\n")
	b := newTestBundle(t, "en", src)

	t.Run("missing term argument is silent", func(t *testing.T) {
		got, errs := formatID(t, b, "no-pass", NewArgs().SetString("x", "outer"))
		assert.Equal(t, "Value {$x}", got)
		assert.Empty(t, errs)
	})

	t.Run("messages read caller arguments", func(t *testing.T) {
		got, errs := formatID(t, b, "through", NewArgs().SetString("x", "outer"))
		assert.Equal(t, "outer", got)
		assert.Empty(t, errs)
	})
}

func TestFormatCycles(t *testing.T) {
	src := strings.Join([]string{
		"self = { self }",
		"foo = { bar }",
		"bar = { foo }",
		"-a = { -b }",
		"-b = { -a }",
		"terms = { -a }",
		"",
	}, "\n")
	b := newTestBundle(t, "en", src)

	tests := []struct {
		id      string
		want    string
		wantErr string
	}{
		{id: "self", want: "{self}", wantErr: "cyclic reference: self"},
		{id: "foo", want: "{foo}", wantErr: "cyclic reference: foo"},
		{id: "terms", want: "{-a}", wantErr: "cyclic reference: -a"},
	}
	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			got, errs := formatID(t, b, tc.id, nil)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, []string{tc.wantErr}, errorStrings(errs))
		})
	}
}

func TestFormatTooManyPlaceables(t *testing.T) {
	b := newTestBundle(t, "en", "many = { $a }-{ $a }-{ $a }\n", WithMaxPlaceables(2))

	got, errs := formatID(t, b, "many", NewArgs().SetInt("a", 1))
	assert.Equal(t, "1-1-", got)
	require.Len(t, errs, 1)

	var rerr *ResolverError
	require.True(t, errors.As(errs[0], &rerr))
	assert.Equal(t, ResolveTooManyPlaceables, rerr.Kind)
}

func TestFormatExpansionIsBounded(t *testing.T) {
	var src strings.Builder
	src.WriteString("lol0 = LOL\n")
	for i := 1; i <= 6; i++ {
		src.WriteString("lol" + string(rune('0'+i)) + " =")
		for j := 0; j < 10; j++ {
			src.WriteString(" {lol" + string(rune('0'+i-1)) + "}")
		}
		src.WriteString("\n")
	}
	b := newTestBundle(t, "en", src.String())

	got, errs := formatID(t, b, "lol6", nil)
	assert.Less(t, len(got), 1000)
	assert.Contains(t, errorStrings(errs), "too many placeables")
}

func TestFormatIsolation(t *testing.T) {
	src := strings.Join([]string{
		"greet = Hello, { $name }!",
		"only = { $name }",
		"-brand = Firefox",
		"about = About { -brand } and { \"text\" }",
		"",
	}, "\n")
	b := newTestBundle(t, "en", src, WithUseIsolating(true))
	args := NewArgs().SetString("name", "Anna")

	got, _ := formatID(t, b, "greet", args)
	assert.Equal(t, "Hello, \u2068Anna\u2069!", got)

	got, _ = formatID(t, b, "only", args)
	assert.Equal(t, "Anna", got)

	got, _ = formatID(t, b, "about", nil)
	assert.Equal(t, "About Firefox and text", got)

	b.SetUseIsolating(false)
	got, _ = formatID(t, b, "greet", args)
	assert.Equal(t, "Hello, Anna!", got)
}

func TestFormatTransform(t *testing.T) {
	b := newTestBundle(t, "en", "hello = Hello { $name }\nplain = quiet\n", WithTransform(strings.ToUpper))

	got, _ := formatID(t, b, "hello", NewArgs().SetString("name", "Anna"))
	assert.Equal(t, "HELLO Anna", got)

	got, _ = formatID(t, b, "plain", nil)
	assert.Equal(t, "QUIET", got)
}

func TestFormatCustomFunction(t *testing.T) {
	upper := func(positional []Value, named *Args) (Value, error) {
		if len(positional) != 1 {
			return Value{}, errors.New("expected one argument")
		}
		return StringValue(strings.ToUpper(positional[0].String())), nil
	}
	b := newTestBundle(t, "en", "shout = { UPPER($name) }!\n", WithFunction("UPPER", upper))

	got, errs := formatID(t, b, "shout", NewArgs().SetString("name", "anna"))
	assert.Empty(t, errs)
	assert.Equal(t, "ANNA!", got)
}

func TestFormatPercent(t *testing.T) {
	src := "progress = Profile { NUMBER($c, style: \"percent\") } complete\n"

	for _, opts := range [][]BundleOption{nil, {WithLocaleNumbers()}} {
		b := newTestBundle(t, "en", src, opts...)
		for _, tc := range []struct {
			in   float64
			want string
		}{
			{in: 0.07, want: "Profile 7% complete"},
			{in: 0.29, want: "Profile 29% complete"},
			{in: 1, want: "Profile 100% complete"},
		} {
			got, errs := formatID(t, b, "progress", NewArgs().SetNumber("c", tc.in))
			assert.Empty(t, errs)
			assert.Equal(t, tc.want, got, "locale numbers: %v", len(opts) > 0)
		}
	}
}

func TestFormatLocaleNumbers(t *testing.T) {
	src := "total = { $n }\nplain = { NUMBER($n, useGrouping: \"false\") }\n"

	de := newTestBundle(t, "de", src, WithLocaleNumbers())
	got, _ := formatID(t, de, "total", NewArgs().SetNumber("n", 1234.5))
	assert.Equal(t, "1.234,5", got)

	got, _ = formatID(t, de, "plain", NewArgs().SetNumber("n", 1234.5))
	assert.Equal(t, "1234,5", got)

	en := newTestBundle(t, "en", src)
	got, _ = formatID(t, en, "total", NewArgs().SetNumber("n", 1234.5))
	assert.Equal(t, "1234.5", got)
}
