package ffi

import (
	"bytes"
	"testing"

	"github.com/goliatone/go-fluency"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `
hello = Hello, { $name }!
emails = { $count ->
    [one] one email
   *[other] { $count } emails
}
login =
    .placeholder = Email
    .title = Sign in
`

func newTable(t *testing.T) (*Table, Handle) {
	t.Helper()
	table := NewTable(WithBundleOptions(fluency.WithUseIsolating(false)))
	bundle, status := table.CreateBundle([]byte("en-US"))
	require.Equal(t, Ok, status)
	status, diags := table.AddResource(bundle, []byte(source))
	require.Equal(t, Ok, status)
	require.Empty(t, diags)
	return table, bundle
}

func TestCreateBundle(t *testing.T) {
	table := NewTable()

	tests := []struct {
		name   string
		locale []byte
		want   Status
	}{
		{name: "valid", locale: []byte("en-US"), want: Ok},
		{name: "underscore", locale: []byte("pt_BR"), want: Ok},
		{name: "null", locale: nil, want: NullPointer},
		{name: "empty", locale: []byte(""), want: InvalidLocale},
		{name: "garbage", locale: []byte("!!"), want: InvalidLocale},
		{name: "not utf8", locale: []byte{0xff}, want: InvalidUnicode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, status := table.CreateBundle(tc.locale)
			assert.Equal(t, tc.want, status)
			if tc.want == Ok {
				assert.NotZero(t, h)
				table.DestroyBundle(h)
			} else {
				assert.Zero(t, h)
			}
		})
	}
	assert.Equal(t, 0, table.Live(KindBundle))
}

func TestAddResourceDiagnostics(t *testing.T) {
	table, bundle := newTable(t)

	status, diags := table.AddResource(bundle, []byte("hello = Again\n!junk\n"))
	assert.Equal(t, Ok, status)
	assert.Equal(t, []string{
		"expected a message, term or comment (14:20)",
		`attempt to override an existing message: "hello"`,
	}, diags)
	assert.Equal(t, len(diags), cap(diags))

	status, diags = table.AddResourceOverriding(bundle, []byte("hello = Replaced\n"))
	assert.Equal(t, Ok, status)
	assert.Empty(t, diags)

	msg, _ := table.GetMessage(bundle, []byte("hello"))
	out, _, status := table.FormatMessage(bundle, msg, 0)
	assert.Equal(t, Ok, status)
	assert.Equal(t, "Replaced", out)

	status, _ = table.AddResource(bundle, []byte{0xff})
	assert.Equal(t, InvalidUnicode, status)
	status, _ = table.AddResource(bundle, nil)
	assert.Equal(t, NullPointer, status)
	status, _ = table.AddResource(0, []byte("a = b"))
	assert.Equal(t, NullPointer, status)
}

func TestMessageLookup(t *testing.T) {
	table, bundle := newTable(t)

	ok, status := table.HasMessage(bundle, []byte("hello"))
	assert.Equal(t, Ok, status)
	assert.True(t, ok)

	ok, status = table.HasMessage(bundle, []byte("missing"))
	assert.Equal(t, Ok, status)
	assert.False(t, ok)

	msg, status := table.GetMessage(bundle, []byte("missing"))
	assert.Equal(t, Ok, status)
	assert.Zero(t, msg)

	_, status = table.GetMessage(bundle, []byte{0xc3})
	assert.Equal(t, InvalidUnicode, status)
}

func TestFormatMessageWithArgs(t *testing.T) {
	table, bundle := newTable(t)

	msg, status := table.GetMessage(bundle, []byte("emails"))
	require.Equal(t, Ok, status)

	args := table.CreateArgsWithCapacity(1 << 40)
	require.Equal(t, Ok, table.SetArgInt(args, []byte("count"), 1))
	out, diags, status := table.FormatMessage(bundle, msg, args)
	assert.Equal(t, Ok, status)
	assert.Empty(t, diags)
	assert.Equal(t, "one email", out)

	require.Equal(t, Ok, table.SetArgTryNumber(args, []byte("count"), []byte("3")))
	out, _, _ = table.FormatMessage(bundle, msg, args)
	assert.Equal(t, "3 emails", out)

	require.Equal(t, Ok, table.SetArgUint(args, []byte("count"), 18446744073709551615))
	out, _, _ = table.FormatMessage(bundle, msg, args)
	assert.Equal(t, "18446744073709551616 emails", out)

	require.Equal(t, Ok, table.SetArgFloat(args, []byte("count"), 2.5))
	out, _, _ = table.FormatMessage(bundle, msg, args)
	assert.Equal(t, "2.5 emails", out)

	table.DestroyArgs(args)
	table.DestroyMessage(msg)
	assert.Equal(t, 0, table.Live(KindArgs))
	assert.Equal(t, 0, table.Live(KindMessage))
}

func TestFormatMessageDiagnostics(t *testing.T) {
	table, bundle := newTable(t)
	msg, _ := table.GetMessage(bundle, []byte("hello"))

	out, diags, status := table.FormatMessage(bundle, msg, 0)
	assert.Equal(t, Ok, status)
	assert.Equal(t, "Hello, {$name}!", out)
	assert.Equal(t, []string{"unknown variable: $name"}, diags)

	args := table.CreateArgs()
	require.Equal(t, Ok, table.SetArgString(args, []byte("name"), []byte("Anna")))
	out, diags, _ = table.FormatMessage(bundle, msg, args)
	assert.Equal(t, "Hello, Anna!", out)
	assert.Empty(t, diags)
}

func TestSetArgErrors(t *testing.T) {
	table := NewTable()
	args := table.CreateArgs()

	assert.Equal(t, InvalidNumber, table.SetArgTryNumber(args, []byte("n"), []byte("twelve")))
	assert.Equal(t, InvalidNumber, table.SetArgTryNumber(args, []byte("n"), []byte("1.")))
	assert.Equal(t, NullPointer, table.SetArgString(0, []byte("k"), []byte("v")))
	assert.Equal(t, NullPointer, table.SetArgString(args, nil, []byte("v")))
	assert.Equal(t, NullPointer, table.SetArgString(args, []byte("k"), nil))
	assert.Equal(t, InvalidUnicode, table.SetArgString(args, []byte("k"), []byte{0xff}))
	assert.Equal(t, InvalidUnicode, table.SetArgInt(args, []byte{0xff}, 1))

	bundle, _ := table.CreateBundle([]byte("en"))
	assert.Equal(t, NullPointer, table.SetArgInt(bundle, []byte("k"), 1), "bundle handle used as args")
}

func TestMissingValue(t *testing.T) {
	table, bundle := newTable(t)
	msg, _ := table.GetMessage(bundle, []byte("login"))

	out, diags, status := table.FormatMessage(bundle, msg, 0)
	assert.Equal(t, MissingValue, status)
	assert.Empty(t, out)
	assert.Nil(t, diags)
}

func TestAttributes(t *testing.T) {
	table, bundle := newTable(t)
	msg, _ := table.GetMessage(bundle, []byte("login"))

	attrs, status := table.GetAttributes(msg)
	require.Equal(t, Ok, status)
	require.Len(t, attrs, 2)
	assert.Equal(t, len(attrs), cap(attrs))

	var ids []string
	for _, attr := range attrs {
		id, status := table.GetAttributeID(attr)
		require.Equal(t, Ok, status)
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"placeholder", "title"}, ids)

	title, status := table.GetAttribute(msg, []byte("title"))
	require.Equal(t, Ok, status)
	out, _, status := table.FormatAttribute(bundle, title, 0)
	assert.Equal(t, Ok, status)
	assert.Equal(t, "Sign in", out)

	missing, status := table.GetAttribute(msg, []byte("nope"))
	assert.Equal(t, Ok, status)
	assert.Zero(t, missing)

	table.DestroyAttribute(title)
	table.DestroyAttributes(attrs)
	assert.Equal(t, 0, table.Live(KindAttribute))

	_, status = table.GetAttributeID(title)
	assert.Equal(t, NullPointer, status)
}

func TestDestroyBundleInvalidatesViews(t *testing.T) {
	table, bundle := newTable(t)
	msg, _ := table.GetMessage(bundle, []byte("login"))
	attr, _ := table.GetAttribute(msg, []byte("title"))

	table.DestroyBundle(bundle)

	_, status := table.HasMessage(bundle, []byte("hello"))
	assert.Equal(t, NullPointer, status)

	_, _, status = table.FormatAttribute(bundle, attr, 0)
	assert.Equal(t, NullPointer, status)

	_, status = table.GetAttributes(msg)
	assert.Equal(t, NullPointer, status)

	_, status = table.GetAttributeID(attr)
	assert.Equal(t, NullPointer, status)

	// views are still released cleanly
	table.DestroyAttribute(attr)
	table.DestroyMessage(msg)
	table.DestroyBundle(bundle)
	assert.Equal(t, 0, table.Live(KindMessage))
	assert.Equal(t, 0, table.Live(KindAttribute))
}

func TestMisuseIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := fluency.NewLogger(fluency.LogConfig{Level: "error", Format: "text", Output: &buf})
	table := NewTable(WithLogger(logger))

	table.DestroyArgs(0)
	assert.Zero(t, buf.Len(), "null handles are silent")

	args := table.CreateArgs()
	table.DestroyArgs(args)
	table.DestroyArgs(args)
	assert.Contains(t, buf.String(), "invalid handle")
	assert.Contains(t, buf.String(), "destroy_args")
}

func TestDestroyNullHandles(t *testing.T) {
	var buf bytes.Buffer
	logger := fluency.NewLogger(fluency.LogConfig{Level: "debug", Format: "text", Output: &buf})
	table := NewTable(WithLogger(logger))

	bundle, _ := table.CreateBundle([]byte("en"))
	_, _ = table.AddResource(bundle, []byte("login =\n    .title = Sign in\n"))
	msg, _ := table.GetMessage(bundle, []byte("login"))
	attr, _ := table.GetAttribute(msg, []byte("title"))
	args := table.CreateArgs()
	require.NotZero(t, attr)
	require.NotZero(t, args)
	buf.Reset()

	live := func() map[Kind]int {
		return map[Kind]int{
			KindBundle:    table.Live(KindBundle),
			KindMessage:   table.Live(KindMessage),
			KindAttribute: table.Live(KindAttribute),
			KindArgs:      table.Live(KindArgs),
		}
	}
	before := live()

	tests := []struct {
		name    string
		destroy func()
	}{
		{name: "bundle", destroy: func() { table.DestroyBundle(0) }},
		{name: "message", destroy: func() { table.DestroyMessage(0) }},
		{name: "attribute", destroy: func() { table.DestroyAttribute(0) }},
		{name: "attributes nil", destroy: func() { table.DestroyAttributes(nil) }},
		{name: "attributes of nulls", destroy: func() { table.DestroyAttributes([]Handle{0, 0}) }},
		{name: "args", destroy: func() { table.DestroyArgs(0) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for range 3 {
				assert.NotPanics(t, tc.destroy)
			}
			assert.Zero(t, buf.Len(), "null destroy logged: %s", buf.String())
			assert.Equal(t, before, live())
		})
	}
}

func TestSetUseIsolating(t *testing.T) {
	table := NewTable()
	bundle, _ := table.CreateBundle([]byte("en"))
	_, _ = table.AddResource(bundle, []byte("hello = Hello, { $name }!\n"))
	msg, _ := table.GetMessage(bundle, []byte("hello"))
	args := table.CreateArgs()
	table.SetArgString(args, []byte("name"), []byte("Anna"))

	out, _, _ := table.FormatMessage(bundle, msg, args)
	assert.Equal(t, "Hello, \u2068Anna\u2069!", out)

	require.Equal(t, Ok, table.SetUseIsolating(bundle, false))
	out, _, _ = table.FormatMessage(bundle, msg, args)
	assert.Equal(t, "Hello, Anna!", out)

	assert.Equal(t, NullPointer, table.SetUseIsolating(0, true))
}

func TestLiveHandlesMetric(t *testing.T) {
	metrics, err := fluency.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	table := NewTable(WithMetrics(metrics))

	a := table.CreateArgs()
	b := table.CreateArgs()
	assert.Equal(t, 2, table.Live(KindArgs))
	table.DestroyArgs(a)
	table.DestroyArgs(b)
	assert.Equal(t, 0, table.Live(KindArgs))

	// the gauge follows the registry
	reg := prometheus.NewRegistry()
	m2, err := fluency.NewMetrics(reg)
	require.NoError(t, err)
	t2 := NewTable(WithMetrics(m2))
	t2.CreateArgs()
	count, err := testutil.GatherAndCount(reg, "fluency_ffi_live_handles")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
