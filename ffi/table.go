package ffi

import (
	"errors"
	"log/slog"

	"github.com/goliatone/go-fluency"
)

// Table is the flat function table behind the C library. Every operation
// validates its handles and text, never panics on bad input, and reports
// failures through a Status.
type Table struct {
	handles       *Registry
	logger        *slog.Logger
	metrics       *fluency.Metrics
	bundleOptions []fluency.BundleOption
}

// Option mutates a Table during construction
type Option func(*Table)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func WithMetrics(metrics *fluency.Metrics) Option {
	return func(t *Table) {
		t.metrics = metrics
	}
}

// WithBundleOptions applies opts to every bundle created through the table.
func WithBundleOptions(opts ...fluency.BundleOption) Option {
	return func(t *Table) {
		t.bundleOptions = append(t.bundleOptions, opts...)
	}
}

func NewTable(opts ...Option) *Table {
	t := &Table{
		handles: NewRegistry(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Live returns the number of live handles of kind.
func (t *Table) Live(kind Kind) int {
	return t.handles.Live(kind)
}

type messageRef struct {
	message *fluency.Message
}

type attributeRef struct {
	attribute *fluency.Attribute
}

func (t *Table) put(kind Kind, value any) Handle {
	h := t.handles.Put(kind, value)
	t.metrics.SetLiveHandles(kind.String(), t.handles.Live(kind))
	return h
}

// release frees h. The null handle is a no-op; anything else that does not
// resolve is logged and ignored.
func (t *Table) release(op string, h Handle, kind Kind) any {
	if h == 0 {
		return nil
	}
	value, err := t.handles.Release(h, kind)
	if err != nil {
		t.misuse(op, err)
		return nil
	}
	t.metrics.SetLiveHandles(kind.String(), t.handles.Live(kind))
	return value
}

func (t *Table) misuse(op string, err error) {
	if errors.Is(err, ErrNullHandle) {
		return
	}
	t.logger.Error("invalid handle", slog.String("op", op), slog.Any("error", err))
}

func (t *Table) bundle(op string, h Handle) (*fluency.Bundle, Status) {
	value, err := t.handles.Get(h, KindBundle)
	if err != nil {
		t.misuse(op, err)
		return nil, NullPointer
	}
	return value.(*fluency.Bundle), Ok
}

func (t *Table) message(op string, h Handle) (*fluency.Message, Status) {
	value, err := t.handles.Get(h, KindMessage)
	if err != nil {
		t.misuse(op, err)
		return nil, NullPointer
	}
	msg := value.(*messageRef).message
	if !msg.Valid() {
		t.misuse(op, fluency.ErrStaleHandle)
		return nil, NullPointer
	}
	return msg, Ok
}

func (t *Table) attribute(op string, h Handle) (*fluency.Attribute, Status) {
	value, err := t.handles.Get(h, KindAttribute)
	if err != nil {
		t.misuse(op, err)
		return nil, NullPointer
	}
	attr := value.(*attributeRef).attribute
	if !attr.Message().Valid() {
		t.misuse(op, fluency.ErrStaleHandle)
		return nil, NullPointer
	}
	return attr, Ok
}

// args resolves an optional args handle; zero means no arguments.
func (t *Table) args(op string, h Handle) (*fluency.Args, Status) {
	if h == 0 {
		return nil, Ok
	}
	value, err := t.handles.Get(h, KindArgs)
	if err != nil {
		t.misuse(op, err)
		return nil, NullPointer
	}
	return value.(*fluency.Args), Ok
}

func (t *Table) requiredArgs(op string, h Handle) (*fluency.Args, Status) {
	if h == 0 {
		return nil, NullPointer
	}
	return t.args(op, h)
}

// CreateBundle validates locale and returns a new bundle handle.
func (t *Table) CreateBundle(locale []byte) (Handle, Status) {
	tag, status := Text(locale)
	if status != Ok {
		return 0, status
	}
	b, err := fluency.NewBundle(tag, t.bundleOptions...)
	if err != nil {
		t.logger.Debug("create bundle failed", slog.String("locale", tag), slog.Any("error", err))
		return 0, StatusFromError(err)
	}
	return t.put(KindBundle, b), Ok
}

// DestroyBundle closes the bundle. Message and attribute handles created
// from it stop resolving.
func (t *Table) DestroyBundle(h Handle) {
	if b, ok := t.release("destroy_bundle", h, KindBundle).(*fluency.Bundle); ok {
		b.Close()
	}
}

// AddResource parses text into the bundle keeping existing definitions.
func (t *Table) AddResource(bundle Handle, text []byte) (Status, []string) {
	return t.addResource("add_resource", bundle, text, false)
}

// AddResourceOverriding parses text into the bundle replacing existing
// definitions.
func (t *Table) AddResourceOverriding(bundle Handle, text []byte) (Status, []string) {
	return t.addResource("add_resource_overriding", bundle, text, true)
}

func (t *Table) addResource(op string, bundle Handle, text []byte, override bool) (Status, []string) {
	b, status := t.bundle(op, bundle)
	if status != Ok {
		return status, nil
	}
	source, status := Text(text)
	if status != Ok {
		return status, nil
	}

	res := fluency.ParseResource(source)
	var errs []error
	if override {
		errs = b.AddResourceOverriding(res)
	} else {
		errs = b.AddResource(res)
	}
	return Ok, t.diagnostics(op, errs)
}

func (t *Table) diagnostics(op string, errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
		t.logger.Debug("diagnostic", slog.String("op", op), slog.String("text", out[i]))
	}
	return Flatten(out)
}

func (t *Table) SetUseIsolating(bundle Handle, enabled bool) Status {
	b, status := t.bundle("set_use_isolating", bundle)
	if status != Ok {
		return status
	}
	b.SetUseIsolating(enabled)
	return Ok
}

func (t *Table) HasMessage(bundle Handle, id []byte) (bool, Status) {
	b, status := t.bundle("has_message", bundle)
	if status != Ok {
		return false, status
	}
	key, status := Text(id)
	if status != Ok {
		return false, status
	}
	return b.HasMessage(key), Ok
}

// GetMessage returns a message handle, or the null handle with Ok when the
// id is unknown.
func (t *Table) GetMessage(bundle Handle, id []byte) (Handle, Status) {
	b, status := t.bundle("get_message", bundle)
	if status != Ok {
		return 0, status
	}
	key, status := Text(id)
	if status != Ok {
		return 0, status
	}
	msg, ok := b.Message(key)
	if !ok {
		return 0, Ok
	}
	return t.put(KindMessage, &messageRef{message: msg}), Ok
}

func (t *Table) DestroyMessage(h Handle) {
	t.release("destroy_message", h, KindMessage)
}

func (t *Table) CreateArgs() Handle {
	return t.put(KindArgs, fluency.NewArgs())
}

func (t *Table) CreateArgsWithCapacity(n uint64) Handle {
	const maxHint = 1 << 16
	if n > maxHint {
		n = maxHint
	}
	return t.put(KindArgs, fluency.NewArgsWithCapacity(int(n)))
}

func (t *Table) DestroyArgs(h Handle) {
	t.release("destroy_args", h, KindArgs)
}

func (t *Table) argKey(op string, args Handle, key []byte) (*fluency.Args, string, Status) {
	a, status := t.requiredArgs(op, args)
	if status != Ok {
		return nil, "", status
	}
	k, status := Text(key)
	if status != Ok {
		return nil, "", status
	}
	return a, k, Ok
}

func (t *Table) SetArgString(args Handle, key, value []byte) Status {
	a, k, status := t.argKey("set_arg_string", args, key)
	if status != Ok {
		return status
	}
	v, status := Text(value)
	if status != Ok {
		return status
	}
	a.SetString(k, v)
	return Ok
}

// SetArgTryNumber stores value as a number; text that is not a decimal
// numeral fails with InvalidNumber and leaves args unchanged.
func (t *Table) SetArgTryNumber(args Handle, key, value []byte) Status {
	a, k, status := t.argKey("set_arg_try_number", args, key)
	if status != Ok {
		return status
	}
	v, status := Text(value)
	if status != Ok {
		return status
	}
	if err := a.SetNumberFromString(k, v); err != nil {
		return StatusFromError(err)
	}
	return Ok
}

func (t *Table) SetArgInt(args Handle, key []byte, value int64) Status {
	a, k, status := t.argKey("set_arg_int", args, key)
	if status != Ok {
		return status
	}
	a.SetInt(k, value)
	return Ok
}

func (t *Table) SetArgUint(args Handle, key []byte, value uint64) Status {
	a, k, status := t.argKey("set_arg_uint", args, key)
	if status != Ok {
		return status
	}
	a.SetUint(k, value)
	return Ok
}

func (t *Table) SetArgFloat(args Handle, key []byte, value float64) Status {
	a, k, status := t.argKey("set_arg_float", args, key)
	if status != Ok {
		return status
	}
	a.SetNumber(k, value)
	return Ok
}

// GetAttribute returns an attribute handle, or the null handle with Ok when
// the message has no such attribute.
func (t *Table) GetAttribute(message Handle, id []byte) (Handle, Status) {
	msg, status := t.message("get_attribute", message)
	if status != Ok {
		return 0, status
	}
	key, status := Text(id)
	if status != Ok {
		return 0, status
	}
	attr, ok := msg.Attribute(key)
	if !ok {
		return 0, Ok
	}
	return t.put(KindAttribute, &attributeRef{attribute: attr}), Ok
}

// GetAttributes returns one handle per attribute in source order. The
// slice length equals its capacity.
func (t *Table) GetAttributes(message Handle) ([]Handle, Status) {
	msg, status := t.message("get_attributes", message)
	if status != Ok {
		return nil, status
	}
	attrs := msg.Attributes()
	out := make([]Handle, len(attrs))
	for i, attr := range attrs {
		out[i] = t.put(KindAttribute, &attributeRef{attribute: attr})
	}
	return out, Ok
}

func (t *Table) DestroyAttribute(h Handle) {
	t.release("destroy_attribute", h, KindAttribute)
}

func (t *Table) DestroyAttributes(hs []Handle) {
	for _, h := range hs {
		t.DestroyAttribute(h)
	}
}

func (t *Table) GetAttributeID(attribute Handle) (string, Status) {
	attr, status := t.attribute("get_attribute_id", attribute)
	if status != Ok {
		return "", status
	}
	return attr.ID(), Ok
}

// FormatMessage formats the message value. A message without a value
// fails with MissingValue and no text.
func (t *Table) FormatMessage(bundle, message, args Handle) (string, []string, Status) {
	const op = "format_message"
	b, status := t.bundle(op, bundle)
	if status != Ok {
		return "", nil, status
	}
	msg, status := t.message(op, message)
	if status != Ok {
		return "", nil, status
	}
	a, status := t.args(op, args)
	if status != Ok {
		return "", nil, status
	}

	out, errs, err := b.FormatMessage(msg, a)
	if err != nil {
		return "", nil, StatusFromError(err)
	}
	return out, t.diagnostics(op, errs), Ok
}

func (t *Table) FormatAttribute(bundle, attribute, args Handle) (string, []string, Status) {
	const op = "format_attribute"
	b, status := t.bundle(op, bundle)
	if status != Ok {
		return "", nil, status
	}
	attr, status := t.attribute(op, attribute)
	if status != Ok {
		return "", nil, status
	}
	a, status := t.args(op, args)
	if status != Ok {
		return "", nil, status
	}

	out, errs, err := b.FormatAttribute(attr, a)
	if err != nil {
		return "", nil, StatusFromError(err)
	}
	return out, t.diagnostics(op, errs), Ok
}
