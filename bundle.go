package fluency

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/language"
)

const defaultMaxPlaceables = 100

// mergePolicy decides what happens when an added entry reuses an identifier.
type mergePolicy int

const (
	mergeKeepFirst mergePolicy = iota
	mergeOverride
)

type slot struct {
	kind    EntryKind
	message *MessageEntry
	term    *TermEntry
}

// Bundle holds the messages and terms of one locale. Mutation is not
// synchronized: finish adding resources before formatting from several
// goroutines.
type Bundle struct {
	locale        language.Tag
	arena         []slot
	messages      map[string]int
	terms         map[string]int
	resources     []*Resource
	useIsolating  bool
	transform     func(string) string
	functions     map[string]Function
	maxPlaceables int
	localeNumbers bool
	memo          *Memoizer
	logger        *slog.Logger
	metrics       *Metrics
	generation    uint64
	closed        bool
}

// BundleOption mutates a Bundle during construction.
type BundleOption func(*Bundle) error

// NewBundle creates an empty bundle for locale. Isolation marks are on by
// default.
func NewBundle(locale string, opts ...BundleOption) (*Bundle, error) {
	tag, err := parseLocale(locale)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		locale:        tag,
		messages:      make(map[string]int),
		terms:         make(map[string]int),
		useIsolating:  true,
		functions:     builtinFunctions(),
		maxPlaceables: defaultMaxPlaceables,
		logger:        discardLogger(),
		generation:    1,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.memo == nil {
		b.memo = NewMemoizer(0, b.metrics)
	}

	return b, nil
}

// WithUseIsolating sets the initial isolation flag.
func WithUseIsolating(enabled bool) BundleOption {
	return func(b *Bundle) error {
		b.useIsolating = enabled
		return nil
	}
}

// WithTransform applies fn to every text element while formatting.
func WithTransform(fn func(string) string) BundleOption {
	return func(b *Bundle) error {
		b.transform = fn
		return nil
	}
}

// WithFunction registers a custom function.
func WithFunction(name string, fn Function) BundleOption {
	return func(b *Bundle) error {
		return b.AddFunction(name, fn)
	}
}

// WithMaxPlaceables caps the placeables resolved per formatting call.
func WithMaxPlaceables(n int) BundleOption {
	return func(b *Bundle) error {
		if n <= 0 {
			return fmt.Errorf("fluency: max placeables must be positive, got %d", n)
		}
		b.maxPlaceables = n
		return nil
	}
}

// WithLocaleNumbers renders numbers with CLDR separators for the locale.
func WithLocaleNumbers() BundleOption {
	return func(b *Bundle) error {
		b.localeNumbers = true
		return nil
	}
}

// WithMemoizer shares a memoizer between bundles.
func WithMemoizer(m *Memoizer) BundleOption {
	return func(b *Bundle) error {
		b.memo = m
		return nil
	}
}

func WithBundleLogger(logger *slog.Logger) BundleOption {
	return func(b *Bundle) error {
		if logger != nil {
			b.logger = logger
		}
		return nil
	}
}

func WithBundleMetrics(metrics *Metrics) BundleOption {
	return func(b *Bundle) error {
		b.metrics = metrics
		return nil
	}
}

// Locale returns the bundle locale.
func (b *Bundle) Locale() language.Tag {
	if b == nil {
		return language.Und
	}
	return b.locale
}

// Resources returns the number of resources added so far.
func (b *Bundle) Resources() int {
	if b == nil {
		return 0
	}
	return len(b.resources)
}

// UseIsolating reports whether placeables are wrapped in isolation marks.
func (b *Bundle) UseIsolating() bool {
	return b != nil && b.useIsolating
}

// SetUseIsolating toggles isolation marks around placeables.
func (b *Bundle) SetUseIsolating(enabled bool) {
	if b == nil {
		return
	}
	b.useIsolating = enabled
}

// SetTransform replaces the text element transform; nil removes it.
func (b *Bundle) SetTransform(fn func(string) string) {
	if b == nil {
		return
	}
	b.transform = fn
}

// AddFunction registers fn under name, replacing any previous function.
func (b *Bundle) AddFunction(name string, fn Function) error {
	if b == nil || b.closed {
		return ErrNilBundle
	}
	if fn == nil || !isCallee(name) {
		return fmt.Errorf("fluency: invalid function %q", name)
	}
	b.functions[name] = fn
	return nil
}

// AddResource merges res keeping existing definitions. Every collision and
// every junk entry is returned as a diagnostic.
func (b *Bundle) AddResource(res *Resource) []error {
	return b.insert(res, mergeKeepFirst)
}

// AddResourceOverriding merges res replacing existing definitions.
func (b *Bundle) AddResourceOverriding(res *Resource) []error {
	return b.insert(res, mergeOverride)
}

// AddSource parses text and merges it keeping existing definitions.
func (b *Bundle) AddSource(text string) []error {
	return b.AddResource(ParseResource(text))
}

func (b *Bundle) insert(res *Resource, policy mergePolicy) []error {
	if b == nil || b.closed {
		return []error{ErrNilBundle}
	}
	if res == nil {
		return nil
	}

	var errs []error
	for _, perr := range res.Errors() {
		errs = append(errs, perr)
	}
	b.metrics.recordDiagnostics(StageParse, len(errs))

	collisions := 0
	for _, entry := range res.Entries() {
		switch e := entry.(type) {
		case *MessageEntry:
			if err := b.place(b.messages, slot{kind: EntryMessage, message: e}, e.ID, policy); err != nil {
				errs = append(errs, err)
				collisions++
			}
		case *TermEntry:
			if err := b.place(b.terms, slot{kind: EntryTerm, term: e}, e.ID, policy); err != nil {
				errs = append(errs, err)
				collisions++
			}
		}
	}
	b.metrics.recordDiagnostics(StageMerge, collisions)

	b.resources = append(b.resources, res)
	b.logger.Debug("resource added",
		slog.String("locale", b.locale.String()),
		slog.Int("entries", len(res.Entries())),
		slog.Int("diagnostics", len(errs)),
		slog.Bool("override", policy == mergeOverride),
	)
	return errs
}

// place appends s to the arena and points index[id] at it. Older slots stay
// in the arena so views created before an override keep their entry.
func (b *Bundle) place(index map[string]int, s slot, id string, policy mergePolicy) error {
	if _, exists := index[id]; exists && policy == mergeKeepFirst {
		if s.kind == EntryTerm {
			return &OverrideError{Kind: EntryTerm, ID: "-" + id}
		}
		return &OverrideError{Kind: EntryMessage, ID: id}
	}
	b.arena = append(b.arena, s)
	index[id] = len(b.arena) - 1
	return nil
}

// HasMessage reports whether a message with id exists. Terms are not
// visible.
func (b *Bundle) HasMessage(id string) bool {
	if b == nil || b.closed {
		return false
	}
	_, ok := b.messages[id]
	return ok
}

// Message returns a view of the message id.
func (b *Bundle) Message(id string) (*Message, bool) {
	if b == nil || b.closed {
		return nil, false
	}
	idx, ok := b.messages[id]
	if !ok {
		return nil, false
	}
	return &Message{bundle: b, slot: idx, generation: b.generation}, true
}

// Close releases every resource. Views created from the bundle become stale.
func (b *Bundle) Close() {
	if b == nil || b.closed {
		return
	}
	b.closed = true
	b.generation++
	b.arena = nil
	b.messages = nil
	b.terms = nil
	b.resources = nil
}

// Closed reports whether Close was called.
func (b *Bundle) Closed() bool {
	return b == nil || b.closed
}

func (b *Bundle) message(id string) (*MessageEntry, bool) {
	idx, ok := b.messages[id]
	if !ok {
		return nil, false
	}
	return b.arena[idx].message, true
}

func (b *Bundle) term(id string) (*TermEntry, bool) {
	idx, ok := b.terms[id]
	if !ok {
		return nil, false
	}
	return b.arena[idx].term, true
}

// FormatPattern resolves pattern against args. Diagnostics never abort
// formatting.
func (b *Bundle) FormatPattern(pattern *Pattern, args *Args) (string, []error) {
	if b == nil || b.closed {
		return "", []error{ErrNilBundle}
	}
	if pattern == nil {
		return "", nil
	}

	s := newScope(b, args)
	out := s.formatRoot(pattern)

	b.metrics.recordFormat()
	b.metrics.recordDiagnostics(StageResolve, len(s.errs))
	if len(s.errs) > 0 {
		b.logger.Debug("format diagnostics",
			slog.String("locale", b.locale.String()),
			slog.Int("count", len(s.errs)),
			errAttr(s.errs[0]),
		)
	}
	return out, s.errs
}

// FormatMessage formats the value of msg. A message without a value fails
// with ErrMissingValue.
func (b *Bundle) FormatMessage(msg *Message, args *Args) (string, []error, error) {
	if b == nil || b.closed {
		return "", nil, ErrNilBundle
	}
	entry, err := msg.resolve()
	if err != nil {
		return "", nil, err
	}
	if entry.Value == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrMissingValue, entry.ID)
	}
	out, errs := b.FormatPattern(entry.Value, args)
	return out, errs, nil
}

// FormatAttribute formats the value of attr.
func (b *Bundle) FormatAttribute(attr *Attribute, args *Args) (string, []error, error) {
	if b == nil || b.closed {
		return "", nil, ErrNilBundle
	}
	entry, err := attr.resolve()
	if err != nil {
		return "", nil, err
	}
	out, errs := b.FormatPattern(entry.Value, args)
	return out, errs, nil
}
