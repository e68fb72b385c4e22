package fluency

import (
	"fmt"
	"log/slog"
	"strings"
)

// Translator resolves a string for a given locale and message key. A key of
// the form "id.attr" formats an attribute. Args may be a single *Args, a
// map[string]any, or alternating key/value pairs.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// diagnosticTranslator is implemented by translators that report
// formatting diagnostics and metadata alongside the result.
type diagnosticTranslator interface {
	TranslateWithDiagnostics(locale, key string, args ...any) (string, []error, map[string]any, error)
}

const (
	metadataLocale   = "fluency.locale"
	metadataFallback = "fluency.fallback"
)

// Localizer formats messages across the bundles of a Store, walking the
// fallback chain of the requested locale and then the default locale.
type Localizer struct {
	store         Store
	defaultLocale string
	resolver      FallbackResolver
	logger        *slog.Logger
}

var _ Translator = &Localizer{}

// LocalizerOption mutates a Localizer during construction
type LocalizerOption func(*Localizer) error

func NewLocalizer(store Store, opts ...LocalizerOption) (*Localizer, error) {
	if store == nil {
		return nil, fmt.Errorf("fluency: localizer requires a store")
	}

	l := &Localizer{
		store:    store,
		resolver: NewStaticFallbackResolver(),
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func WithLocalizerDefaultLocale(locale string) LocalizerOption {
	return func(l *Localizer) error {
		l.defaultLocale = normalizeLocale(locale)
		return nil
	}
}

func WithLocalizerFallbackResolver(resolver FallbackResolver) LocalizerOption {
	return func(l *Localizer) error {
		if resolver != nil {
			l.resolver = resolver
		}
		return nil
	}
}

func WithLocalizerLogger(logger *slog.Logger) LocalizerOption {
	return func(l *Localizer) error {
		if logger != nil {
			l.logger = logger
		}
		return nil
	}
}

// DefaultLocale returns the locale used when the request has none.
func (l *Localizer) DefaultLocale() string {
	if l == nil {
		return ""
	}
	return l.defaultLocale
}

func (l *Localizer) Translate(locale, key string, args ...any) (string, error) {
	result, _, _, err := l.TranslateWithDiagnostics(locale, key, args...)
	return result, err
}

// TranslateWithDiagnostics formats key and returns the resolution
// diagnostics plus metadata naming the locale that served the message.
func (l *Localizer) TranslateWithDiagnostics(locale, key string, args ...any) (string, []error, map[string]any, error) {
	if l == nil || l.store == nil {
		return "", nil, nil, ErrMissingTranslation
	}

	fargs, err := ArgsFrom(args...)
	if err != nil {
		return "", nil, nil, err
	}

	id, attr, _ := strings.Cut(key, ".")
	requested := normalizeLocale(locale)

	for _, candidate := range l.candidates(requested) {
		bundle, ok := l.store.Bundle(candidate)
		if !ok {
			continue
		}
		msg, ok := bundle.Message(id)
		if !ok {
			continue
		}

		var (
			result string
			diags  []error
		)
		if attr != "" {
			attribute, ok := msg.Attribute(attr)
			if !ok {
				continue
			}
			result, diags, err = bundle.FormatAttribute(attribute, fargs)
		} else {
			result, diags, err = bundle.FormatMessage(msg, fargs)
		}
		if err != nil {
			return "", nil, nil, err
		}

		metadata := map[string]any{
			metadataLocale:   candidate,
			metadataFallback: candidate != requested,
		}
		if candidate != requested {
			l.logger.Debug("served from fallback locale",
				slog.String("requested", requested),
				slog.String("locale", candidate),
				slog.String("key", key),
			)
		}
		return result, diags, metadata, nil
	}

	return "", nil, nil, ErrMissingTranslation
}

func (l *Localizer) candidates(locale string) []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	add := func(values ...string) {
		for _, v := range values {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}

	if locale != "" {
		add(locale)
		add(l.resolver.Resolve(locale)...)
	}
	if l.defaultLocale != "" {
		add(l.defaultLocale)
		add(l.resolver.Resolve(l.defaultLocale)...)
	}
	return out
}

// ArgsFrom converts translator arguments into Args. It accepts nothing, a
// single *Args, a single map[string]any, or alternating key/value pairs.
func ArgsFrom(args ...any) (*Args, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 1:
		switch v := args[0].(type) {
		case *Args:
			return v, nil
		case map[string]any:
			out := NewArgsWithCapacity(len(v))
			for key, value := range v {
				out.Set(key, ToValue(value))
			}
			return out, nil
		case nil:
			return nil, nil
		}
	}

	if len(args)%2 != 0 {
		return nil, fmt.Errorf("fluency: odd number of key/value arguments (%d)", len(args))
	}
	out := NewArgsWithCapacity(len(args) / 2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return nil, fmt.Errorf("fluency: argument key %d is %T, want string", i/2, args[i])
		}
		out.Set(key, ToValue(args[i+1]))
	}
	return out, nil
}

// ToValue converts a Go value into a formatting Value.
func ToValue(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return StringValue(x)
	case int:
		return NumberValue(x)
	case int8:
		return NumberValue(x)
	case int16:
		return NumberValue(x)
	case int32:
		return NumberValue(x)
	case int64:
		return NumberValue(x)
	case uint:
		return NumberValue(x)
	case uint8:
		return NumberValue(x)
	case uint16:
		return NumberValue(x)
	case uint32:
		return NumberValue(x)
	case uint64:
		return NumberValue(x)
	case float32:
		return NumberValue(x)
	case float64:
		return NumberValue(x)
	case fmt.Stringer:
		return StringValue(x.String())
	default:
		return StringValue(fmt.Sprint(v))
	}
}
