package fluency

import "log/slog"

type FormatHook interface {
	BeforeFormat(ctx *FormatHookContext)
	AfterFormat(ctx *FormatHookContext)
}

type FormatHookContext struct {
	Locale      string
	Key         string
	Args        []any
	Result      string
	Error       error
	Diagnostics []error
	Metadata    map[string]any
}

func (ctx *FormatHookContext) ensureMetadata() {
	if ctx.Metadata == nil {
		ctx.Metadata = make(map[string]any)
	}
}

func (ctx *FormatHookContext) SetMetadata(key string, value any) {
	if ctx == nil || key == "" {
		return
	}
	ctx.ensureMetadata()
	ctx.Metadata[key] = value
}

func (ctx *FormatHookContext) MetadataValue(key string) (any, bool) {
	if ctx == nil || ctx.Metadata == nil {
		return nil, false
	}
	val, ok := ctx.Metadata[key]
	return val, ok
}

// ResolvedLocale returns the locale that served the message, and whether
// it came from a fallback.
func (ctx *FormatHookContext) ResolvedLocale() (string, bool) {
	if ctx == nil {
		return "", false
	}
	locale, _ := ctx.Metadata[metadataLocale].(string)
	fallback, _ := ctx.Metadata[metadataFallback].(bool)
	return locale, fallback
}

type FormatHookFuncs struct {
	Before func(ctx *FormatHookContext)
	After  func(ctx *FormatHookContext)
}

func (h FormatHookFuncs) BeforeFormat(ctx *FormatHookContext) {
	if h.Before != nil {
		h.Before(ctx)
	}
}

func (h FormatHookFuncs) AfterFormat(ctx *FormatHookContext) {
	if h.After != nil {
		h.After(ctx)
	}
}

// LogDiagnosticsHook logs formatting diagnostics at warn level and hard
// failures at error level.
func LogDiagnosticsHook(logger *slog.Logger) FormatHook {
	if logger == nil {
		logger = discardLogger()
	}
	return FormatHookFuncs{
		After: func(ctx *FormatHookContext) {
			if ctx.Error != nil {
				logger.Error("format failed",
					slog.String("locale", ctx.Locale),
					slog.String("key", ctx.Key),
					errAttr(ctx.Error),
				)
				return
			}
			for _, diag := range ctx.Diagnostics {
				logger.Warn("format diagnostic",
					slog.String("locale", ctx.Locale),
					slog.String("key", ctx.Key),
					errAttr(diag),
				)
			}
		},
	}
}

var _ Translator = &HookedTranslator{}

type HookedTranslator struct {
	next  Translator
	hooks []FormatHook
}

func WrapTranslatorWithHooks(next Translator, hooks ...FormatHook) Translator {
	if next == nil || len(hooks) == 0 {
		return next
	}

	filtered := make([]FormatHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}

		filtered = append(filtered, hook)
	}

	if len(filtered) == 0 {
		return next
	}

	return &HookedTranslator{next: next, hooks: filtered}
}

func (t *HookedTranslator) Translate(locale, key string, args ...any) (string, error) {
	result, _, _, err := t.TranslateWithDiagnostics(locale, key, args...)
	return result, err
}

func (t *HookedTranslator) TranslateWithDiagnostics(locale, key string, args ...any) (string, []error, map[string]any, error) {
	if t == nil || t.next == nil {
		return "", nil, nil, ErrMissingTranslation
	}

	ctx := &FormatHookContext{
		Locale: locale,
		Key:    key,
		Args:   args,
	}

	for _, hook := range t.hooks {
		hook.BeforeFormat(ctx)
	}

	var (
		result   string
		diags    []error
		err      error
		metadata map[string]any
	)

	if dt, ok := t.next.(diagnosticTranslator); ok {
		result, diags, metadata, err = dt.TranslateWithDiagnostics(ctx.Locale, ctx.Key, ctx.Args...)
		for key, value := range metadata {
			ctx.SetMetadata(key, value)
		}
	} else {
		result, err = t.next.Translate(ctx.Locale, ctx.Key, ctx.Args...)
	}

	ctx.Result = result
	ctx.Error = err
	ctx.Diagnostics = diags

	for _, hook := range t.hooks {
		hook.AfterFormat(ctx)
	}

	return ctx.Result, ctx.Diagnostics, ctx.Metadata, ctx.Error
}
