package fluency

import (
	"bytes"
	"strings"
	"testing"
)

type recordingHook struct {
	beforeCalls int
	afterCalls  int
	lastErr     error
	lastResult  string
	lastDiags   []error
	lastLocale  string
	fallback    bool
}

func (h *recordingHook) BeforeFormat(ctx *FormatHookContext) {
	h.beforeCalls++
}

func (h *recordingHook) AfterFormat(ctx *FormatHookContext) {
	h.afterCalls++
	h.lastErr = ctx.Error
	h.lastResult = ctx.Result
	h.lastDiags = ctx.Diagnostics
	h.lastLocale, h.fallback = ctx.ResolvedLocale()
}

func TestWrapTranslatorWithHooks(t *testing.T) {
	base, err := NewLocalizer(newTestStore(t), WithLocalizerDefaultLocale("en"))
	if err != nil {
		t.Fatalf("NewLocalizer: %v", err)
	}

	recorder := &recordingHook{}
	translator := WrapTranslatorWithHooks(base, recorder)

	got, err := translator.Translate("es", "home")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if got != "Bienvenido" {
		t.Fatalf("Translate() = %q", got)
	}

	if recorder.beforeCalls != 1 || recorder.afterCalls != 1 {
		t.Fatalf("hook calls = %d/%d", recorder.beforeCalls, recorder.afterCalls)
	}

	if recorder.lastLocale != "es" || recorder.fallback {
		t.Fatalf("resolved locale = %q fallback=%v", recorder.lastLocale, recorder.fallback)
	}

	if _, err := translator.Translate("es", "greeting"); err != nil {
		t.Fatalf("Translate fallback: %v", err)
	}

	if recorder.lastLocale != "en" || !recorder.fallback {
		t.Fatalf("fallback locale = %q fallback=%v", recorder.lastLocale, recorder.fallback)
	}

	if len(recorder.lastDiags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", recorder.lastDiags)
	}

	if _, err := translator.Translate("en", "missing"); err == nil {
		t.Fatal("expected missing translation error")
	}

	if recorder.lastErr == nil {
		t.Fatal("expected hook to observe error")
	}
}

func TestFormatHookFuncsCanRewrite(t *testing.T) {
	base, err := NewLocalizer(newTestStore(t), WithLocalizerDefaultLocale("en"))
	if err != nil {
		t.Fatalf("NewLocalizer: %v", err)
	}

	translator := WrapTranslatorWithHooks(base, FormatHookFuncs{
		Before: func(ctx *FormatHookContext) {
			ctx.Key = strings.TrimPrefix(ctx.Key, "app:")
			ctx.SetMetadata("rewritten", true)
		},
		After: func(ctx *FormatHookContext) {
			if v, ok := ctx.MetadataValue("rewritten"); ok && v == true {
				ctx.Result = "[" + ctx.Result + "]"
			}
		},
	})

	got, err := translator.Translate("en", "app:home")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "[Welcome]" {
		t.Fatalf("Translate() = %q", got)
	}
}

func TestWrapTranslatorWithoutHooks(t *testing.T) {
	base, err := NewLocalizer(newTestStore(t))
	if err != nil {
		t.Fatalf("NewLocalizer: %v", err)
	}

	if got := WrapTranslatorWithHooks(base); got != Translator(base) {
		t.Fatalf("expected base translator back, got %T", got)
	}

	if got := WrapTranslatorWithHooks(base, nil); got != Translator(base) {
		t.Fatalf("expected base translator when hooks are nil, got %T", got)
	}
}

func TestLogDiagnosticsHook(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json", Output: &buf})

	base, err := NewLocalizer(newTestStore(t), WithLocalizerDefaultLocale("en"))
	if err != nil {
		t.Fatalf("NewLocalizer: %v", err)
	}
	translator := WrapTranslatorWithHooks(base, LogDiagnosticsHook(logger))

	if _, err := translator.Translate("en", "greeting"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(buf.String(), "format diagnostic") || !strings.Contains(buf.String(), "unknown variable") {
		t.Fatalf("log output = %s", buf.String())
	}

	buf.Reset()
	_, _ = translator.Translate("en", "missing")
	if !strings.Contains(buf.String(), "format failed") {
		t.Fatalf("log output = %s", buf.String())
	}
}
