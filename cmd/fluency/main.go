// Command fluency checks and formats Fluent resources from the shell.
//
//	fluency check messages/en/*.ftl
//	fluency format -locale en -id emails -arg unreadEmails=3 messages/en/main.ftl
//	fluency translate -path locales.yaml -locale pt-BR -key welcome.title
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-fluency"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var errDiagnostics = errors.New("resources have diagnostics")

type listFlag struct {
	items []string
}

func (f *listFlag) String() string {
	return strings.Join(f.items, ",")
}

func (f *listFlag) Set(value string) error {
	f.items = append(f.items, value)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	envCfg, err := fluency.LoadEnvConfig()
	if err != nil {
		reportError(err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "check":
		err = runCheck(envCfg, args, os.Stdout)
	case "format":
		err = runFormat(envCfg, args, os.Stdout)
	case "translate":
		err = runTranslate(envCfg, args, os.Stdout)
	case "help", "-h", "-help", "--help":
		usage(os.Stdout)
		return
	default:
		usage(os.Stderr)
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		reportError(err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: fluency <check|format|translate> [flags] [files]")
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "fluency: %v\n", err)
	os.Exit(1)
}

// runCheck parses every file and prints its diagnostics.
func runCheck(envCfg fluency.EnvConfig, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("check: at least one file is required")
	}

	logger := envCfg.Logger()
	failed := false
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		res := fluency.ParseResource(string(data))
		logger.Debug("parsed resource",
			slog.String("path", path),
			slog.Int("entries", len(res.Entries())),
			slog.Int("errors", len(res.Errors())))
		for _, perr := range res.Errors() {
			failed = true
			fmt.Fprintf(out, "%s: %v\n", path, perr)
		}
	}
	if failed {
		return errDiagnostics
	}
	return nil
}

// runFormat loads files into one bundle and formats a message or attribute.
func runFormat(envCfg fluency.EnvConfig, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("format", flag.ContinueOnError)
	locale := fs.String("locale", "en-US", "bundle locale")
	id := fs.String("id", "", "message id, or id.attribute")
	showMetrics := fs.Bool("metrics", false, "print collected metrics after formatting")
	var argList listFlag
	fs.Var(&argList, "arg", "argument as key=value; numeric values are passed as numbers. Repeat flag to add more.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("format: -id is required")
	}

	reg := prometheus.NewRegistry()
	metrics, err := fluency.NewMetrics(reg)
	if err != nil {
		return err
	}

	logger := envCfg.Logger()
	opts := append(envCfg.BundleOptions(),
		fluency.WithBundleLogger(logger),
		fluency.WithBundleMetrics(metrics),
		fluency.WithMemoizer(fluency.NewMemoizer(0, metrics)))
	bundle, err := fluency.NewBundle(*locale, opts...)
	if err != nil {
		return err
	}
	defer bundle.Close()

	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for _, diag := range bundle.AddSource(string(data)) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, diag)
		}
	}

	fmtArgs, err := parseArgs(argList.items)
	if err != nil {
		return err
	}

	text, diags, err := formatKey(bundle, *id, fmtArgs)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	for _, diag := range diags {
		fmt.Fprintf(os.Stderr, "warning: %v\n", diag)
	}

	if *showMetrics {
		return writeMetrics(reg, out)
	}
	return nil
}

func formatKey(bundle *fluency.Bundle, key string, args *fluency.Args) (string, []error, error) {
	msgID, attrID, hasAttr := strings.Cut(key, ".")
	msg, ok := bundle.Message(msgID)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", fluency.ErrMissingTranslation, msgID)
	}
	if !hasAttr {
		return bundle.FormatMessage(msg, args)
	}
	attr, ok := msg.Attribute(attrID)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", fluency.ErrMissingTranslation, key)
	}
	return bundle.FormatAttribute(attr, args)
}

func parseArgs(items []string) (*fluency.Args, error) {
	if len(items) == 0 {
		return nil, nil
	}
	args := fluency.NewArgsWithCapacity(len(items))
	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid -arg %q, want key=value", item)
		}
		if err := args.SetNumberFromString(key, value); err != nil {
			args.SetString(key, value)
		}
	}
	return args, nil
}

func writeMetrics(reg *prometheus.Registry, out io.Writer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			fmt.Fprintf(out, "%s%s %g\n", mf.GetName(), labelString(m.GetLabel()), value)
		}
	}
	return nil
}

func labelString(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

// runTranslate builds a localizer from a directory or manifest and resolves
// a key with locale fallback.
func runTranslate(envCfg fluency.EnvConfig, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	locale := fs.String("locale", "", "requested locale")
	key := fs.String("key", "", "message id, or id.attribute")
	defaultLocale := fs.String("default", "", "default locale tried after the fallback chain")
	var paths, argList listFlag
	fs.Var(&paths, "path", "directory, .ftl file or manifest (json, yaml, toml). Repeat flag to add more.")
	fs.Var(&argList, "arg", "argument as key=value. Repeat flag to add more.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" || len(paths.items) == 0 {
		return errors.New("translate: -key and -path are required")
	}

	cfg, err := fluency.NewConfig(
		fluency.WithEnvConfig(envCfg),
		fluency.WithDefaultLocale(*defaultLocale),
		fluency.WithLoader(fluency.NewFileLoader(paths.items...)),
	)
	if err != nil {
		return err
	}
	cfg.Hooks = append(cfg.Hooks, fluency.LogDiagnosticsHook(cfg.Logger))

	translator, err := cfg.BuildLocalizer()
	if err != nil {
		return err
	}

	fmtArgs, err := parseArgs(argList.items)
	if err != nil {
		return err
	}
	var targs []any
	if fmtArgs != nil {
		targs = append(targs, fmtArgs)
	}

	text, err := translator.Translate(*locale, *key, targs...)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}
