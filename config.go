package fluency

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
)

// EnvConfig carries the settings read from FLUENCY_* environment variables.
type EnvConfig struct {
	LogLevel      string `envDefault:"warn"  env:"LOG_LEVEL"      yaml:"log_level"`
	LogFormat     string `envDefault:"tint"  env:"LOG_FORMAT"     yaml:"log_format"`
	LogColor      bool   `envDefault:"false" env:"LOG_COLOR"      yaml:"log_color"`
	UseIsolating  bool   `envDefault:"true"  env:"USE_ISOLATING"  yaml:"use_isolating"`
	LocaleNumbers bool   `envDefault:"false" env:"LOCALE_NUMBERS" yaml:"locale_numbers"`
	MaxPlaceables int    `envDefault:"100"   env:"MAX_PLACEABLES" yaml:"max_placeables"`
}

const envPrefix = "FLUENCY_"

// LoadEnvConfig parses EnvConfig from the process environment.
func LoadEnvConfig() (EnvConfig, error) {
	return env.ParseAsWithOptions[EnvConfig](env.Options{Prefix: envPrefix})
}

// LoadEnvConfigFrom parses EnvConfig from the given variables instead of the
// process environment.
func LoadEnvConfigFrom(environ map[string]string) (EnvConfig, error) {
	return env.ParseAsWithOptions[EnvConfig](env.Options{Prefix: envPrefix, Environment: environ})
}

// Logger builds the logger described by the config.
func (c EnvConfig) Logger() *slog.Logger {
	return NewLogger(LogConfig{Level: c.LogLevel, Format: c.LogFormat, Color: c.LogColor})
}

// BundleOptions translates the config into bundle options.
func (c EnvConfig) BundleOptions() []BundleOption {
	opts := []BundleOption{WithUseIsolating(c.UseIsolating)}
	if c.MaxPlaceables > 0 {
		opts = append(opts, WithMaxPlaceables(c.MaxPlaceables))
	}
	if c.LocaleNumbers {
		opts = append(opts, WithLocaleNumbers())
	}
	return opts
}

// Config captures localizer setup
type Config struct {
	DefaultLocale string
	Locales       []string
	Loader        Loader
	Store         Store
	Resolver      FallbackResolver
	Hooks         []FormatHook
	Logger        *slog.Logger
	Metrics       *Metrics

	bundleOptions []BundleOption
	registerer    prometheus.Registerer
}

// Option mutates Config during construction
type Option func(*Config) error

// NewConfig builds Config via supplied options
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	cfg.sortedLocales()

	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}

	if cfg.Metrics == nil && cfg.registerer != nil {
		metrics, err := NewMetrics(cfg.registerer)
		if err != nil {
			return nil, err
		}
		cfg.Metrics = metrics
	}

	if cfg.Store == nil {
		bundleOpts := cfg.BundleOptions()
		if cfg.Loader != nil {
			store, err := NewStaticStoreFromLoader(cfg.Loader, bundleOpts...)
			if err != nil {
				return nil, err
			}
			cfg.Store = store
		} else {
			store, err := NewStaticStore(nil, bundleOpts...)
			if err != nil {
				return nil, err
			}
			cfg.Store = store
		}
	}

	if cfg.Resolver == nil {
		cfg.Resolver = NewStaticFallbackResolver()
	}

	if cfg.DefaultLocale == "" && len(cfg.Locales) > 0 {
		cfg.DefaultLocale = cfg.Locales[0]
	}

	return cfg, nil
}

// WithDefaultLocale sets the default locale in Config
func WithDefaultLocale(locale string) Option {
	return func(c *Config) error {
		c.DefaultLocale = normalizeLocale(locale)
		return nil
	}
}

// WithLocales registers supported locales
func WithLocales(locales ...string) Option {
	return func(c *Config) error {
		c.Locales = append(c.Locales, locales...)
		return nil
	}
}

func WithLoader(loader Loader) Option {
	return func(c *Config) error {
		c.Loader = loader
		return nil
	}
}

func WithStore(store Store) Option {
	return func(c *Config) error {
		c.Store = store
		return nil
	}
}

func WithFallbackResolver(resolver FallbackResolver) Option {
	return func(c *Config) error {
		c.Resolver = resolver
		return nil
	}
}

func WithFallback(locale string, fallbacks ...string) Option {
	return func(c *Config) error {
		if locale == "" {
			return nil
		}
		resolver, ok := c.Resolver.(*StaticFallbackResolver)
		if !ok {
			if c.Resolver != nil {
				return nil
			}
			resolver = NewStaticFallbackResolver()
			c.Resolver = resolver
		}
		resolver.Set(locale, fallbacks...)
		return nil
	}
}

func WithFormatHooks(hooks ...FormatHook) Option {
	return func(c *Config) error {
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			c.Hooks = append(c.Hooks, hook)
		}
		return nil
	}
}

// WithBundleOptions applies opts to every bundle the config creates.
func WithBundleOptions(opts ...BundleOption) Option {
	return func(c *Config) error {
		c.bundleOptions = append(c.bundleOptions, opts...)
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithMetrics registers the fluency collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) error {
		c.registerer = reg
		return nil
	}
}

// WithEnvConfig applies an EnvConfig: logger plus bundle defaults.
func WithEnvConfig(envCfg EnvConfig) Option {
	return func(c *Config) error {
		c.Logger = envCfg.Logger()
		c.bundleOptions = append(c.bundleOptions, envCfg.BundleOptions()...)
		return nil
	}
}

// BundleOptions returns the options used for bundles created by the config,
// including its logger and metrics.
func (cfg *Config) BundleOptions() []BundleOption {
	if cfg == nil {
		return nil
	}
	opts := append([]BundleOption{}, cfg.bundleOptions...)
	if cfg.Logger != nil {
		opts = append(opts, WithBundleLogger(cfg.Logger))
	}
	if cfg.Metrics != nil {
		opts = append(opts, WithBundleMetrics(cfg.Metrics))
	}
	return opts
}

func (cfg *Config) BuildLocalizer() (Translator, error) {
	if cfg == nil {
		return nil, ErrNotImplemented
	}

	cfg.seedResolverFallbacks()

	base, err := NewLocalizer(cfg.Store,
		WithLocalizerDefaultLocale(cfg.DefaultLocale),
		WithLocalizerFallbackResolver(cfg.Resolver),
		WithLocalizerLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}

	var translator Translator = base

	if len(cfg.Hooks) > 0 {
		translator = WrapTranslatorWithHooks(translator, cfg.Hooks...)
	}

	return translator, nil
}

func (cfg *Config) TemplateHelpers(t Translator, helperCfg HelperConfig) map[string]any {
	return TemplateHelpers(t, helperCfg)
}

func (cfg *Config) sortedLocales() {
	cfg.Locales = sortedLocales(cfg.Locales)
}

// seedResolverFallbacks installs parent chains for every known locale that
// has no explicit chain yet.
func (cfg *Config) seedResolverFallbacks() {
	resolver, ok := cfg.Resolver.(*StaticFallbackResolver)
	if !ok || resolver == nil {
		return
	}

	seen := make(map[string]struct{}, len(cfg.Locales))
	var localeCandidates []string

	appendCandidate := func(locale string) {
		if locale == "" {
			return
		}
		if _, exists := seen[locale]; exists {
			return
		}
		seen[locale] = struct{}{}
		localeCandidates = append(localeCandidates, locale)
	}

	if cfg.Store != nil {
		for _, locale := range cfg.Store.Locales() {
			appendCandidate(locale)
		}
	}

	for _, locale := range cfg.Locales {
		appendCandidate(locale)
	}

	for _, locale := range localeCandidates {
		if resolver.has(locale) {
			continue
		}
		chain := parentLocales(locale)
		if len(chain) == 0 {
			continue
		}
		resolver.Set(locale, chain...)
	}
}
