package fluency

import (
	"fmt"
	"sort"
)

// Source is one FTL document destined for a locale.
type Source struct {
	Name     string
	Text     string
	Override bool
}

// Sources groups FTL documents by locale.
type Sources map[string][]Source

// Store exposes read only access to per locale bundles
type Store interface {
	// Bundle returns the bundle for locale and ok=false if missing
	Bundle(locale string) (*Bundle, bool)
	// Locales returns the list of locales known to the store
	Locales() []string
}

// Loader retrieves the sources used to seed a Store
type Loader interface {
	Load() (Sources, error)
}

// LoaderFunc adapters allow bare functions to implement Loader interface
type LoaderFunc func() (Sources, error)

// Load implements Loader for LoaderFunc
func (fn LoaderFunc) Load() (Sources, error) {
	return fn()
}

// StaticStore is an in memory store, read only after construction
type StaticStore struct {
	bundles     map[string]*Bundle
	locales     []string
	diagnostics map[string][]error
}

var _ Store = &StaticStore{}

// NewStaticStore builds one bundle per locale from sources. Syntax and
// merge diagnostics are kept per locale; an invalid locale is an error.
func NewStaticStore(sources Sources, opts ...BundleOption) (*StaticStore, error) {
	store := &StaticStore{
		bundles:     make(map[string]*Bundle, len(sources)),
		diagnostics: make(map[string][]error),
	}

	for locale, docs := range sources {
		locale = normalizeLocale(locale)
		bundle, ok := store.bundles[locale]
		if !ok {
			var err error
			bundle, err = NewBundle(locale, opts...)
			if err != nil {
				store.Close()
				return nil, err
			}
			store.bundles[locale] = bundle
			store.locales = append(store.locales, locale)
		}

		for _, doc := range docs {
			res := ParseResource(doc.Text)
			var errs []error
			if doc.Override {
				errs = bundle.AddResourceOverriding(res)
			} else {
				errs = bundle.AddResource(res)
			}
			for _, err := range errs {
				store.diagnostics[locale] = append(store.diagnostics[locale], fmt.Errorf("%s: %w", doc.Name, err))
			}
		}
	}

	// make locales deterministic
	sort.Strings(store.locales)
	return store, nil
}

// NewStaticStoreFromLoader hydrates a StaticStore using the provided loader
func NewStaticStoreFromLoader(loader Loader, opts ...BundleOption) (*StaticStore, error) {
	if loader == nil {
		return NewStaticStore(nil, opts...)
	}

	sources, err := loader.Load()
	if err != nil {
		return nil, err
	}

	return NewStaticStore(sources, opts...)
}

func (s *StaticStore) Bundle(locale string) (*Bundle, bool) {
	if s == nil {
		return nil, false
	}
	bundle, ok := s.bundles[normalizeLocale(locale)]
	return bundle, ok && !bundle.Closed()
}

// Locales returns a slice with all locale codes
func (s *StaticStore) Locales() []string {
	if s == nil || len(s.locales) == 0 {
		return nil
	}
	out := make([]string, len(s.locales))
	copy(out, s.locales)
	return out
}

// Diagnostics returns the parse and merge diagnostics collected for locale.
func (s *StaticStore) Diagnostics(locale string) []error {
	if s == nil {
		return nil
	}
	return s.diagnostics[normalizeLocale(locale)]
}

// Close closes every bundle.
func (s *StaticStore) Close() {
	if s == nil {
		return
	}
	for _, bundle := range s.bundles {
		bundle.Close()
	}
}
