package fluency

import "sync"

// FallbackResolver resolves fallback locale chains
type FallbackResolver interface {
	Resolve(locale string) []string
}

// StaticFallbackResolver returns explicit chains set with Set and derives
// parent chains ("pt-BR" -> "pt") for every other locale.
type StaticFallbackResolver struct {
	mu     sync.RWMutex
	chains map[string][]string
}

var _ FallbackResolver = &StaticFallbackResolver{}

func NewStaticFallbackResolver() *StaticFallbackResolver {
	return &StaticFallbackResolver{chains: make(map[string][]string)}
}

// Set replaces the chain for locale.
func (s *StaticFallbackResolver) Set(locale string, fallbacks ...string) {
	if s == nil {
		return
	}
	locale = normalizeLocale(locale)
	if locale == "" {
		return
	}

	chain := make([]string, 0, len(fallbacks))
	for _, fb := range fallbacks {
		if fb = normalizeLocale(fb); fb != "" && fb != locale {
			chain = append(chain, fb)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chains == nil {
		s.chains = make(map[string][]string)
	}
	s.chains[locale] = chain
}

func (s *StaticFallbackResolver) Resolve(locale string) []string {
	locale = normalizeLocale(locale)
	if s != nil {
		s.mu.RLock()
		chain, ok := s.chains[locale]
		s.mu.RUnlock()
		if ok {
			out := make([]string, len(chain))
			copy(out, chain)
			return out
		}
	}
	return parentLocales(locale)
}

func (s *StaticFallbackResolver) has(locale string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chains[normalizeLocale(locale)]
	return ok
}
