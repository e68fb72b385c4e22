package fluency

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

const defaultMemoizerLimit = 4096

// Memoizer caches locale data such as plural decisions and number printers.
// It is safe for concurrent use; concurrent misses on one key build once.
type Memoizer struct {
	mu      sync.RWMutex
	items   map[string]any
	group   singleflight.Group
	limit   int
	metrics *Metrics
}

// NewMemoizer returns a memoizer holding at most limit entries. A limit of
// zero or less uses the default.
func NewMemoizer(limit int, metrics *Metrics) *Memoizer {
	if limit <= 0 {
		limit = defaultMemoizerLimit
	}
	return &Memoizer{
		items:   make(map[string]any),
		limit:   limit,
		metrics: metrics,
	}
}

// Len returns the number of cached entries.
func (m *Memoizer) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Reset drops every cached entry.
func (m *Memoizer) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.items = make(map[string]any)
	m.mu.Unlock()
}

func (m *Memoizer) lookup(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *Memoizer) get(key string, build func() (any, error)) (any, error) {
	if v, ok := m.lookup(key); ok {
		m.metrics.recordHit()
		return v, nil
	}
	m.metrics.recordMiss()

	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		if len(m.items) >= m.limit {
			// plural keys grow with every distinct number; start over
			m.items = make(map[string]any, m.limit)
		}
		m.items[key] = v
		m.mu.Unlock()
		return v, nil
	})
	return v, err
}

// memoize returns the cached value for key, building it on first use. A nil
// memoizer always builds.
func memoize[T any](m *Memoizer, key string, build func() (T, error)) (T, error) {
	if m == nil {
		return build()
	}
	v, err := m.get(key, func() (any, error) { return build() })
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("fluency: memoizer key %q holds %T", key, v)
	}
	return typed, nil
}
