package fluency

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoizeBuildsOnce(t *testing.T) {
	m := NewMemoizer(0, nil)
	var builds atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := memoize(m, "key", func() (string, error) {
				builds.Add(1)
				return "value", nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "value", v)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, builds.Load(), int32(16))
	v, err := memoize(m, "key", func() (string, error) {
		t.Fatal("cached value must not be rebuilt")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, m.Len())
}

func TestMemoizeErrorsAreNotCached(t *testing.T) {
	m := NewMemoizer(0, nil)
	boom := errors.New("boom")

	_, err := memoize(m, "key", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())

	v, err := memoize(m, "key", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestMemoizeTypeMismatch(t *testing.T) {
	m := NewMemoizer(0, nil)
	_, err := memoize(m, "key", func() (int, error) { return 1, nil })
	require.NoError(t, err)

	_, err = memoize(m, "key", func() (string, error) { return "x", nil })
	assert.Error(t, err)
}

func TestMemoizerLimitResets(t *testing.T) {
	m := NewMemoizer(2, nil)
	for _, key := range []string{"a", "b", "c"} {
		_, err := memoize(m, key, func() (string, error) { return key, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 1, m.Len())

	m.Reset()
	assert.Equal(t, 0, m.Len())
}

func TestMemoizeNilMemoizer(t *testing.T) {
	v, err := memoize(nil, "key", func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	var m *Memoizer
	assert.Equal(t, 0, m.Len())
	m.Reset()
}

func TestBundlesShareMemoizer(t *testing.T) {
	m := NewMemoizer(0, nil)
	src := "items = { $n ->\n    [one] one\n   *[other] many\n}\n"
	en := newTestBundle(t, "en", src, WithMemoizer(m))
	pl := newTestBundle(t, "pl", src, WithMemoizer(m))

	formatID(t, en, "items", NewArgs().SetInt("n", 1))
	formatID(t, pl, "items", NewArgs().SetInt("n", 1))
	assert.Equal(t, 2, m.Len())
}
