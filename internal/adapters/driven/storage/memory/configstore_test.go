package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{"scan.concurrency": 2}, map[string]any{"scan.timeout": "5m"})

	assert.Equal(t, 2, store.GetInt("scan.concurrency"))
	assert.Equal(t, 5*time.Minute, store.GetDuration("scan.timeout"))
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key1", "original"))
	require.NoError(t, store.Set("key1", "updated"))

	val, ok := store.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"str":        "hello",
		"int":        42,
		"int64":      int64(7),
		"float":      3.5,
		"bool":       true,
		"dur_string": "90s",
		"dur_native": 2 * time.Second,
		"dur_bad":    "soon",
		"slice_any":  []any{"a", 1, "b"},
		"slice_str":  []string{"x"},
	})

	t.Run("strings", func(t *testing.T) {
		assert.Equal(t, "hello", store.GetString("str"))
		assert.Empty(t, store.GetString("int"))
		assert.Empty(t, store.GetString("missing"))
	})

	t.Run("integers", func(t *testing.T) {
		assert.Equal(t, 42, store.GetInt("int"))
		assert.Equal(t, 7, store.GetInt("int64"))
		assert.Equal(t, 3, store.GetInt("float"))
		assert.Zero(t, store.GetInt("str"))
	})

	t.Run("floats widen integers", func(t *testing.T) {
		assert.Equal(t, 3.5, store.GetFloat("float"))
		assert.Equal(t, 42.0, store.GetFloat("int"))
		assert.Equal(t, 7.0, store.GetFloat("int64"))
		assert.Zero(t, store.GetFloat("str"))
	})

	t.Run("booleans", func(t *testing.T) {
		assert.True(t, store.GetBool("bool"))
		assert.False(t, store.GetBool("str"))
	})

	t.Run("durations", func(t *testing.T) {
		assert.Equal(t, 90*time.Second, store.GetDuration("dur_string"))
		assert.Equal(t, 2*time.Second, store.GetDuration("dur_native"))
		assert.Zero(t, store.GetDuration("dur_bad"))
		assert.Zero(t, store.GetDuration("missing"))
	})

	t.Run("string slices", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("slice_any"))
		assert.Equal(t, []string{"x"}, store.GetStringSlice("slice_str"))
		assert.Nil(t, store.GetStringSlice("str"))
	})
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("counter", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}
