package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/coderabbit-agent/pkg/model"
)

func TestNewFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("javascript-22ci"), NewFingerprint("JavaScript ", "abc"))
	assert.Equal(t, Fingerprint("python-0"), NewFingerprint("python", ""))
	assert.Equal(t, NewFingerprint("js", "Aa"), NewFingerprint("js", "BB"), "classic 31-hash collision")
	assert.NotEqual(t, NewFingerprint("js", "abc"), NewFingerprint("py", "abc"))

	// wraps like a signed 32-bit integer
	long := NewFingerprint("js", "the quick brown fox jumps over the lazy dog")
	assert.Regexp(t, `^js--?[0-9a-z]+$`, long.String())
}

func TestResultCacheGetPut(t *testing.T) {
	c := New()
	res := &model.Result{OriginalCode: "x = 1"}

	_, ok := c.Get("python", "x = 1")
	assert.False(t, ok)

	c.Put("python", "x = 1", res)
	got, ok := c.Get("Python", "x = 1")
	require.True(t, ok)
	assert.Same(t, res, got)
	assert.Equal(t, 1, c.Len())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestResultCacheCollisionIsMiss(t *testing.T) {
	c := New()
	c.Put("js", "Aa", &model.Result{OriginalCode: "Aa"})

	_, ok := c.Get("js", "BB")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Collisions)

	got, ok := c.Get("js", "Aa")
	require.True(t, ok)
	assert.Equal(t, "Aa", got.OriginalCode)
}

func TestResultCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(WithCapacity(2))
	c.Put("js", "a", &model.Result{})
	c.Put("js", "b", &model.Result{})
	_, ok := c.Get("js", "a")
	require.True(t, ok)

	c.Put("js", "c", &model.Result{})
	assert.Equal(t, 2, c.Len())
	_, ok = c.Get("js", "b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("js", "a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestResultCacheUnbounded(t *testing.T) {
	c := New()
	for i := 0; i < 100; i++ {
		c.Put("js", fmt.Sprintf("code %d", i), &model.Result{})
	}
	assert.Equal(t, 100, c.Len())
}

func TestResultCacheClear(t *testing.T) {
	c := New()
	c.Put("js", "a", &model.Result{})
	c.Clear()
	assert.Zero(t, c.Len())
	_, ok := c.Get("js", "a")
	assert.False(t, ok)
}

func TestResultCacheConcurrentAccess(t *testing.T) {
	c := New(WithCapacity(8))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := fmt.Sprintf("code %d", i%4)
			c.Put("js", code, &model.Result{OriginalCode: code})
			if got, ok := c.Get("js", code); ok {
				assert.Equal(t, code, got.OriginalCode)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}
