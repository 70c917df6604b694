package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/webstruct/models"
)

func newTestCache(t *testing.T, max int) (*Cache, *time.Time) {
	t.Helper()
	c := New(max)
	t.Cleanup(c.Stop)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Key("https://example.com", "requests", false), Key("https://example.com", "http", false))
	assert.Equal(t, Key("https://example.com", "", false), Key("https://example.com", "auto", false))
	assert.NotEqual(t, Key("https://example.com", "http", false), Key("https://example.com", "browser", false))
	assert.NotEqual(t, Key("https://example.com", "http", false), Key("https://example.com", "http", true))
}

func TestCache_GetSet(t *testing.T) {
	t.Parallel()

	c, now := newTestCache(t, 10)
	want := &Entry{Document: &models.StructuredDocument{SourceURL: "https://example.com"}, EngineUsed: "http"}
	c.Set("k", want)

	got, ok := c.Get("k", 1000)
	require.True(t, ok)
	assert.Same(t, want, got)

	_, ok = c.Get("k", 0)
	assert.False(t, ok, "maxAge 0 disables lookups")

	*now = now.Add(2 * time.Second)
	_, ok = c.Get("k", 1000)
	assert.False(t, ok, "entry older than maxAge")

	_, ok = c.Get("missing", 1000)
	assert.False(t, ok)
}

func TestCache_Capacity(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, 2)
	c.Set("a", &Entry{})
	c.Set("b", &Entry{})
	c.Set("b", &Entry{})
	assert.Equal(t, 2, c.Len())

	c.Set("c", &Entry{})
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("c", 1000)
	assert.True(t, ok)
}

func TestCache_EvictExpired(t *testing.T) {
	t.Parallel()

	c, now := newTestCache(t, 10)
	c.Set("old", &Entry{})
	*now = now.Add(90 * time.Minute)
	c.Set("new", &Entry{})

	c.evictExpired()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("new", 1000)
	assert.True(t, ok)
}

func TestCache_Disabled(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, 0)
	c.Set("a", &Entry{})

	assert.Zero(t, c.Len())
}
