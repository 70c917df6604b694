package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/webstruct/config"
	"github.com/use-agent/webstruct/models"
)

func TestPageHealth(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("failures retire the tab", func(t *testing.T) {
		t.Parallel()

		h := newPageHealth(0, start)
		h.record(false)
		h.record(false)
		assert.False(t, h.shouldRetire(start))
		h.record(false)
		assert.True(t, h.shouldRetire(start))
	})

	t.Run("successes heal the score", func(t *testing.T) {
		t.Parallel()

		h := newPageHealth(0, start)
		h.record(false)
		h.record(false)
		h.record(true)
		h.record(true)
		h.record(true)
		h.record(false)
		assert.False(t, h.shouldRetire(start))
	})

	t.Run("use count limit", func(t *testing.T) {
		t.Parallel()

		h := newPageHealth(2, start)
		h.record(true)
		assert.False(t, h.shouldRetire(start))
		h.record(true)
		assert.True(t, h.shouldRetire(start))
	})

	t.Run("age limit", func(t *testing.T) {
		t.Parallel()

		h := newPageHealth(0, start)
		assert.False(t, h.shouldRetire(start.Add(49*time.Minute)))
		assert.True(t, h.shouldRetire(start.Add(maxPageAge)))
	})
}

func TestBuildHeaders(t *testing.T) {
	t.Parallel()

	got := buildHeaders("https://example.com/a", map[string]string{"X-Custom": "1"})
	assert.Equal(t, map[string]string{
		"Referer":  "https://www.google.com/search?q=example.com",
		"X-Custom": "1",
	}, got)

	got = buildHeaders("https://example.com/a", map[string]string{"Referer": "https://ref.example/"})
	assert.Equal(t, map[string]string{"Referer": "https://ref.example/"}, got)
}

func TestToHeadersMap(t *testing.T) {
	t.Parallel()

	m := toHeadersMap(map[string]string{"Accept": "text/html"})

	assert.Equal(t, "text/html", m["Accept"].Str())
}

func TestIsAdDomain(t *testing.T) {
	t.Parallel()

	assert.True(t, isAdDomain("doubleclick.net"))
	assert.True(t, isAdDomain("pagead2.GoogleSyndication.com"))
	assert.False(t, isAdDomain("example.com"))
	assert.False(t, isAdDomain("twitter.com"))
}

func TestCategorizeError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.ErrCodeTimeout, categorizeError(context.DeadlineExceeded, "x").Code)
	assert.Equal(t, models.ErrCodeTimeout, categorizeError(context.Canceled, "x").Code)
	assert.Equal(t, models.ErrCodeNavigation, categorizeError(errors.New("net::ERR_NAME_NOT_RESOLVED"), "x").Code)
}

func TestEffectiveTimeout(t *testing.T) {
	t.Parallel()

	s := &Scraper{scraperCfg: config.ScraperConfig{DefaultTimeout: 30 * time.Second, MaxTimeout: time.Minute}}

	assert.Equal(t, 30*time.Second, s.effectiveTimeout(0))
	assert.Equal(t, 10*time.Second, s.effectiveTimeout(10*time.Second))
	assert.Equal(t, time.Minute, s.effectiveTimeout(5*time.Minute))
}
