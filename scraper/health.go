package scraper

import (
	"math"
	"sync"
	"time"
)

// Retirement thresholds for pooled tabs.
const (
	maxErrScore = 3.0
	maxPageAge  = 50 * time.Minute
)

// pageHealth scores a pooled tab. Failures add 1, successes subtract 0.5
// (never below 0). A tab is retired once the score, its use count or its
// age crosses a threshold.
type pageHealth struct {
	mu       sync.Mutex
	errScore float64
	useCount int
	created  time.Time
	maxUses  int
}

func newPageHealth(maxUses int, now time.Time) *pageHealth {
	return &pageHealth{created: now, maxUses: maxUses}
}

func (h *pageHealth) record(success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	if success {
		h.errScore = math.Max(0, h.errScore-0.5)
	} else {
		h.errScore += 1.0
	}
}

func (h *pageHealth) shouldRetire(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.errScore >= maxErrScore:
		return true
	case h.maxUses > 0 && h.useCount >= h.maxUses:
		return true
	default:
		return now.Sub(h.created) >= maxPageAge
	}
}
