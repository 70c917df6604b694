package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/use-agent/webstruct/models"
)

// DefaultEscalationDelays start the static HTTP engine immediately, the
// browser after 2s and the stealth browser after 5s.
var DefaultEscalationDelays = []time.Duration{0, 2 * time.Second, 5 * time.Second}

// Dispatcher races engines with staged escalation: the fastest engine starts
// first and heavier ones join if it has not succeeded after their delay.
type Dispatcher struct {
	engines          []Engine
	escalationDelays []time.Duration
	memory           *DomainMemory
}

// NewDispatcher creates a Dispatcher. engines[i] starts escalationDelays[i]
// after the race begins; missing delays are zero. memory may be nil.
func NewDispatcher(engines []Engine, escalationDelays []time.Duration, memory *DomainMemory) *Dispatcher {
	delays := make([]time.Duration, len(engines))
	copy(delays, escalationDelays)
	return &Dispatcher{
		engines:          engines,
		escalationDelays: delays,
		memory:           memory,
	}
}

func (d *Dispatcher) Name() string { return "auto" }

// Fetch implements Engine so a Dispatcher can stand in for a single engine.
func (d *Dispatcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	return d.Dispatch(ctx, req)
}

// Dispatch returns the first successful result. A remembered engine for the
// host is tried alone first; if it fails the full race runs.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "dispatcher has no engines", nil)
	}
	host := extractHost(req.URL)

	if remembered := d.remembered(host); remembered != nil {
		slog.Debug("domain memory hit", "host", host, "engine", remembered.Name())
		result, err := remembered.Fetch(ctx, req)
		if err == nil {
			return result, nil
		}
		slog.Info("domain memory miss (engine failed), running full race",
			"host", host, "engine", remembered.Name(), "error", err)
		d.memory.Delete(host)
	}

	return d.race(ctx, req, host)
}

func (d *Dispatcher) remembered(host string) Engine {
	if d.memory == nil {
		return nil
	}
	name := d.memory.Get(host)
	if name == "" {
		return nil
	}
	for _, eng := range d.engines {
		if eng.Name() == name {
			return eng
		}
	}
	return nil
}

func (d *Dispatcher) race(ctx context.Context, req *FetchRequest, host string) (*FetchResult, error) {
	type raceResult struct {
		result *FetchResult
		err    error
	}

	raceCtx, raceCancel := context.WithCancel(ctx)
	defer raceCancel()

	results := make(chan raceResult, len(d.engines))
	var wg sync.WaitGroup

	for i, eng := range d.engines {
		wg.Add(1)
		go func(e Engine, delay time.Duration) {
			defer wg.Done()

			if delay > 0 {
				timer := time.NewTimer(delay)
				defer timer.Stop()
				select {
				case <-raceCtx.Done():
					return
				case <-timer.C:
				}
			}
			if raceCtx.Err() != nil {
				return
			}

			slog.Debug("engine starting", "engine", e.Name(), "url", req.URL)
			result, err := e.Fetch(raceCtx, req)
			if err != nil {
				slog.Debug("engine failed", "engine", e.Name(), "url", req.URL, "error", err)
			}
			results <- raceResult{result: result, err: err}
		}(eng, d.escalationDelays[i])
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var lastErr error
	for rr := range results {
		if rr.err != nil {
			lastErr = rr.err
			continue
		}
		raceCancel()
		slog.Info("engine won race", "engine", rr.result.EngineName, "url", req.URL)
		if d.memory != nil {
			d.memory.Set(host, rr.result.EngineName)
		}
		return rr.result, nil
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	var scrapeErr *models.ScrapeError
	if errors.As(lastErr, &scrapeErr) {
		return nil, lastErr
	}
	return nil, categorizeFetchError(lastErr, "all engines failed for "+req.URL)
}

// extractHost parses the host (with port) from a URL string.
func extractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
