package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/webstruct/config"
	"github.com/use-agent/webstruct/models"
	"github.com/use-agent/webstruct/webhook"
	"golang.org/x/sync/errgroup"
)

type batchJob struct {
	mu        sync.Mutex
	id        string
	status    string
	total     int
	completed int
	results   []*models.ScrapeResponse
	createdAt time.Time
	done      chan struct{}
}

func (j *batchJob) snapshot() models.BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]*models.ScrapeResponse, len(j.results))
	copy(results, j.results)
	return models.BatchStatusResponse{
		ID:        j.id,
		Status:    j.status,
		Completed: j.completed,
		Total:     j.total,
		Results:   results,
	}
}

// BatchRunner owns the in-flight and finished batch jobs.
type BatchRunner struct {
	pipeline    *Pipeline
	webhooks    *webhook.Sender
	concurrency int
	ttl         time.Duration
	jobs        sync.Map
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewBatchRunner creates a BatchRunner. Jobs older than cfg.JobTTL are
// dropped by a background goroutine.
func NewBatchRunner(p *Pipeline, cfg config.BatchConfig) *BatchRunner {
	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	ttl := cfg.JobTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	b := &BatchRunner{
		pipeline:    p,
		webhooks:    webhook.NewSender(cfg.WebhookTimeout),
		concurrency: concurrency,
		ttl:         ttl,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go b.cleanupLoop(5 * time.Minute)
	return b
}

// Stop ends the cleanup goroutine. Running jobs finish on their own.
func (b *BatchRunner) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
}

// Start registers a job for req and processes it in the background.
func (b *BatchRunner) Start(req models.BatchRequest) models.BatchResponse {
	job := &batchJob{
		id:        "batch-" + uuid.NewString(),
		status:    models.BatchProcessing,
		total:     len(req.URLs),
		results:   make([]*models.ScrapeResponse, len(req.URLs)),
		createdAt: b.now(),
		done:      make(chan struct{}),
	}
	b.jobs.Store(job.id, job)

	go b.run(job, req)

	return models.BatchResponse{ID: job.id, Status: models.BatchProcessing, Total: job.total}
}

// Status returns the progress of job id.
func (b *BatchRunner) Status(id string) (models.BatchStatusResponse, bool) {
	val, ok := b.jobs.Load(id)
	if !ok {
		return models.BatchStatusResponse{}, false
	}
	return val.(*batchJob).snapshot(), true
}

func (b *BatchRunner) run(job *batchJob, req models.BatchRequest) {
	defer close(job.done)

	var (
		mu     sync.Mutex
		failed int
	)
	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)
	for i, rawURL := range req.URLs {
		g.Go(func() error {
			resp, err := b.pipeline.Scrape(context.Background(), req.Options.ScrapeRequest(rawURL))
			if err != nil {
				slog.Debug("batch item failed", "id", job.id, "url", rawURL, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}

			job.mu.Lock()
			job.results[i] = resp
			job.completed++
			job.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	job.mu.Lock()
	switch {
	case failed == job.total:
		job.status = models.BatchFailed
	case failed > 0:
		job.status = models.BatchPartial
	default:
		job.status = models.BatchCompleted
	}
	job.mu.Unlock()

	slog.Info("batch job finished",
		"id", job.id,
		"status", job.status,
		"failed", failed,
		"total", job.total,
	)

	if req.WebhookURL != "" {
		b.webhooks.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
			Type:      webhook.EventBatchCompleted,
			JobID:     job.id,
			Timestamp: b.now().Unix(),
			Data:      job.snapshot(),
		})
	}
}

func (b *BatchRunner) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.evictExpired()
		}
	}
}

func (b *BatchRunner) evictExpired() {
	cutoff := b.now().Add(-b.ttl)
	b.jobs.Range(func(key, value any) bool {
		if value.(*batchJob).createdAt.Before(cutoff) {
			b.jobs.Delete(key)
		}
		return true
	})
}

// PostBatch returns a handler for POST /api/v1/batch/scrape.
func PostBatch(b *BatchRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}
		c.JSON(http.StatusAccepted, b.Start(req))
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch(b *BatchRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, ok := b.Status(c.Param("id"))
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "batch job not found", nil), nil)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
