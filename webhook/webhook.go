package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Event types.
const EventBatchCompleted = "batch.completed"

// SignatureHeader carries the HMAC-SHA256 of the body as "sha256=<hex>".
const SignatureHeader = "X-Webstruct-Signature"

// DefaultRetryDelays are the waits before the second, third and fourth attempt.
var DefaultRetryDelays = []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Sender posts events to webhook endpoints.
type Sender struct {
	client      *http.Client
	retryDelays []time.Duration
}

// NewSender creates a Sender whose attempts each time out after timeout.
func NewSender(timeout time.Duration) *Sender {
	return &Sender{
		client:      &http.Client{Timeout: timeout},
		retryDelays: DefaultRetryDelays,
	}
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends an event once. The body is signed when secret is non-empty.
func (s *Sender) Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Webstruct-Webhook/1.0")
	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync sends an event in the background, retrying after each of the
// configured delays.
func (s *Sender) DeliverAsync(url, secret string, event *Event) {
	go func() {
		_ = s.deliverWithRetry(context.Background(), url, secret, event)
	}()
}

func (s *Sender) deliverWithRetry(ctx context.Context, url, secret string, event *Event) error {
	delays := append([]time.Duration{0}, s.retryDelays...)
	var err error
	for attempt, delay := range delays {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err = s.Deliver(ctx, url, secret, event); err == nil {
			slog.Info("webhook delivered",
				"url", url,
				"event", event.Type,
				"job_id", event.JobID,
				"attempt", attempt+1,
			)
			return nil
		}
		slog.Warn("webhook delivery failed",
			"url", url,
			"event", event.Type,
			"job_id", event.JobID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	slog.Error("webhook delivery exhausted all retries",
		"url", url,
		"event", event.Type,
		"job_id", event.JobID,
	)
	return err
}
