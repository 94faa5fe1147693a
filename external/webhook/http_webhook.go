package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/foxseedlab/adhan/internal/webhook"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
	maxErrorBody       = 512
)

// StatusError is a non-2xx answer from the receiver.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether the receiver may accept the same delivery later.
func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Options struct {
	URL         string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

type BroadcastSender struct {
	url         string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
}

func NewBroadcastSender(opts Options) webhook.Sender {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	return &BroadcastSender{
		url:         opts.URL,
		client:      &http.Client{Timeout: opts.Timeout},
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
	}
}

// SendBroadcast posts the summary, retrying transport failures, 429 and 5xx
// with a doubling backoff. An empty URL disables delivery.
func (s *BroadcastSender) SendBroadcast(ctx context.Context, payload webhook.BroadcastWebhookPayload) error {
	if s.url == "" {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode broadcast webhook: %w", err)
	}

	wait := s.backoff
	for attempt := 1; ; attempt++ {
		err = s.post(ctx, payload.BroadcastID, body)
		if err == nil {
			return nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("broadcast webhook failed after %d attempts: %w", attempt, err)
		}
		slog.Warn("broadcast webhook delivery failed; retrying", "error", err, "broadcast_id", payload.BroadcastID, "attempt", attempt)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("broadcast webhook cancelled: %w", ctx.Err())
		case <-timer.C:
		}
		wait *= 2
	}
}

func (s *BroadcastSender) post(ctx context.Context, broadcastID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Broadcast-Id", broadcastID)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
}
