package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-bridge/internal/observability"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	SignatureHeader    = "X-Webhook-Signature"
)

var ErrDeliveryFailed = errors.New("webhook delivery failed")

// CallReport is the JSON body delivered once a call has been processed
type CallReport struct {
	CallSid        string   `json:"call_sid"`
	Duration       float64  `json:"duration"`
	RecordingURL   string   `json:"recording_url"`
	Transcript     string   `json:"transcript"`
	Keywords       []string `json:"keywords"`
	Sentiment      string   `json:"sentiment"`
	SentimentScore float64  `json:"sentiment_score"`
	Status         string   `json:"status"`
}

// Config controls signing and retry behaviour
type Config struct {
	Secret      string
	MaxAttempts int
	// BaseDelay is the wait before the second attempt, doubled for each following one.
	BaseDelay time.Duration
	Timeout   time.Duration
}

// WebhookService handles webhook delivery operations
type WebhookService struct {
	config     Config
	logger     *observability.Logger
	httpClient *http.Client
}

// New creates a new WebhookService
func New(config Config, logger *observability.Logger) *WebhookService {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = DefaultBaseDelay
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &WebhookService{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// SendReport PUTs the report to url. Transport errors and non-2xx responses are
// retried with exponential backoff until MaxAttempts is reached or ctx is done.
func (s *WebhookService) SendReport(ctx context.Context, url string, report CallReport) error {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "webhook_url", Value: url},
		observability.Field{Key: "call_sid", Value: report.CallSid},
	)

	payloadBytes, err := json.Marshal(report)
	if err != nil {
		s.logger.Error(ctx, "failed to marshal payload", err)
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.calculateNextRetry(attempt - 1)
			s.logger.Info(ctx, fmt.Sprintf("retrying webhook delivery in %s (attempt %d/%d)", delay, attempt, s.config.MaxAttempts))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrDeliveryFailed, ctx.Err())
			}
		}

		status, durationMs, err := s.deliverWebhook(ctx, url, payloadBytes)
		if err == nil {
			s.logger.Info(ctx, fmt.Sprintf("webhook delivered successfully (status %d, %dms)", status, durationMs))
			return nil
		}
		lastErr = err
		s.logger.WarnWithError(ctx, fmt.Sprintf("webhook delivery attempt %d failed", attempt), err)
	}

	s.logger.Error(ctx, "webhook delivery failed, no more retries", lastErr)
	return fmt.Errorf("%w after %d attempts: %w", ErrDeliveryFailed, s.config.MaxAttempts, lastErr)
}

// deliverWebhook performs the actual HTTP request to deliver the webhook
func (s *WebhookService) deliverWebhook(ctx context.Context, url string, payloadBytes []byte) (responseStatus int, durationMs int, err error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Voice-Bridge-Webhook/1.0")
	if s.config.Secret != "" {
		req.Header.Set(SignatureHeader, s.generateSignature(s.config.Secret, payloadBytes))
	}

	resp, err := s.httpClient.Do(req)
	durationMs = int(time.Since(startTime).Milliseconds())
	if err != nil {
		return 0, durationMs, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Drain a bounded amount so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10240))

	responseStatus = resp.StatusCode
	if responseStatus >= 200 && responseStatus < 300 {
		return responseStatus, durationMs, nil
	}
	return responseStatus, durationMs, fmt.Errorf("received non-2xx status code: %d", responseStatus)
}

// generateSignature generates an HMAC signature for the webhook payload.
// Format: sha256=<hex>
func (s *WebhookService) generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// calculateNextRetry returns the wait after the given failed attempt: BaseDelay, 2x, 4x, ...
func (s *WebhookService) calculateNextRetry(failedAttempts int) time.Duration {
	return s.config.BaseDelay << (failedAttempts - 1)
}
