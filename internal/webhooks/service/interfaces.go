package service

import (
	"context"
)

// WebhookServiceInterface defines the interface for post-call report delivery
type WebhookServiceInterface interface {
	// SendReport delivers a call report to url, retrying failed attempts
	SendReport(ctx context.Context, url string, report CallReport) error
}
