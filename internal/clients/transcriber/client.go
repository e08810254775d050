package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-bridge/internal/observability"
)

// DefaultTimeout bounds a single transcription request. Whisper on CPU is slow,
// so this is well above the webhook timeout.
const DefaultTimeout = 5 * time.Minute

var ErrTranscriptionFailed = errors.New("transcription failed")

// Result is the transcription service response
type Result struct {
	Success    bool     `json:"success"`
	Transcript string   `json:"transcript"`
	Keywords   []string `json:"keywords"`
	Error      string   `json:"error,omitempty"`
}

type transcribeRequest struct {
	Filepath string `json:"filepath"`
}

// Client calls the local speech-to-text service with the path of a recording
type Client struct {
	url        string
	httpClient *http.Client
	logger     *observability.Logger
}

func NewClient(url string, logger *observability.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// Transcribe posts {"filepath": path}. The service must be able to read path
// from its own filesystem.
func (c *Client) Transcribe(ctx context.Context, path string) (Result, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "recording_path", Value: path})

	body, err := json.Marshal(transcribeRequest{Filepath: path})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "transcription request failed", err)
		return Result{}, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to read response: %w", ErrTranscriptionFailed, err)
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Result{}, fmt.Errorf("%w: status %d: invalid response body", ErrTranscriptionFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "service reported failure"
		}
		return Result{}, fmt.Errorf("%w: status %d: %s", ErrTranscriptionFailed, resp.StatusCode, msg)
	}

	c.logger.Info(ctx, fmt.Sprintf("Transcribed recording in %s (%d keywords)", time.Since(start).Round(time.Millisecond), len(result.Keywords)))
	return result, nil
}
