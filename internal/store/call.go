package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Call statuses
const (
	CallStatusInitiated    = "initiated"
	CallStatusInProgress   = "in_progress"
	CallStatusCompleted    = "completed"
	CallStatusNoTranscript = "no_transcript"
	CallStatusFailed       = "failed"
)

// Call is one row of the call log
type Call struct {
	ID              uuid.UUID       `db:"id"`
	CallSid         string          `db:"call_sid"`
	ToNumber        string          `db:"to_number"`
	Prompt          string          `db:"prompt"`
	Status          string          `db:"status"`
	RecordingURL    sql.NullString  `db:"recording_url"`
	Transcript      sql.NullString  `db:"transcript"`
	Keywords        pq.StringArray  `db:"keywords"`
	DurationSeconds sql.NullFloat64 `db:"duration_seconds"`
	Sentiment       sql.NullString  `db:"sentiment"`
	SentimentScore  sql.NullFloat64 `db:"sentiment_score"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// CreateCallParams represents parameters for logging a new call
type CreateCallParams struct {
	CallSid  string
	ToNumber string
	Prompt   string
}

// CompleteCallParams carries the post-call results
type CompleteCallParams struct {
	Status          string
	RecordingURL    string
	Transcript      string
	Keywords        []string
	DurationSeconds float64
	Sentiment       string
	SentimentScore  float64
}

const callColumns = `id, call_sid, to_number, prompt, status, recording_url, transcript, keywords,
duration_seconds, sentiment, sentiment_score, created_at, updated_at`

const sqlCreateCall = `
INSERT INTO calls (call_sid, to_number, prompt, status)
VALUES ($1, $2, $3, $4)
RETURNING ` + callColumns

// CreateCall inserts a call with status initiated
func (s *Store) CreateCall(ctx context.Context, params CreateCallParams) (Call, error) {
	var call Call
	err := s.db.GetContext(ctx, &call, sqlCreateCall,
		params.CallSid,
		params.ToNumber,
		params.Prompt,
		CallStatusInitiated)
	if err != nil {
		s.logger.Error(ctx, "failed to create call", err)
		return Call{}, fmt.Errorf("failed to create call: %w", err)
	}
	return call, nil
}

const sqlGetCallBySid = `
SELECT ` + callColumns + `
FROM calls
WHERE call_sid = $1
`

// GetCallBySid retrieves a call by its carrier call sid
func (s *Store) GetCallBySid(ctx context.Context, callSid string) (Call, error) {
	var call Call
	err := s.db.GetContext(ctx, &call, sqlGetCallBySid, callSid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get call by sid", err)
		return Call{}, fmt.Errorf("failed to get call by sid: %w", err)
	}
	return call, nil
}

const sqlUpdateCallStatus = `
UPDATE calls
SET status = $2, updated_at = CURRENT_TIMESTAMP
WHERE call_sid = $1
`

// UpdateCallStatus sets the status of a call
func (s *Store) UpdateCallStatus(ctx context.Context, callSid string, status string) error {
	res, err := s.db.ExecContext(ctx, sqlUpdateCallStatus, callSid, status)
	if err != nil {
		return fmt.Errorf("failed to update call status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

const sqlCompleteCall = `
INSERT INTO calls (call_sid, to_number, prompt, status, recording_url, transcript, keywords, duration_seconds, sentiment, sentiment_score)
VALUES ($1, '', '', $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (call_sid) DO UPDATE
SET status = EXCLUDED.status,
    recording_url = EXCLUDED.recording_url,
    transcript = EXCLUDED.transcript,
    keywords = EXCLUDED.keywords,
    duration_seconds = EXCLUDED.duration_seconds,
    sentiment = EXCLUDED.sentiment,
    sentiment_score = EXCLUDED.sentiment_score,
    updated_at = CURRENT_TIMESTAMP
RETURNING ` + callColumns

// CompleteCall stores post-call results. Inbound calls have no row yet, so the
// row is created when missing.
func (s *Store) CompleteCall(ctx context.Context, callSid string, params CompleteCallParams) (Call, error) {
	keywords := params.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	var call Call
	err := s.db.GetContext(ctx, &call, sqlCompleteCall,
		callSid,
		params.Status,
		params.RecordingURL,
		params.Transcript,
		pq.StringArray(keywords),
		params.DurationSeconds,
		params.Sentiment,
		params.SentimentScore)
	if err != nil {
		s.logger.Error(ctx, "failed to complete call", err)
		return Call{}, fmt.Errorf("failed to complete call: %w", err)
	}
	return call, nil
}
