package postcall

import (
	"time"

	"voice-bridge/internal/voice/recording"
	"voice-bridge/internal/voice/session"

	"github.com/google/uuid"
)

// Job is the post-call work for one finished session
type Job struct {
	ID             string
	CallSid        string
	StreamSid      string
	Files          []recording.File
	LiveTranscript []session.TranscriptLine
	EndReason      session.EndReason
	EndedAt        time.Time
}

func (j Job) JobID() string {
	return j.ID
}

// NewJob builds the job for a session summary
func NewJob(summary session.Summary) Job {
	return Job{
		ID:             uuid.NewString(),
		CallSid:        summary.CallSid,
		StreamSid:      summary.StreamSid,
		Files:          summary.Files,
		LiveTranscript: summary.Transcript,
		EndReason:      summary.EndReason,
		EndedAt:        summary.EndedAt,
	}
}
