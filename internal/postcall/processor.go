package postcall

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"voice-bridge/internal/clients/elevenlabs"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"
	voiceaudio "voice-bridge/internal/voice/audio"
	"voice-bridge/internal/voice/recording"
	"voice-bridge/internal/voice/session"
	"voice-bridge/internal/webhooks/service"
)

const (
	StatusCompleted    = store.CallStatusCompleted
	StatusNoTranscript = store.CallStatusNoTranscript

	defaultSentiment = "neutral"
)

// Config holds the report destination and the origin recordings are served from
type Config struct {
	WebhookURL    string
	PublicBaseURL string
}

// Dependencies are the optional collaborators of the processor. A nil field
// disables the corresponding step.
type Dependencies struct {
	Transcriber Transcriber
	Sentiment   SentimentAnalyzer
	Keywords    KeywordExtractor
	Sender      ReportSender
	Store       CallStore
}

// Processor turns a finished call's recordings into a report
type Processor struct {
	config   Config
	deps     Dependencies
	logger   *observability.Logger
	duration func(path string) (time.Duration, error)
}

func NewProcessor(config Config, deps Dependencies, logger *observability.Logger) *Processor {
	return &Processor{
		config:   config,
		deps:     deps,
		logger:   logger,
		duration: recording.Duration,
	}
}

func (p *Processor) Name() string {
	return "postcall"
}

// Process computes duration, transcript and sentiment for the job's recordings,
// delivers the report and updates the call log.
func (p *Processor) Process(ctx context.Context, job Job) error {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "call_sid", Value: job.CallSid},
		observability.Field{Key: "stream_sid", Value: job.StreamSid},
	)

	if len(job.Files) == 0 {
		p.logger.Info(ctx, "No recordings for call, skipping post-call processing")
		return nil
	}

	report := service.CallReport{
		CallSid:      job.CallSid,
		Duration:     p.callDuration(ctx, job.Files),
		RecordingURL: p.recordingURL(job.Files),
		Sentiment:    defaultSentiment,
		Keywords:     []string{},
	}

	transcript := p.transcribe(ctx, job)
	report.Transcript = transcript.Text
	if transcript.Keywords != nil {
		report.Keywords = transcript.Keywords
	}

	if report.Transcript != "" {
		report.Status = StatusCompleted
		if len(report.Keywords) == 0 && p.deps.Keywords != nil {
			keywords, err := p.deps.Keywords.ExtractKeywords(ctx, report.Transcript)
			if err != nil {
				p.logger.WarnWithError(ctx, "Keyword extraction failed", err)
			} else {
				report.Keywords = keywords
			}
		}
		if p.deps.Sentiment != nil {
			label, score, err := p.deps.Sentiment.AnalyzeSentiment(ctx, report.Transcript)
			if err != nil {
				p.logger.WarnWithError(ctx, "Sentiment analysis failed, using neutral", err)
			} else {
				report.Sentiment = label
				report.SentimentScore = score
			}
		}
	} else {
		report.Status = StatusNoTranscript
	}

	var errs []error
	if p.deps.Sender != nil && p.config.WebhookURL != "" {
		if err := p.deps.Sender.SendReport(ctx, p.config.WebhookURL, report); err != nil {
			errs = append(errs, fmt.Errorf("failed to deliver call report: %w", err))
		}
	}

	if p.deps.Store != nil && job.CallSid != "" {
		_, err := p.deps.Store.CompleteCall(ctx, job.CallSid, store.CompleteCallParams{
			Status:          report.Status,
			RecordingURL:    report.RecordingURL,
			Transcript:      report.Transcript,
			Keywords:        report.Keywords,
			DurationSeconds: report.Duration,
			Sentiment:       report.Sentiment,
			SentimentScore:  report.SentimentScore,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to update call record: %w", err))
		}
	}

	p.logger.Metrics(ctx,
		observability.MetricField{Key: "postcall_status", Value: report.Status},
		observability.MetricField{Key: "duration_seconds", Value: report.Duration},
		observability.MetricField{Key: "sentiment", Value: report.Sentiment},
		observability.MetricField{Key: "keyword_count", Value: len(report.Keywords)},
	)

	return errors.Join(errs...)
}

// callDuration is the length of the caller track in seconds. A stereo file
// holds caller and agent frames one after the other, so its playback length
// overstates the call. Without sample counts the longest recording is used.
func (p *Processor) callDuration(ctx context.Context, files []recording.File) float64 {
	var carrierSamples int
	for _, f := range files {
		carrierSamples += f.CarrierSamples
	}
	if carrierSamples > 0 {
		return float64(carrierSamples) / voiceaudio.SampleRate
	}

	var longest time.Duration
	for _, f := range files {
		d, err := p.duration(f.Path)
		if err != nil {
			p.logger.WarnWithError(ctx, fmt.Sprintf("Failed to read duration of %s", f.Path), err)
			continue
		}
		if d > longest {
			longest = d
		}
	}
	return longest.Seconds()
}

// primaryFile is the stereo mix when present, otherwise the first recording
func primaryFile(files []recording.File) recording.File {
	for _, f := range files {
		if f.Source == recording.SourceMixed {
			return f
		}
	}
	return files[0]
}

func (p *Processor) recordingURL(files []recording.File) string {
	base := strings.TrimSuffix(p.config.PublicBaseURL, "/")
	return base + "/recordings/" + filepath.Base(primaryFile(files).Path)
}

// transcribe runs the configured transcriber on every recording, falling back
// to the transcript captured live from the agent when that is not possible.
func (p *Processor) transcribe(ctx context.Context, job Job) Transcript {
	if p.deps.Transcriber != nil {
		t, err := p.transcribeFiles(ctx, job.Files)
		if err == nil && t.Text != "" {
			return t
		}
		if err != nil {
			p.logger.WarnWithError(ctx, "Transcription failed, using live transcript", err)
		}
	}
	return Transcript{Text: liveTranscript(job.LiveTranscript)}
}

func (p *Processor) transcribeFiles(ctx context.Context, files []recording.File) (Transcript, error) {
	var lines []string
	var keywords []string
	seen := map[string]bool{}

	for _, f := range files {
		t, err := p.deps.Transcriber.Transcribe(ctx, f.Path)
		if err != nil {
			return Transcript{}, fmt.Errorf("failed to transcribe %s: %w", filepath.Base(f.Path), err)
		}
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		if label := speakerLabel(f.Source); label != "" {
			text = label + ": " + text
		}
		lines = append(lines, text)

		for _, kw := range t.Keywords {
			if !seen[kw] {
				seen[kw] = true
				keywords = append(keywords, kw)
			}
		}
	}

	return Transcript{Text: strings.Join(lines, "\n"), Keywords: keywords}, nil
}

func speakerLabel(src recording.Source) string {
	switch src {
	case recording.SourceCarrier:
		return "Caller"
	case recording.SourceAgent:
		return "Agent"
	default:
		return ""
	}
}

func liveTranscript(lines []session.TranscriptLine) string {
	var b strings.Builder
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if l.Role == elevenlabs.RoleAgent {
			b.WriteString("Agent: ")
		} else {
			b.WriteString("Caller: ")
		}
		b.WriteString(text)
	}
	return b.String()
}
