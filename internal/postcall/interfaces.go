package postcall

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=postcall

import (
	"context"

	"voice-bridge/internal/clients/openai"
	"voice-bridge/internal/clients/transcriber"
	"voice-bridge/internal/store"
	"voice-bridge/internal/webhooks/service"
)

// Transcript is the speech-to-text result for one recording
type Transcript struct {
	Text     string
	Keywords []string
}

type Transcriber interface {
	Transcribe(ctx context.Context, path string) (Transcript, error)
}

type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, transcript string) (string, float64, error)
}

type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, transcript string) ([]string, error)
}

type ReportSender interface {
	SendReport(ctx context.Context, url string, report service.CallReport) error
}

type CallStore interface {
	CompleteCall(ctx context.Context, callSid string, params store.CompleteCallParams) (store.Call, error)
}

// TranscriberFunc adapts a function to Transcriber.
type TranscriberFunc func(ctx context.Context, path string) (Transcript, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, path string) (Transcript, error) {
	return f(ctx, path)
}

// NewServiceTranscriber transcribes through the local speech-to-text service.
func NewServiceTranscriber(client *transcriber.Client) Transcriber {
	return TranscriberFunc(func(ctx context.Context, path string) (Transcript, error) {
		result, err := client.Transcribe(ctx, path)
		if err != nil {
			return Transcript{}, err
		}
		return Transcript{Text: result.Transcript, Keywords: result.Keywords}, nil
	})
}

// NewWhisperTranscriber transcribes through the OpenAI Whisper API.
func NewWhisperTranscriber(client *openai.Client) Transcriber {
	return TranscriberFunc(func(ctx context.Context, path string) (Transcript, error) {
		text, err := client.Transcribe(ctx, path)
		if err != nil {
			return Transcript{}, err
		}
		return Transcript{Text: text}, nil
	})
}
