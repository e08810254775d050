package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"voice-bridge/internal/observability"

	"github.com/openai/openai-go"
	openaiOption "github.com/openai/openai-go/option"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	sentimentModel = openai.ChatModelGPT4oMini
)

var ErrEmptyResponse = errors.New("openai returned no choices")

const sentimentPrompt = `You rate the overall sentiment of a phone call transcript.
Return ONLY a JSON object, no other text, in the form {"sentiment": "positive|neutral|negative", "score": <number from -1 to 1>}.`

const keywordsPrompt = `Extract the most important keywords from this transcript.
Return ONLY a JSON array of strings, no other text.
Return format: ["keyword1", "keyword2", "keyword3"]`

// Client wraps the OpenAI SDK for post-call analysis: Whisper transcription,
// sentiment scoring and keyword extraction.
type Client struct {
	apiKey  string
	baseURL string
	logger  *observability.Logger
}

func NewClient(apiKey string, logger *observability.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &Client{apiKey: apiKey, logger: logger}, nil
}

// WithBaseURL points the client at a different API origin, e.g. a proxy.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

func (c *Client) options() []openaiOption.RequestOption {
	options := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(c.apiKey),
		openaiOption.WithMaxRetries(1),
	}
	if c.baseURL != "" {
		options = append(options, openaiOption.WithBaseURL(c.baseURL))
	}
	return options
}

// Transcribe uploads the recording at path to Whisper and returns the text
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	client := openai.NewClient(c.options()...)
	resp, err := client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(f, filepath.Base(path), "audio/wav"),
	})
	if err != nil {
		c.logger.Error(ctx, "Whisper transcription failed", err)
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

type sentimentResponse struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// AnalyzeSentiment returns a positive, neutral or negative label and a score in [-1, 1]
func (c *Client) AnalyzeSentiment(ctx context.Context, transcript string) (string, float64, error) {
	content, err := c.complete(ctx, sentimentPrompt, transcript)
	if err != nil {
		return "", 0, fmt.Errorf("sentiment analysis failed: %w", err)
	}

	var parsed sentimentResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		return "", 0, fmt.Errorf("failed to parse sentiment response: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(parsed.Sentiment))
	switch label {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		return "", 0, fmt.Errorf("unexpected sentiment label %q", parsed.Sentiment)
	}
	return label, math.Max(-1, math.Min(1, parsed.Score)), nil
}

// ExtractKeywords returns the most important keywords of a transcript
func (c *Client) ExtractKeywords(ctx context.Context, transcript string) ([]string, error) {
	content, err := c.complete(ctx, keywordsPrompt, transcript)
	if err != nil {
		return nil, fmt.Errorf("keyword extraction failed: %w", err)
	}

	var raw []string
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse keywords response: %w", err)
	}

	keywords := make([]string, 0, len(raw))
	for _, kw := range raw {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(c.options()...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: sentimentModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		c.logger.Error(ctx, "chat completion failed", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if the model added one
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
