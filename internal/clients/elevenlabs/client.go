// Package elevenlabs talks to the ElevenLabs Conversational AI service: signed URL
// lookup over HTTP and the realtime conversation over a WebSocket.
package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voice-bridge/internal/observability"

	"github.com/gorilla/websocket"
)

const (
	DefaultBaseURL      = "https://api.elevenlabs.io"
	DefaultPrompt       = "you are a gary from the phone store"
	DefaultFirstMessage = "hey there! how can I help you today?"
	DefaultSetupTimeout = 15 * time.Second

	signedURLPath = "/v1/convai/conversation/get_signed_url"
)

var (
	// ErrSetup is wrapped by every failure between the signed URL lookup and the
	// initiation message being written.
	ErrSetup = errors.New("agent setup failed")
	// ErrProtocol is wrapped by frames that cannot be decoded.
	ErrProtocol = errors.New("agent protocol error")
	// ErrClosed is returned by writes on a closed conversation.
	ErrClosed = errors.New("agent conversation closed")
)

type Config struct {
	APIKey        string
	AgentID       string
	BaseURL       string
	DefaultPrompt string
	FirstMessage  string
	SetupTimeout  time.Duration
}

// ConversationConfig holds the per-call overrides sent in the initiation message.
type ConversationConfig struct {
	Prompt       string
	FirstMessage string
}

type signedURLResponse struct {
	SignedURL string `json:"signed_url"`
}

// Client creates agent conversations.
type Client struct {
	apiKey        string
	agentID       string
	baseURL       string
	defaultPrompt string
	firstMessage  string
	setupTimeout  time.Duration
	httpClient    *http.Client
	dialer        *websocket.Dialer
	logger        *observability.Logger
}

func NewClient(cfg Config, logger *observability.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.SetupTimeout
	if timeout <= 0 {
		timeout = DefaultSetupTimeout
	}
	prompt := cfg.DefaultPrompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	firstMessage := cfg.FirstMessage
	if firstMessage == "" {
		firstMessage = DefaultFirstMessage
	}

	return &Client{
		apiKey:        cfg.APIKey,
		agentID:       cfg.AgentID,
		baseURL:       baseURL,
		defaultPrompt: prompt,
		firstMessage:  firstMessage,
		setupTimeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: timeout,
		},
		logger: logger,
	}
}

// GetSignedURL asks the agent service for a one-off conversation URL. The API key
// only ever travels on this request.
func (c *Client) GetSignedURL(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s%s?agent_id=%s", c.baseURL, signedURLPath, url.QueryEscape(c.agentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build signed url request: %v", ErrSetup, err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "failed to call signed url endpoint", err)
		return "", fmt.Errorf("%w: get signed url: %v", ErrSetup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: get signed url: status %d: %s", ErrSetup, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed signedURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode signed url response: %v", ErrSetup, err)
	}
	if parsed.SignedURL == "" {
		return "", fmt.Errorf("%w: signed url response without signed_url", ErrSetup)
	}
	return parsed.SignedURL, nil
}

// Connect opens a conversation and sends the initiation message. Empty fields of cc
// fall back to the client defaults.
func (c *Client) Connect(ctx context.Context, cc ConversationConfig) (*Conversation, error) {
	setupCtx, cancel := context.WithTimeout(ctx, c.setupTimeout)
	defer cancel()

	signedURL, err := c.GetSignedURL(setupCtx)
	if err != nil {
		return nil, err
	}

	conn, resp, err := c.dialer.DialContext(setupCtx, signedURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: dial conversation: %v", ErrSetup, err)
	}

	conv := newConversation(conn, c.logger)

	initiation := initiationMessage{
		Type: "conversation_initiation_client_data",
		ConversationConfigOverride: conversationConfigOverride{
			Agent: agentOverride{
				Prompt:       promptOverride{Prompt: firstNonEmpty(cc.Prompt, c.defaultPrompt)},
				FirstMessage: firstNonEmpty(cc.FirstMessage, c.firstMessage),
			},
		},
	}
	if err := conv.writeJSON(initiation); err != nil {
		conv.Close()
		return nil, fmt.Errorf("%w: send initiation: %v", ErrSetup, err)
	}

	c.logger.Info(ctx, "Connected to agent conversation")
	return conv, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
