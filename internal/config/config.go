package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	ElevenLabs    ElevenLabsConfig
	Twilio        TwilioConfig
	Recording     RecordingConfig
	Transcription TranscriptionConfig
	Webhook       WebhookConfig
	WorkerPool    WorkerPoolConfig
	Server        ServerConfig
}

// DatabaseConfig holds database connection settings. The call log is optional,
// an empty Host disables it.
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// ElevenLabsConfig holds the agent service settings
type ElevenLabsConfig struct {
	APIKey        string
	AgentID       string
	BaseURL       string
	DefaultPrompt string
	FirstMessage  string
	SetupTimeout  time.Duration
}

// TwilioConfig holds the carrier REST credentials
type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

type RecordingConfig struct {
	Dir    string
	Layout string
}

// TranscriptionConfig selects the post-call transcriber
type TranscriptionConfig struct {
	Transcriber  string // service, whisper or none
	ServiceURL   string
	OpenAIAPIKey string
}

type WebhookConfig struct {
	URL    string
	Secret string
}

// WorkerPoolConfig holds worker pool configuration for post-call processing
type WorkerPoolConfig struct {
	PostCallWorkers int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	// PublicHost is the host the carrier reaches us on. Empty means use the request host.
	PublicHost string
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}

	var err error
	cfg.Database.Host = os.Getenv("DB_HOST")
	if cfg.Database.Host != "" {
		if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
			return nil, err
		}
		if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
			return nil, err
		}
		if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
			return nil, err
		}
	}

	// Agent service configuration
	if cfg.ElevenLabs.APIKey, err = requireEnv("ELEVENLABS_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.ElevenLabs.AgentID, err = requireEnv("ELEVENLABS_AGENT_ID"); err != nil {
		return nil, err
	}
	cfg.ElevenLabs.BaseURL = getEnvWithDefault("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io")
	cfg.ElevenLabs.DefaultPrompt = getEnvWithDefault("AGENT_DEFAULT_PROMPT", "you are a gary from the phone store")
	cfg.ElevenLabs.FirstMessage = getEnvWithDefault("AGENT_FIRST_MESSAGE", "hey there! how can I help you today?")
	cfg.ElevenLabs.SetupTimeout, err = time.ParseDuration(getEnvWithDefault("AGENT_SETUP_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse AGENT_SETUP_TIMEOUT: %w", err)
	}

	// Carrier configuration
	if cfg.Twilio.AccountSID, err = requireEnv("TWILIO_ACCOUNT_SID"); err != nil {
		return nil, err
	}
	if cfg.Twilio.AuthToken, err = requireEnv("TWILIO_AUTH_TOKEN"); err != nil {
		return nil, err
	}
	if cfg.Twilio.PhoneNumber, err = requireEnv("TWILIO_PHONE_NUMBER"); err != nil {
		return nil, err
	}

	// Recording and post-call configuration
	cfg.Recording.Dir = getEnvWithDefault("RECORDINGS_DIR", "recordings")
	cfg.Recording.Layout = getEnvWithDefault("RECORDING_LAYOUT", "stereo")

	cfg.Transcription.Transcriber = strings.ToLower(getEnvWithDefault("TRANSCRIBER", "service"))
	cfg.Transcription.ServiceURL = getEnvWithDefault("TRANSCRIPTION_URL", "http://localhost:5000/transcribe")
	cfg.Transcription.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	switch cfg.Transcription.Transcriber {
	case "service", "none":
	case "whisper":
		if cfg.Transcription.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when TRANSCRIBER=whisper: %w", ErrEmptyEnvironmentVariable)
		}
	default:
		return nil, fmt.Errorf("unknown TRANSCRIBER %q", cfg.Transcription.Transcriber)
	}

	cfg.Webhook.URL = os.Getenv("WEBHOOK_URL")
	cfg.Webhook.Secret = os.Getenv("WEBHOOK_SECRET")

	// Worker pool configuration
	postCallWorkers := getEnvWithDefault("POSTCALL_WORKERS", "2")
	cfg.WorkerPool.PostCallWorkers, err = strconv.Atoi(postCallWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse POSTCALL_WORKERS: %w", err)
	}

	// Server configuration
	serverPort := getEnvWithDefault("SERVER_PORT", "5059")
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}
	cfg.Server.PublicHost = os.Getenv("PUBLIC_HOST")

	return cfg, nil
}

// Enabled reports whether a call log database is configured
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// PublicBaseURL is the https origin used in links handed to third parties
func (c *ServerConfig) PublicBaseURL() string {
	if c.PublicHost == "" {
		return fmt.Sprintf("http://localhost:%d", c.Port)
	}
	return "https://" + c.PublicHost
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
