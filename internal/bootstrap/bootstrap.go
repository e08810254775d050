package bootstrap

import (
	"context"
	"fmt"

	"voice-bridge/internal/clients/elevenlabs"
	"voice-bridge/internal/clients/openai"
	"voice-bridge/internal/clients/transcriber"
	"voice-bridge/internal/config"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/postcall"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voice/recording"
	"voice-bridge/internal/voice/session"
	webhookService "voice-bridge/internal/webhooks/service"
	"voice-bridge/internal/workers"

	voiceCallHandler "voice-bridge/internal/voicecall/handler"
	voiceCallProcessor "voice-bridge/internal/voicecall/processor"

	"github.com/twilio/twilio-go"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  *store.Store
	Logger *observability.Logger

	// Handlers
	VoiceCallHandler voiceCallHandler.Handler

	// Background workers
	PostCallPool workers.WorkerPool[postcall.Job]

	RecordingsDir string
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger:        logger,
		RecordingsDir: cfg.Recording.Dir,
	}

	// Initialize the call log when configured
	if cfg.Database.Enabled() {
		s, err := store.New(cfg.Database.ConnectionString(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.Store = &s
	} else {
		logger.Info(ctx, "DB_HOST not set, call log disabled")
	}

	// Initialize clients
	agentClient := elevenlabs.NewClient(elevenlabs.Config{
		APIKey:        cfg.ElevenLabs.APIKey,
		AgentID:       cfg.ElevenLabs.AgentID,
		BaseURL:       cfg.ElevenLabs.BaseURL,
		DefaultPrompt: cfg.ElevenLabs.DefaultPrompt,
		FirstMessage:  cfg.ElevenLabs.FirstMessage,
		SetupTimeout:  cfg.ElevenLabs.SetupTimeout,
	}, logger)

	twilioClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.Twilio.AccountSID,
		Password: cfg.Twilio.AuthToken,
	})

	recorder := recording.NewRecorder(recording.Config{
		Dir:    cfg.Recording.Dir,
		Layout: recording.ParseLayout(cfg.Recording.Layout),
	}, logger)

	// Initialize post-call processing
	postCallDeps, err := postCallDependencies(cfg, deps.Store, logger)
	if err != nil {
		return nil, err
	}
	postCallProc := postcall.NewProcessor(postcall.Config{
		WebhookURL:    cfg.Webhook.URL,
		PublicBaseURL: cfg.Server.PublicBaseURL(),
	}, postCallDeps, logger)

	poolConfig := workers.DefaultWorkerPoolConfig[postcall.Job]()
	poolConfig.NumWorkers = cfg.WorkerPool.PostCallWorkers
	deps.PostCallPool = workers.NewWorkerPool(poolConfig, workers.Processor[postcall.Job](postCallProc), logger)

	// Initialize voice call processor and handler
	voiceDeps := voiceCallProcessor.Dependencies{
		Calls:     twilioClient.Api,
		Connector: session.NewAgentConnector(agentClient),
		Recorder:  session.NewRecorder(recorder),
		Jobs:      deps.PostCallPool,
	}
	if deps.Store != nil {
		voiceDeps.Store = deps.Store
	}
	sessionConfig := session.DefaultConfig()
	sessionConfig.FirstMessage = cfg.ElevenLabs.FirstMessage
	voiceCallProc := voiceCallProcessor.NewVoiceCallProcessor(voiceCallProcessor.Config{
		FromNumber:    cfg.Twilio.PhoneNumber,
		PublicBaseURL: cfg.Server.PublicBaseURL(),
		Session:       sessionConfig,
	}, voiceDeps, logger)
	deps.VoiceCallHandler = voiceCallHandler.New(voiceCallProc, cfg.Server.PublicHost, logger)

	return deps, nil
}

// postCallDependencies picks the transcriber and analyzers from configuration.
// Interfaces are only assigned when their backing client exists.
func postCallDependencies(cfg *config.Config, callStore *store.Store, logger *observability.Logger) (postcall.Dependencies, error) {
	var deps postcall.Dependencies

	var openAIClient *openai.Client
	if cfg.Transcription.OpenAIAPIKey != "" {
		client, err := openai.NewClient(cfg.Transcription.OpenAIAPIKey, logger)
		if err != nil {
			return deps, fmt.Errorf("failed to create openai client: %w", err)
		}
		openAIClient = client
		deps.Sentiment = openAIClient
		deps.Keywords = openAIClient
	}

	switch cfg.Transcription.Transcriber {
	case "service":
		deps.Transcriber = postcall.NewServiceTranscriber(transcriber.NewClient(cfg.Transcription.ServiceURL, logger))
	case "whisper":
		deps.Transcriber = postcall.NewWhisperTranscriber(openAIClient)
	}

	deps.Sender = webhookService.New(webhookService.Config{Secret: cfg.Webhook.Secret}, logger)

	if callStore != nil {
		deps.Store = callStore
	}
	return deps, nil
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.Error(context.Background(), "failed to close database", err)
		}
	}
}
