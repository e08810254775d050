package session

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=session

import (
	"context"

	"voice-bridge/internal/clients/elevenlabs"
	"voice-bridge/internal/voice/recording"
	"voice-bridge/internal/voicecall/twilio"
)

// Carrier is the telephony side of a session.
type Carrier interface {
	Listen(ctx context.Context, emit func(twilio.Event)) error
	SendMedia(streamSid, payload string) error
	SendClear(streamSid string) error
}

// AgentConversation is one live connection to the voice agent.
type AgentConversation interface {
	Listen(ctx context.Context, emit func(elevenlabs.Message)) error
	SendUserAudio(payload string) error
	Close() error
}

type AgentConnector interface {
	Connect(ctx context.Context, cc elevenlabs.ConversationConfig) (AgentConversation, error)
}

type RecordingSink interface {
	WriteCarrier(pcm []byte) error
	WriteAgent(pcm []byte) error
	Close() error
	Files() []recording.File
}

type Recorder interface {
	Open(ctx context.Context, callSid string) (RecordingSink, error)
}

// AgentConnectorFunc adapts a function to AgentConnector.
type AgentConnectorFunc func(ctx context.Context, cc elevenlabs.ConversationConfig) (AgentConversation, error)

func (f AgentConnectorFunc) Connect(ctx context.Context, cc elevenlabs.ConversationConfig) (AgentConversation, error) {
	return f(ctx, cc)
}

// NewAgentConnector connects sessions through the ElevenLabs client.
func NewAgentConnector(client *elevenlabs.Client) AgentConnector {
	return AgentConnectorFunc(func(ctx context.Context, cc elevenlabs.ConversationConfig) (AgentConversation, error) {
		conv, err := client.Connect(ctx, cc)
		if err != nil {
			return nil, err
		}
		return conv, nil
	})
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, callSid string) (RecordingSink, error)

func (f RecorderFunc) Open(ctx context.Context, callSid string) (RecordingSink, error) {
	return f(ctx, callSid)
}

// NewRecorder records sessions to WAV files.
func NewRecorder(r *recording.Recorder) Recorder {
	return RecorderFunc(func(ctx context.Context, callSid string) (RecordingSink, error) {
		sink, err := r.Open(ctx, callSid)
		if err != nil {
			return nil, err
		}
		return sink, nil
	})
}
