package elevenlabs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is one decoded frame received from the agent service.
type Message interface {
	messageType() string
}

type AudioVariant string

const (
	// AudioVariantChunk is the current `audio.chunk` shape.
	AudioVariantChunk AudioVariant = "chunk"
	// AudioVariantEvent is the older `audio_event.audio_base_64` shape.
	AudioVariantEvent AudioVariant = "audio_event"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

type MetadataMessage struct {
	ConversationID    string
	AgentOutputFormat string
	UserInputFormat   string
}

// AudioMessage carries base64 μ-law audio exactly as the agent sent it.
type AudioMessage struct {
	Payload string
	Variant AudioVariant
}

type InterruptionMessage struct{}

// PingMessage keeps the event id raw so the pong echoes it byte for byte.
type PingMessage struct {
	EventID json.RawMessage
}

type TranscriptMessage struct {
	Role Role
	Text string
}

type UnknownMessage struct {
	Type string
}

func (MetadataMessage) messageType() string     { return "conversation_initiation_metadata" }
func (AudioMessage) messageType() string        { return "audio" }
func (InterruptionMessage) messageType() string { return "interruption" }
func (PingMessage) messageType() string         { return "ping" }
func (m TranscriptMessage) messageType() string {
	if m.Role == RoleAgent {
		return "agent_response"
	}
	return "user_transcript"
}
func (m UnknownMessage) messageType() string { return m.Type }

type inboundEnvelope struct {
	Type  string `json:"type"`
	Audio *struct {
		Chunk string `json:"chunk"`
	} `json:"audio"`
	AudioEvent *struct {
		AudioBase64 string `json:"audio_base_64"`
	} `json:"audio_event"`
	PingEvent *struct {
		EventID json.RawMessage `json:"event_id"`
	} `json:"ping_event"`
	Metadata *struct {
		ConversationID    string `json:"conversation_id"`
		AgentOutputFormat string `json:"agent_output_audio_format"`
		UserInputFormat   string `json:"user_input_audio_format"`
	} `json:"conversation_initiation_metadata_event"`
	UserTranscription *struct {
		UserTranscript string `json:"user_transcript"`
	} `json:"user_transcription_event"`
	AgentResponse *struct {
		AgentResponse string `json:"agent_response"`
	} `json:"agent_response_event"`
}

// ParseMessage decodes a raw agent frame. Frames that are not JSON objects, lack a
// type, or lack the payload their type requires return an error wrapping ErrProtocol.
func ParseMessage(raw []byte) (Message, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	switch env.Type {
	case "":
		return nil, fmt.Errorf("%w: message without type", ErrProtocol)

	case "audio":
		if env.Audio != nil && env.Audio.Chunk != "" {
			return AudioMessage{Payload: env.Audio.Chunk, Variant: AudioVariantChunk}, nil
		}
		if env.AudioEvent != nil && env.AudioEvent.AudioBase64 != "" {
			return AudioMessage{Payload: env.AudioEvent.AudioBase64, Variant: AudioVariantEvent}, nil
		}
		return nil, fmt.Errorf("%w: audio message without payload", ErrProtocol)

	case "interruption":
		return InterruptionMessage{}, nil

	case "ping":
		if env.PingEvent == nil || len(env.PingEvent.EventID) == 0 || bytes.Equal(env.PingEvent.EventID, []byte("null")) {
			return nil, fmt.Errorf("%w: ping without event_id", ErrProtocol)
		}
		return PingMessage{EventID: env.PingEvent.EventID}, nil

	case "conversation_initiation_metadata":
		msg := MetadataMessage{}
		if env.Metadata != nil {
			msg.ConversationID = env.Metadata.ConversationID
			msg.AgentOutputFormat = env.Metadata.AgentOutputFormat
			msg.UserInputFormat = env.Metadata.UserInputFormat
		}
		return msg, nil

	case "user_transcript":
		if env.UserTranscription == nil {
			return nil, fmt.Errorf("%w: user_transcript without event", ErrProtocol)
		}
		return TranscriptMessage{Role: RoleUser, Text: env.UserTranscription.UserTranscript}, nil

	case "agent_response":
		if env.AgentResponse == nil {
			return nil, fmt.Errorf("%w: agent_response without event", ErrProtocol)
		}
		return TranscriptMessage{Role: RoleAgent, Text: env.AgentResponse.AgentResponse}, nil

	default:
		return UnknownMessage{Type: env.Type}, nil
	}
}

type promptOverride struct {
	Prompt string `json:"prompt"`
}

type agentOverride struct {
	Prompt       promptOverride `json:"prompt"`
	FirstMessage string         `json:"first_message"`
}

type conversationConfigOverride struct {
	Agent agentOverride `json:"agent"`
}

type initiationMessage struct {
	Type                       string                     `json:"type"`
	ConversationConfigOverride conversationConfigOverride `json:"conversation_config_override"`
}

type userAudioMessage struct {
	UserAudioChunk string `json:"user_audio_chunk"`
}

type pongMessage struct {
	Type    string          `json:"type"`
	EventID json.RawMessage `json:"event_id"`
}
