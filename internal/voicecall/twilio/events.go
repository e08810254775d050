package twilio

import (
	"encoding/json"
	"fmt"
)

// Event is one decoded Media Streams message received from the carrier.
type Event interface {
	eventName() string
}

type MediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

type ConnectedEvent struct {
	Protocol string
	Version  string
}

type StartEvent struct {
	StreamSid        string
	CallSid          string
	AccountSid       string
	Tracks           []string
	CustomParameters map[string]string
	MediaFormat      MediaFormat
}

// MediaEvent carries one base64 μ-law frame exactly as received.
type MediaEvent struct {
	StreamSid string
	Payload   string
	Track     string
	Chunk     string
	Timestamp string
}

type StopEvent struct {
	StreamSid string
	CallSid   string
}

type MarkEvent struct {
	StreamSid string
	Name      string
}

type DTMFEvent struct {
	StreamSid string
	Digit     string
}

type UnknownEvent struct {
	Name string
}

func (ConnectedEvent) eventName() string { return "connected" }
func (StartEvent) eventName() string     { return "start" }
func (MediaEvent) eventName() string     { return "media" }
func (StopEvent) eventName() string      { return "stop" }
func (MarkEvent) eventName() string      { return "mark" }
func (DTMFEvent) eventName() string      { return "dtmf" }
func (e UnknownEvent) eventName() string { return e.Name }

type inboundMessage struct {
	Event     string `json:"event"`
	StreamSid string `json:"streamSid"`
	Protocol  string `json:"protocol"`
	Version   string `json:"version"`
	Start     *struct {
		StreamSid        string            `json:"streamSid"`
		AccountSid       string            `json:"accountSid"`
		CallSid          string            `json:"callSid"`
		Tracks           []string          `json:"tracks"`
		CustomParameters map[string]string `json:"customParameters"`
		MediaFormat      MediaFormat       `json:"mediaFormat"`
	} `json:"start"`
	Media *struct {
		Track     string `json:"track"`
		Chunk     string `json:"chunk"`
		Timestamp string `json:"timestamp"`
		Payload   string `json:"payload"`
	} `json:"media"`
	Stop *struct {
		AccountSid string `json:"accountSid"`
		CallSid    string `json:"callSid"`
	} `json:"stop"`
	Mark *struct {
		Name string `json:"name"`
	} `json:"mark"`
	DTMF *struct {
		Track string `json:"track"`
		Digit string `json:"digit"`
	} `json:"dtmf"`
}

// ParseEvent decodes a raw carrier frame. Anything that is not a JSON object with an
// event name, or a start/media frame without its body, returns an error wrapping ErrProtocol.
func ParseEvent(raw []byte) (Event, error) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	switch msg.Event {
	case "":
		return nil, fmt.Errorf("%w: message without event", ErrProtocol)

	case "connected":
		return ConnectedEvent{Protocol: msg.Protocol, Version: msg.Version}, nil

	case "start":
		if msg.Start == nil {
			return nil, fmt.Errorf("%w: start without body", ErrProtocol)
		}
		streamSid := msg.Start.StreamSid
		if streamSid == "" {
			streamSid = msg.StreamSid
		}
		params := msg.Start.CustomParameters
		if params == nil {
			params = map[string]string{}
		}
		return StartEvent{
			StreamSid:        streamSid,
			CallSid:          msg.Start.CallSid,
			AccountSid:       msg.Start.AccountSid,
			Tracks:           msg.Start.Tracks,
			CustomParameters: params,
			MediaFormat:      msg.Start.MediaFormat,
		}, nil

	case "media":
		if msg.Media == nil {
			return nil, fmt.Errorf("%w: media without body", ErrProtocol)
		}
		return MediaEvent{
			StreamSid: msg.StreamSid,
			Payload:   msg.Media.Payload,
			Track:     msg.Media.Track,
			Chunk:     msg.Media.Chunk,
			Timestamp: msg.Media.Timestamp,
		}, nil

	case "stop":
		ev := StopEvent{StreamSid: msg.StreamSid}
		if msg.Stop != nil {
			ev.CallSid = msg.Stop.CallSid
		}
		return ev, nil

	case "mark":
		ev := MarkEvent{StreamSid: msg.StreamSid}
		if msg.Mark != nil {
			ev.Name = msg.Mark.Name
		}
		return ev, nil

	case "dtmf":
		ev := DTMFEvent{StreamSid: msg.StreamSid}
		if msg.DTMF != nil {
			ev.Digit = msg.DTMF.Digit
		}
		return ev, nil

	default:
		return UnknownEvent{Name: msg.Event}, nil
	}
}

type outboundMedia struct {
	Event     string `json:"event"`
	StreamSid string `json:"streamSid"`
	Media     struct {
		Payload string `json:"payload"`
	} `json:"media"`
}

type outboundClear struct {
	Event     string `json:"event"`
	StreamSid string `json:"streamSid"`
}
