package processor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"voice-bridge/internal/observability"
	"voice-bridge/internal/postcall"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voice/session"

	api "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"
)

const (
	MediaStreamPath   = "/media-stream"
	OutboundTwiMLPath = "/outbound-call-twiml"

	mediaStreamName  = "voice-bridge"
	promptQueryParam = session.PromptParameter
	submitJobTimeout = 5 * time.Second
)

var (
	ErrMissingNumber  = errors.New("phone number is required")
	ErrStoreDisabled  = errors.New("call store is not configured")
	ErrMissingCallSid = errors.New("carrier returned no call sid")
)

// Config holds the settings of the call processor
type Config struct {
	// FromNumber is the caller id for outbound calls.
	FromNumber string
	// PublicBaseURL is the https origin the carrier fetches TwiML from.
	PublicBaseURL string
	Session       session.Config
}

// Dependencies are the collaborators of the processor. Store, Recorder and
// Jobs may be nil.
type Dependencies struct {
	Calls     CallCreator
	Store     CallStore
	Connector session.AgentConnector
	Recorder  session.Recorder
	Jobs      JobSubmitter
}

type VoiceCallProcessor struct {
	config Config
	deps   Dependencies
	logger *observability.Logger
}

func NewVoiceCallProcessor(config Config, deps Dependencies, logger *observability.Logger) *VoiceCallProcessor {
	return &VoiceCallProcessor{
		config: config,
		deps:   deps,
		logger: logger,
	}
}

// InitiateOutboundCall dials number. When answered, the carrier fetches the
// outbound TwiML, which carries prompt into the media stream.
func (v *VoiceCallProcessor) InitiateOutboundCall(ctx context.Context, number, prompt string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", ErrMissingNumber
	}

	twimlURL := strings.TrimSuffix(v.config.PublicBaseURL, "/") + OutboundTwiMLPath +
		"?" + promptQueryParam + "=" + url.QueryEscape(prompt)

	params := &api.CreateCallParams{}
	params.SetTo(number)
	params.SetFrom(v.config.FromNumber)
	params.SetUrl(twimlURL)

	resp, err := v.deps.Calls.CreateCall(params)
	if err != nil {
		v.logger.Error(ctx, "failed to create outbound call", err)
		return "", fmt.Errorf("failed to create outbound call: %w", err)
	}
	if resp == nil || resp.Sid == nil {
		return "", ErrMissingCallSid
	}
	callSid := *resp.Sid

	ctx = observability.WithFields(ctx, observability.Field{Key: "call_sid", Value: callSid})
	v.logger.Info(ctx, "Outbound call initiated")

	if v.deps.Store != nil {
		_, err := v.deps.Store.CreateCall(ctx, store.CreateCallParams{
			CallSid:  callSid,
			ToNumber: number,
			Prompt:   prompt,
		})
		if err != nil {
			// The call is already ringing, a missing log row is not fatal
			v.logger.WarnWithError(ctx, "failed to log outbound call", err)
		}
	}

	return callSid, nil
}

// OutboundTwiML connects an answered outbound call to the media stream and
// passes prompt as a custom parameter.
func (v *VoiceCallProcessor) OutboundTwiML(host, prompt string) (string, error) {
	return v.streamTwiML(host, map[string]string{promptQueryParam: prompt})
}

// IncomingTwiML connects an inbound call to the media stream. No prompt is
// passed, so the agent default applies.
func (v *VoiceCallProcessor) IncomingTwiML(host string) (string, error) {
	return v.streamTwiML(host, nil)
}

func (v *VoiceCallProcessor) streamTwiML(host string, parameters map[string]string) (string, error) {
	var params []twiml.Element
	for name, value := range parameters {
		if value == "" {
			continue
		}
		params = append(params, twiml.VoiceParameter{Name: name, Value: value})
	}

	stream := twiml.VoiceStream{
		Name:          mediaStreamName,
		Url:           "wss://" + host + MediaStreamPath,
		InnerElements: params,
	}
	connect := twiml.VoiceConnect{
		InnerElements: []twiml.Element{stream},
	}

	result, err := twiml.Voice([]twiml.Element{connect})
	if err != nil {
		return "", fmt.Errorf("failed to build twiml: %w", err)
	}
	return result, nil
}

// RunMediaSession bridges one carrier media stream to the voice agent until
// either side ends, then queues post-call processing.
func (v *VoiceCallProcessor) RunMediaSession(ctx context.Context, carrier session.Carrier) session.Summary {
	s := session.New(carrier, v.deps.Connector, v.deps.Recorder, v.logger, v.config.Session)
	summary, err := s.Run(ctx)

	// The request context is usually gone by now
	bg := observability.WithFields(context.WithoutCancel(ctx),
		observability.Field{Key: "session_id", Value: summary.SessionID},
		observability.Field{Key: "call_sid", Value: summary.CallSid},
	)
	if err != nil {
		v.logger.WarnWithError(bg, fmt.Sprintf("Session ended with error (%s)", summary.EndReason), err)
	}

	if summary.CallSid != "" && v.deps.Store != nil && summary.EndReason == session.EndAgentSetupFailed {
		if err := v.deps.Store.UpdateCallStatus(bg, summary.CallSid, store.CallStatusFailed); err != nil && !errors.Is(err, store.ErrNotFound) {
			v.logger.WarnWithError(bg, "failed to mark call as failed", err)
		}
	}

	if v.deps.Jobs != nil && len(summary.Files) > 0 {
		submitCtx, cancel := context.WithTimeout(bg, submitJobTimeout)
		defer cancel()
		if err := v.deps.Jobs.Submit(submitCtx, postcall.NewJob(summary)); err != nil {
			v.logger.Error(bg, "failed to queue post-call processing", err)
		}
	}

	return summary
}

// GetCall looks up a logged call
func (v *VoiceCallProcessor) GetCall(ctx context.Context, callSid string) (store.Call, error) {
	if v.deps.Store == nil {
		return store.Call{}, ErrStoreDisabled
	}
	return v.deps.Store.GetCallBySid(ctx, callSid)
}
