// Package session bridges one carrier media stream to one agent conversation.
//
// A single goroutine runs the event loop and owns every piece of session state.
// The carrier listener, the agent listener and the agent connect all run in their
// own goroutines and only post events to the loop, so each event is handled to
// completion before the next one starts.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voice-bridge/internal/clients/elevenlabs"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/voice/audio"
	"voice-bridge/internal/voice/recording"
	"voice-bridge/internal/voicecall/twilio"

	"github.com/google/uuid"
)

// PromptParameter is the custom stream parameter carrying the agent prompt.
const PromptParameter = "prompt"

type AgentState string

const (
	AgentDisconnected AgentState = "disconnected"
	AgentConnecting   AgentState = "connecting"
	AgentOpen         AgentState = "open"
	AgentClosing      AgentState = "closing"
	AgentClosed       AgentState = "closed"
)

type CarrierState string

const (
	CarrierAwaitingStart CarrierState = "awaiting_start"
	CarrierActive        CarrierState = "active"
	CarrierStopped       CarrierState = "stopped"
)

type RecordingState string

const (
	RecordingNotStarted RecordingState = "not_started"
	RecordingActive     RecordingState = "recording"
	RecordingFinalized  RecordingState = "finalized"
	RecordingDisabled   RecordingState = "disabled"
)

type EndReason string

const (
	EndCarrierStop      EndReason = "carrier_stop"
	EndCarrierClosed    EndReason = "carrier_closed"
	EndAgentClosed      EndReason = "agent_closed"
	EndAgentSetupFailed EndReason = "agent_setup_failed"
	EndCancelled        EndReason = "cancelled"
)

type Config struct {
	// EventBuffer is the capacity of the loop's event queue.
	EventBuffer int
	// MaxPendingMedia bounds the caller frames held while the agent connects.
	MaxPendingMedia int
	// FirstMessage overrides the agent greeting. Empty keeps the connector default.
	FirstMessage string
}

func DefaultConfig() Config {
	return Config{
		EventBuffer:     256,
		MaxPendingMedia: 500,
	}
}

type Stats struct {
	CarrierFrames      int `json:"carrier_frames"`
	AgentFrames        int `json:"agent_frames"`
	ForwardedToAgent   int `json:"forwarded_to_agent"`
	ForwardedToCarrier int `json:"forwarded_to_carrier"`
	QueuedFrames       int `json:"queued_frames"`
	DroppedFrames      int `json:"dropped_frames"`
	Interruptions      int `json:"interruptions"`
}

type TranscriptLine struct {
	Role elevenlabs.Role `json:"role"`
	Text string          `json:"text"`
}

// Summary describes a finished session.
type Summary struct {
	SessionID        string
	StreamSid        string
	CallSid          string
	ConversationID   string
	CustomParameters map[string]string
	Files            []recording.File
	Transcript       []TranscriptLine
	EndReason        EndReason
	StartedAt        time.Time
	EndedAt          time.Time
	Stats            Stats
}

type eventKind int

const (
	carrierEvent eventKind = iota
	carrierClosed
	agentConnected
	agentSetupFailed
	agentEvent
	agentClosed
)

type event struct {
	kind         eventKind
	carrier      twilio.Event
	agent        elevenlabs.Message
	conversation AgentConversation
	err          error
}

type Session struct {
	id        string
	logger    *observability.Logger
	carrier   Carrier
	connector AgentConnector
	recorder  Recorder
	cfg       Config

	// baseCtx never changes after bind and is safe to read from any goroutine
	baseCtx context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	events  chan event
	done    chan struct{}
	wg      sync.WaitGroup

	// guards posting against the loop shutting down
	postMu sync.Mutex
	closed bool

	// owned by the event loop
	streamSid        string
	callSid          string
	customParameters map[string]string
	conversationID   string
	agentState       AgentState
	carrierState     CarrierState
	recordingState   RecordingState
	conversation     AgentConversation
	sink             RecordingSink
	files            []recording.File
	pending          []string
	transcript       []TranscriptLine
	connectCancel    context.CancelFunc
	tornDown         bool
	endReason        EndReason
	failure          error
	stats            Stats
	startedAt        time.Time
	endedAt          time.Time
}

// New creates a session. A nil recorder disables recording.
func New(carrier Carrier, connector AgentConnector, recorder Recorder, logger *observability.Logger, cfg Config) *Session {
	defaults := DefaultConfig()
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaults.EventBuffer
	}
	if cfg.MaxPendingMedia <= 0 {
		cfg.MaxPendingMedia = defaults.MaxPendingMedia
	}

	return &Session{
		id:             uuid.New().String(),
		logger:         logger,
		carrier:        carrier,
		connector:      connector,
		recorder:       recorder,
		cfg:            cfg,
		events:         make(chan event, cfg.EventBuffer),
		done:           make(chan struct{}),
		agentState:     AgentDisconnected,
		carrierState:   CarrierAwaitingStart,
		recordingState: RecordingNotStarted,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) bind(ctx context.Context) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "session_id", Value: s.id})
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.baseCtx = s.ctx
	s.startedAt = time.Now()
}

// Run bridges the session until the carrier stops, either socket closes, the agent
// cannot be reached or ctx is done. It returns once teardown has completed; the
// carrier socket stays open for its owner to close. The error is non-nil when the
// session ended on a failure rather than a normal hang-up.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	s.bind(ctx)
	defer s.cancel()

	s.logger.Info(s.ctx, "Media session started")

	listenCtx := s.ctx
	go func() {
		err := s.carrier.Listen(listenCtx, func(e twilio.Event) {
			s.post(event{kind: carrierEvent, carrier: e})
		})
		s.post(event{kind: carrierClosed, err: err})
	}()

	for !s.tornDown {
		select {
		case <-s.ctx.Done():
			s.teardown(EndCancelled)
		case ev := <-s.events:
			s.handle(ev)
		}
	}

	s.wg.Wait()
	return s.summary(), s.failure
}

// post hands an event to the loop. After teardown the event is dropped and a
// conversation it carries is closed.
func (s *Session) post(ev event) {
	s.postMu.Lock()
	defer s.postMu.Unlock()

	if s.closed {
		s.discard(ev)
		return
	}
	select {
	case s.events <- ev:
	case <-s.done:
		s.discard(ev)
	}
}

func (s *Session) discard(ev event) {
	if ev.kind == agentConnected && ev.conversation != nil {
		s.logger.Info(s.baseCtx, "Closing agent conversation that connected after teardown")
		_ = ev.conversation.Close()
	}
}

func (s *Session) handle(ev event) {
	if s.tornDown {
		s.discard(ev)
		return
	}

	switch ev.kind {
	case carrierEvent:
		s.handleCarrier(ev.carrier)
	case carrierClosed:
		if ev.err != nil {
			s.logger.Error(s.ctx, "Carrier connection failed", ev.err)
			s.failure = ev.err
		}
		s.carrierState = CarrierStopped
		s.teardown(EndCarrierClosed)
	case agentConnected:
		s.onAgentConnected(ev.conversation)
	case agentSetupFailed:
		s.logger.Error(s.ctx, "Agent setup failed", ev.err)
		s.agentState = AgentClosed
		s.failure = ev.err
		s.teardown(EndAgentSetupFailed)
	case agentEvent:
		s.handleAgent(ev.agent)
	case agentClosed:
		if ev.err != nil {
			s.logger.Error(s.ctx, "Agent connection failed", ev.err)
			s.failure = ev.err
		} else {
			s.logger.Info(s.ctx, "Agent conversation ended")
		}
		s.agentState = AgentClosed
		s.teardown(EndAgentClosed)
	}
}

func (s *Session) handleCarrier(e twilio.Event) {
	switch e := e.(type) {
	case twilio.ConnectedEvent:
		s.logger.Debug(s.ctx, "Carrier stream connected")

	case twilio.StartEvent:
		s.onStart(e)

	case twilio.MediaEvent:
		s.onCarrierMedia(e)

	case twilio.StopEvent:
		s.logger.Info(s.ctx, "Carrier stream stopped")
		s.carrierState = CarrierStopped
		s.teardown(EndCarrierStop)

	case twilio.MarkEvent:
		s.logger.Debug(s.ctx, fmt.Sprintf("Carrier mark: %s", e.Name))

	case twilio.DTMFEvent:
		s.logger.Info(observability.WithFields(s.ctx, observability.Field{Key: "digit", Value: e.Digit}), "Caller pressed a key")

	case twilio.UnknownEvent:
		s.logger.Debug(s.ctx, fmt.Sprintf("Unknown Twilio event: %s", e.Name))
	}
}

func (s *Session) onStart(e twilio.StartEvent) {
	if s.carrierState != CarrierAwaitingStart {
		s.logger.Warn(s.ctx, "Ignoring duplicate start event")
		return
	}

	s.streamSid = e.StreamSid
	s.callSid = e.CallSid
	s.customParameters = e.CustomParameters
	s.carrierState = CarrierActive
	s.ctx = observability.WithFields(s.ctx,
		observability.Field{Key: "stream_sid", Value: s.streamSid},
		observability.Field{Key: "call_sid", Value: s.callSid},
	)
	s.logger.Info(s.ctx, "Carrier stream started")

	s.openRecording()
	s.connectAgent()
}

func (s *Session) openRecording() {
	if s.recorder == nil {
		s.recordingState = RecordingDisabled
		return
	}
	sink, err := s.recorder.Open(s.ctx, s.callSid)
	if err != nil {
		s.logger.Error(s.ctx, "Failed to open recording, continuing without it", err)
		s.recordingState = RecordingDisabled
		return
	}
	s.sink = sink
	s.recordingState = RecordingActive
}

func (s *Session) connectAgent() {
	cc := elevenlabs.ConversationConfig{
		Prompt:       s.customParameters[PromptParameter],
		FirstMessage: s.cfg.FirstMessage,
	}

	connectCtx, cancel := context.WithCancel(s.ctx)
	s.connectCancel = cancel
	s.agentState = AgentConnecting

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		conv, err := s.connector.Connect(connectCtx, cc)
		if err != nil {
			s.post(event{kind: agentSetupFailed, err: err})
			return
		}
		s.post(event{kind: agentConnected, conversation: conv})
	}()
}

func (s *Session) onAgentConnected(conv AgentConversation) {
	s.conversation = conv
	s.logger.Info(s.ctx, "Agent socket connected")

	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := conv.Listen(ctx, func(m elevenlabs.Message) {
			s.post(event{kind: agentEvent, agent: m})
		})
		s.post(event{kind: agentClosed, err: err})
	}()

	for _, payload := range s.pending {
		s.forwardToAgent(payload)
	}
	s.pending = nil
}

func (s *Session) onCarrierMedia(e twilio.MediaEvent) {
	s.stats.CarrierFrames++

	mulaw, err := audio.Base64ToBytes(e.Payload)
	if err != nil {
		s.logger.Error(s.ctx, "Dropping carrier frame with invalid payload", err)
		s.stats.DroppedFrames++
		return
	}

	switch {
	case s.conversation != nil && (s.agentState == AgentConnecting || s.agentState == AgentOpen):
		s.forwardToAgent(e.Payload)
	case s.agentState == AgentConnecting:
		if len(s.pending) >= s.cfg.MaxPendingMedia {
			s.stats.DroppedFrames++
		} else {
			s.pending = append(s.pending, e.Payload)
			s.stats.QueuedFrames++
		}
	default:
		s.stats.DroppedFrames++
		s.logger.Debug(s.ctx, "Dropping carrier frame, no agent")
	}

	s.record(mulaw, recording.SourceCarrier)
}

func (s *Session) forwardToAgent(payload string) {
	if err := s.conversation.SendUserAudio(payload); err != nil {
		s.logger.Error(s.ctx, "Failed to send audio to agent", err)
		s.stats.DroppedFrames++
		return
	}
	s.stats.ForwardedToAgent++
}

func (s *Session) handleAgent(m elevenlabs.Message) {
	switch m := m.(type) {
	case elevenlabs.MetadataMessage:
		s.agentState = AgentOpen
		s.conversationID = m.ConversationID
		s.logger.Info(observability.WithFields(s.ctx,
			observability.Field{Key: "conversation_id", Value: m.ConversationID},
			observability.Field{Key: "agent_output_format", Value: m.AgentOutputFormat},
		), "Agent conversation initiated")

	case elevenlabs.AudioMessage:
		s.onAgentAudio(m)

	case elevenlabs.InterruptionMessage:
		s.stats.Interruptions++
		if s.streamSid == "" {
			return
		}
		if err := s.carrier.SendClear(s.streamSid); err != nil {
			s.logger.Error(s.ctx, "Failed to send clear to carrier", err)
		}

	case elevenlabs.TranscriptMessage:
		if m.Text != "" {
			s.transcript = append(s.transcript, TranscriptLine{Role: m.Role, Text: m.Text})
		}

	case elevenlabs.UnknownMessage:
		s.logger.Debug(s.ctx, fmt.Sprintf("Unhandled agent message type: %s", m.Type))
	}
}

func (s *Session) onAgentAudio(m elevenlabs.AudioMessage) {
	s.stats.AgentFrames++
	if s.streamSid == "" {
		s.stats.DroppedFrames++
		s.logger.Warn(s.ctx, "Dropping agent audio, stream not started")
		return
	}

	if err := s.carrier.SendMedia(s.streamSid, m.Payload); err != nil {
		s.logger.Error(s.ctx, "Failed to send audio to carrier", err)
	} else {
		s.stats.ForwardedToCarrier++
	}

	mulaw, err := audio.Base64ToBytes(m.Payload)
	if err != nil {
		s.logger.Error(s.ctx, "Agent audio is not valid base64, not recording it", err)
		return
	}
	s.record(mulaw, recording.SourceAgent)
}

func (s *Session) record(mulaw []byte, src recording.Source) {
	if s.sink == nil || s.recordingState != RecordingActive {
		return
	}

	pcm := audio.DecodeMuLawToPCM16(mulaw)
	var err error
	if src == recording.SourceAgent {
		err = s.sink.WriteAgent(pcm)
	} else {
		err = s.sink.WriteCarrier(pcm)
	}
	if err != nil {
		s.logger.Error(s.ctx, "Recording disabled after write failure", err)
		s.recordingState = RecordingDisabled
	}
}

// teardown releases everything the session holds. Only the first call does work.
func (s *Session) teardown(reason EndReason) {
	if s.tornDown {
		return
	}
	s.tornDown = true
	s.endReason = reason
	s.endedAt = time.Now()

	close(s.done)
	s.postMu.Lock()
	s.closed = true
	s.postMu.Unlock()
	s.drain()

	if s.connectCancel != nil {
		s.connectCancel()
	}

	if s.conversation != nil {
		s.agentState = AgentClosing
		if err := s.conversation.Close(); err != nil {
			s.logger.Error(s.ctx, "Failed to close agent conversation", err)
		}
	}
	if s.agentState != AgentDisconnected {
		s.agentState = AgentClosed
	}
	s.pending = nil

	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			s.logger.Error(s.ctx, "Failed to finalize recording", err)
		}
		s.files = s.sink.Files()
		if s.recordingState == RecordingActive {
			s.recordingState = RecordingFinalized
		}
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.logger.Info(observability.WithFields(s.ctx, observability.Field{Key: "end_reason", Value: string(reason)}), "Media session ended")
	s.logger.Metrics(s.ctx,
		observability.MetricField{Key: "end_reason", Value: string(reason)},
		observability.MetricField{Key: "duration_ms", Value: s.endedAt.Sub(s.startedAt).Milliseconds()},
		observability.MetricField{Key: "carrier_frames", Value: s.stats.CarrierFrames},
		observability.MetricField{Key: "agent_frames", Value: s.stats.AgentFrames},
		observability.MetricField{Key: "forwarded_to_agent", Value: s.stats.ForwardedToAgent},
		observability.MetricField{Key: "forwarded_to_carrier", Value: s.stats.ForwardedToCarrier},
		observability.MetricField{Key: "queued_frames", Value: s.stats.QueuedFrames},
		observability.MetricField{Key: "dropped_frames", Value: s.stats.DroppedFrames},
		observability.MetricField{Key: "interruptions", Value: s.stats.Interruptions},
		observability.MetricField{Key: "recording_state", Value: string(s.recordingState)},
	)
}

// drain empties the queue after the loop stops reading it.
func (s *Session) drain() {
	for {
		select {
		case ev := <-s.events:
			s.discard(ev)
		default:
			return
		}
	}
}

func (s *Session) summary() Summary {
	return Summary{
		SessionID:        s.id,
		StreamSid:        s.streamSid,
		CallSid:          s.callSid,
		ConversationID:   s.conversationID,
		CustomParameters: s.customParameters,
		Files:            s.files,
		Transcript:       s.transcript,
		EndReason:        s.endReason,
		StartedAt:        s.startedAt,
		EndedAt:          s.endedAt,
		Stats:            s.stats,
	}
}
