package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"voice-bridge/internal/apierrors"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voice/session"
	"voice-bridge/internal/voicecall/processor"
	"voice-bridge/internal/voicecall/twilio"

	"github.com/gin-gonic/gin"
)

type OutboundCallRequest struct {
	Number string `json:"number"`
	Prompt string `json:"prompt" binding:"max=8000"`
}

type OutboundCallResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	CallSid string `json:"callSid,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleOutboundCall places a call to the requested number
func (h *Handler) HandleOutboundCall(c *gin.Context) {
	ctx := c.Request.Context()

	var req OutboundCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	callSid, err := h.processor.InitiateOutboundCall(ctx, req.Number, req.Prompt)
	if err != nil {
		if errors.Is(err, processor.ErrMissingNumber) {
			apierrors.BadRequest(c, "MISSING_NUMBER", "Phone number is required")
			return
		}
		h.logger.Error(ctx, "failed to initiate outbound call", err)
		c.JSON(http.StatusInternalServerError, OutboundCallResponse{
			Success: false,
			Error:   "Failed to initiate call",
		})
		return
	}

	c.JSON(http.StatusOK, OutboundCallResponse{
		Success: true,
		Message: "Call initiated",
		CallSid: callSid,
	})
}

// HandleOutboundTwiML answers the carrier's TwiML fetch for an outbound call
func (h *Handler) HandleOutboundTwiML(c *gin.Context) {
	prompt := c.Query(session.PromptParameter)
	result, err := h.processor.OutboundTwiML(h.streamHost(c.Request), prompt)
	h.respondTwiML(c, result, err)
}

// HandleIncomingCall answers inbound calls with the default agent prompt
func (h *Handler) HandleIncomingCall(c *gin.Context) {
	result, err := h.processor.IncomingTwiML(h.streamHost(c.Request))
	h.respondTwiML(c, result, err)
}

func (h *Handler) respondTwiML(c *gin.Context, result string, err error) {
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/xml", []byte(result))
}

// HandleMediaStream upgrades the carrier media stream and bridges it to the agent
func (h *Handler) HandleMediaStream(c *gin.Context) {
	ctx, done, err := h.sessions.begin(c.Request.Context())
	if err != nil {
		apierrors.ServiceUnavailable(c, "SHUTTING_DOWN", "Server is shutting down", err)
		return
	}
	defer done()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(ctx, "WebSocket upgrade failed", err)
		return
	}
	h.logger.Info(ctx, "Carrier media stream connected")

	channel := twilio.NewChannel(conn, h.logger)
	defer func() {
		if err := channel.Close(); err != nil {
			h.logger.Debug(ctx, fmt.Sprintf("closing carrier socket: %v", err))
		}
	}()

	summary := h.processor.RunMediaSession(ctx, channel)

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "call_sid", Value: summary.CallSid},
		observability.Field{Key: "stream_sid", Value: summary.StreamSid},
	)
	h.logger.Info(ctx, fmt.Sprintf("Carrier media stream finished (%s, %d recordings)", summary.EndReason, len(summary.Files)))
}

type CallResponse struct {
	CallSid         string    `json:"call_sid"`
	ToNumber        string    `json:"to_number"`
	Prompt          string    `json:"prompt"`
	Status          string    `json:"status"`
	RecordingURL    *string   `json:"recording_url"`
	Transcript      *string   `json:"transcript"`
	Keywords        []string  `json:"keywords"`
	DurationSeconds *float64  `json:"duration_seconds"`
	Sentiment       *string   `json:"sentiment"`
	SentimentScore  *float64  `json:"sentiment_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newCallResponse(call store.Call) CallResponse {
	resp := CallResponse{
		CallSid:   call.CallSid,
		ToNumber:  call.ToNumber,
		Prompt:    call.Prompt,
		Status:    call.Status,
		Keywords:  []string(call.Keywords),
		CreatedAt: call.CreatedAt,
		UpdatedAt: call.UpdatedAt,
	}
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	if call.RecordingURL.Valid {
		resp.RecordingURL = &call.RecordingURL.String
	}
	if call.Transcript.Valid {
		resp.Transcript = &call.Transcript.String
	}
	if call.DurationSeconds.Valid {
		resp.DurationSeconds = &call.DurationSeconds.Float64
	}
	if call.Sentiment.Valid {
		resp.Sentiment = &call.Sentiment.String
	}
	if call.SentimentScore.Valid {
		resp.SentimentScore = &call.SentimentScore.Float64
	}
	return resp
}

// HandleGetCall returns the logged call for a call sid
func (h *Handler) HandleGetCall(c *gin.Context) {
	ctx := c.Request.Context()
	callSid := c.Param("callSid")

	call, err := h.processor.GetCall(ctx, callSid)
	if err != nil {
		switch {
		case errors.Is(err, processor.ErrStoreDisabled):
			apierrors.ServiceUnavailable(c, "STORE_DISABLED", "Call log is not configured", err)
		case errors.Is(err, store.ErrNotFound):
			apierrors.NotFound(c, "Call not found")
		default:
			apierrors.InternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, newCallResponse(call))
}
