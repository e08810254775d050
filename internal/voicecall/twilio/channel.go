// Package twilio speaks the Twilio Media Streams protocol over an accepted WebSocket.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"voice-bridge/internal/observability"

	"github.com/gorilla/websocket"
)

const closeWriteTimeout = time.Second

var (
	// ErrProtocol is wrapped by frames that cannot be decoded.
	ErrProtocol = errors.New("carrier protocol error")
)

// Conn is the part of *websocket.Conn the channel uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Channel reads carrier events and writes media and clear messages back.
type Channel struct {
	conn       Conn
	logger     *observability.Logger
	writeMutex sync.Mutex
	closeOnce  sync.Once
}

func NewChannel(conn Conn, logger *observability.Logger) *Channel {
	return &Channel{
		conn:   conn,
		logger: logger,
	}
}

// Listen reads frames until the socket closes. Malformed frames are logged and
// skipped. A normal or going-away close returns nil.
func (ch *Channel) Listen(ctx context.Context, emit func(Event)) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		_, msg, err := ch.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ch.logger.Info(ctx, "Carrier WebSocket closed normally")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("carrier read: %w", err)
		}

		event, err := ParseEvent(msg)
		if err != nil {
			ch.logger.Error(ctx, "Failed to parse Twilio event", err)
			continue
		}

		emit(event)
	}
}

// SendMedia plays a base64 μ-law payload to the caller.
func (ch *Channel) SendMedia(streamSid, payload string) error {
	msg := outboundMedia{Event: "media", StreamSid: streamSid}
	msg.Media.Payload = payload
	return ch.write(msg)
}

// SendClear drops any audio the carrier has buffered for playback.
func (ch *Channel) SendClear(streamSid string) error {
	return ch.write(outboundClear{Event: "clear", StreamSid: streamSid})
}

// Close sends a normal close frame, waiting at most a second for a stalled
// peer, and releases the socket. Safe to call more than once.
func (ch *Channel) Close() error {
	var err error
	ch.closeOnce.Do(func() {
		ch.writeMutex.Lock()
		_ = ch.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout))
		ch.writeMutex.Unlock()
		err = ch.conn.Close()
	})
	return err
}

func (ch *Channel) write(v interface{}) error {
	msgBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal carrier message: %w", err)
	}

	ch.writeMutex.Lock()
	defer ch.writeMutex.Unlock()
	return ch.conn.WriteMessage(websocket.TextMessage, msgBytes)
}
