package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"voice-bridge/internal/observability"

	"github.com/gorilla/websocket"
)

const closeWriteTimeout = time.Second

// Conversation is one live agent WebSocket.
type Conversation struct {
	conn      *websocket.Conn
	logger    *observability.Logger
	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

func newConversation(conn *websocket.Conn, logger *observability.Logger) *Conversation {
	return &Conversation{
		conn:   conn,
		logger: logger,
	}
}

// Listen reads frames until the socket closes or ctx is done. Pings are answered
// here and never reach emit. It returns nil on a normal close or after Close.
func (c *Conversation) Listen(ctx context.Context, emit func(Message)) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info(ctx, "Agent conversation closed by remote")
				return nil
			}
			return fmt.Errorf("agent read: %w", err)
		}

		msg, err := ParseMessage(raw)
		if err != nil {
			c.logger.Error(ctx, "Dropping malformed agent message", err)
			continue
		}

		if ping, ok := msg.(PingMessage); ok {
			if err := c.writeJSON(pongMessage{Type: "pong", EventID: ping.EventID}); err != nil {
				c.logger.Error(ctx, "Failed to answer agent ping", err)
			}
			continue
		}

		emit(msg)
	}
}

// SendUserAudio forwards a base64 μ-law chunk of caller audio.
func (c *Conversation) SendUserAudio(payload string) error {
	return c.writeJSON(userAudioMessage{UserAudioChunk: payload})
}

// Close sends a close frame best effort and releases the socket. Safe to call more than once.
func (c *Conversation) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		c.writeMu.Lock()
		err := c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout))
		c.writeMu.Unlock()
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			c.logger.Debug(context.Background(), fmt.Sprintf("agent close frame not sent: %v", err))
		}

		_ = c.conn.Close()
	})
	return nil
}

func (c *Conversation) writeJSON(v interface{}) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}
