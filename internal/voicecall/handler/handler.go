package handler

//go:generate go run go.uber.org/mock/mockgen@latest -source=handler.go -destination=mocks_test.go -package=handler

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voice/session"

	"github.com/gorilla/websocket"
)

// CallProcessor is the call logic behind the HTTP surface
type CallProcessor interface {
	InitiateOutboundCall(ctx context.Context, number, prompt string) (string, error)
	OutboundTwiML(host, prompt string) (string, error)
	IncomingTwiML(host string) (string, error)
	RunMediaSession(ctx context.Context, carrier session.Carrier) session.Summary
	GetCall(ctx context.Context, callSid string) (store.Call, error)
}

type Handler struct {
	processor CallProcessor
	logger    *observability.Logger
	// publicHost overrides the request host in stream URLs handed to the carrier.
	publicHost string
	sessions   *activeSessions
}

func New(processor CallProcessor, publicHost string, logger *observability.Logger) Handler {
	return Handler{
		processor:  processor,
		logger:     logger,
		publicHost: publicHost,
		sessions:   newActiveSessions(),
	}
}

// Shutdown refuses new media streams, cancels the running ones and waits until
// each has torn down or ctx is done.
func (h *Handler) Shutdown(ctx context.Context) error {
	return h.sessions.shutdown(ctx)
}

var errShuttingDown = errors.New("media streams are shutting down")

// activeSessions tracks live media sessions. Upgraded connections are hijacked,
// so http.Server.Shutdown neither cancels nor waits for them.
type activeSessions struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newActiveSessions() *activeSessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &activeSessions{ctx: ctx, cancel: cancel}
}

// begin registers a session. The returned context keeps the values of parent
// and is also cancelled on shutdown. done must be called when the session ends.
func (a *activeSessions) begin(parent context.Context) (context.Context, func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, nil, errShuttingDown
	}

	a.wg.Add(1)
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(a.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
		a.wg.Done()
	}, nil
}

func (a *activeSessions) shutdown(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.cancel()

	finished := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// upgrader is a shared WebSocket upgrader. The carrier does not send an Origin header.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) streamHost(r *http.Request) string {
	if h.publicHost != "" {
		return h.publicHost
	}
	return r.Host
}
