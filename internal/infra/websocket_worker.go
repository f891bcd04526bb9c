package infra

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/metrics"
)

// WebSocketHandler defines stream-specific logic for the WSWorker.
type WebSocketHandler interface {
	GetURL() string
	OnConnect(ctx context.Context, conn *websocket.Conn) error
	OnMessage(ctx context.Context, msg []byte)
	ID() string
}

// WSWorker manages the lifecycle of a WebSocket connection: dial, read loop,
// keep-alive probing, and reconnection with capped exponential backoff.
// The reconnect loop never gives up; only context cancellation stops it,
// including mid-backoff.
type WSWorker struct {
	handler WebSocketHandler
	mu      sync.RWMutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	PingInterval time.Duration
	PingTimeout  time.Duration
	Backoff      Backoff
}

// NewWSWorker creates a new generic WebSocket worker.
func NewWSWorker(handler WebSocketHandler) *WSWorker {
	return &WSWorker{
		handler:      handler,
		PingInterval: 20 * time.Second,
		PingTimeout:  20 * time.Second,
		Backoff:      DefaultBackoff(),
	}
}

// Start initiates the connection loop.
func (w *WSWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Stop terminates the worker.
func (w *WSWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.close()
	w.wg.Wait()
}

func (w *WSWorker) runLoop(ctx context.Context) {
	defer w.wg.Done()
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			attempt = w.Backoff.NextAttempt(attempt)
			delay := w.Backoff.Delay(attempt)
			metrics.WSReconnects.Inc()
			slog.Warn("🔄 WS connection failed, backing off",
				"id", w.handler.ID(), "err", err, "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		// Attempt counter resets only on a successful connect.
		attempt = 0
		w.process(ctx)
	}
}

func (w *WSWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.handler.GetURL(), nil)
	if err != nil {
		return err
	}

	// Keep-alive: the read deadline is armed for one ping window and pushed
	// forward every time the peer answers. A silent connection times out.
	conn.SetReadDeadline(time.Now().Add(w.PingInterval + w.PingTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(w.PingInterval + w.PingTimeout))
	})

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, conn); err != nil {
		w.close()
		return fmt.Errorf("OnConnect failed: %w", err)
	}

	if w.PingInterval > 0 {
		go w.pingLoop(ctx, conn)
	}

	slog.Info("✅ WS connected", "id", w.handler.ID(), "url", w.handler.GetURL())
	return nil
}

func (w *WSWorker) process(ctx context.Context) {
	for {
		w.mu.RLock()
		c := w.conn
		w.mu.RUnlock()
		if c == nil {
			return
		}

		_, msg, err := c.ReadMessage()
		if err != nil {
			slog.Warn("⚠️ WS read error", "id", w.handler.ID(), "err", err)
			w.close()
			return
		}

		w.handler.OnMessage(ctx, msg)
	}
}

func (w *WSWorker) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(w.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.RLock()
			current := w.conn
			w.mu.RUnlock()
			if current != conn {
				// The connection this loop was probing is gone.
				return
			}
			deadline := time.Now().Add(w.PingTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				slog.Warn("⚠️ WS ping error", "id", w.handler.ID(), "err", err)
				w.close()
				return
			}
		}
	}
}

func (w *WSWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
