package playback

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

// WebSocketSink streams frames to a preview client as JSON text messages.
type WebSocketSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

func (s *WebSocketSink) Name() string {
	return "websocket"
}

func (s *WebSocketSink) Send(ctx context.Context, msg FrameMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(wsWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	s.conn.SetWriteDeadline(deadline)
	return s.conn.WriteJSON(msg)
}

// Close sends a normal closure frame.
func (s *WebSocketSink) Close(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	return s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// CancelOnDisconnect reads from the connection until the client goes away
// and then calls cancel. Incoming messages are discarded.
func (s *WebSocketSink) CancelOnDisconnect(cancel context.CancelFunc) {
	go func() {
		defer cancel()
		for {
			if _, _, err := s.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
