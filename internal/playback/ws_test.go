package playback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketSink_StreamsFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	done := make(chan error, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()

		sink := NewWebSocketSink(conn)
		p := &Player{Frames: testFrames(2), FrameDuration: time.Millisecond, Loops: 1, Sink: sink}
		err = p.Run(context.Background())
		sink.Close("done")
		done <- err
	}))
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer ws.Close()

	for i := 0; i < 2; i++ {
		var msg FrameMessage
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if msg.Type != "frame" || msg.Index != i || len(msg.Dots) != 4 {
			t.Errorf("message %d = %+v", i, msg)
		}
	}

	_, _, err = ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal closure, got %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("server Run() error = %v", err)
	}
}

func TestWebSocketSink_CancelOnDisconnect(t *testing.T) {
	upgrader := websocket.Upgrader{}
	cancelled := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.Background())
		NewWebSocketSink(conn).CancelOnDisconnect(cancel)
		<-ctx.Done()
		close(cancelled)
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	ws.Close()

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled after the client left")
	}
}
