package convo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sourcehf/convo/internal/bot"
	"github.com/sourcehf/convo/internal/logger"
)

var upgrader = websocket.Upgrader{}

// wsServer upgrades connections and hands them to fn.
func wsServer(t *testing.T, fn func(conn *websocket.Conn)) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()
		fn(conn)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestClient(url string) *Client {
	return NewClient(url, logger.NewWithWriter("error", io.Discard), nil)
}

func TestClientDispatchesInboundMessages(t *testing.T) {
	t.Parallel()

	inbound := `{"event":"convo_receivemessage","data":{"uid":"42","message":"/ai hi","users":{"42":{"username":"alice"}}}}`
	url := wsServer(t, func(conn *websocket.Conn) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(inbound)); err != nil {
			return
		}
		// Hold the connection open until the client is done.
		_, _, _ = conn.ReadMessage()
	})

	c := newTestClient(url)
	got := make(chan bot.Message, 1)
	c.OnMessage(func(m bot.Message) { got <- m })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()

	select {
	case msg := <-got:
		if msg.UserID != "42" || msg.Text != "/ai hi" {
			t.Errorf("message = %+v", msg)
		}
		if msg.DisplayName() != "alice" {
			t.Errorf("DisplayName = %q", msg.DisplayName())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for inbound message")
	}

	_ = c.Close()
	cancel()
	<-done
}

func TestClientIgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	url := wsServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"convo_userjoined","data":{}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"convo_receivemessage","data":{"uid":"1","message":"hello","users":{}}}`))
		_, _, _ = conn.ReadMessage()
	})

	c := newTestClient(url)
	got := make(chan bot.Message, 2)
	c.OnMessage(func(m bot.Message) { got <- m })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()
	defer func() { _ = c.Close() }()

	select {
	case msg := <-got:
		if msg.UserID != "1" {
			t.Errorf("unexpected message %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the chat message")
	}
	select {
	case msg := <-got:
		t.Errorf("only one dispatch expected, got extra %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientSendFrameShape(t *testing.T) {
	t.Parallel()

	frames := make(chan frame, 1)
	url := wsServer(t, func(conn *websocket.Conn) {
		var f frame
		if err := conn.ReadJSON(&f); err == nil {
			frames <- f
		}
	})

	c := newTestClient(url)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()
	defer func() { _ = c.Close() }()

	// Wait for the connection to come up.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := c.Send("hello channel"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never became writable")
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case f := <-frames:
		if f.Event != "convo_newmessage" {
			t.Errorf("event = %q", f.Event)
		}
		var out outboundMessage
		if err := json.Unmarshal(f.Data, &out); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if out.PartyID != -1 || out.Message != "hello channel" {
			t.Errorf("payload = %+v", out)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the outbound frame")
	}
}

func TestClientSendBeforeConnect(t *testing.T) {
	t.Parallel()

	c := newTestClient("ws://127.0.0.1:0")
	if err := c.Send("too early"); err == nil {
		t.Error("Send before Run should fail")
	}
}

func TestClientReconnects(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	url := wsServer(t, func(conn *websocket.Conn) {
		if dials.Add(1) == 1 {
			return // drop the first connection immediately
		}
		_, _, _ = conn.ReadMessage()
	})

	c := newTestClient(url)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()
	defer func() { _ = c.Close() }()

	deadline := time.Now().Add(10 * time.Second)
	for dials.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("client never reconnected")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
