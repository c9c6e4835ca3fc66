package chatstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func marshalEnvelope(t *testing.T, kind string, payload interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	data, err := json.Marshal(eventEnvelope{Kind: kind, CommunityID: 42, Payload: raw})
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}
	return data
}

// The server flushes queued events into a single frame separated by
// newlines; every envelope in the frame must reach the store.
func TestListenDecodesBatchedFrame(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := marshalEnvelope(t, "message.created", Message{ID: 1, SenderID: 7, Content: "one", CreatedAt: base})
	second := marshalEnvelope(t, "message.created", Message{ID: 2, SenderID: 7, Content: "two", CreatedAt: base.Add(time.Second)})
	frame := append(append(append([]byte{}, first...), '\n'), second...)

	query := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query <- r.URL.RawQuery
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			t.Errorf("failed to write frame: %v", err)
			return
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
			t.Errorf("failed to write close: %v", err)
			return
		}
		// Wait for the client's close response before tearing down.
		conn.ReadMessage()
	}))
	defer srv.Close()

	store := newTestStore(t, &fakeTransport{}, Options{})

	// The endpoint already carries a query parameter; the token must be
	// appended without clobbering it.
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/communities/42/ws?trace=abc"
	sub, err := Subscribe(context.Background(), wsURL, "test-jwt", store, zerolog.Nop())
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer sub.Close()

	if err := sub.Listen(context.Background()); err != nil {
		t.Fatalf("Listen returned error: %v", err)
	}

	raw := <-query
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("failed to parse query: %v", err)
	}
	if got := values.Get("token"); got != "test-jwt" {
		t.Errorf("expected token query parameter %q, got %q", "test-jwt", got)
	}
	if got := values.Get("trace"); got != "abc" {
		t.Errorf("expected existing query parameter to survive, got %q", got)
	}

	messages := store.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected both batched messages, got %d", len(messages))
	}
	if messages[0].ID != 1 || messages[1].ID != 2 {
		t.Errorf("expected messages 1 and 2 in order, got %d and %d", messages[0].ID, messages[1].ID)
	}
}
