package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestConsumeSocketAcksAndStopsOnDisconnect(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var ackedID string
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		event, _ := json.Marshal(map[string]any{
			"type": "message", "user": "U_HUMAN", "channel": "C100",
			"ts": "1700000000.000200", "thread_ts": "1700000000.000100", "text": "yes",
		})
		payload, _ := json.Marshal(map[string]any{"event": json.RawMessage(event)})
		envelope, _ := json.Marshal(socketEnvelope{
			EnvelopeID: "env-42",
			Type:       "events_api",
			Payload:    payload,
		})
		if err := conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
			t.Errorf("write envelope: %v", err)
			return
		}

		var ack map[string]string
		if err := conn.ReadJSON(&ack); err != nil {
			t.Errorf("read ack: %v", err)
			return
		}
		mu.Lock()
		ackedID = ack["envelope_id"]
		mu.Unlock()

		disconnect, _ := json.Marshal(socketEnvelope{Type: "disconnect"})
		if err := conn.WriteMessage(websocket.TextMessage, disconnect); err != nil {
			t.Errorf("write disconnect: %v", err)
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var seen []string
	err = consumeSocket(ctx, conn, func(envelope socketEnvelope) error {
		event, ok, err := parseInboundEvent(envelope)
		if err != nil {
			return err
		}
		if ok {
			seen = append(seen, event.ThreadTS)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("consumeSocket() error = %v, want nil on disconnect", err)
	}
	if len(seen) != 1 || seen[0] != "1700000000.000100" {
		t.Fatalf("seen = %v, want one event in thread 1700000000.000100", seen)
	}
	mu.Lock()
	defer mu.Unlock()
	if ackedID != "env-42" {
		t.Fatalf("ack envelope_id = %q, want %q", ackedID, "env-42")
	}
}
