package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

type socketEnvelope struct {
	EnvelopeID string          `json:"envelope_id,omitempty"`
	Type       string          `json:"type,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type eventsAPIPayload struct {
	TeamID  string          `json:"team_id,omitempty"`
	EventID string          `json:"event_id,omitempty"`
	Event   json.RawMessage `json:"event,omitempty"`
}

type messageEvent struct {
	Type     string `json:"type,omitempty"`
	Subtype  string `json:"subtype,omitempty"`
	User     string `json:"user,omitempty"`
	Text     string `json:"text,omitempty"`
	Channel  string `json:"channel,omitempty"`
	TS       string `json:"ts,omitempty"`
	ThreadTS string `json:"thread_ts,omitempty"`
	BotID    string `json:"bot_id,omitempty"`
}

// Event is one human-authored chat message received over Socket Mode.
type Event struct {
	User     string
	Channel  string
	TS       string
	ThreadTS string
	Text     string
}

// consumeSocket reads Socket Mode envelopes until the connection breaks,
// the context is canceled, or Slack asks for a reconnect. Every envelope
// carrying an envelope_id is acked.
func consumeSocket(ctx context.Context, conn *websocket.Conn, onEnvelope func(envelope socketEnvelope) error) error {
	if conn == nil {
		return fmt.Errorf("slack websocket connection is nil")
	}
	for {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var envelope socketEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}
		if strings.TrimSpace(envelope.EnvelopeID) != "" {
			if err := conn.WriteJSON(map[string]string{"envelope_id": envelope.EnvelopeID}); err != nil {
				return err
			}
		}
		if strings.TrimSpace(envelope.Type) == "disconnect" {
			// Slack rotates socket hosts; drop the connection and let the
			// caller dial a fresh one.
			return nil
		}
		if onEnvelope == nil {
			continue
		}
		if err := onEnvelope(envelope); err != nil {
			return err
		}
	}
}

// parseInboundEvent extracts a human message event from an events_api
// envelope. Bot echoes, message subtypes (edits, joins, ...), and
// envelopes with missing fields report ok=false.
func parseInboundEvent(envelope socketEnvelope) (Event, bool, error) {
	if strings.TrimSpace(envelope.Type) != "events_api" || len(envelope.Payload) == 0 {
		return Event{}, false, nil
	}
	var payload eventsAPIPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return Event{}, false, err
	}
	var event messageEvent
	if err := json.Unmarshal(payload.Event, &event); err != nil {
		return Event{}, false, err
	}
	if strings.TrimSpace(event.Type) != "message" {
		return Event{}, false, nil
	}
	if strings.TrimSpace(event.Subtype) != "" {
		return Event{}, false, nil
	}
	if strings.TrimSpace(event.BotID) != "" {
		return Event{}, false, nil
	}
	userID := strings.TrimSpace(event.User)
	if userID == "" {
		return Event{}, false, nil
	}
	channelID := strings.TrimSpace(event.Channel)
	if channelID == "" {
		return Event{}, false, nil
	}
	messageTS := strings.TrimSpace(event.TS)
	if messageTS == "" {
		return Event{}, false, nil
	}
	return Event{
		User:     userID,
		Channel:  channelID,
		TS:       messageTS,
		ThreadTS: strings.TrimSpace(event.ThreadTS),
		Text:     event.Text,
	}, true, nil
}
