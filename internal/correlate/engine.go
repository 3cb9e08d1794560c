// Package correlate matches questions posted into Slack threads with the
// replies a human types back. Each thread carries at most one outstanding
// question; inbound chat traffic that is not the configured responder
// answering a pending question is dropped.
package correlate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quailyquaily/humanloop/internal/format"
)

// DefaultResponseTimeout bounds how long Ask blocks for a human reply.
const DefaultResponseTimeout = 600 * time.Second

// MessagePoster is the slice of the chat transport the engine needs:
// post a message, get back its transport-assigned timestamp id.
type MessagePoster interface {
	PostMessage(ctx context.Context, channelID, text, threadTS string) (string, error)
}

// Event is one inbound chat message as delivered by the transport.
type Event struct {
	User     string
	ThreadTS string
	Text     string
}

type EngineOptions struct {
	Poster      MessagePoster
	ChannelID   string
	ResponderID string
	// ResponseTimeout defaults to DefaultResponseTimeout when zero.
	ResponseTimeout time.Duration
	Logger          *slog.Logger
}

// Engine owns the thread registry and the pending-wait table. Both are
// mutated only inside Ask and HandleEvent.
type Engine struct {
	poster      MessagePoster
	channelID   string
	responderID string
	timeout     time.Duration
	logger      *slog.Logger

	threads *threadSet
	waits   *waitTable
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Poster == nil {
		return nil, fmt.Errorf("message poster is required")
	}
	channelID := strings.TrimSpace(opts.ChannelID)
	if channelID == "" {
		return nil, fmt.Errorf("channel_id is required")
	}
	responderID := strings.TrimSpace(opts.ResponderID)
	if responderID == "" {
		return nil, fmt.Errorf("responder user_id is required")
	}
	timeout := opts.ResponseTimeout
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		poster:      opts.Poster,
		channelID:   channelID,
		responderID: responderID,
		timeout:     timeout,
		logger:      logger,
		threads:     newThreadSet(),
		waits:       newWaitTable(),
	}, nil
}

// Ask posts question into a Slack thread and blocks until the responder
// replies there or the response timeout elapses. An empty threadTS opens
// a new thread; a non-empty one continues the given conversation. Returns
// the reply text and the thread id carrying the conversation.
func (e *Engine) Ask(ctx context.Context, question, threadTS string) (string, string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", "", &ValidationError{Field: "question", Reason: "must be a non-empty string"}
	}
	threadTS = strings.TrimSpace(threadTS)
	askID := "ask_" + uuid.NewString()
	e.logger.Info("ask_start",
		"ask_id", askID,
		"thread_ts", threadTS,
		"question_preview", format.Preview(question, 100),
	)

	if threadTS == "" {
		ts, err := e.poster.PostMessage(ctx, e.channelID, format.StarterText(question), "")
		if err != nil {
			return "", "", &TransportError{Op: "chat.postMessage", Err: err}
		}
		ts = strings.TrimSpace(ts)
		if ts == "" {
			return "", "", &TransportError{Op: "chat.postMessage", Err: fmt.Errorf("empty message ts")}
		}
		threadTS = ts
		e.threads.Add(threadTS)
		e.logger.Debug("ask_thread_created", "ask_id", askID, "thread_ts", threadTS)
	} else {
		// A caller-supplied id may predate this process; register it so
		// the reply can match.
		e.threads.Add(threadTS)
	}

	// Register before posting the question: a reply typed during the post
	// round-trip must still find its wait.
	w, err := e.waits.Register(threadTS)
	if err != nil {
		return "", threadTS, err
	}

	if _, err := e.poster.PostMessage(ctx, e.channelID, format.QuestionText(e.responderID, question), threadTS); err != nil {
		e.waits.Remove(threadTS)
		return "", threadTS, &TransportError{Op: "chat.postMessage", Err: err}
	}

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()
	select {
	case <-w.done:
	case <-timer.C:
		// A reply that lands exactly at the deadline wins the race; the
		// expired branch below only triggers if expire settled first.
		w.expire()
	case <-ctx.Done():
		e.waits.Remove(threadTS)
		return "", threadTS, ctx.Err()
	}
	e.waits.Remove(threadTS)

	state, text := w.value()
	if state != waitResolved {
		e.logger.Warn("ask_timeout", "ask_id", askID, "thread_ts", threadTS, "timeout", e.timeout.String())
		return "", threadTS, &ResponseTimeoutError{ThreadTS: threadTS, Timeout: e.timeout}
	}
	e.logger.Info("ask_answered", "ask_id", askID, "thread_ts", threadTS)
	return text, threadTS, nil
}

// HandleEvent consumes one inbound chat event. It is safe to call for
// every message the transport sees; anything that is not the configured
// responder answering a pending question is dropped.
func (e *Engine) HandleEvent(ev Event) {
	if strings.TrimSpace(ev.User) != e.responderID {
		return
	}
	threadTS := strings.TrimSpace(ev.ThreadTS)
	if threadTS == "" || !e.threads.Has(threadTS) {
		return
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}
	w, ok := e.waits.Lookup(threadTS)
	if !ok {
		// Follow-up chatter in a known thread with nobody waiting.
		e.logger.Debug("reply_without_wait", "thread_ts", threadTS)
		return
	}
	if w.resolve(text) {
		e.logger.Debug("reply_matched", "thread_ts", threadTS)
	}
}
