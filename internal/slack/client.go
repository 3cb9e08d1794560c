package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type ClientOptions struct {
	API *API
	// Handler receives every parsed inbound message event. It must not
	// block; slow handlers stall the socket read loop.
	Handler func(Event)
	Logger  *slog.Logger
}

// Client owns the Socket Mode connection lifecycle: dial, consume,
// reconnect. Message posting is delegated to the underlying API.
type Client struct {
	api     *API
	handler func(Event)
	logger  *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("slack api is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:     opts.API,
		handler: opts.Handler,
		logger:  logger,
	}, nil
}

// PostMessage implements the engine's MessagePoster contract.
func (c *Client) PostMessage(ctx context.Context, channelID, text, threadTS string) (string, error) {
	if c == nil || c.api == nil {
		return "", fmt.Errorf("slack client is not initialized")
	}
	return c.api.PostMessage(ctx, channelID, text, threadTS)
}

// Start connects to Socket Mode and consumes events until ctx is
// canceled or Stop is called, reconnecting with a short backoff on
// connection errors. Handler failures are logged and never tear down the
// loop.
func (c *Client) Start(ctx context.Context) error {
	if c == nil || c.api == nil {
		return fmt.Errorf("slack client is not initialized")
	}
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	stopped := c.stopped
	c.mu.Unlock()
	defer cancel()
	if stopped {
		return nil
	}

	for {
		if ctx.Err() != nil {
			c.logger.Info("slack_stop", "reason", "context_canceled")
			return nil
		}
		conn, err := c.api.connectSocket(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("slack_stop", "reason", "context_canceled")
				return nil
			}
			c.logger.Warn("slack_socket_connect_error", "error", err.Error())
			if err := sleepWithContext(ctx, 2*time.Second); err != nil {
				return nil
			}
			continue
		}
		c.logger.Info("slack_socket_connected")

		// Close the connection when ctx ends so the blocking read
		// returns.
		connCtx, connCancel := context.WithCancel(ctx)
		go func() {
			<-connCtx.Done()
			_ = conn.Close()
		}()
		readErr := consumeSocket(connCtx, conn, func(envelope socketEnvelope) error {
			event, ok, err := parseInboundEvent(envelope)
			if err != nil {
				c.logger.Warn("slack_event_parse_error", "error", err.Error())
				return nil
			}
			if !ok {
				return nil
			}
			c.dispatch(event)
			return nil
		})
		connCancel()
		if readErr != nil && ctx.Err() == nil && !errors.Is(readErr, context.Canceled) && !errors.Is(readErr, context.DeadlineExceeded) {
			c.logger.Warn("slack_socket_read_error", "error", readErr.Error())
		}
	}
}

func (c *Client) dispatch(event Event) {
	if c.handler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("slack_event_handler_panic", "panic", fmt.Sprint(r))
		}
	}()
	c.handler(event)
}

// Stop cancels a running Start. Safe to call more than once and before
// Start.
func (c *Client) Stop() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
