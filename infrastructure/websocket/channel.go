// Package websocket carries session frames over a gorilla websocket.
// Each frame is one JSON text message {"event": kind, "data": payload}.
package websocket

import (
	"chat-client/contract"
	"chat-client/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	WriteWait        time.Duration
	PongWait         time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
}

// Dialer opens authenticated channels to the messaging service.
type Dialer struct {
	log    *slog.Logger
	config Config
	dialer *websocket.Dialer
}

func NewDialer(log *slog.Logger, config Config) *Dialer {
	return &Dialer{
		log:    log,
		config: config,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

// Dial presents token as a bearer credential during the handshake.
func (d *Dialer) Dial(ctx context.Context, token string) (contract.Channel, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := d.dialer.DialContext(ctx, d.config.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("handshake with %s refused with status %d: %w", d.config.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dialing %s: %w", d.config.URL, err)
	}
	d.log.Debug("Websocket connected", "url", d.config.URL)
	return newChannel(d.log, conn, d.config), nil
}

type Channel struct {
	log    *slog.Logger
	conn   *websocket.Conn
	config Config

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func newChannel(log *slog.Logger, conn *websocket.Conn, config Config) *Channel {
	c := &Channel{log: log, conn: conn, config: config, done: make(chan struct{})}
	if config.MaxMessageSize > 0 {
		conn.SetReadLimit(config.MaxMessageSize)
	}
	if config.PongWait > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(config.PongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(config.PongWait))
		})
	}
	if config.PingInterval > 0 {
		go c.ping()
	}
	return c
}

func (c *Channel) Emit(ctx context.Context, frame event.Frame) error {
	select {
	case <-c.done:
		return fmt.Errorf("emit %s: channel closed", frame.Event)
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(c.writeDeadline(ctx)); err != nil {
		return err
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("emit %s: %w", frame.Event, err)
	}
	return nil
}

// Receive blocks until the next well-formed frame. Text that is not a
// frame envelope is logged and skipped. Closing the channel unblocks it.
func (c *Channel) Receive(ctx context.Context) (event.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return event.Frame{}, err
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("Websocket closed unexpectedly", "error", err)
			}
			return event.Frame{}, err
		}
		var frame event.Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
			c.log.Warn("Skipping malformed frame", "size", len(data), "error", err)
			continue
		}
		return frame, nil
	}
}

// Close sends a close message and releases the connection. Only the
// first call has an effect.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(c.config.WriteWait))
		err = c.conn.Close()
	})
	return err
}

func (c *Channel) ping() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.config.WriteWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.log.Debug("Ping failed", "error", err)
				return
			}
		}
	}
}

func (c *Channel) writeDeadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.config.WriteWait)
	if c.config.WriteWait <= 0 {
		deadline = time.Time{}
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		return ctxDeadline
	}
	return deadline
}
