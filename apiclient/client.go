package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Alia5/catinput/apitypes"
)

// ErrNotConnected is returned by Stream and Send before Connect succeeds or
// after the connection was lost.
var ErrNotConnected = errors.New("websocket not connected")

// Client is a websocket device-event transport. Every text frame received is
// one JSON-encoded apitypes.DeviceEvent; Send writes one JSON text frame.
type Client struct {
	addr   string
	cfg    Config
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn

	writeMu sync.Mutex
}

// New constructs a client for addr (host:port). No connection is made until
// Connect.
func New(addr string, cfg *Config) *Client {
	c := withDefaults(cfg)
	return &Client{
		addr: addr,
		cfg:  c,
		dialer: &websocket.Dialer{
			HandshakeTimeout: c.DialTimeout,
		},
	}
}

// Dial constructs a client and connects it.
func Dial(ctx context.Context, addr string, cfg *Config) (*Client, error) {
	c := New(addr, cfg)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// URL returns the websocket URL the client dials.
func (c *Client) URL() string {
	u := url.URL{Scheme: "ws", Host: c.addr, Path: c.cfg.Path}
	return u.String()
}

// Connect opens the websocket. It is a no-op while a connection is open.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	dialCtx := ctx
	if c.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.DialTimeout)
		defer cancel()
	}

	target := c.URL()
	conn, _, err := c.dialer.DialContext(dialCtx, target, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", target, err)
	}
	if c.cfg.ReadLimit > 0 {
		conn.SetReadLimit(c.cfg.ReadLimit)
	}
	c.conn = conn
	c.cfg.Logger.Debug("websocket connected", "url", target)
	return nil
}

// Connected reports whether a connection is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// drop forgets conn if it is still the current connection and closes it.
func (c *Client) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

// Stream reads frames until ctx is done or the connection closes. Frames that
// do not decode as a device event are logged and skipped. A normal close by
// the peer returns nil. The connection is dropped when Stream returns, so a
// later Connect dials again.
func (c *Client) Stream(ctx context.Context, emit func(apitypes.DeviceEvent) error) error {
	conn := c.current()
	if conn == nil {
		return ErrNotConnected
	}
	defer c.drop(conn)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if c.cfg.PingInterval > 0 {
		deadline := func() { _ = conn.SetReadDeadline(time.Now().Add(2 * c.cfg.PingInterval)) }
		deadline()
		conn.SetPongHandler(func(string) error { deadline(); return nil })
		pingDone := make(chan struct{})
		defer close(pingDone)
		go c.pingLoop(conn, pingDone)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.current() != conn {
				// Closed locally.
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.cfg.Logger.Info("websocket closed by peer")
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if c.cfg.PingInterval > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(2 * c.cfg.PingInterval))
		}
		c.cfg.RawLogger.Log(true, data)

		ev, err := apitypes.ParseEvent(data)
		if err != nil {
			c.cfg.Logger.Warn("skipping undecodable frame", "error", err)
			continue
		}
		if err := emit(ev); err != nil {
			return err
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.cfg.Logger.Debug("websocket ping failed", "error", err)
				return
			}
		}
	}
}

// Send writes msg as a JSON text frame.
func (c *Client) Send(ctx context.Context, msg apitypes.Message) error {
	conn := c.current()
	if conn == nil {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(c.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	c.cfg.RawLogger.Log(false, data)
	return nil
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteTimeout))
	return conn.Close()
}
