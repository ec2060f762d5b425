// Package feed serves device events over a websocket the way the desktop
// backend does: one endpoint, and every event goes to the most recently
// connected client.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Alia5/catinput/apiclient"
	"github.com/Alia5/catinput/apitypes"
	"github.com/Alia5/catinput/internal/log"
)

// ErrNoClient is returned by Send when no client is connected.
var ErrNoClient = errors.New("no client connected")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The UI connects from a non-http origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	config    ServerConfig
	logger    *slog.Logger
	rawLogger log.RawLogger

	ready     chan struct{}
	readyOnce sync.Once
	ln        net.Listener
	httpSrv   *http.Server

	mu        sync.Mutex
	conn      *websocket.Conn
	connected chan struct{}

	writeMu sync.Mutex

	// OnMessage, when set, receives every frame sent by the client.
	OnMessage func(apitypes.Message)
}

func New(config ServerConfig, logger *slog.Logger, rawLogger log.RawLogger) *Server {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	s := &Server{
		config:    config,
		logger:    logger,
		rawLogger: rawLogger,
		ready:     make(chan struct{}),
		connected: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)
	s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// ListenAndServe binds the configured address and serves until Close.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("Feed server listening", "addr", ln.Addr().String())

	err = s.httpSrv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		s.logger.Info("Feed server stopped")
		return nil
	}
	return err
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address, or the configured one before Ready.
func (s *Server) Addr() string {
	select {
	case <-s.ready:
		return s.ln.Addr().String()
	default:
		return s.config.Addr
	}
}

// Close stops the listener and disconnects the client.
func (s *Server) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.config.WriteTimeout))
		_ = conn.Close()
	}
	return s.httpSrv.Close()
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.mu.Lock()
	prev := s.conn
	s.conn = conn
	s.mu.Unlock()
	if prev != nil {
		s.logger.Info("Replacing previous client", "remote", prev.RemoteAddr().String())
		_ = prev.Close()
	}
	s.logger.Info("Client connected", "remote", r.RemoteAddr)
	s.signalConnected()

	s.readLoop(conn)
}

func (s *Server) signalConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.connected:
	default:
		close(s.connected)
	}
}

// WaitForClient blocks until a client has connected at least once.
func (s *Server) WaitForClient(ctx context.Context) error {
	select {
	case <-s.connected:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readLoop consumes client frames so control frames are processed, and hands
// decoded messages to OnMessage.
func (s *Server) readLoop(conn *websocket.Conn) {
	connLogger := s.logger.With("remote", conn.RemoteAddr().String())
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				connLogger.Warn("client read error", "error", err)
			} else {
				connLogger.Info("Client disconnected")
			}
			return
		}
		s.rawLogger.Log(true, data)

		var msg apitypes.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			connLogger.Warn("ignoring undecodable client frame", "error", err)
			continue
		}
		connLogger.Debug("client message", "kind", msg.Kind)
		if s.OnMessage != nil {
			s.OnMessage(msg)
		}
	}
}

// Send writes ev to the current client.
func (s *Server) Send(ev apitypes.DeviceEvent) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNoClient
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.rawLogger.Log(false, data)
	return nil
}

// Feed forwards newline-delimited JSON events from r until EOF or ctx is
// done. Lines that are not device events are skipped with a warning. Events
// arriving while no client is connected are dropped. It returns the number of
// events delivered.
func (s *Server) Feed(ctx context.Context, r io.Reader) (int, error) {
	sent := 0
	err := apiclient.ScanLines(ctx, r, func(lineNo int, line []byte) error {
		if bytes.HasPrefix(line, []byte("#")) {
			return nil
		}
		ev, err := apitypes.ParseEvent(line)
		if err != nil {
			s.logger.Warn("skipping malformed line", "line", lineNo, "error", err)
			return nil
		}
		if err := s.Send(ev); err != nil {
			if errors.Is(err, ErrNoClient) {
				s.logger.Warn("dropping event, no client connected", "line", lineNo, "kind", ev.Kind)
			} else {
				s.logger.Error("Failed to send event", "line", lineNo, "error", err)
			}
			return nil
		}
		sent++
		return nil
	})
	return sent, err
}
