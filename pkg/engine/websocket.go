package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cuemby/fxboard/pkg/log"
)

// Frame types on the engine link
const (
	FrameStart   = "start"
	FrameCommand = "command"
	FrameStop    = "stop"
)

// Frame is one outbound JSON text frame. Inbound frames carry raw event
// messages and are not wrapped.
type Frame struct {
	Type    string   `json:"type"`
	Session string   `json:"session,omitempty"`
	InDev   string   `json:"inDev,omitempty"`
	OutDev  string   `json:"outDev,omitempty"`
	Msg     *Command `json:"msg,omitempty"`
}

// LinkConfig configures a WebSocketLink
type LinkConfig struct {
	URL          string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
	SendBuffer   int
}

func (c LinkConfig) withDefaults() LinkConfig {
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	return c
}

// WebSocketLink talks to an engine process over a websocket. One session
// exists at a time; it owns a read goroutine that delivers events and a write
// goroutine that is the only writer on the connection.
type WebSocketLink struct {
	cfg LinkConfig

	mu   sync.Mutex
	sess *session
}

type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	writer sync.WaitGroup
	reader sync.WaitGroup
	logger zerolog.Logger
}

// NewWebSocketLink returns an unstarted link
func NewWebSocketLink(cfg LinkConfig) *WebSocketLink {
	return &WebSocketLink{cfg: cfg.withDefaults()}
}

// Start dials the engine, announces the session and starts delivering events
func (l *WebSocketLink) Start(ctx context.Context, opts StartOptions, onEvent EventFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sess != nil {
		return ErrAlreadyStarted
	}

	dialer := websocket.Dialer{HandshakeTimeout: l.cfg.DialTimeout}
	dialCtx, dialCancel := context.WithTimeout(ctx, l.cfg.DialTimeout)
	defer dialCancel()

	conn, _, err := dialer.DialContext(dialCtx, l.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial engine at %s: %w", l.cfg.URL, err)
	}

	id := uuid.New().String()
	start, err := json.Marshal(Frame{
		Type:    FrameStart,
		Session: id,
		InDev:   opts.InDevice,
		OutDev:  opts.OutDevice,
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to encode start frame: %w", err)
	}

	conn.SetWriteDeadline(time.Now().Add(l.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		conn.Close()
		return fmt.Errorf("failed to start engine session: %w", err)
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, l.cfg.SendBuffer),
		ctx:    sessCtx,
		cancel: cancel,
		logger: log.WithSession(id),
	}

	s.writer.Add(1)
	go l.writeLoop(s)
	s.reader.Add(1)
	go l.readLoop(s, onEvent)

	l.sess = s
	s.logger.Info().
		Str("url", l.cfg.URL).
		Str("in_dev", opts.InDevice).
		Str("out_dev", opts.OutDevice).
		Msg("Engine session started")
	return nil
}

// Send queues cmd for the write goroutine. A command accepted here is written
// before the stop frame; once Stop has begun or the connection is gone, Send
// returns ErrNotStarted.
func (l *WebSocketLink) Send(cmd Command) error {
	data, err := json.Marshal(Frame{Type: FrameCommand, Msg: &cmd})
	if err != nil {
		return fmt.Errorf("failed to encode command %s: %w", cmd.Param, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.sess
	if s == nil || s.ctx.Err() != nil {
		return ErrNotStarted
	}

	select {
	case s.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Stop flushes queued commands, sends the stop frame and closes the
// connection. Stopping a stopped link is a no-op. Stop waits for the read
// goroutine, so it must not be called from inside an event callback.
func (l *WebSocketLink) Stop() error {
	l.mu.Lock()
	s := l.sess
	l.sess = nil
	l.mu.Unlock()

	if s == nil {
		return nil
	}

	s.cancel()
	s.writer.Wait()
	err := s.conn.Close()
	s.reader.Wait()

	s.logger.Info().Msg("Engine session stopped")
	return err
}

// Session returns the current session id, or "" when stopped
func (l *WebSocketLink) Session() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sess == nil {
		return ""
	}
	return l.sess.id
}

func (l *WebSocketLink) write(s *session, messageType int, data []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(l.cfg.WriteTimeout))
	return s.conn.WriteMessage(messageType, data)
}

func (l *WebSocketLink) writeLoop(s *session) {
	defer s.writer.Done()

	ticker := time.NewTicker(l.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			l.shutdown(s)
			return
		case data := <-s.send:
			if err := l.write(s, websocket.TextMessage, data); err != nil {
				// a websocket write deadline cannot be recovered
				s.logger.Warn().Err(err).Msg("Engine write failed")
				s.cancel()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(l.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Warn().Err(err).Msg("Engine ping failed")
				s.cancel()
				return
			}
		}
	}
}

// shutdown drains commands queued before Stop, then says goodbye
func (l *WebSocketLink) shutdown(s *session) {
	for drained := false; !drained; {
		select {
		case data := <-s.send:
			if err := l.write(s, websocket.TextMessage, data); err != nil {
				return
			}
		default:
			drained = true
		}
	}

	stop, _ := json.Marshal(Frame{Type: FrameStop})
	if err := l.write(s, websocket.TextMessage, stop); err != nil {
		return
	}
	l.write(s, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (l *WebSocketLink) readLoop(s *session, onEvent EventFunc) {
	defer s.reader.Done()
	defer s.cancel()

	for {
		messageType, message, err := s.conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("Engine connection lost")
			}
			return
		}

		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			if len(message) == 0 {
				continue
			}
			if s.ctx.Err() != nil {
				return
			}
			onEvent(message)
		}
	}
}
