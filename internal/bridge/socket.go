package bridge

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/1broseidon/capsulewm/internal/wm"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Message is an input event sent by the browser shell.
type Message struct {
	Type    string `json:"type"`
	Pointer int    `json:"pointer,omitempty"`
	X       int    `json:"x,omitempty"`
	Y       int    `json:"y,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Left    int    `json:"left,omitempty"`
	Right   int    `json:"right,omitempty"`
	Top     int    `json:"top,omitempty"`
	Bottom  int    `json:"bottom,omitempty"`
}

// StateMessage is pushed to the browser after every change.
type StateMessage struct {
	Type string `json:"type"`
	wm.State
	Markup string `json:"markup"`
}

// ErrorMessage reports a rejected input event.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func stateMessage(m *wm.Manager) StateMessage {
	return StateMessage{Type: "state", State: m.Snapshot(), Markup: m.Markup()}
}

// apply dispatches msg onto the engine. It runs on the loop.
func apply(m *wm.Manager, msg Message) (ok bool, reason string) {
	switch msg.Type {
	case "pointerdown":
		m.PointerDown(msg.Pointer, msg.X, msg.Y)
	case "pointermove":
		m.PointerMove(msg.Pointer, msg.X, msg.Y)
	case "pointerup":
		m.PointerUp(msg.Pointer, msg.X, msg.Y)
	case "viewport":
		if msg.Width <= 0 || msg.Height <= 0 {
			return false, "viewport width and height must be positive"
		}
		m.SetViewport(msg.Width, msg.Height)
	case "area":
		if msg.Left < 0 || msg.Right < 0 || msg.Top < 0 || msg.Bottom < 0 {
			return false, "area insets must not be negative"
		}
		m.UpdateAvailableArea(msg.Left, msg.Right, msg.Top, msg.Bottom)
	case "frame":
		m.Frame()
	case "sync":
	default:
		return false, "unknown message type: " + msg.Type
	}
	return true, ""
}

// client is one websocket connection. State pushes come only from the
// engine loop and keep just the newest snapshot.
type client struct {
	conn   *websocket.Conn
	state  chan StateMessage
	out    chan any
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		conn:   conn,
		state:  make(chan StateMessage, 1),
		out:    make(chan any, 8),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *client) pushState(msg StateMessage) {
	select {
	case c.state <- msg:
		return
	default:
	}
	select {
	case <-c.state:
	default:
	}
	select {
	case c.state <- msg:
	default:
	}
}

func (c *client) send(v any) {
	select {
	case c.out <- v:
	case <-c.done:
	default:
		c.logger.Warn("websocket send queue full, dropping message")
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.close()

	write := func(v any) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(v); err != nil {
			c.logger.Debug("websocket write failed", "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case msg := <-c.state:
			if !write(msg) {
				return
			}
		case v := <-c.out:
			if !write(v) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := newClient(conn, s.logger)

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	var unsubscribe func()
	err = s.do(context.Background(), func(m *wm.Manager) {
		unsubscribe = m.Subscribe(func() { c.pushState(stateMessage(m)) })
		c.pushState(stateMessage(m))
	})
	if err != nil {
		s.logger.Warn("websocket subscribe failed", "error", err)
		s.dropClient(c, nil)
		return
	}
	s.logger.Debug("websocket connected", "from", r.RemoteAddr)

	go c.writePump()
	s.readPump(c)
	s.dropClient(c, unsubscribe)
	s.logger.Debug("websocket disconnected", "from", r.RemoteAddr)
}

func (s *Server) dropClient(c *client, unsubscribe func()) {
	c.close()
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	if unsubscribe != nil {
		_ = s.do(context.Background(), func(*wm.Manager) { unsubscribe() })
	}
}

func (s *Server) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var (
			ok     bool
			reason string
		)
		err := s.do(context.Background(), func(m *wm.Manager) {
			ok, reason = apply(m, msg)
			if ok {
				c.pushState(stateMessage(m))
			}
		})
		if err != nil {
			s.logger.Warn("websocket dispatch failed", "type", msg.Type, "error", err)
			return
		}
		if !ok {
			c.send(ErrorMessage{Type: "error", Message: reason})
		}
	}
}
