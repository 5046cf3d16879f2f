// Package bridge connects a browser shell to the engine. It serves window
// snapshots and screenshots over HTTP and carries pointer input and state
// pushes over a websocket.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/wm"
)

// Config holds configuration for the bridge.
type Config struct {
	Listen string
	// Timeout bounds how long a request may wait on the engine.
	Timeout time.Duration
	// CheckOrigin overrides the websocket origin check. Nil allows same-host
	// origins only.
	CheckOrigin func(r *http.Request) bool
	Logger      *slog.Logger
}

// Server is the HTTP and websocket front of the engine.
type Server struct {
	listen   string
	timeout  time.Duration
	manager  *wm.Manager
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer creates a bridge for manager.
func NewServer(cfg Config, manager *wm.Manager) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &Server{
		listen:  cfg.Listen,
		timeout: timeout,
		manager: manager,
		logger:  logger.With("component", "bridge"),
		clients: make(map[*client]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     cfg.CheckOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/windows", s.handleWindows)
		r.Get("/windows/{id}", s.handleWindow)
		r.Get("/windows/{id}/screenshot", s.handleScreenshot)
		r.Post("/windows/{id}/capture", s.handleCapture)
	})
	r.Get("/ws", s.handleSocket)
	return r
}

// Handler returns the bridge's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("bridge listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		s.closeClients()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("bridge shutdown", "error", err)
	}
	s.closeClients()
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}

// do runs fn on the engine loop with the request timeout.
func (s *Server) do(ctx context.Context, fn func(*wm.Manager)) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.manager.Do(ctx, fn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func windowID(r *http.Request) (registry.ID, error) {
	return registry.ParseID(chi.URLParam(r, "id"))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var msg StateMessage
	if err := s.do(r.Context(), func(m *wm.Manager) { msg = stateMessage(m) }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	var windows []wm.WindowState
	if err := s.do(r.Context(), func(m *wm.Manager) { windows = m.Windows() }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"windows": windows})
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	id, err := windowID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var (
		state  wm.WindowState
		getErr error
	)
	if err := s.do(r.Context(), func(m *wm.Manager) { state, getErr = m.Window(id) }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if getErr != nil {
		writeError(w, http.StatusNotFound, getErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	id, err := windowID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var (
		getErr error
		found  bool
		shot   = struct {
			mime string
			data []byte
		}{}
	)
	err = s.do(r.Context(), func(m *wm.Manager) {
		if _, getErr = m.Window(id); getErr != nil {
			return
		}
		sc, ok := m.Screenshot(id)
		if !ok || sc.Image.Empty() {
			return
		}
		found = true
		shot.mime = sc.Image.MIME
		shot.data = sc.Image.Data
	})
	switch {
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case getErr != nil:
		writeError(w, http.StatusNotFound, getErr.Error())
	case !found:
		writeError(w, http.StatusNotFound, "no screenshot for "+id.String())
	default:
		w.Header().Set("Content-Type", shot.mime)
		w.Header().Set("Content-Length", strconv.Itoa(len(shot.data)))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(shot.data)
	}
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	id, err := windowID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	shot, err := wm.CaptureAndWait(ctx, s.manager, id)
	switch {
	case errors.Is(err, wm.ErrUnknownWindow):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, wm.ErrCaptureCancelled):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          id,
			"strategy":    shot.Strategy,
			"mime":        shot.Image.MIME,
			"bytes":       len(shot.Image.Data),
			"captured_at": shot.CapturedAt,
		})
	}
}
