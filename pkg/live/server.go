package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	errs "github.com/erebus-go/erebus/internal/errors"
)

// Default endpoints mounted by Server.Mount.
const (
	SocketPath = "/_erebus/ws"
	ClientPath = "/_erebus/client.js"
)

// SetupFunc prepares a new session. ctx is canceled when the browser
// disconnects. Returning an error closes the session.
type SetupFunc func(ctx context.Context, s *Session) error

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCheckOrigin sets the origin check of the WebSocket upgrade.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithHandshakeTimeout bounds the wait for the client hello.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.handshakeTimeout = d
	}
}

// WithWriteTimeout bounds every frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = d
	}
}

// WithDevMode disables client caching.
func WithDevMode(dev bool) Option {
	return func(s *Server) {
		s.devMode = dev
	}
}

// Server accepts browser connections and runs setup for each of them.
type Server struct {
	setup    SetupFunc
	upgrader websocket.Upgrader
	logger   *slog.Logger

	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	maxMessageSize   int64
	devMode          bool

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewServer creates a Server.
func NewServer(setup SetupFunc, opts ...Option) *Server {
	s := &Server{
		setup: setup,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		handshakeTimeout: 10 * time.Second,
		writeTimeout:     10 * time.Second,
		maxMessageSize:   64 * 1024,
		sessions:         make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Mount registers the socket and client endpoints on r.
func (s *Server) Mount(r chi.Router) {
	r.Get(SocketPath, s.ServeHTTP)
	r.Get(ClientPath, s.serveClient)
	r.Head(ClientPath, s.serveClient)
}

// ServeHTTP upgrades the request and serves the session until the browser
// disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.maxMessageSize)

	if s.handshakeTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout))
	}
	var hello Message
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != TypeHello {
		s.logger.Warn("handshake failed", "type", hello.Type, "error", err)
		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		conn.WriteJSON(Message{Type: TypeError, Error: "expected hello"})
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	session := newSession(conn, hello, s.writeTimeout, s.logger)
	s.add(session)
	defer s.remove(session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.setup != nil {
		if err := s.setup(ctx, session); err != nil {
			session.logger.Error(errs.CodeRouterError, "error", err)
			session.Send(Message{Type: TypeError, Error: errs.CodeOf(err)})
			session.Close()
			return
		}
	}
	session.logger.Info("session connected", "hash", hello.Hash)

	session.readLoop()
	session.Close()
	session.logger.Info("session closed")
}

func (s *Server) add(session *Session) {
	s.wg.Add(1)
	s.mu.Lock()
	s.sessions[session.id] = session
	s.mu.Unlock()
}

func (s *Server) remove(session *Session) {
	s.mu.Lock()
	delete(s.sessions, session.id)
	s.mu.Unlock()
	s.wg.Done()
}

// Session returns the session with the given id.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Sessions returns the connected sessions.
func (s *Server) Sessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

// Count returns the number of connected sessions.
func (s *Server) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Broadcast sends msg to every session. Sessions that fail the write are
// closed.
func (s *Server) Broadcast(msg Message) {
	for _, session := range s.Sessions() {
		if err := session.Send(msg); err != nil {
			session.Close()
		}
	}
}

// Refresh dispatches the current hash of every session again.
func (s *Server) Refresh() {
	for _, session := range s.Sessions() {
		session.Refresh()
	}
}

// Close disconnects every session and waits for their handlers to return.
func (s *Server) Close() {
	for _, session := range s.Sessions() {
		session.Close()
	}
	s.wg.Wait()
}
