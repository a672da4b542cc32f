package live

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/erebus-go/erebus/pkg/dom"
	"github.com/erebus-go/erebus/pkg/router"
)

// Session is one connected browser tab.
type Session struct {
	id     string
	conn   *websocket.Conn
	loc    *router.MemoryLocation
	logger *slog.Logger

	writeTimeout time.Duration
	writeMu      sync.Mutex

	mu      sync.RWMutex
	targets map[string]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, hello Message, writeTimeout time.Duration, logger *slog.Logger) *Session {
	s := &Session{
		id:           generateSessionID(),
		conn:         conn,
		loc:          router.NewMemoryLocation(hello.Hash),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
	s.logger = logger.With("session", s.id)
	s.setTargets(hello.Targets)
	return s
}

// generateSessionID returns a random hex identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Logger returns the session scoped logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Hash implements router.Location.
func (s *Session) Hash() string { return s.loc.Hash() }

// Subscribe implements router.Location.
func (s *Session) Subscribe(fn func(hash string)) func() { return s.loc.Subscribe(fn) }

// Done is closed when the browser disconnects.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) setTargets(targets []string) {
	if len(targets) == 0 {
		return
	}
	m := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		m[strings.TrimSpace(t)] = struct{}{}
	}
	s.mu.Lock()
	s.targets = m
	s.mu.Unlock()
}

// Target implements dom.Document. Id selectors are checked against the ids
// the browser reported in its hello; other selectors are resolved by the
// browser.
func (s *Session) Target(selector string) (dom.Target, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, dom.UnknownSelector(selector)
	}
	if strings.HasPrefix(selector, "#") {
		s.mu.RLock()
		_, ok := s.targets[selector]
		known := s.targets != nil
		s.mu.RUnlock()
		if known && !ok {
			return nil, dom.UnknownSelector(selector)
		}
	}
	return dom.TargetFunc(func(ctx context.Context, html string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return s.Send(Message{Type: TypeContent, Target: selector, HTML: html})
	}), nil
}

// Navigate asks the browser to change its hash. The resulting hashchange
// comes back as a regular navigation.
func (s *Session) Navigate(hash string) error {
	return s.Send(Message{Type: TypeNavigate, Hash: hash})
}

// Refresh dispatches the current hash again.
func (s *Session) Refresh() {
	s.loc.Navigate(s.loc.Hash())
}

// Send writes a frame to the browser.
func (s *Session) Send(msg Message) error {
	select {
	case <-s.done:
		return dom.ErrDetached
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("write failed", "type", msg.Type, "error", err)
		return err
	}
	return nil
}

// readLoop feeds hash reports into the location until the connection
// fails.
func (s *Session) readLoop() {
	for {
		var msg Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("read failed", "error", err)
			}
			return
		}
		switch msg.Type {
		case TypeHash:
			s.loc.Navigate(msg.Hash)
		case TypeHello:
			s.setTargets(msg.Targets)
			s.loc.Navigate(msg.Hash)
		default:
			s.logger.Debug("ignoring frame", "type", msg.Type)
		}
	}
}

// Close disconnects the browser.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
