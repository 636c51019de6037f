// Package session keeps one conversion controller per client.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amirasaad/fxconv/pkg/config"
	"github.com/amirasaad/fxconv/pkg/converter"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

// Factory builds the controller for a new session.
type Factory func(id string) *converter.Controller

// Session is one client's conversion form.
type Session struct {
	ID         string
	Controller *converter.Controller
	CreatedAt  time.Time
	lastSeen   atomic.Int64
}

// LastSeen returns the time the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// Store is an in-memory session registry with idle expiry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  Factory
	ttl      time.Duration
	interval time.Duration
	max      int
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Store. A zero TTL disables expiry and a zero Max disables the cap.
func New(factory Factory, cfg *config.Session, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &config.Session{}
	}
	return &Store{
		sessions: make(map[string]*Session),
		factory:  factory,
		ttl:      cfg.TTL,
		interval: cfg.SweepInterval,
		max:      cfg.Max,
		logger:   logger.With("component", "session"),
		now:      time.Now,
	}
}

// Create registers a new session and performs its initial rate fetch.
// A failed fetch does not fail creation; it shows up in the session's view.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	sess := &Session{ID: id, CreatedAt: s.now()}
	sess.touch(sess.CreatedAt)

	s.mu.Lock()
	if s.max > 0 && len(s.sessions) >= s.max {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	sess.Controller = s.factory(id)
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("Session created", "session_id", id)
	if err := sess.Controller.Mount(ctx); err != nil {
		s.logger.Debug("Initial rate fetch failed", "session_id", id, "error", err)
	}
	return sess, nil
}

// Get returns a live session and marks it as used.
func (s *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.Info("Session deleted", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Expired idle sessions", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}

// Run sweeps on the configured interval until ctx is done.
func (s *Store) Run(ctx context.Context) {
	if s.ttl <= 0 || s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
