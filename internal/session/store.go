// Package session holds one Dataset per browser session. Sessions never
// interact, so the only coordination is the store's own map lock.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"festivalpulse/pkg/contracts/domain"
)

// CookieName is the session cookie carrying the store key.
const CookieName = "fp_session"

// DefaultTTL evicts datasets whose session has been idle this long.
const DefaultTTL = 2 * time.Hour

type entry struct {
	dataset  *domain.Dataset
	lastSeen time.Time
}

// Store is an in-memory, TTL-evicted map of session ID → Dataset. A new
// upload replaces the session's dataset atomically; a failed upload leaves
// the previous dataset in place.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	logger   *slog.Logger
}

// NewStore creates a session store with the given idle TTL.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		logger:   logger.With(slog.String("component", "session_store")),
	}
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string { return uuid.New().String() }

// Put stores or replaces the session's dataset.
func (s *Store) Put(sessionID string, ds *domain.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &entry{dataset: ds, lastSeen: time.Now()}
}

// Get returns the session's dataset, refreshing its idle timer.
func (s *Store) Get(sessionID string) (*domain.Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.dataset, true
}

// Delete discards the session's dataset.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor runs TTL eviction until ctx is cancelled. Sweep interval is a
// quarter of the TTL.
func (s *Store) StartJanitor(ctx context.Context) {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("evicted idle sessions",
			slog.Int("evicted", evicted),
			slog.Int("remaining", len(s.sessions)))
	}
}
