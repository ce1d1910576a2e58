package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry tracks live sessions. Each player owns at most one: starting
// a new session implicitly abandons the previous one, and a reaper
// abandons sessions that have gone idle (player navigated away without
// an explicit abandon).
type Registry struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*Session
	byPlayer    map[string]uuid.UUID
	idleTimeout time.Duration
	logger      zerolog.Logger
}

func NewRegistry(idleTimeout time.Duration, logger zerolog.Logger) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	return &Registry{
		sessions:    make(map[uuid.UUID]*Session),
		byPlayer:    make(map[string]uuid.UUID),
		idleTimeout: idleTimeout,
		logger:      logger.With().Str("component", "session_registry").Logger(),
	}
}

// Put registers a new session, abandoning any prior session the same
// player still had running.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prevID, ok := r.byPlayer[s.PlayerID()]; ok {
		if prev, ok := r.sessions[prevID]; ok {
			if prev.Abandon() {
				metricSessionsAbandoned.Inc()
			}
			delete(r.sessions, prevID)
		}
	}

	r.sessions[s.ID()] = s
	r.byPlayer[s.PlayerID()] = s.ID()
	metricSessionsStarted.Inc()
}

// Get returns the session if it exists and belongs to the player.
// Foreign IDs report not-found rather than forbidden so session IDs
// cannot be probed.
func (r *Registry) Get(id uuid.UUID, playerID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.PlayerID() != playerID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a finished session from the registry.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return
	}
	delete(r.sessions, id)
	if r.byPlayer[s.PlayerID()] == id {
		delete(r.byPlayer, s.PlayerID())
	}
}

// Abandon terminates a session on behalf of its player.
func (r *Registry) Abandon(id uuid.UUID, playerID string) error {
	s, err := r.Get(id, playerID)
	if err != nil {
		return err
	}
	if s.Abandon() {
		metricSessionsAbandoned.Inc()
	}
	r.Remove(id)
	return nil
}

// Reap blocks until context cancellation, periodically abandoning
// sessions idle past the timeout.
func (r *Registry) Reap(ctx context.Context) error {
	ticker := time.NewTicker(r.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.reapOnce(time.Now())
		}
	}
}

func (r *Registry) reapOnce(now time.Time) {
	r.mu.Lock()
	var stale []*Session
	for _, s := range r.sessions {
		if now.Sub(s.IdleSince()) > r.idleTimeout {
			stale = append(stale, s)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		if s.Abandon() {
			metricSessionsAbandoned.Inc()
			r.logger.Info().Str("session_id", s.ID().String()).Msg("reaped idle session")
		}
		r.Remove(s.ID())
	}
}
