// Package eventstore holds raw per-tap gameplay events for active
// sessions in volatile memory only. Nothing in this package is ever
// persisted; entries are erased on completion and swept by TTL so raw
// behavioral data cannot outlive its processing window.
package eventstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
)

// TapEvent is a single raw gameplay event. Timestamps are client
// milliseconds since session start.
type TapEvent struct {
	Timestamp  int64 `json:"timestamp"`
	AppearedAt int64 `json:"appeared_at"`
	Hit        bool  `json:"hit"`
}

// Snapshot is the immutable read handed to downstream processing when
// a session completes. It is the only way events leave the store.
type Snapshot struct {
	SessionID uuid.UUID
	LearnerID uuid.UUID
	OwnerID   *uuid.UUID
	GameType  string
	StartedAt time.Time
	Events    []TapEvent
}

type entry struct {
	learnerID uuid.UUID
	ownerID   *uuid.UUID
	gameType  string
	events    []TapEvent
	completed bool
	createdAt time.Time
}

// Store is the process-wide ephemeral session buffer. Per-key
// operations are serialized; an append can never succeed against a
// completed or purged session.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
	ttl      time.Duration
	log      *logger.Logger
}

func NewStore(ttl time.Duration, baseLog *logger.Logger) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*entry),
		ttl:      ttl,
		log:      baseLog.With("service", "EventStore"),
	}
}

// Create registers a new active session. Creating an id that already
// exists is a conflict.
func (s *Store) Create(sessionID, learnerID uuid.UUID, ownerID *uuid.UUID, gameType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; ok {
		return apperrors.ErrConflict
	}
	s.sessions[sessionID] = &entry{
		learnerID: learnerID,
		ownerID:   ownerID,
		gameType:  gameType,
		createdAt: time.Now(),
	}
	return nil
}

// Append adds events to an active session. Missing or expired sessions
// report not-found; completed sessions are immutable and report a
// conflict.
func (s *Store) Append(sessionID uuid.UUID, events []TapEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if e.completed {
		return apperrors.ErrConflict
	}
	e.events = append(e.events, events...)
	return nil
}

// Complete marks the session complete exactly once and returns a
// snapshot of its events. A second completion reports a conflict. The
// caller must Purge the session after processing the snapshot.
func (s *Store) Complete(sessionID uuid.UUID) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if e.completed {
		return nil, apperrors.ErrConflict
	}
	e.completed = true

	events := make([]TapEvent, len(e.events))
	copy(events, e.events)
	return &Snapshot{
		SessionID: sessionID,
		LearnerID: e.learnerID,
		OwnerID:   e.ownerID,
		GameType:  e.gameType,
		StartedAt: e.createdAt,
		Events:    events,
	}, nil
}

// Purge deletes the session unconditionally. Purging an absent id is a
// no-op.
func (s *Store) Purge(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Count reports the number of buffered events for an active session.
func (s *Store) Count(sessionID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	return len(e.events), nil
}

// Sweep purges sessions older than the TTL, even if completion never
// happened. The lock is held only per inspected entry, never for the
// whole scan, so request traffic is not stalled behind a sweep.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	purged := 0
	for _, id := range ids {
		s.mu.Lock()
		if e, ok := s.sessions[id]; ok && now.Sub(e.createdAt) > s.ttl {
			delete(s.sessions, id)
			purged++
		}
		s.mu.Unlock()
	}
	if purged > 0 {
		s.log.Info("Swept expired sessions", "purged", purged)
	}
	return purged
}

// RunSweeper runs Sweep on a fixed interval until the context is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
