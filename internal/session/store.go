// Package session holds the per-upload analysis state: an immutable snapshot
// of the reconciled event set plus the option sets the filter UI is built
// from. Derived views (filtered, aggregated) are always recomputed from the
// snapshot, never cached.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gabzkie30/sendgrid-email-automation/internal/events"
	"github.com/gabzkie30/sendgrid-email-automation/internal/pkg/logger"
)

// Snapshot is the reconciled dataset for one upload. The Events slice and
// the option slices are never mutated after creation; concurrent readers
// share them freely.
type Snapshot struct {
	Events     []events.Event
	Skipped    int
	MinDay     events.Day
	MaxDay     events.Day
	Subjects   []string
	Recipients []string
	LoadedAt   time.Time
}

// NewSnapshot builds a snapshot from a reconciled event set, deriving the
// observed date range and the distinct subject/recipient option sets.
func NewSnapshot(evts []events.Event, skipped int) *Snapshot {
	snap := &Snapshot{
		Events:   evts,
		Skipped:  skipped,
		LoadedAt: time.Now(),
	}

	subjects := make(map[string]bool)
	recipients := make(map[string]bool)
	for _, ev := range evts {
		if snap.MinDay == "" || ev.Day < snap.MinDay {
			snap.MinDay = ev.Day
		}
		if ev.Day > snap.MaxDay {
			snap.MaxDay = ev.Day
		}
		if ev.Subject != "" {
			subjects[ev.Subject] = true
		}
		if ev.Recipient != "" {
			recipients[ev.Recipient] = true
		}
	}

	snap.Subjects = sortedKeys(subjects)
	snap.Recipients = sortedKeys(recipients)
	return snap
}

// HasData reports whether any eligible message survived reconciliation.
func (s *Snapshot) HasData() bool { return len(s.Events) > 0 }

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type entry struct {
	snapshot  *Snapshot
	expiresAt time.Time
}

// Store keeps active analysis sessions keyed by id. Each session owns one
// snapshot; a new upload under the same id replaces it atomically. Expired
// sessions are reaped by the background sweeper.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
}

// NewStore creates a session store with the given lifetime per session.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
	}
}

// Create registers a snapshot under a fresh session id.
func (s *Store) Create(snap *Snapshot) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &entry{snapshot: snap, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return id
}

// Get returns the snapshot for a session and extends its lifetime. The
// second return is false for unknown or expired ids.
func (s *Store) Get(id string) (*Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	e.expiresAt = time.Now().Add(s.ttl)
	return e.snapshot, true
}

// Replace swaps the snapshot of an existing session. Returns false for
// unknown ids.
func (s *Store) Replace(id string, snap *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.sessions, id)
		return false
	}
	e.snapshot = snap
	e.expiresAt = time.Now().Add(s.ttl)
	return true
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// sweep removes expired sessions and returns how many were reaped.
func (s *Store) sweep() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	reaped := 0
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			reaped++
		}
	}
	return reaped
}

// StartSweeper reaps expired sessions on the given interval until ctx is
// cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					logger.Debug("reaped expired sessions", "count", n)
				}
			}
		}
	}()
}
