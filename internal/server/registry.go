package server

import (
	"sync"
	"time"

	"github.com/spigell/recruitai/internal/interview"
	"github.com/spigell/recruitai/internal/report"
)

type session struct {
	orch *interview.Orchestrator

	mu       sync.Mutex
	report   *report.Report
	lastSeen time.Time
}

func (s *session) setReport(r *report.Report) {
	s.mu.Lock()
	s.report = r
	s.mu.Unlock()
}

func (s *session) lastReport() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// registry keeps sessions in memory. Sessions idle for longer than ttl are
// dropped, and the least recently used one is evicted once limit is reached.
type registry struct {
	ttl   time.Duration
	limit int
	now   func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

func newRegistry(ttl time.Duration, limit int, now func() time.Time) *registry {
	return &registry{
		ttl:      ttl,
		limit:    limit,
		now:      now,
		sessions: make(map[string]*session),
	}
}

func (r *registry) add(o *interview.Orchestrator) *session {
	now := r.now()
	s := &session{orch: o, lastSeen: now}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	for len(r.sessions) >= r.limit {
		r.evictOldestLocked()
	}
	r.sessions[o.ID()] = s
	return s
}

func (r *registry) get(id string) (*session, error) {
	now := r.now()

	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, errSessionNotFound
	}
	if now.Sub(s.idleSince()) > r.ttl {
		r.remove(id)
		return nil, errSessionNotFound
	}

	s.touch(now)
	return s, nil
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *registry) pruneLocked(now time.Time) {
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.ttl {
			delete(r.sessions, id)
		}
	}
}

func (r *registry) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, s := range r.sessions {
		seen := s.idleSince()
		if oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	delete(r.sessions, oldestID)
}
