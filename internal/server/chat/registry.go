package chat

import (
	"net"
	"sync"

	"github.com/dmitrijs2005/gochat/internal/common"
	"github.com/dmitrijs2005/gochat/internal/server/metrics"
)

// Registry is the single source of truth for which users are currently
// reachable. It maps each logged-in username to its session and is safe for
// concurrent use by every reader and writer goroutine. The mutex is held
// only for map operations; session teardown happens outside the lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	metrics  *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		metrics:  m,
	}
}

// Add creates and registers a session for userName over conn. It fails with
// common.ErrAlreadyLoggedIn if a session for that username already exists,
// so a second concurrent login is rejected rather than kicking the first.
func (r *Registry) Add(userName string, conn net.Conn, queueSize int) (*Session, error) {
	r.mu.Lock()
	if _, ok := r.sessions[userName]; ok {
		r.mu.Unlock()
		return nil, common.ErrAlreadyLoggedIn
	}
	s := newSession(userName, conn, queueSize)
	r.sessions[userName] = s
	r.mu.Unlock()

	r.metrics.ActiveSessions.Inc()
	return s, nil
}

// Remove unregisters s, signals its writer to stop and closes its
// connection. The entry is deleted only while the name still maps to this
// exact session, so a teardown that lost a race with a re-login never
// evicts the successor session. Removing a session that is already gone is
// a no-op, so the paired reader and writer can both call it.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	cur, ok := r.sessions[s.UserName]
	if ok && cur == s {
		delete(r.sessions, s.UserName)
	} else {
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	s.close()
	r.metrics.ActiveSessions.Dec()
}

// Lookup resolves a destination username to its live session.
func (r *Registry) Lookup(userName string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userName]
	return s, ok
}

// Contains reports whether userName currently has a session.
func (r *Registry) Contains(userName string) bool {
	_, ok := r.Lookup(userName)
	return ok
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// CloseAll tears down every session. Used on server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
		r.metrics.ActiveSessions.Dec()
	}
}
