// Package session keeps the unlocked vault sessions of the running process.
// Each session owns the encryption key derived at login; the key lives only
// in memory and is wiped when the session is locked, expires or the process
// shuts down.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sitevault/internal/common"
	"github.com/dmitrijs2005/sitevault/internal/cryptox"
	"github.com/dmitrijs2005/sitevault/internal/logging"
	"github.com/google/uuid"
)

// Session is one caller's unlocked state.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	mu       sync.RWMutex
	key      cryptox.Key
	lastSeen time.Time
}

// WithKey runs fn with the session key held. The key must not be retained
// after fn returns. A wiped session yields common.ErrUnauthenticated.
func (s *Session) WithKey(fn func(cryptox.Key) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil {
		return common.ErrUnauthenticated
	}
	return fn(s.key)
}

func (s *Session) wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		s.key.Wipe()
		s.key = nil
	}
}

func (s *Session) expired(now time.Time, idle time.Duration) bool {
	if !now.Before(s.ExpiresAt) {
		return true
	}
	return idle > 0 && now.Sub(s.lastSeen) >= idle
}

// Table maps session ids to sessions.
type Table struct {
	mu       sync.Mutex
	sessions map[string]*Session

	idleTimeout time.Duration
	lifetime    time.Duration
	now         func() time.Time
	log         logging.Logger
}

// NewTable returns an empty table. idleTimeout of zero disables the idle
// check; lifetime bounds every session regardless of activity.
func NewTable(idleTimeout, lifetime time.Duration, log logging.Logger) *Table {
	return &Table{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		lifetime:    lifetime,
		now:         time.Now,
		log:         log.With("module", "session"),
	}
}

// Open registers a new session that takes ownership of key.
func (t *Table) Open(key cryptox.Key) *Session {
	now := t.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(t.lifetime),
		key:       key,
		lastSeen:  now,
	}

	t.mu.Lock()
	t.sessions[s.ID] = s
	t.mu.Unlock()

	t.log.Debug(context.Background(), "session opened", "session_id", s.ID)
	return s
}

// Get returns the live session for id and refreshes its idle timer.
// Unknown and expired ids yield common.ErrUnauthenticated; expired sessions
// are wiped on the way.
func (t *Table) Get(id string) (*Session, error) {
	if id == "" {
		return nil, common.ErrUnauthenticated
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return nil, common.ErrUnauthenticated
	}

	now := t.now()
	if s.expired(now, t.idleTimeout) {
		t.removeLocked(s)
		t.log.Debug(context.Background(), "session expired", "session_id", id)
		return nil, common.ErrUnauthenticated
	}

	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()

	return s, nil
}

// Active reports whether id names a live session without touching it.
func (t *Table) Active(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expired(t.now(), t.idleTimeout)
}

// Lock wipes and forgets the session. Unknown ids are ignored.
func (t *Table) Lock(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[id]; ok {
		t.removeLocked(s)
		t.log.Debug(context.Background(), "session locked", "session_id", id)
	}
}

func (t *Table) removeLocked(s *Session) {
	delete(t.sessions, s.ID)
	s.wipe()
}

// Sweep removes expired sessions and returns how many were wiped.
func (t *Table) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	n := 0
	for _, s := range t.sessions {
		s.mu.RLock()
		exp := s.expired(now, t.idleTimeout)
		s.mu.RUnlock()
		if exp {
			t.removeLocked(s)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done, then wipes all sessions.
func (t *Table) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.CloseAll()
			return
		case <-ticker.C:
			if n := t.Sweep(); n > 0 {
				t.log.Info(ctx, "expired sessions wiped", "count", n)
			}
		}
	}
}

// CloseAll wipes every session.
func (t *Table) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.sessions {
		t.removeLocked(s)
	}
}
