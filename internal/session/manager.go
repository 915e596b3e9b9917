package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Conn is the subset of a websocket connection the manager needs. Satisfied by
// *gorilla/websocket.Conn.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Session is one authenticated persistent connection. It exists in the active
// set only between successful authentication and disconnect.
type Session struct {
	ID        string
	CreatedAt time.Time

	conn    Conn
	writeMu sync.Mutex

	// lastActivityAt is guarded by the manager's mutex.
	lastActivityAt time.Time
}

// Manager owns the active session set. Mutations go through Register and
// Unregister only; each server instance carries its own manager so lifecycle
// is tied to server start/stop rather than an ambient global.
type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	inactivityTimeout time.Duration
	onEvict           func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 2 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		inactivityTimeout: inactivityTimeout,
	}
}

// SetEvictHook installs a callback invoked after a session leaves the active
// set (janitor eviction or broken-connection cleanup included).
func (m *Manager) SetEvictHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = hook
}

// Register adds a session for an already-authenticated connection.
func (m *Manager) Register(conn Conn) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		conn:           conn,
		lastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// Unregister removes the session and closes its connection. Idempotent: the
// second and later calls for the same ID report false and do nothing. The
// session leaves the active set before the connection is torn down.
func (m *Manager) Unregister(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	hook := m.onEvict
	m.mu.Unlock()

	if !ok {
		return false
	}
	_ = s.conn.Close()
	if hook != nil {
		hook(s)
	}
	return true
}

// Deliver writes one structured message to the session. A broken connection
// unregisters the session itself rather than leaving cleanup to the caller;
// the error is still returned for logging.
func (m *Manager) Deliver(s *Session, v any) error {
	s.writeMu.Lock()
	err := s.conn.WriteJSON(v)
	s.writeMu.Unlock()

	if err != nil {
		m.Unregister(s.ID)
		return fmt.Errorf("deliver to session %s: %w", s.ID, err)
	}
	return nil
}

// Touch records activity on the session, deferring janitor eviction.
func (m *Manager) Touch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.lastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartJanitor evicts sessions idle past the inactivity timeout. Eviction uses
// the same Unregister path as every other teardown, so the read loop on the
// evicted connection fails out naturally once the conn closes.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.evictIdle()
			}
		}
	}()
}

func (m *Manager) evictIdle() {
	now := time.Now().UTC()

	m.mu.RLock()
	var idle []string
	for id, s := range m.sessions {
		if now.Sub(s.lastActivityAt) >= m.inactivityTimeout {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range idle {
		m.Unregister(id)
	}
}
