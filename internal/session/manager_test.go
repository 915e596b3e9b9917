package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu       sync.Mutex
	written  []any
	writeErr error
	closed   int
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeConn) closedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestRegisterAndUnregister(t *testing.T) {
	m := NewManager(time.Minute)
	conn := &fakeConn{}

	s := m.Register(conn)
	if s.ID == "" {
		t.Fatalf("session ID should not be empty")
	}
	if m.ActiveCount() != 1 {
		t.Fatalf("ActiveCount = %d, want 1", m.ActiveCount())
	}

	if !m.Unregister(s.ID) {
		t.Fatalf("first Unregister should report true")
	}
	if m.ActiveCount() != 0 {
		t.Fatalf("ActiveCount = %d, want 0", m.ActiveCount())
	}
	if conn.closedCount() != 1 {
		t.Fatalf("conn closed %d times, want 1", conn.closedCount())
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Register(&fakeConn{})

	if !m.Unregister(s.ID) {
		t.Fatalf("first Unregister should report true")
	}
	for i := 0; i < 3; i++ {
		if m.Unregister(s.ID) {
			t.Fatalf("repeat Unregister should report false")
		}
	}
	if m.Unregister("never-existed") {
		t.Fatalf("Unregister of unknown session should report false")
	}
}

func TestDeliverWritesToConnection(t *testing.T) {
	m := NewManager(time.Minute)
	conn := &fakeConn{}
	s := m.Register(conn)

	if err := m.Deliver(s, map[string]string{"type": "pong"}); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(conn.written) != 1 {
		t.Fatalf("written = %d messages, want 1", len(conn.written))
	}
}

func TestDeliverToBrokenConnSelfUnregisters(t *testing.T) {
	m := NewManager(time.Minute)
	conn := &fakeConn{writeErr: errors.New("broken pipe")}
	s := m.Register(conn)

	evictions := 0
	m.SetEvictHook(func(*Session) { evictions++ })

	if err := m.Deliver(s, "hello"); err == nil {
		t.Fatalf("Deliver to broken conn should return the write error")
	}
	if m.ActiveCount() != 0 {
		t.Fatalf("broken session should be removed, ActiveCount = %d", m.ActiveCount())
	}
	if evictions != 1 {
		t.Fatalf("evict hook ran %d times, want 1", evictions)
	}

	// A second delivery attempt must not unregister twice.
	_ = m.Deliver(s, "again")
	if evictions != 1 {
		t.Fatalf("evict hook ran %d times after retry, want 1", evictions)
	}
}

func TestJanitorEvictsIdleSessions(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	conn := &fakeConn{}
	s := m.Register(conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	deadline := time.After(500 * time.Millisecond)
	for m.ActiveCount() > 0 {
		select {
		case <-deadline:
			t.Fatalf("janitor did not evict idle session")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if conn.closedCount() != 1 {
		t.Fatalf("conn closed %d times, want 1", conn.closedCount())
	}
	if err := m.Touch(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Touch after eviction = %v, want ErrNotFound", err)
	}
}

func TestTouchDefersEviction(t *testing.T) {
	m := NewManager(80 * time.Millisecond)
	s := m.Register(&fakeConn{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	// Keep touching for a few timeout windows; the session must survive.
	for i := 0; i < 10; i++ {
		time.Sleep(20 * time.Millisecond)
		if err := m.Touch(s.ID); err != nil {
			t.Fatalf("Touch() error = %v on iteration %d", err, i)
		}
	}
	if m.ActiveCount() != 1 {
		t.Fatalf("active session was evicted despite activity")
	}
}
