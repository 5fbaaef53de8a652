package logging

import (
	"strings"
	"sync"
)

const (
	// DefaultGlobalCapacity is the default size of the global ring.
	DefaultGlobalCapacity = 4096
	// DefaultSessionCapacity is the default size of each per-session ring.
	DefaultSessionCapacity = 512
)

// MemorySink retains records in bounded in-memory ring buffers: one global
// ring plus one lazily created ring per session. It implements RecencyStore
// and is safe for concurrent use.
type MemorySink struct {
	global     *Ring
	sessionCap int

	mu       sync.RWMutex
	sessions map[string]*Ring
}

// NewMemorySink creates a MemorySink with the default capacities.
func NewMemorySink() *MemorySink {
	return NewMemorySinkWithCapacity(DefaultGlobalCapacity, DefaultSessionCapacity)
}

// NewMemorySinkWithCapacity creates a MemorySink with explicit ring
// capacities. A capacity of zero disables retention for that scope.
func NewMemorySinkWithCapacity(globalCapacity, perSessionCapacity int) *MemorySink {
	return &MemorySink{
		global:     NewRing(globalCapacity),
		sessionCap: perSessionCapacity,
		sessions:   make(map[string]*Ring),
	}
}

// Consume pushes the record into the global ring and, when it carries a
// session ID, into that session's ring, creating the ring on first use.
func (m *MemorySink) Consume(rec Record) error {
	m.global.Push(rec)

	if rec.SessionID == "" {
		return nil
	}

	m.mu.RLock()
	ring, ok := m.sessions[rec.SessionID]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		ring, ok = m.sessions[rec.SessionID]
		if !ok {
			ring = NewRing(m.sessionCap)
			m.sessions[rec.SessionID] = ring
		}
		m.mu.Unlock()
	}

	ring.Push(rec)
	return nil
}

// Flush is a no-op; records are already in memory.
func (m *MemorySink) Flush() error {
	return nil
}

// RecentGlobal returns the last min(n, retained) records, oldest first.
func (m *MemorySink) RecentGlobal(n int) []Record {
	return m.global.LastN(n)
}

// RecentForSession returns the last min(n, retained) records for the
// session, oldest first.
func (m *MemorySink) RecentForSession(sessionID string, n int) []Record {
	m.mu.RLock()
	ring, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return ring.LastN(n)
}

// ExportSession renders every retained record for the session as plain
// formatted text lines, one per record.
func (m *MemorySink) ExportSession(sessionID string) string {
	m.mu.RLock()
	ring, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return ""
	}

	recs := ring.LastN(ring.Len())
	var b strings.Builder
	for _, rec := range recs {
		b.WriteString(formatPlain(rec))
		b.WriteByte('\n')
	}
	return b.String()
}

// ClearSession drops the session's ring entirely.
func (m *MemorySink) ClearSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ClearAll clears the global ring and drops all session rings.
func (m *MemorySink) ClearAll() {
	m.global.Clear()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Ring)
}

// Compile-time interface satisfaction checks.
var (
	_ Sink         = (*MemorySink)(nil)
	_ RecencyStore = (*MemorySink)(nil)
)
