package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// CacheFactory builds the cache backing a session.
type CacheFactory func(sessionID string) Cache

// Manager hands out one Controller per wizard session and serialises access
// to it.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	parser   *report.Parser
	newCache CacheFactory
	ttl      time.Duration
}

type entry struct {
	mu   sync.Mutex
	ctrl *Controller

	// guarded by Manager.mu
	lastSeen time.Time
	inUse    int
}

// NewManager creates a manager. A nil factory keeps every session in memory.
func NewManager(parser *report.Parser, ttl time.Duration, factory CacheFactory) *Manager {
	if factory == nil {
		factory = func(string) Cache { return &MemoryCache{} }
	}
	return &Manager{
		sessions: make(map[string]*entry),
		parser:   parser,
		newCache: factory,
		ttl:      ttl,
	}
}

// Create allocates a new session id.
func (m *Manager) Create() string {
	id := uuid.NewString()
	m.get(id)
	return id
}

func (m *Manager) get(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		e = &entry{ctrl: NewController(m.parser, m.newCache(id))}
		m.sessions[id] = e
	}
	e.lastSeen = time.Now()
	return e
}

// With runs fn with the session's controller held exclusively. Unknown ids
// are created on demand so a shared cache can be picked up by any replica.
func (m *Manager) With(id string, fn func(*Controller) error) error {
	e := m.acquire(id)
	defer m.release(e)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.ctrl)
}

// acquire pins the entry so Sweep leaves it alone until release.
func (m *Manager) acquire(id string) *entry {
	e := m.get(id)
	m.mu.Lock()
	e.inUse++
	m.mu.Unlock()
	return e
}

func (m *Manager) release(e *entry) {
	m.mu.Lock()
	e.inUse--
	e.lastSeen = time.Now()
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep forgets sessions idle for longer than the ttl. Sessions inside With
// are never swept.
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.inUse == 0 && now.Sub(e.lastSeen) > m.ttl {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
