package studio

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/arcade-studio/internal/executor"
	"github.com/vovakirdan/arcade-studio/internal/orchestrator"
)

// ManagerConfig holds configuration for the session manager.
type ManagerConfig struct {
	IdleTimeout   time.Duration // sessions idle this long are closed; 0 keeps them
	CleanupPeriod time.Duration // how often to look for idle sessions
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		IdleTimeout:   30 * time.Minute,
		CleanupPeriod: time.Minute,
	}
}

// Manager tracks the sessions served by the SSH and HTTP front ends.
// Every session gets its own orchestrator, so art styles stay per session,
// and its own preview container named after the session id.
type Manager struct {
	config          ManagerConfig
	base            Options
	newOrchestrator func() *orchestrator.Orchestrator
	executor        *executor.Executor

	mu       sync.RWMutex
	sessions map[string]*Session

	done     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager. base is the template for new sessions; its
// ID, Creator, Orchestrator and Container are filled per session.
func NewManager(cfg ManagerConfig, base Options, newOrchestrator func() *orchestrator.Orchestrator, ex *executor.Executor) *Manager {
	return &Manager{
		config:          cfg,
		base:            base,
		newOrchestrator: newOrchestrator,
		executor:        ex,
		sessions:        make(map[string]*Session),
		done:            make(chan struct{}),
	}
}

// Start begins closing idle sessions in the background.
func (m *Manager) Start() {
	if m.config.IdleTimeout <= 0 || m.config.CleanupPeriod <= 0 {
		return
	}
	go m.cleanupLoop()
}

// Stop closes every session.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})

	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for id, s := range all {
		m.release(id, s)
	}
}

// Create opens a new session. With a non-empty id a stored transcript is
// resumed.
func (m *Manager) Create(id, creator string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("studio: session %s already open", id)
	}

	opts := m.base
	opts.ID = id
	opts.Creator = creator
	if m.newOrchestrator != nil {
		opts.Orchestrator = m.newOrchestrator()
	}
	if m.executor != nil {
		opts.Container = m.executor.Container(id)
	}

	s, err := New(opts)
	if err != nil {
		if m.executor != nil {
			m.executor.Remove(id)
		}
		return nil, err
	}
	m.sessions[id] = s
	return s, nil
}

// Get retrieves a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove closes a session and tears its preview down.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.release(id, s)
	}
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) release(id string, s *Session) {
	s.Close()
	if m.executor != nil {
		m.executor.Remove(id)
	}
}

func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(m.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.closeIdle(now)
		case <-m.done:
			return
		}
	}
}

// closeIdle closes sessions inactive since before now - IdleTimeout.
func (m *Manager) closeIdle(now time.Time) int {
	if m.config.IdleTimeout <= 0 {
		return 0
	}

	m.mu.Lock()
	idle := make(map[string]*Session)
	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > m.config.IdleTimeout {
			idle[id] = s
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for id, s := range idle {
		m.release(id, s)
	}
	return len(idle)
}
