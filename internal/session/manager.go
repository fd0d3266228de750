package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/MedCausal/DiagPipe/internal/workflow"
	"github.com/google/uuid"
)

// Manager owns the live sessions of the process. Sessions are fully
// independent; the manager only guards the lookup map. Nothing is persisted
// beyond the process lifetime.
type Manager struct {
	mu       sync.RWMutex
	executor *workflow.Executor
	sessions map[string]*Session
}

// NewManager creates a session manager that builds sessions around the given
// stage executor.
func NewManager(executor *workflow.Executor) *Manager {
	return &Manager{
		executor: executor,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session with a generated identifier.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := New(id, m.executor)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	slog.Info("Manager.Create: session created", "sessionID", id)
	return s
}

// Get returns the session with the given identifier.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return s, nil
}

// Delete drops a session. The session's state is unreachable afterwards.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	slog.Info("Manager.Delete: session dropped", "sessionID", id)
}

// IDs returns the identifiers of all live sessions.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
