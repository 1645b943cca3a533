package workspace

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
)

// Manager owns the open sessions.
//
// Thread Safety: all methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	hooks    Hooks
	logger   Logger
}

// NewManager creates a manager whose sessions share hooks.
func NewManager(hooks Hooks) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		hooks:    hooks,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger used by the manager and sessions opened later.
func (m *Manager) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

// Open creates a session over data. sink may be nil.
func (m *Manager) Open(data *colo.Data, cfg Config, sink Sink) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newSession(data, cfg, m.hooks, sink, m.logger)
	m.sessions[s.id] = s
	m.logger.Info("session opened",
		"session_id", s.ID(),
		"colo_id", data.ColoID(),
		"pointer_events", cfg.Capabilities.PointerEvents,
	)
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close closes and forgets a session.
func (m *Manager) Close(id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return ErrSessionNotFound
	}
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	m.logger.Info("session closed", "session_id", id)
	return nil
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ForColo returns the open sessions showing coloID ordered by ID.
func (m *Manager) ForColo(coloID string) []*Session {
	m.mu.RLock()
	var out []*Session
	for _, s := range m.sessions {
		if s.ColoID() == coloID {
			out = append(out, s)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Assign forwards an assignment event to every session of coloID and
// returns how many sessions received it.
func (m *Manager) Assign(coloID string, a reservation.Assignment) int {
	sessions := m.ForColo(coloID)
	for _, s := range sessions {
		s.Assign(a)
	}
	return len(sessions)
}

// Unassign forwards an assignment removal to every session of coloID.
func (m *Manager) Unassign(coloID string, tileID int64) int {
	sessions := m.ForColo(coloID)
	for _, s := range sessions {
		s.Unassign(tileID)
	}
	return len(sessions)
}
