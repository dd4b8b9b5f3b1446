// Package session provides conversation session storage.
//
// A session is one independent conversation thread with the model.
// Several may coexist; exactly one is active at a time and receives the
// queries typed at the prompt. Sessions are never deleted — they live
// until process exit, and optionally survive it through the Archive.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn is a single (role, message) exchange recorded in a session.
type Turn struct {
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds the state of a single conversation.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
}

// ShortID returns the first ID segment, used in listings.
func (s *Session) ShortID() string {
	if len(s.ID) > 8 {
		return s.ID[:8]
	}
	return s.ID
}

// Recorder mirrors session activity to durable storage. Implementations
// must tolerate being called once per event; a nil Recorder disables
// mirroring.
type Recorder interface {
	RecordSession(s *Session) error
	RecordTurn(sessionID string, t Turn) error
}

// Manager owns every session created during the process lifetime and
// tracks which one is active.
type Manager struct {
	recorder Recorder

	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string
	active   string
}

// NewManager creates a session manager. recorder may be nil.
func NewManager(recorder Recorder) *Manager {
	return &Manager{
		recorder: recorder,
		sessions: make(map[string]*Session),
	}
}

// New creates a fresh session, makes it active, and returns a copy.
// The session is archived before it is registered: a recorder failure
// leaves the manager untouched, so the previously active session keeps
// receiving queries and the failed id never shows up in List.
func (m *Manager) New() (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}

	if m.recorder != nil {
		if err := m.recorder.RecordSession(s); err != nil {
			return nil, fmt.Errorf("archive session %s: %w", s.ID, err)
		}
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.order = append(m.order, s.ID)
	m.active = s.ID
	m.mu.Unlock()

	return s.copy(), nil
}

// ActiveID returns the id of the active session, or "" if none exists.
func (m *Manager) ActiveID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Get retrieves a session copy by id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	return s.copy()
}

// List returns copies of all sessions in creation order.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sessions[id].copy())
	}
	return out
}

// Append adds a turn to the given session. The turn is committed to
// memory first and then mirrored: a recorder failure returns an error
// but the turn stays in the session, so the conversation the model saw
// is never silently rewritten — only the archive is behind.
func (m *Manager) Append(sessionID, role, content string) error {
	turn := Turn{Role: role, Content: content, Timestamp: time.Now()}

	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	s.Turns = append(s.Turns, turn)
	m.mu.Unlock()

	if m.recorder != nil {
		if err := m.recorder.RecordTurn(sessionID, turn); err != nil {
			return fmt.Errorf("archive turn: %w", err)
		}
	}

	return nil
}

// Turns returns a copy of a session's turns, oldest first.
func (m *Manager) Turns(sessionID string) []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

func (s *Session) copy() *Session {
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return &Session{
		ID:        s.ID,
		Turns:     turns,
		CreatedAt: s.CreatedAt,
	}
}
