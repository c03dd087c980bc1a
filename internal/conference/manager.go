package conference

import (
	"context"
	"sync"
)

// Manager owns at most one live session per room. Opening an already-open
// room returns the existing handle; disposed handles are evicted lazily.
type Manager struct {
	engine EngineInterface

	mu       sync.Mutex
	sessions map[string]Session
}

func NewManager(engine EngineInterface) *Manager {
	return &Manager{
		engine:   engine,
		sessions: make(map[string]Session),
	}
}

// Open joins a room through the engine, reusing the room's live session when
// one exists.
func (m *Manager) Open(ctx context.Context, opts *OpenOptions) (Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[opts.RoomName]; ok && !sess.Disposed() {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	sess, err := m.engine.Open(ctx, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[opts.RoomName] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get returns the live session for a room, if any.
func (m *Manager) Get(room string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[room]
	if !ok || sess.Disposed() {
		delete(m.sessions, room)
		return nil, false
	}
	return sess, true
}

// CloseRoom disposes the room's session, if any.
func (m *Manager) CloseRoom(room string) {
	m.mu.Lock()
	sess, ok := m.sessions[room]
	delete(m.sessions, room)
	m.mu.Unlock()

	if ok {
		sess.Dispose()
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, sess := range m.sessions {
		if !sess.Disposed() {
			n++
		}
	}
	return n
}

// Shutdown disposes every session and closes the engine.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[string]Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Dispose()
	}
	return m.engine.Close(ctx)
}
