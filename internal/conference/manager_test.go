package conference

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubSession struct {
	room     string
	isHost   bool
	disposed atomic.Bool
	disp     *dispatcher
}

func newStubSession(room string, isHost bool) *stubSession {
	return &stubSession{room: room, isHost: isHost, disp: newDispatcher()}
}

func (s *stubSession) RoomName() string { return s.room }
func (s *stubSession) IsHost() bool     { return s.isHost }

func (s *stubSession) Overrides() (*ConfigOverrides, *InterfaceOverrides) {
	return DefaultConfigOverrides(s.isHost), DefaultInterfaceOverrides(s.isHost)
}

func (s *stubSession) Execute(ctx context.Context, cmd Command, args ...any) error { return nil }

func (s *stubSession) On(event Event, fn Handler) *Subscription {
	return s.disp.subscribe(event, fn)
}

func (s *stubSession) Dispose() {
	if s.disposed.CompareAndSwap(false, true) {
		s.disp.close()
	}
}

func (s *stubSession) Disposed() bool { return s.disposed.Load() }

type stubEngine struct {
	opened int
	closed bool
}

func (e *stubEngine) GetProvider() EngineProvider { return EngineJitsi }

func (e *stubEngine) Open(ctx context.Context, opts *OpenOptions) (Session, error) {
	e.opened++
	return newStubSession(opts.RoomName, opts.IsHost), nil
}

func (e *stubEngine) Close(ctx context.Context) error {
	e.closed = true
	return nil
}

func TestManager_OpenReusesLiveSession(t *testing.T) {
	engine := &stubEngine{}
	m := NewManager(engine)

	first, err := m.Open(context.Background(), &OpenOptions{RoomName: "room1"})
	assert.NoError(t, err)

	second, err := m.Open(context.Background(), &OpenOptions{RoomName: "room1"})
	assert.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, engine.opened)
}

func TestManager_OpenReplacesDisposedSession(t *testing.T) {
	engine := &stubEngine{}
	m := NewManager(engine)

	first, err := m.Open(context.Background(), &OpenOptions{RoomName: "room1"})
	assert.NoError(t, err)
	first.Dispose()

	second, err := m.Open(context.Background(), &OpenOptions{RoomName: "room1"})
	assert.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, engine.opened)
}

func TestManager_Get(t *testing.T) {
	engine := &stubEngine{}
	m := NewManager(engine)

	_, ok := m.Get("room1")
	assert.False(t, ok)

	sess, err := m.Open(context.Background(), &OpenOptions{RoomName: "room1"})
	assert.NoError(t, err)

	got, ok := m.Get("room1")
	assert.True(t, ok)
	assert.Same(t, sess, got)

	sess.Dispose()
	_, ok = m.Get("room1")
	assert.False(t, ok)
}

func TestManager_CloseRoom(t *testing.T) {
	engine := &stubEngine{}
	m := NewManager(engine)

	sess, err := m.Open(context.Background(), &OpenOptions{RoomName: "room1"})
	assert.NoError(t, err)

	m.CloseRoom("room1")
	assert.True(t, sess.Disposed())
	assert.Equal(t, 0, m.Count())

	// Closing an unknown room is a no-op.
	m.CloseRoom("missing")
}

func TestManager_Shutdown(t *testing.T) {
	engine := &stubEngine{}
	m := NewManager(engine)

	a, _ := m.Open(context.Background(), &OpenOptions{RoomName: "room1"})
	b, _ := m.Open(context.Background(), &OpenOptions{RoomName: "room2"})
	assert.Equal(t, 2, m.Count())

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, a.Disposed())
	assert.True(t, b.Disposed())
	assert.True(t, engine.closed)
	assert.Equal(t, 0, m.Count())
}
