package conference

import (
	"context"
	"fmt"
	"sync/atomic"

	"econnect/internal/conference/jitsi"
	"econnect/internal/status"
)

// JitsiAdapter implements EngineInterface on top of the PubNub room bridge.
type JitsiAdapter struct {
	client *jitsi.Client
}

// NewJitsiAdapter creates a new Jitsi engine adapter.
func NewJitsiAdapter(ctx context.Context, cfg *jitsi.Config) (*JitsiAdapter, error) {
	client, err := jitsi.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create jitsi client: %w", err)
	}
	return &JitsiAdapter{client: client}, nil
}

func (a *JitsiAdapter) GetProvider() EngineProvider {
	return EngineJitsi
}

// Open verifies the credential, joins the room's bridge channel and returns
// a live session handle. Callers must not retry automatically on failure.
func (a *JitsiAdapter) Open(ctx context.Context, opts *OpenOptions) (Session, error) {
	if opts == nil || opts.RoomName == "" {
		return nil, fmt.Errorf("%w: empty room name", status.ErrInitialization)
	}

	claims, err := a.client.VerifyToken(opts.Credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrInitialization, err)
	}
	if claims.Room != opts.RoomName {
		return nil, fmt.Errorf("%w: credential issued for room %q", status.ErrInitialization, claims.Room)
	}

	messages, err := a.client.JoinRoom(opts.RoomName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrInitialization, err)
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfigOverrides(opts.IsHost)
	}
	iface := opts.Interface
	if iface == nil {
		iface = DefaultInterfaceOverrides(opts.IsHost)
	}

	sess := &jitsiSession{
		adapter: a,
		room:    opts.RoomName,
		isHost:  opts.IsHost,
		user:    claims.Context.User,
		cfg:     cfg,
		iface:   iface,
		disp:    newDispatcher(),
	}

	sess.joinedPayload = EventPayload{
		Event:       EventConferenceJoined,
		RoomName:    opts.RoomName,
		UserID:      sess.user.ID,
		DisplayName: sess.user.Name,
	}

	go sess.pump(messages)

	// Announce ourselves to the room. The local join signal is replayed to
	// subscribers from On, since none can exist before Open returns.
	_ = a.client.Publish(ctx, opts.RoomName, jitsi.RoomMessage{
		Type:        jitsi.MessageTypeEvent,
		Event:       string(EventParticipantJoined),
		UserID:      sess.user.ID,
		DisplayName: sess.user.Name,
	})

	return sess, nil
}

func (a *JitsiAdapter) Close(ctx context.Context) error {
	return a.client.Close(ctx)
}

type jitsiSession struct {
	adapter *JitsiAdapter
	room    string
	isHost  bool
	user    jitsi.TokenUser
	cfg     *ConfigOverrides
	iface   *InterfaceOverrides

	// joinedPayload is the local join event, set once during Open.
	joinedPayload EventPayload

	disp     *dispatcher
	disposed atomic.Bool
}

func (s *jitsiSession) RoomName() string { return s.room }
func (s *jitsiSession) IsHost() bool     { return s.isHost }

func (s *jitsiSession) Overrides() (*ConfigOverrides, *InterfaceOverrides) {
	return s.cfg, s.iface
}

func (s *jitsiSession) Execute(ctx context.Context, cmd Command, args ...any) error {
	if s.disposed.Load() {
		return status.ErrDisposed
	}

	switch cmd {
	case CommandHangUp:
		err := s.adapter.client.Publish(ctx, s.room, jitsi.RoomMessage{
			Type:        jitsi.MessageTypeEvent,
			Event:       string(EventParticipantLeft),
			UserID:      s.user.ID,
			DisplayName: s.user.Name,
		})
		s.disp.dispatch(EventPayload{
			Event:       EventConferenceLeft,
			RoomName:    s.room,
			UserID:      s.user.ID,
			DisplayName: s.user.Name,
		})
		return err

	case CommandMuteEveryone, CommandStartRecording, CommandStopRecording:
		if !s.isHost {
			return fmt.Errorf("%w: %s requires a host session", status.ErrPermission, cmd)
		}
		fallthrough

	default:
		return s.adapter.client.Publish(ctx, s.room, jitsi.RoomMessage{
			Type:    jitsi.MessageTypeCommand,
			Command: string(cmd),
			UserID:  s.user.ID,
			Args:    args,
		})
	}
}

func (s *jitsiSession) On(event Event, fn Handler) *Subscription {
	sub := s.disp.subscribe(event, fn)
	// The local join fired during Open, before any subscriber could exist.
	// Replay it so the signal stays observable.
	if event == EventConferenceJoined && !s.disposed.Load() {
		fn(s.joinedPayload)
	}
	return sub
}

// pump translates bridge messages into dispatched events until the stream
// closes. Disposal is re-checked per message so late deliveries never reach
// handlers of a torn-down session.
func (s *jitsiSession) pump(messages <-chan jitsi.RoomMessage) {
	for msg := range messages {
		if s.disposed.Load() {
			return
		}
		if msg.Type != jitsi.MessageTypeEvent {
			continue
		}
		// Our own announcements echo back on the shared channel.
		if msg.UserID == s.user.ID {
			continue
		}
		s.disp.dispatch(EventPayload{
			Event:       Event(msg.Event),
			RoomName:    s.room,
			UserID:      msg.UserID,
			DisplayName: msg.DisplayName,
			On:          msg.On,
		})
	}
}

// Dispose unregisters every live subscription and leaves the room. Safe to
// call more than once.
func (s *jitsiSession) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}

	s.disp.close()

	_ = s.adapter.client.Publish(context.Background(), s.room, jitsi.RoomMessage{
		Type:        jitsi.MessageTypeEvent,
		Event:       string(EventParticipantLeft),
		UserID:      s.user.ID,
		DisplayName: s.user.Name,
	})
	s.adapter.client.LeaveRoom(s.room)
}

func (s *jitsiSession) Disposed() bool {
	return s.disposed.Load()
}
