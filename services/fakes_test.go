package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"econnect/internal/conference"
	"econnect/internal/status"
	"econnect/models"
)

// fakeStore is an in-memory stand-in for RecordStore. It hands out copies so
// service-side mutations only become visible through an update call.
type fakeStore struct {
	mu         sync.Mutex
	nextID     int
	events     map[string]*models.Event
	meetings   map[string]*models.Meeting
	tables     map[string]*models.VirtualTable
	recordings map[string]*models.Recording
	services   map[string]*models.ProviderService
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:     map[string]*models.Event{},
		meetings:   map[string]*models.Meeting{},
		tables:     map[string]*models.VirtualTable{},
		recordings: map[string]*models.Recording{},
		services:   map[string]*models.ProviderService{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id%d", f.nextID)
}

func copyEvent(e *models.Event) *models.Event {
	c := *e
	c.Participants = append([]string(nil), e.Participants...)
	return &c
}

func copyMeeting(m *models.Meeting) *models.Meeting {
	c := *m
	c.Participants = append([]models.Participant(nil), m.Participants...)
	return &c
}

func copyTable(t *models.VirtualTable) *models.VirtualTable {
	c := *t
	c.Participants = append([]string(nil), t.Participants...)
	return &c
}

func (f *fakeStore) EventByID(ctx context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", status.ErrNotFound, id)
	}
	return copyEvent(e), nil
}

func (f *fakeStore) CreateEvent(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.ID = f.id()
	f.events[event.ID] = copyEvent(event)
	return nil
}

func (f *fakeStore) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, copyEvent(e))
	}
	return out, nil
}

func (f *fakeStore) AddEventParticipant(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return fmt.Errorf("%w: event %s", status.ErrNotFound, eventID)
	}
	if !e.HasParticipant(userID) {
		e.Participants = append(e.Participants, userID)
	}
	return nil
}

func (f *fakeStore) RemoveEventParticipant(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return fmt.Errorf("%w: event %s", status.ErrNotFound, eventID)
	}
	remaining := e.Participants[:0]
	for _, id := range e.Participants {
		if id != userID {
			remaining = append(remaining, id)
		}
	}
	e.Participants = remaining
	return nil
}

func (f *fakeStore) MeetingByRoom(ctx context.Context, roomName string) (*models.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetings[roomName]
	if !ok {
		return nil, fmt.Errorf("%w: meeting for room %s", status.ErrNotFound, roomName)
	}
	return copyMeeting(m), nil
}

func (f *fakeStore) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	meeting.ID = f.id()
	f.meetings[meeting.RoomName] = copyMeeting(meeting)
	return nil
}

func (f *fakeStore) UpdateMeeting(ctx context.Context, meeting *models.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.meetings[meeting.RoomName]; !ok {
		return fmt.Errorf("%w: meeting %s", status.ErrNotFound, meeting.ID)
	}
	f.meetings[meeting.RoomName] = copyMeeting(meeting)
	return nil
}

func (f *fakeStore) TableByID(ctx context.Context, id string) (*models.VirtualTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: virtual table %s", status.ErrNotFound, id)
	}
	return copyTable(t), nil
}

func (f *fakeStore) TablesByEvent(ctx context.Context, eventID string) ([]*models.VirtualTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.VirtualTable{}
	for _, t := range f.tables {
		if t.EventID == eventID {
			out = append(out, copyTable(t))
		}
	}
	return out, nil
}

func (f *fakeStore) CreateTable(ctx context.Context, table *models.VirtualTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	table.ID = f.id()
	f.tables[table.ID] = copyTable(table)
	return nil
}

func (f *fakeStore) UpdateTable(ctx context.Context, table *models.VirtualTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[table.ID]; !ok {
		return fmt.Errorf("%w: virtual table %s", status.ErrNotFound, table.ID)
	}
	f.tables[table.ID] = copyTable(table)
	return nil
}

func (f *fakeStore) RecordingByID(ctx context.Context, id string) (*models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recordings[id]
	if !ok {
		return nil, fmt.Errorf("%w: recording %s", status.ErrNotFound, id)
	}
	c := *r
	return &c, nil
}

func (f *fakeStore) RecordingsByEvent(ctx context.Context, eventID string) ([]*models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Recording{}
	for _, r := range f.recordings {
		if r.EventID == eventID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateRecording(ctx context.Context, recording *models.Recording) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recording.ID = f.id()
	c := *recording
	f.recordings[recording.ID] = &c
	return nil
}

func (f *fakeStore) DeleteRecording(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recordings[id]; !ok {
		return fmt.Errorf("%w: recording %s", status.ErrNotFound, id)
	}
	delete(f.recordings, id)
	return nil
}

func (f *fakeStore) ServiceByID(ctx context.Context, id string) (*models.ProviderService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[id]
	if !ok {
		return nil, fmt.Errorf("%w: service %s", status.ErrNotFound, id)
	}
	c := *s
	return &c, nil
}

func (f *fakeStore) ListServices(ctx context.Context, limit, offset int) ([]*models.ProviderService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.ProviderService{}
	for _, s := range f.services {
		c := *s
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeStore) CreateService(ctx context.Context, svc *models.ProviderService) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	svc.ID = f.id()
	c := *svc
	f.services[svc.ID] = &c
	return nil
}

func (f *fakeStore) DeleteService(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.services[id]; !ok {
		return fmt.Errorf("%w: service %s", status.ErrNotFound, id)
	}
	delete(f.services, id)
	return nil
}

// fakeMonitor records what the services report.
type fakeMonitor struct {
	mu         sync.Mutex
	operations []string
	events     []string
	durations  []time.Duration
}

func (f *fakeMonitor) TrackSessionOperation(operation, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations = append(f.operations, operation+":"+status)
}

func (f *fakeMonitor) TrackConferenceEvent(event, room string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeMonitor) TrackRecordingDuration(eventID string, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations = append(f.durations, duration)
}

// fakeSession is a controllable conference.Session.
type fakeSession struct {
	room     string
	isHost   bool
	disposed atomic.Bool

	mu       sync.Mutex
	handlers map[conference.Event][]conference.Handler
	executed []conference.Command

	// onExecute, when set, runs synchronously after each Execute.
	onExecute func(cmd conference.Command)
}

func newFakeSession(room string, isHost bool) *fakeSession {
	return &fakeSession{
		room:     room,
		isHost:   isHost,
		handlers: map[conference.Event][]conference.Handler{},
	}
}

func (s *fakeSession) RoomName() string { return s.room }
func (s *fakeSession) IsHost() bool     { return s.isHost }

func (s *fakeSession) Overrides() (*conference.ConfigOverrides, *conference.InterfaceOverrides) {
	return conference.DefaultConfigOverrides(s.isHost), conference.DefaultInterfaceOverrides(s.isHost)
}

func (s *fakeSession) Execute(ctx context.Context, cmd conference.Command, args ...any) error {
	s.mu.Lock()
	s.executed = append(s.executed, cmd)
	hook := s.onExecute
	s.mu.Unlock()

	if hook != nil {
		hook(cmd)
	}
	return nil
}

func (s *fakeSession) On(event conference.Event, fn conference.Handler) *conference.Subscription {
	s.mu.Lock()
	s.handlers[event] = append(s.handlers[event], fn)
	s.mu.Unlock()
	return &conference.Subscription{}
}

func (s *fakeSession) emit(payload conference.EventPayload) {
	s.mu.Lock()
	handlers := append([]conference.Handler(nil), s.handlers[payload.Event]...)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(payload)
	}
}

func (s *fakeSession) Dispose()       { s.disposed.Store(true) }
func (s *fakeSession) Disposed() bool { return s.disposed.Load() }
