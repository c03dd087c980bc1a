package services

import (
	"context"
	"encoding/json"
	"fmt"

	"econnect/internal/status"
	"econnect/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

const (
	CollectionEvents     = "events"
	CollectionMeetings   = "meetings"
	CollectionTables     = "virtual_tables"
	CollectionRecordings = "recordings"
	CollectionServices   = "provider_services"
)

// RecordStore persists the domain models into PocketBase collections. All
// writes are coarse per-record saves: concurrent writers race at field level
// (last write wins), matching the document-store semantics the services are
// written against.
type RecordStore struct {
	app core.App
}

func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

// --- events ---

func (s *RecordStore) EventByID(ctx context.Context, id string) (*models.Event, error) {
	rec, err := s.app.FindRecordById(CollectionEvents, id)
	if err != nil {
		return nil, fmt.Errorf("%w: event %s", status.ErrNotFound, id)
	}
	return eventFromRecord(rec), nil
}

func (s *RecordStore) CreateEvent(ctx context.Context, event *models.Event) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionEvents)
	if err != nil {
		return err
	}

	rec := core.NewRecord(collection)
	rec.Set("title", event.Title)
	rec.Set("description", event.Description)
	rec.Set("start_time", event.StartTime)
	rec.Set("end_time", event.EndTime)
	rec.Set("creator", event.CreatorID)
	rec.Set("public", event.Public)
	rec.Set("max_participants", event.MaxParticipants)
	rec.Set("room_name", event.RoomName)
	rec.Set("passcode_hash", event.PasscodeHash)
	setJSONField(rec, "participants", event.Participants)

	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	event.ID = rec.Id
	return nil
}

func (s *RecordStore) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	recs, err := s.app.FindRecordsByFilter(
		CollectionEvents,
		"id != ''",
		"-start_time",
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]*models.Event, 0, len(recs))
	for _, rec := range recs {
		events = append(events, eventFromRecord(rec))
	}
	return events, nil
}

// AddEventParticipant appends userID to the event roster (array-union
// semantics, idempotent).
func (s *RecordStore) AddEventParticipant(ctx context.Context, eventID, userID string) error {
	rec, err := s.app.FindRecordById(CollectionEvents, eventID)
	if err != nil {
		return fmt.Errorf("%w: event %s", status.ErrNotFound, eventID)
	}

	event := eventFromRecord(rec)
	if event.HasParticipant(userID) {
		return nil
	}

	setJSONField(rec, "participants", append(event.Participants, userID))
	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save event participants: %w", err)
	}
	return nil
}

// RemoveEventParticipant drops userID from the event roster (array-remove
// semantics).
func (s *RecordStore) RemoveEventParticipant(ctx context.Context, eventID, userID string) error {
	rec, err := s.app.FindRecordById(CollectionEvents, eventID)
	if err != nil {
		return fmt.Errorf("%w: event %s", status.ErrNotFound, eventID)
	}

	event := eventFromRecord(rec)
	remaining := make([]string, 0, len(event.Participants))
	for _, id := range event.Participants {
		if id != userID {
			remaining = append(remaining, id)
		}
	}

	setJSONField(rec, "participants", remaining)
	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save event participants: %w", err)
	}
	return nil
}

// --- meetings ---

func (s *RecordStore) MeetingByRoom(ctx context.Context, roomName string) (*models.Meeting, error) {
	recs, err := s.app.FindRecordsByFilter(
		CollectionMeetings,
		"room_name = {:room}",
		"-created",
		1,
		0,
		dbx.Params{"room": roomName},
	)
	if err != nil || len(recs) == 0 {
		return nil, fmt.Errorf("%w: meeting for room %s", status.ErrNotFound, roomName)
	}
	return meetingFromRecord(recs[0]), nil
}

func (s *RecordStore) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionMeetings)
	if err != nil {
		return err
	}

	rec := core.NewRecord(collection)
	rec.Set("event", meeting.EventID)
	rec.Set("host", meeting.HostID)
	rec.Set("room_name", meeting.RoomName)
	rec.Set("started_at", meeting.StartedAt)
	setJSONField(rec, "participants", meeting.Participants)

	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save meeting: %w", err)
	}
	meeting.ID = rec.Id
	return nil
}

func (s *RecordStore) UpdateMeeting(ctx context.Context, meeting *models.Meeting) error {
	rec, err := s.app.FindRecordById(CollectionMeetings, meeting.ID)
	if err != nil {
		return fmt.Errorf("%w: meeting %s", status.ErrNotFound, meeting.ID)
	}

	rec.Set("recording_url", meeting.RecordingURL)
	setJSONField(rec, "participants", meeting.Participants)
	if meeting.EndedAt != nil {
		rec.Set("ended_at", *meeting.EndedAt)
	}

	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save meeting: %w", err)
	}
	return nil
}

// --- virtual tables ---

func (s *RecordStore) TableByID(ctx context.Context, id string) (*models.VirtualTable, error) {
	rec, err := s.app.FindRecordById(CollectionTables, id)
	if err != nil {
		return nil, fmt.Errorf("%w: virtual table %s", status.ErrNotFound, id)
	}
	return tableFromRecord(rec), nil
}

func (s *RecordStore) TablesByEvent(ctx context.Context, eventID string) ([]*models.VirtualTable, error) {
	recs, err := s.app.FindRecordsByFilter(
		CollectionTables,
		"event = {:eventId}",
		"created",
		0,
		0,
		dbx.Params{"eventId": eventID},
	)
	if err != nil {
		return nil, fmt.Errorf("list tables for event %s: %w", eventID, err)
	}

	tables := make([]*models.VirtualTable, 0, len(recs))
	for _, rec := range recs {
		tables = append(tables, tableFromRecord(rec))
	}
	return tables, nil
}

func (s *RecordStore) CreateTable(ctx context.Context, table *models.VirtualTable) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionTables)
	if err != nil {
		return err
	}

	rec := core.NewRecord(collection)
	rec.Set("event", table.EventID)
	rec.Set("name", table.Name)
	rec.Set("capacity", table.Capacity)
	setJSONField(rec, "participants", table.Participants)

	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save virtual table: %w", err)
	}
	table.ID = rec.Id
	return nil
}

func (s *RecordStore) UpdateTable(ctx context.Context, table *models.VirtualTable) error {
	rec, err := s.app.FindRecordById(CollectionTables, table.ID)
	if err != nil {
		return fmt.Errorf("%w: virtual table %s", status.ErrNotFound, table.ID)
	}

	setJSONField(rec, "participants", table.Participants)
	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save virtual table: %w", err)
	}
	return nil
}

// --- recordings ---

func (s *RecordStore) RecordingByID(ctx context.Context, id string) (*models.Recording, error) {
	rec, err := s.app.FindRecordById(CollectionRecordings, id)
	if err != nil {
		return nil, fmt.Errorf("%w: recording %s", status.ErrNotFound, id)
	}
	return recordingFromRecord(rec), nil
}

func (s *RecordStore) RecordingsByEvent(ctx context.Context, eventID string) ([]*models.Recording, error) {
	recs, err := s.app.FindRecordsByFilter(
		CollectionRecordings,
		"event = {:eventId}",
		"-created",
		0,
		0,
		dbx.Params{"eventId": eventID},
	)
	if err != nil {
		return nil, fmt.Errorf("list recordings for event %s: %w", eventID, err)
	}

	recordings := make([]*models.Recording, 0, len(recs))
	for _, rec := range recs {
		recordings = append(recordings, recordingFromRecord(rec))
	}
	return recordings, nil
}

func (s *RecordStore) CreateRecording(ctx context.Context, recording *models.Recording) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionRecordings)
	if err != nil {
		return err
	}

	rec := core.NewRecord(collection)
	rec.Set("meeting", recording.MeetingID)
	rec.Set("event", recording.EventID)
	rec.Set("owner", recording.OwnerID)
	rec.Set("title", recording.Title)
	rec.Set("started_at", recording.StartedAt)
	if recording.EndedAt != nil {
		rec.Set("ended_at", *recording.EndedAt)
	}
	rec.Set("duration", recording.Duration)
	rec.Set("file_size", recording.FileSize)
	rec.Set("blob_key", recording.BlobKey)
	rec.Set("url", recording.URL)

	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save recording: %w", err)
	}
	recording.ID = rec.Id
	return nil
}

func (s *RecordStore) DeleteRecording(ctx context.Context, id string) error {
	rec, err := s.app.FindRecordById(CollectionRecordings, id)
	if err != nil {
		return fmt.Errorf("%w: recording %s", status.ErrNotFound, id)
	}
	if err := s.app.Delete(rec); err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	return nil
}

// --- provider services ---

func (s *RecordStore) ServiceByID(ctx context.Context, id string) (*models.ProviderService, error) {
	rec, err := s.app.FindRecordById(CollectionServices, id)
	if err != nil {
		return nil, fmt.Errorf("%w: service %s", status.ErrNotFound, id)
	}
	return serviceFromRecord(rec), nil
}

func (s *RecordStore) ListServices(ctx context.Context, limit, offset int) ([]*models.ProviderService, error) {
	recs, err := s.app.FindRecordsByFilter(
		CollectionServices,
		"id != ''",
		"-created",
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	services := make([]*models.ProviderService, 0, len(recs))
	for _, rec := range recs {
		services = append(services, serviceFromRecord(rec))
	}
	return services, nil
}

func (s *RecordStore) CreateService(ctx context.Context, svc *models.ProviderService) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionServices)
	if err != nil {
		return err
	}

	rec := core.NewRecord(collection)
	rec.Set("provider", svc.ProviderID)
	rec.Set("title", svc.Title)
	rec.Set("description", svc.Description)
	rec.Set("price", svc.Price.String())
	rec.Set("currency", svc.Currency)

	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save service: %w", err)
	}
	svc.ID = rec.Id
	return nil
}

func (s *RecordStore) DeleteService(ctx context.Context, id string) error {
	rec, err := s.app.FindRecordById(CollectionServices, id)
	if err != nil {
		return fmt.Errorf("%w: service %s", status.ErrNotFound, id)
	}
	if err := s.app.Delete(rec); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}

// --- record mapping ---

func setJSONField(rec *core.Record, key string, value any) {
	data, _ := json.Marshal(value)
	rec.Set(key, types.JSONRaw(data))
}

func eventFromRecord(rec *core.Record) *models.Event {
	event := &models.Event{
		ID:              rec.Id,
		Title:           rec.GetString("title"),
		Description:     rec.GetString("description"),
		StartTime:       rec.GetDateTime("start_time").Time(),
		EndTime:         rec.GetDateTime("end_time").Time(),
		CreatorID:       rec.GetString("creator"),
		Public:          rec.GetBool("public"),
		MaxParticipants: rec.GetInt("max_participants"),
		RoomName:        rec.GetString("room_name"),
		PasscodeHash:    rec.GetString("passcode_hash"),
		Created:         rec.GetDateTime("created").Time(),
		Updated:         rec.GetDateTime("updated").Time(),
	}
	if err := rec.UnmarshalJSONField("participants", &event.Participants); err != nil {
		event.Participants = nil
	}
	return event
}

func meetingFromRecord(rec *core.Record) *models.Meeting {
	meeting := &models.Meeting{
		ID:           rec.Id,
		EventID:      rec.GetString("event"),
		HostID:       rec.GetString("host"),
		RoomName:     rec.GetString("room_name"),
		RecordingURL: rec.GetString("recording_url"),
		StartedAt:    rec.GetDateTime("started_at").Time(),
	}
	if err := rec.UnmarshalJSONField("participants", &meeting.Participants); err != nil {
		meeting.Participants = nil
	}
	if ended := rec.GetDateTime("ended_at").Time(); !ended.IsZero() {
		meeting.EndedAt = &ended
	}
	return meeting
}

func tableFromRecord(rec *core.Record) *models.VirtualTable {
	table := &models.VirtualTable{
		ID:       rec.Id,
		EventID:  rec.GetString("event"),
		Name:     rec.GetString("name"),
		Capacity: rec.GetInt("capacity"),
		Created:  rec.GetDateTime("created").Time(),
	}
	if err := rec.UnmarshalJSONField("participants", &table.Participants); err != nil {
		table.Participants = nil
	}
	return table
}

func recordingFromRecord(rec *core.Record) *models.Recording {
	recording := &models.Recording{
		ID:        rec.Id,
		MeetingID: rec.GetString("meeting"),
		EventID:   rec.GetString("event"),
		OwnerID:   rec.GetString("owner"),
		Title:     rec.GetString("title"),
		StartedAt: rec.GetDateTime("started_at").Time(),
		Duration:  rec.GetInt("duration"),
		FileSize:  int64(rec.GetInt("file_size")),
		BlobKey:   rec.GetString("blob_key"),
		URL:       rec.GetString("url"),
		Created:   rec.GetDateTime("created").Time(),
	}
	if ended := rec.GetDateTime("ended_at").Time(); !ended.IsZero() {
		recording.EndedAt = &ended
	}
	return recording
}

func serviceFromRecord(rec *core.Record) *models.ProviderService {
	price, err := decimal.NewFromString(rec.GetString("price"))
	if err != nil {
		price = decimal.Zero
	}
	return &models.ProviderService{
		ID:          rec.Id,
		ProviderID:  rec.GetString("provider"),
		Title:       rec.GetString("title"),
		Description: rec.GetString("description"),
		Price:       price,
		Currency:    rec.GetString("currency"),
		Created:     rec.GetDateTime("created").Time(),
	}
}
