package services

import (
	"context"
	"fmt"
	"time"

	"econnect/internal/status"
	"econnect/models"
	"econnect/utils"

	"golang.org/x/crypto/bcrypt"
)

// EventStore is the document-store surface the event API needs.
type EventStore interface {
	EventByID(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error)
	AddEventParticipant(ctx context.Context, eventID, userID string) error
	RemoveEventParticipant(ctx context.Context, eventID, userID string) error
}

// CreateEventRequest carries the inputs for scheduling an event.
type CreateEventRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Public          bool      `json:"public"`
	MaxParticipants int       `json:"max_participants"`

	// Passcode gates private events. Stored hashed, never returned.
	Passcode string `json:"passcode,omitempty"`
}

// EventService schedules events and manages their rosters. Private events
// require a passcode to join.
type EventService struct {
	store EventStore
}

func NewEventService(store EventStore) *EventService {
	return &EventService{store: store}
}

// CreateEvent schedules a new event for the creator.
func (s *EventService) CreateEvent(ctx context.Context, req *CreateEventRequest, creator SessionUser) (*models.Event, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", status.ErrValidation)
	}
	if !req.EndTime.IsZero() && !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", status.ErrValidation)
	}
	if !req.Public && req.Passcode == "" {
		return nil, fmt.Errorf("%w: private events require a passcode", status.ErrValidation)
	}

	event := &models.Event{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		CreatorID:       creator.ID,
		Public:          req.Public,
		MaxParticipants: req.MaxParticipants,
		RoomName:        "evt-" + utils.GenerateCode(10),
		Participants:    []string{creator.ID},
	}

	if req.Passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash passcode: %w", err)
		}
		event.PasscodeHash = string(hash)
	}

	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// EventByID returns one event.
func (s *EventService) EventByID(ctx context.Context, id string) (*models.Event, error) {
	return s.store.EventByID(ctx, id)
}

// ListEvents pages through events, newest start time first.
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListEvents(ctx, limit, offset)
}

// JoinEvent registers the user on the event roster. Private events check the
// passcode; already-registered users pass without one.
func (s *EventService) JoinEvent(ctx context.Context, eventID, userID, passcode string) (*models.Event, error) {
	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.HasParticipant(userID) {
		return event, nil
	}

	if !event.Public {
		if err := bcrypt.CompareHashAndPassword([]byte(event.PasscodeHash), []byte(passcode)); err != nil {
			return nil, fmt.Errorf("%w: invalid passcode", status.ErrPermission)
		}
	}

	if event.MaxParticipants > 0 && len(event.Participants) >= event.MaxParticipants {
		return nil, fmt.Errorf("%w: event is full", status.ErrValidation)
	}

	if err := s.store.AddEventParticipant(ctx, eventID, userID); err != nil {
		return nil, err
	}
	event.Participants = append(event.Participants, userID)
	return event, nil
}

// LeaveEvent drops the user from the roster. The creator cannot leave their
// own event.
func (s *EventService) LeaveEvent(ctx context.Context, eventID, userID string) error {
	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID == userID {
		return fmt.Errorf("%w: the event creator cannot leave the event", status.ErrValidation)
	}
	return s.store.RemoveEventParticipant(ctx, eventID, userID)
}
