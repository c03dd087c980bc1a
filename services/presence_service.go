package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"econnect/config"
	"econnect/internal/status"
	"econnect/models"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

// TableStore is the document-store surface the presence manager needs.
type TableStore interface {
	EventByID(ctx context.Context, id string) (*models.Event, error)
	TableByID(ctx context.Context, id string) (*models.VirtualTable, error)
	TablesByEvent(ctx context.Context, eventID string) ([]*models.VirtualTable, error)
	CreateTable(ctx context.Context, table *models.VirtualTable) error
	UpdateTable(ctx context.Context, table *models.VirtualTable) error
}

// PresenceService manages an event's virtual-table layer: bounded-capacity
// breakout rooms with single-table membership per user, plus the broadcast
// mode that replaces the table grid with one shared room.
type PresenceService struct {
	store  TableStore
	Redis  *redis.Client
	pubnub *pubnub.PubNub
	config *config.Config
}

func NewPresenceService(store TableStore, redisClient *redis.Client, pn *pubnub.PubNub, cfg *config.Config) *PresenceService {
	return &PresenceService{
		store:  store,
		Redis:  redisClient,
		pubnub: pn,
		config: cfg,
	}
}

// ListTables returns the event's tables ordered by creation.
func (s *PresenceService) ListTables(ctx context.Context, eventID string) ([]*models.VirtualTable, error) {
	return s.store.TablesByEvent(ctx, eventID)
}

// CreateTable appends a new empty table. Host-only; capacity is bounded to
// the configured range.
func (s *PresenceService) CreateTable(ctx context.Context, eventID, name string, capacity int, by SessionUser, byRole string) (*models.VirtualTable, error) {
	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != by.ID && byRole != models.UserRoleAdmin {
		return nil, fmt.Errorf("%w: only the event host can create tables", status.ErrPermission)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: table name is required", status.ErrValidation)
	}
	if capacity < s.config.TableMinCapacity || capacity > s.config.TableMaxCapacity {
		return nil, fmt.Errorf("%w: capacity must be between %d and %d",
			status.ErrValidation, s.config.TableMinCapacity, s.config.TableMaxCapacity)
	}

	table := &models.VirtualTable{
		EventID:      eventID,
		Name:         name,
		Capacity:     capacity,
		Participants: []string{},
		Created:      time.Now(),
	}
	if err := s.store.CreateTable(ctx, table); err != nil {
		return nil, err
	}

	s.announce(eventID, map[string]any{
		"type":     "table_created",
		"table_id": table.ID,
		"name":     name,
	})

	return table, nil
}

// JoinTable seats a user at a table, moving them out of any other table of
// the same event first. The capacity check and the membership write are two
// independent operations: concurrent joiners of a near-full table can both
// be admitted. That race is accepted, not fixed.
func (s *PresenceService) JoinTable(ctx context.Context, tableID, userID string) (*models.VirtualTable, string, error) {
	table, err := s.store.TableByID(ctx, tableID)
	if err != nil {
		return nil, "", err
	}

	if table.HasParticipant(userID) {
		return table, s.TableRoomName(table), nil
	}

	if table.Full() {
		return nil, "", fmt.Errorf("%w: table %s is at capacity %d", status.ErrTableFull, table.Name, table.Capacity)
	}

	// Leave the previous table before joining the new one. Remove-then-add
	// is two writes, not a transaction.
	others, err := s.store.TablesByEvent(ctx, table.EventID)
	if err != nil {
		return nil, "", err
	}
	for _, other := range others {
		if other.ID == table.ID || !other.HasParticipant(userID) {
			continue
		}
		other.RemoveParticipant(userID)
		if err := s.store.UpdateTable(ctx, other); err != nil {
			return nil, "", fmt.Errorf("leave previous table %s: %w", other.ID, err)
		}
		s.Redis.SRem(ctx, tablePresenceKey(other.ID), userID)
	}

	table.Participants = append(table.Participants, userID)
	if err := s.store.UpdateTable(ctx, table); err != nil {
		return nil, "", err
	}

	s.Redis.SAdd(ctx, tablePresenceKey(table.ID), userID)
	s.Redis.Expire(ctx, tablePresenceKey(table.ID), s.config.PresenceTTL)

	s.announce(table.EventID, map[string]any{
		"type":     "table_joined",
		"table_id": table.ID,
		"user_id":  userID,
	})

	return table, s.TableRoomName(table), nil
}

// LeaveTable removes the user's membership.
func (s *PresenceService) LeaveTable(ctx context.Context, tableID, userID string) error {
	table, err := s.store.TableByID(ctx, tableID)
	if err != nil {
		return err
	}

	if !table.HasParticipant(userID) {
		return nil
	}

	table.RemoveParticipant(userID)
	if err := s.store.UpdateTable(ctx, table); err != nil {
		return err
	}

	s.Redis.SRem(ctx, tablePresenceKey(tableID), userID)

	s.announce(table.EventID, map[string]any{
		"type":     "table_left",
		"table_id": tableID,
		"user_id":  userID,
	})

	return nil
}

// StartBroadcast elevates one shared room above the table grid for every
// participant. Table membership is untouched.
func (s *PresenceService) StartBroadcast(ctx context.Context, eventID string, by SessionUser, byRole string) (string, error) {
	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return "", err
	}
	if event.CreatorID != by.ID && byRole != models.UserRoleAdmin {
		return "", fmt.Errorf("%w: only the event host can start a broadcast", status.ErrPermission)
	}

	roomName := BroadcastRoomName(eventID)
	if err := s.Redis.Set(ctx, broadcastKey(eventID), roomName, 0).Err(); err != nil {
		return "", fmt.Errorf("set broadcast flag: %w", err)
	}

	s.announce(eventID, map[string]any{
		"type":      "broadcast_started",
		"room_name": roomName,
	})

	return roomName, nil
}

// EndBroadcast restores the table grid.
func (s *PresenceService) EndBroadcast(ctx context.Context, eventID string, by SessionUser, byRole string) error {
	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != by.ID && byRole != models.UserRoleAdmin {
		return fmt.Errorf("%w: only the event host can end a broadcast", status.ErrPermission)
	}

	if err := s.Redis.Del(ctx, broadcastKey(eventID)).Err(); err != nil {
		return fmt.Errorf("clear broadcast flag: %w", err)
	}

	s.announce(eventID, map[string]any{
		"type": "broadcast_ended",
	})

	return nil
}

// ActiveBroadcast returns the broadcast room name, or "" when the event is
// in table mode.
func (s *PresenceService) ActiveBroadcast(ctx context.Context, eventID string) string {
	roomName, err := s.Redis.Get(ctx, broadcastKey(eventID)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("read broadcast flag", "event_id", eventID, "error", err)
		}
		return ""
	}
	return roomName
}

// TableRoomName derives the per-table session room.
func (s *PresenceService) TableRoomName(table *models.VirtualTable) string {
	return fmt.Sprintf("%s-table-%s", table.EventID, table.ID)
}

// BroadcastRoomName derives the event's shared broadcast room.
func BroadcastRoomName(eventID string) string {
	return eventID + "-broadcast"
}

func tablePresenceKey(tableID string) string {
	return fmt.Sprintf("table:presence:%s", tableID)
}

func broadcastKey(eventID string) string {
	return fmt.Sprintf("broadcast:%s", eventID)
}

func (s *PresenceService) announce(eventID string, message map[string]any) {
	if s.pubnub == nil {
		return
	}
	channel := fmt.Sprintf("event-%s", eventID)
	s.pubnub.Publish().
		Channel(channel).
		Message(message).
		Execute()
}
