package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"econnect/config"
	"econnect/internal/conference"
	"econnect/internal/status"
	"econnect/models"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

// SessionState tracks one (room, user) pair through the meeting lifecycle.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateLoading
	StateJoined
	StateLeft
	StateError
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateJoined:
		return "joined"
	case StateLeft:
		return "left"
	case StateError:
		return "error"
	default:
		return "uninitialized"
	}
}

// SessionUser is the identity a meeting participant joins with.
type SessionUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SessionStore is the document-store surface the lifecycle manager needs.
type SessionStore interface {
	EventByID(ctx context.Context, id string) (*models.Event, error)
	MeetingByRoom(ctx context.Context, roomName string) (*models.Meeting, error)
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error
	UpdateMeeting(ctx context.Context, meeting *models.Meeting) error
}

// SessionService persists who attended which room and when, and reacts to
// the conference engine signalling that the session ended.
type SessionService struct {
	store   SessionStore
	Redis   *redis.Client
	pubnub  *pubnub.PubNub
	config  *config.Config
	monitor Monitor

	// generations guards late async resolutions: an attach callback only
	// applies if its generation is still the latest for the (room, user).
	mu          sync.Mutex
	generations map[string]uint64
}

func NewSessionService(store SessionStore, redisClient *redis.Client, pn *pubnub.PubNub, cfg *config.Config, monitor Monitor) *SessionService {
	return &SessionService{
		store:       store,
		Redis:       redisClient,
		pubnub:      pn,
		config:      cfg,
		monitor:     monitor,
		generations: make(map[string]uint64),
	}
}

// JoinMeeting moves a (room, user) pair from Loading to Joined. The meeting
// record is created lazily on the first join to a room; re-entry by a user
// already listed is a no-op (at most one participant entry per user id).
func (s *SessionService) JoinMeeting(ctx context.Context, eventID, roomName string, user SessionUser) (meeting *models.Meeting, err error) {
	defer func() { trackOp(s.monitor, "join", err) }()

	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	isHost := event.CreatorID == user.ID

	meeting, err = s.store.MeetingByRoom(ctx, roomName)
	if err != nil {
		// Only a missing record triggers the lazy create; a transient
		// store failure must not mint a duplicate meeting.
		if !errors.Is(err, status.ErrNotFound) {
			return nil, err
		}
		meeting = &models.Meeting{
			EventID:   eventID,
			HostID:    event.CreatorID,
			RoomName:  roomName,
			StartedAt: time.Now(),
		}
		if err := s.store.CreateMeeting(ctx, meeting); err != nil {
			return nil, err
		}
	}

	if existing := meeting.Participant(user.ID); existing == nil {
		role := models.RoleViewer
		if isHost {
			role = models.RoleModerator
		}
		meeting.Participants = append(meeting.Participants, models.Participant{
			UserID:      user.ID,
			DisplayName: user.DisplayName,
			Role:        role,
			JoinedAt:    time.Now(),
		})
		if err := s.store.UpdateMeeting(ctx, meeting); err != nil {
			return nil, err
		}
	}

	s.trackPresence(ctx, roomName, user.ID, true)
	s.publish(user.ID, map[string]any{
		"type":      "meeting_joined",
		"room_name": roomName,
		"event_id":  eventID,
	})

	return meeting, nil
}

// LeaveMeeting records the participant's leave time; when the leaver is the
// host the meeting's end time is set as well. Leaving never touches the
// surrounding event's roster.
func (s *SessionService) LeaveMeeting(ctx context.Context, roomName, userID string) (meeting *models.Meeting, err error) {
	defer func() { trackOp(s.monitor, "leave", err) }()

	meeting, err = s.store.MeetingByRoom(ctx, roomName)
	if err != nil {
		return nil, err
	}

	participant := meeting.Participant(userID)
	if participant == nil {
		return meeting, nil
	}

	now := time.Now()
	if participant.LeftAt == nil {
		participant.LeftAt = &now
	}
	if meeting.HostID == userID && meeting.EndedAt == nil {
		meeting.EndedAt = &now
	}

	if err := s.store.UpdateMeeting(ctx, meeting); err != nil {
		return nil, err
	}

	s.trackPresence(ctx, roomName, userID, false)
	s.publish(userID, map[string]any{
		"type":      "meeting_left",
		"room_name": roomName,
	})

	return meeting, nil
}

// MeetingByRoom exposes the lifecycle record for read paths.
func (s *SessionService) MeetingByRoom(ctx context.Context, roomName string) (*models.Meeting, error) {
	return s.store.MeetingByRoom(ctx, roomName)
}

// Attach subscribes the lifecycle to a live conference session: when the
// engine signals videoConferenceLeft, the leave is recorded and navigate is
// invoked. The returned subscription must be closed on teardown.
//
// The generation check keeps a late event from a previous attach from
// mutating state after the pair re-attached or tore down.
func (s *SessionService) Attach(sess conference.Session, roomName, userID string, navigate func()) *conference.Subscription {
	gen := s.bumpGeneration(roomName, userID)

	return sess.On(conference.EventConferenceLeft, func(p conference.EventPayload) {
		if !s.generationCurrent(roomName, userID, gen) {
			slog.Debug("ignoring stale conference leave", "room", roomName, "user", userID)
			return
		}
		if sess.Disposed() {
			return
		}

		if s.monitor != nil {
			s.monitor.TrackConferenceEvent(string(conference.EventConferenceLeft), roomName)
		}
		if _, err := s.LeaveMeeting(context.Background(), roomName, userID); err != nil {
			slog.Error("record meeting leave", "room", roomName, "user", userID, "error", err)
		}
		if navigate != nil {
			navigate()
		}
	})
}

// Detach invalidates any outstanding attach callbacks for the pair.
func (s *SessionService) Detach(roomName, userID string) {
	s.bumpGeneration(roomName, userID)
}

// PresenceCount returns the number of users currently tracked in a room.
func (s *SessionService) PresenceCount(ctx context.Context, roomName string) (int64, error) {
	return s.Redis.SCard(ctx, presenceKey(roomName)).Result()
}

func (s *SessionService) bumpGeneration(roomName, userID string) uint64 {
	key := roomName + ":" + userID
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[key]++
	return s.generations[key]
}

func (s *SessionService) generationCurrent(roomName, userID string, gen uint64) bool {
	key := roomName + ":" + userID
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[key] == gen
}

func presenceKey(roomName string) string {
	return fmt.Sprintf("meeting:presence:%s", roomName)
}

func (s *SessionService) trackPresence(ctx context.Context, roomName, userID string, joined bool) {
	key := presenceKey(roomName)
	if joined {
		s.Redis.SAdd(ctx, key, userID)
		s.Redis.Expire(ctx, key, s.config.PresenceTTL)
	} else {
		s.Redis.SRem(ctx, key, userID)
	}
}

func (s *SessionService) publish(userID string, message map[string]any) {
	if s.pubnub == nil {
		return
	}
	channel := fmt.Sprintf("user-%s", userID)
	s.pubnub.Publish().
		Channel(channel).
		Message(message).
		Execute()
}
