package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"econnect/config"
	"econnect/internal/conference"
	"econnect/internal/status"
	"econnect/internal/storage"
	"econnect/models"
	"econnect/utils"

	"github.com/google/uuid"
)

// RecordingStore is the document-store surface the recording pipeline needs.
type RecordingStore interface {
	MeetingByRoom(ctx context.Context, roomName string) (*models.Meeting, error)
	RecordingByID(ctx context.Context, id string) (*models.Recording, error)
	RecordingsByEvent(ctx context.Context, eventID string) ([]*models.Recording, error)
	CreateRecording(ctx context.Context, recording *models.Recording) error
	DeleteRecording(ctx context.Context, id string) error
}

// RecordingService drives the record-upload-catalog pipeline: start/stop
// against the live session, artifact upload into blob storage, and the
// metadata records that make recordings listable and deletable.
// MaxRecordingSize caps a single uploaded artifact at 512 MiB.
const MaxRecordingSize = 512 << 20

type RecordingService struct {
	store   RecordingStore
	blobs   storage.BlobStore
	tokens  *TokenService
	config  *config.Config
	monitor Monitor

	maxUploadSize int64

	// breaker guards the blob backend, which may be a remote object store.
	breaker *utils.CircuitBreaker
}

func NewRecordingService(store RecordingStore, blobs storage.BlobStore, tokens *TokenService, cfg *config.Config, monitor Monitor) *RecordingService {
	return &RecordingService{
		store:         store,
		blobs:         blobs,
		tokens:        tokens,
		config:        cfg,
		monitor:       monitor,
		maxUploadSize: MaxRecordingSize,
		breaker:       utils.NewCircuitBreaker("blob-storage"),
	}
}

// StartRecording asks the session's engine to begin recording and waits for
// the engine to confirm. Host-only, enforced by the session itself.
func (s *RecordingService) StartRecording(ctx context.Context, sess conference.Session) error {
	return s.toggleRecording(ctx, sess, conference.CommandStartRecording, true)
}

// StopRecording asks the engine to stop and waits for confirmation.
func (s *RecordingService) StopRecording(ctx context.Context, sess conference.Session) error {
	return s.toggleRecording(ctx, sess, conference.CommandStopRecording, false)
}

func (s *RecordingService) toggleRecording(ctx context.Context, sess conference.Session, cmd conference.Command, wantOn bool) (err error) {
	defer func() { trackOp(s.monitor, string(cmd), err) }()

	confirmed := make(chan struct{}, 1)
	sub := sess.On(conference.EventRecordingStatusChanged, func(p conference.EventPayload) {
		if p.On == wantOn {
			select {
			case confirmed <- struct{}{}:
			default:
			}
		}
	})
	defer sub.Close()

	if err := sess.Execute(ctx, cmd); err != nil {
		return err
	}

	select {
	case <-confirmed:
		if s.monitor != nil {
			s.monitor.TrackConferenceEvent(string(conference.EventRecordingStatusChanged), sess.RoomName())
		}
		return nil
	case <-time.After(s.config.RecordingTimeout):
		return fmt.Errorf("%w: no %s confirmation from room %s within %s",
			status.ErrRecordingTimeout, cmd, sess.RoomName(), s.config.RecordingTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UploadRecording stores a finished artifact and returns its blob key and
// public URL. Keys are namespaced by event and meeting so listings stay
// cheap.
func (s *RecordingService) UploadRecording(ctx context.Context, eventID, meetingID string, content []byte) (string, string, error) {
	if len(content) == 0 {
		return "", "", fmt.Errorf("%w: recording content is empty", status.ErrValidation)
	}
	if int64(len(content)) > s.maxUploadSize {
		return "", "", fmt.Errorf("%w: recording exceeds the %d byte upload limit", status.ErrValidation, s.maxUploadSize)
	}

	key := fmt.Sprintf("recordings/%s/%s/%s.mp4", eventID, meetingID, uuid.New().String())
	if _, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, s.blobs.Upload(ctx, content, key)
	}); err != nil {
		return "", "", err
	}

	return key, s.blobs.URL(key), nil
}

// SaveRecordingMetadata catalogs an uploaded artifact.
func (s *RecordingService) SaveRecordingMetadata(ctx context.Context, rec *models.Recording) error {
	if rec.BlobKey == "" {
		return fmt.Errorf("%w: blob key is required", status.ErrValidation)
	}
	if rec.EventID == "" {
		return fmt.Errorf("%w: event id is required", status.ErrValidation)
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	if err := s.store.CreateRecording(ctx, rec); err != nil {
		return err
	}
	if s.monitor != nil && rec.Duration > 0 {
		s.monitor.TrackRecordingDuration(rec.EventID, time.Duration(rec.Duration)*time.Second)
	}
	return nil
}

// ListRecordings returns the recordings cataloged for an event.
func (s *RecordingService) ListRecordings(ctx context.Context, eventID string) ([]*models.Recording, error) {
	return s.store.RecordingsByEvent(ctx, eventID)
}

// DeleteRecording removes the artifact and its catalog record. Owner or
// admin only. The blob delete and the record delete are independent: a
// failed blob delete is logged and the record is removed anyway, leaving at
// worst an orphaned object.
func (s *RecordingService) DeleteRecording(ctx context.Context, recordingID string, by SessionUser, byRole string) error {
	rec, err := s.store.RecordingByID(ctx, recordingID)
	if err != nil {
		return err
	}
	if rec.OwnerID != by.ID && byRole != models.UserRoleAdmin {
		return fmt.Errorf("%w: only the recording owner can delete it", status.ErrPermission)
	}

	if rec.BlobKey != "" {
		if _, err := s.breaker.Execute(ctx, func() (interface{}, error) {
			return nil, s.blobs.Delete(ctx, rec.BlobKey)
		}); err != nil {
			slog.Error("delete recording blob", "recording_id", recordingID, "key", rec.BlobKey, "error", err)
		}
	}

	return s.store.DeleteRecording(ctx, recordingID)
}

// SignedDownloadURL returns a time-limited download link for a recording.
func (s *RecordingService) SignedDownloadURL(ctx context.Context, recordingID string, expiry time.Duration) (string, error) {
	rec, err := s.store.RecordingByID(ctx, recordingID)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.SignDownloadURL(rec.BlobKey, expiry)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s?token=%s", s.blobs.URL(rec.BlobKey), token), nil
}
