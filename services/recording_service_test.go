package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"econnect/config"
	"econnect/internal/conference"
	"econnect/internal/status"
	"econnect/models"

	"github.com/stretchr/testify/assert"
)

// fakeBlobStore is an in-memory storage.BlobStore.
type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failOps   bool
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Upload(ctx context.Context, content []byte, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return errors.New("backend unavailable")
	}
	f.objects[key] = content
	return nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := []string{}
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeBlobStore) URL(key string) string {
	return "http://blobs.test/" + key
}

func newTestRecordingService(store *fakeStore, blobs *fakeBlobStore, timeout time.Duration) *RecordingService {
	cfg := &config.Config{
		RecordingTimeout: timeout,
		JWTSecret:        "test-secret",
		JWTIssuer:        "econnect-test",
		TokenTTL:         time.Hour,
	}
	return NewRecordingService(store, blobs, NewTokenService(cfg), cfg, nil)
}

func TestRecordingService_StartRecording_Confirmed(t *testing.T) {
	svc := newTestRecordingService(newFakeStore(), newFakeBlobStore(), time.Second)

	sess := newFakeSession("room1", true)
	sess.onExecute = func(cmd conference.Command) {
		if cmd == conference.CommandStartRecording {
			sess.emit(conference.EventPayload{
				Event:    conference.EventRecordingStatusChanged,
				RoomName: "room1",
				On:       true,
			})
		}
	}

	err := svc.StartRecording(context.Background(), sess)
	assert.NoError(t, err)
	assert.Contains(t, sess.executed, conference.CommandStartRecording)
}

func TestRecordingService_StopRecording_Confirmed(t *testing.T) {
	svc := newTestRecordingService(newFakeStore(), newFakeBlobStore(), time.Second)

	sess := newFakeSession("room1", true)
	sess.onExecute = func(cmd conference.Command) {
		if cmd == conference.CommandStopRecording {
			sess.emit(conference.EventPayload{
				Event:    conference.EventRecordingStatusChanged,
				RoomName: "room1",
				On:       false,
			})
		}
	}

	assert.NoError(t, svc.StopRecording(context.Background(), sess))
}

func TestRecordingService_StartRecording_Timeout(t *testing.T) {
	svc := newTestRecordingService(newFakeStore(), newFakeBlobStore(), 30*time.Millisecond)

	// Session that never confirms.
	sess := newFakeSession("room1", true)

	err := svc.StartRecording(context.Background(), sess)
	assert.ErrorIs(t, err, status.ErrRecordingTimeout)
}

func TestRecordingService_StartRecording_WrongStateIgnored(t *testing.T) {
	svc := newTestRecordingService(newFakeStore(), newFakeBlobStore(), 30*time.Millisecond)

	// The engine reporting "off" must not satisfy a start request.
	sess := newFakeSession("room1", true)
	sess.onExecute = func(cmd conference.Command) {
		sess.emit(conference.EventPayload{
			Event:    conference.EventRecordingStatusChanged,
			RoomName: "room1",
			On:       false,
		})
	}

	err := svc.StartRecording(context.Background(), sess)
	assert.ErrorIs(t, err, status.ErrRecordingTimeout)
}

func TestRecordingService_UploadRecording(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := newTestRecordingService(newFakeStore(), blobs, time.Second)

	key, url, err := svc.UploadRecording(context.Background(), "ev1", "m1", []byte("video-bytes"))

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "recordings/ev1/m1/"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))
	assert.Equal(t, "http://blobs.test/"+key, url)

	exists, _ := blobs.Exists(context.Background(), key)
	assert.True(t, exists)
}

func TestRecordingService_UploadRecording_Empty(t *testing.T) {
	svc := newTestRecordingService(newFakeStore(), newFakeBlobStore(), time.Second)

	_, _, err := svc.UploadRecording(context.Background(), "ev1", "m1", nil)
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestRecordingService_UploadRecording_Oversize(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := newTestRecordingService(newFakeStore(), blobs, time.Second)
	svc.maxUploadSize = 16

	_, _, err := svc.UploadRecording(context.Background(), "ev1", "m1", bytes.Repeat([]byte("x"), 17))
	assert.ErrorIs(t, err, status.ErrValidation)

	// Nothing must reach the blob store.
	keys, _ := blobs.List(context.Background(), "recordings/")
	assert.Empty(t, keys)
}

func TestRecordingService_ReportsMetrics(t *testing.T) {
	store := newFakeStore()
	monitor := &fakeMonitor{}
	cfg := &config.Config{
		RecordingTimeout: time.Second,
		JWTSecret:        "test-secret",
		JWTIssuer:        "econnect-test",
		TokenTTL:         time.Hour,
	}
	svc := NewRecordingService(store, newFakeBlobStore(), NewTokenService(cfg), cfg, monitor)

	sess := newFakeSession("room1", true)
	sess.onExecute = func(cmd conference.Command) {
		sess.emit(conference.EventPayload{
			Event:    conference.EventRecordingStatusChanged,
			RoomName: "room1",
			On:       cmd == conference.CommandStartRecording,
		})
	}

	assert.NoError(t, svc.StartRecording(context.Background(), sess))
	assert.NoError(t, svc.StopRecording(context.Background(), sess))
	assert.Equal(t, []string{"startRecording:success", "stopRecording:success"}, monitor.operations)
	assert.Len(t, monitor.events, 2)

	rec := &models.Recording{EventID: "ev1", OwnerID: "host1", BlobKey: "k", Duration: 120}
	assert.NoError(t, svc.SaveRecordingMetadata(context.Background(), rec))
	assert.Equal(t, []time.Duration{120 * time.Second}, monitor.durations)
}

func TestRecordingService_SaveAndListRecordings(t *testing.T) {
	store := newFakeStore()
	svc := newTestRecordingService(store, newFakeBlobStore(), time.Second)

	rec := &models.Recording{
		EventID: "ev1",
		OwnerID: "host1",
		Title:   "Opening keynote",
		BlobKey: "recordings/ev1/m1/x.mp4",
	}
	assert.NoError(t, svc.SaveRecordingMetadata(context.Background(), rec))
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Created.IsZero())

	list, err := svc.ListRecordings(context.Background(), "ev1")
	assert.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordingService_SaveRecordingMetadata_Validation(t *testing.T) {
	svc := newTestRecordingService(newFakeStore(), newFakeBlobStore(), time.Second)

	err := svc.SaveRecordingMetadata(context.Background(), &models.Recording{EventID: "ev1"})
	assert.ErrorIs(t, err, status.ErrValidation)

	err = svc.SaveRecordingMetadata(context.Background(), &models.Recording{BlobKey: "k"})
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestRecordingService_DeleteRecording(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	svc := newTestRecordingService(store, blobs, time.Second)

	key, _, err := svc.UploadRecording(context.Background(), "ev1", "m1", []byte("video"))
	assert.NoError(t, err)

	rec := &models.Recording{EventID: "ev1", OwnerID: "host1", BlobKey: key}
	assert.NoError(t, svc.SaveRecordingMetadata(context.Background(), rec))

	assert.NoError(t, svc.DeleteRecording(context.Background(), rec.ID, SessionUser{ID: "host1"}, models.UserRoleUser))

	_, err = store.RecordingByID(context.Background(), rec.ID)
	assert.ErrorIs(t, err, status.ErrNotFound)

	exists, _ := blobs.Exists(context.Background(), key)
	assert.False(t, exists)
}

func TestRecordingService_DeleteRecording_NonOwnerDenied(t *testing.T) {
	store := newFakeStore()
	svc := newTestRecordingService(store, newFakeBlobStore(), time.Second)

	rec := &models.Recording{EventID: "ev1", OwnerID: "host1", BlobKey: "k"}
	assert.NoError(t, svc.SaveRecordingMetadata(context.Background(), rec))

	err := svc.DeleteRecording(context.Background(), rec.ID, SessionUser{ID: "other"}, models.UserRoleUser)
	assert.ErrorIs(t, err, status.ErrPermission)

	// Admins may delete any recording.
	assert.NoError(t, svc.DeleteRecording(context.Background(), rec.ID, SessionUser{ID: "other"}, models.UserRoleAdmin))
}

func TestRecordingService_DeleteRecording_BlobFailureStillDeletesRecord(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	blobs.deleteErr = errors.New("backend unavailable")
	svc := newTestRecordingService(store, blobs, time.Second)

	rec := &models.Recording{EventID: "ev1", OwnerID: "host1", BlobKey: "k"}
	assert.NoError(t, svc.SaveRecordingMetadata(context.Background(), rec))

	assert.NoError(t, svc.DeleteRecording(context.Background(), rec.ID, SessionUser{ID: "host1"}, models.UserRoleUser))

	_, err := store.RecordingByID(context.Background(), rec.ID)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestRecordingService_SignedDownloadURL(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobStore()
	svc := newTestRecordingService(store, blobs, time.Second)

	rec := &models.Recording{EventID: "ev1", OwnerID: "host1", BlobKey: "recordings/ev1/m1/x.mp4"}
	assert.NoError(t, svc.SaveRecordingMetadata(context.Background(), rec))

	url, err := svc.SignedDownloadURL(context.Background(), rec.ID, time.Minute)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://blobs.test/recordings/ev1/m1/x.mp4?token="))

	token := strings.TrimPrefix(url, "http://blobs.test/recordings/ev1/m1/x.mp4?token=")
	key, err := svc.tokens.VerifyDownload(token)
	assert.NoError(t, err)
	assert.Equal(t, rec.BlobKey, key)
}
