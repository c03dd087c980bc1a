package handlers

import (
	"io"
	"net/http"
	"time"

	"econnect/internal/conference"
	"econnect/models"
	"econnect/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const maxRecordingUpload = services.MaxRecordingSize

type RecordingHandler struct {
	app        *pocketbase.PocketBase
	recordings *services.RecordingService
	sessions   *conference.Manager
}

func NewRecordingHandler(app *pocketbase.PocketBase, recordings *services.RecordingService, sessions *conference.Manager) *RecordingHandler {
	return &RecordingHandler{
		app:        app,
		recordings: recordings,
		sessions:   sessions,
	}
}

// StartRecording - Begin recording the caller's live room (host only)
func (h *RecordingHandler) StartRecording(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		RoomName string `json:"room_name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	sess, ok := h.sessions.Get(req.RoomName)
	if !ok {
		return apis.NewNotFoundError("No live session for room", nil)
	}

	if err := h.recordings.StartRecording(e.Request.Context(), sess); err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Recording started"})
}

// StopRecording - Stop the room's recording (host only)
func (h *RecordingHandler) StopRecording(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		RoomName string `json:"room_name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	sess, ok := h.sessions.Get(req.RoomName)
	if !ok {
		return apis.NewNotFoundError("No live session for room", nil)
	}

	if err := h.recordings.StopRecording(e.Request.Context(), sess); err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Recording stopped"})
}

// UploadRecording - Store a finished artifact and catalog it
func (h *RecordingHandler) UploadRecording(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	if err := e.Request.ParseMultipartForm(maxRecordingUpload); err != nil {
		return apis.NewBadRequestError("Invalid multipart form", err)
	}

	eventID := e.Request.FormValue("event_id")
	meetingID := e.Request.FormValue("meeting_id")
	title := e.Request.FormValue("title")

	file, _, err := e.Request.FormFile("file")
	if err != nil {
		return apis.NewBadRequestError("Recording file is required", err)
	}
	defer file.Close()

	// Read one byte past the cap so an oversize artifact is rejected
	// instead of silently truncated.
	content, err := io.ReadAll(io.LimitReader(file, maxRecordingUpload+1))
	if err != nil {
		return apis.NewBadRequestError("Failed to read recording file", err)
	}
	if len(content) > maxRecordingUpload {
		return apis.NewBadRequestError("Recording exceeds the 512 MiB upload limit", nil)
	}

	ctx := e.Request.Context()
	key, url, err := h.recordings.UploadRecording(ctx, eventID, meetingID, content)
	if err != nil {
		return mapError(err)
	}

	rec := &models.Recording{
		MeetingID: meetingID,
		EventID:   eventID,
		OwnerID:   e.Auth.Id,
		Title:     title,
		FileSize:  int64(len(content)),
		BlobKey:   key,
		URL:       url,
	}
	if err := h.recordings.SaveRecordingMetadata(ctx, rec); err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, rec)
}

// ListRecordings - Catalog of an event's recordings
func (h *RecordingHandler) ListRecordings(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")
	if eventID == "" {
		return apis.NewBadRequestError("Event ID is required", nil)
	}

	recordings, err := h.recordings.ListRecordings(e.Request.Context(), eventID)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"recordings": recordings,
		"count":      len(recordings),
	})
}

// DeleteRecording - Remove an artifact and its record (owner only)
func (h *RecordingHandler) DeleteRecording(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	recordingID := e.Request.PathValue("recordingId")
	if recordingID == "" {
		return apis.NewBadRequestError("Recording ID is required", nil)
	}

	if err := h.recordings.DeleteRecording(e.Request.Context(), recordingID, authUser(e), authRole(e)); err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Recording deleted"})
}

// GetDownloadURL - Mint a time-limited download link
func (h *RecordingHandler) GetDownloadURL(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	recordingID := e.Request.PathValue("recordingId")
	if recordingID == "" {
		return apis.NewBadRequestError("Recording ID is required", nil)
	}

	url, err := h.recordings.SignedDownloadURL(e.Request.Context(), recordingID, 15*time.Minute)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"url": url})
}
