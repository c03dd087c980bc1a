package handlers

import (
	"net/http"

	"econnect/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type SessionHandler struct {
	app            *pocketbase.PocketBase
	sessionService *services.SessionService
	tokenService   *services.TokenService
	presence       *services.PresenceService
}

func NewSessionHandler(app *pocketbase.PocketBase, sessionService *services.SessionService, tokenService *services.TokenService, presence *services.PresenceService) *SessionHandler {
	return &SessionHandler{
		app:            app,
		sessionService: sessionService,
		tokenService:   tokenService,
		presence:       presence,
	}
}

// JoinMeeting - Record the caller joining a room and mint their credential.
// When the event is broadcasting, the broadcast room replaces whatever room
// the caller asked for.
func (h *SessionHandler) JoinMeeting(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		EventID  string `json:"event_id"`
		RoomName string `json:"room_name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.RoomName == "" {
		return apis.NewBadRequestError("Room name is required", nil)
	}

	ctx := e.Request.Context()

	if broadcast := h.presence.ActiveBroadcast(ctx, req.EventID); broadcast != "" {
		req.RoomName = broadcast
	}

	user := authUser(e)
	meeting, err := h.sessionService.JoinMeeting(ctx, req.EventID, req.RoomName, user)
	if err != nil {
		return mapError(err)
	}

	token, err := h.tokenService.IssueToken(&services.IssueTokenRequest{
		RoomName:    req.RoomName,
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       e.Auth.Email(),
		IsModerator: meeting.HostID == user.ID,
	})
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"meeting":   meeting,
		"room_name": req.RoomName,
		"token":     token,
	})
}

// LeaveMeeting - Record the caller leaving a room
func (h *SessionHandler) LeaveMeeting(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		RoomName string `json:"room_name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	meeting, err := h.sessionService.LeaveMeeting(e.Request.Context(), req.RoomName, e.Auth.Id)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Successfully left meeting",
		"ended":   meeting.Ended(),
	})
}

// GetMeeting - Fetch the lifecycle record for a room
func (h *SessionHandler) GetMeeting(e *core.RequestEvent) error {
	roomName := e.Request.PathValue("roomName")
	if roomName == "" {
		return apis.NewBadRequestError("Room name is required", nil)
	}

	meeting, err := h.sessionService.MeetingByRoom(e.Request.Context(), roomName)
	if err != nil {
		return mapError(err)
	}

	count, err := h.sessionService.PresenceCount(e.Request.Context(), roomName)
	if err != nil {
		count = 0
	}

	return e.JSON(http.StatusOK, map[string]any{
		"meeting":       meeting,
		"present_count": count,
	})
}
