package handlers

import (
	"net/http"

	"econnect/internal/conference"
	"econnect/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TokenHandler struct {
	app            *pocketbase.PocketBase
	tokenService   *services.TokenService
	sessionService *services.SessionService
	sessions       *conference.Manager
}

func NewTokenHandler(app *pocketbase.PocketBase, tokenService *services.TokenService, sessionService *services.SessionService, sessions *conference.Manager) *TokenHandler {
	return &TokenHandler{
		app:            app,
		tokenService:   tokenService,
		sessionService: sessionService,
		sessions:       sessions,
	}
}

// IssueToken - Mint a room credential for the caller
func (h *TokenHandler) IssueToken(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		RoomName    string `json:"room_name"`
		IsModerator bool   `json:"is_moderator"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	token, err := h.tokenService.IssueToken(&services.IssueTokenRequest{
		RoomName:    req.RoomName,
		UserID:      e.Auth.Id,
		DisplayName: e.Auth.GetString("name"),
		Email:       e.Auth.Email(),
		AvatarURL:   e.Auth.GetString("avatar"),
		IsModerator: req.IsModerator,
	})
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"token": token})
}

// OpenRoom - Open a server-side engine session into a room and attach the
// lifecycle to it, so the engine's leave signal is recorded automatically
func (h *TokenHandler) OpenRoom(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		RoomName string `json:"room_name"`
		IsHost   bool   `json:"is_host"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	token, err := h.tokenService.IssueToken(&services.IssueTokenRequest{
		RoomName:    req.RoomName,
		UserID:      e.Auth.Id,
		DisplayName: e.Auth.GetString("name"),
		IsModerator: req.IsHost,
	})
	if err != nil {
		return mapError(err)
	}

	sess, err := h.sessions.Open(e.Request.Context(), &conference.OpenOptions{
		RoomName:   req.RoomName,
		Credential: token,
		IsHost:     req.IsHost,
	})
	if err != nil {
		return mapError(err)
	}

	h.sessionService.Attach(sess, req.RoomName, e.Auth.Id, nil)

	cfg, iface := sess.Overrides()
	return e.JSON(http.StatusOK, map[string]any{
		"room_name": sess.RoomName(),
		"is_host":   sess.IsHost(),
		"token":     token,
		"config":    cfg,
		"interface": iface,
	})
}

// CloseRoom - Dispose the server-side session for a room
func (h *TokenHandler) CloseRoom(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		RoomName string `json:"room_name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	h.sessionService.Detach(req.RoomName, e.Auth.Id)
	h.sessions.CloseRoom(req.RoomName)

	return e.JSON(http.StatusOK, map[string]any{"message": "Room closed"})
}
