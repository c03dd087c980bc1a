package handlers

import (
	"net/http"

	"econnect/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TableHandler struct {
	app      *pocketbase.PocketBase
	presence *services.PresenceService
}

func NewTableHandler(app *pocketbase.PocketBase, presence *services.PresenceService) *TableHandler {
	return &TableHandler{
		app:      app,
		presence: presence,
	}
}

// ListTables - All tables of an event, plus the broadcast state
func (h *TableHandler) ListTables(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")
	if eventID == "" {
		return apis.NewBadRequestError("Event ID is required", nil)
	}

	tables, err := h.presence.ListTables(e.Request.Context(), eventID)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"tables":    tables,
		"broadcast": h.presence.ActiveBroadcast(e.Request.Context(), eventID),
	})
}

// CreateTable - Add a table to an event (host only)
func (h *TableHandler) CreateTable(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		EventID  string `json:"event_id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	table, err := h.presence.CreateTable(e.Request.Context(), req.EventID, req.Name, req.Capacity, authUser(e), authRole(e))
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, table)
}

// JoinTable - Seat the caller at a table
func (h *TableHandler) JoinTable(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		TableID string `json:"table_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	table, roomName, err := h.presence.JoinTable(e.Request.Context(), req.TableID, e.Auth.Id)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"table":     table,
		"room_name": roomName,
	})
}

// LeaveTable - Vacate the caller's seat
func (h *TableHandler) LeaveTable(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		TableID string `json:"table_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.presence.LeaveTable(e.Request.Context(), req.TableID, e.Auth.Id); err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Successfully left table"})
}

// StartBroadcast - Switch the event into broadcast mode (host only)
func (h *TableHandler) StartBroadcast(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		EventID string `json:"event_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	roomName, err := h.presence.StartBroadcast(e.Request.Context(), req.EventID, authUser(e), authRole(e))
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"room_name": roomName})
}

// EndBroadcast - Restore the table grid (host only)
func (h *TableHandler) EndBroadcast(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		EventID string `json:"event_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.presence.EndBroadcast(e.Request.Context(), req.EventID, authUser(e), authRole(e)); err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Broadcast ended"})
}
