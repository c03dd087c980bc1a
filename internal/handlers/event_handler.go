package handlers

import (
	"net/http"
	"strconv"

	"econnect/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type EventHandler struct {
	app          *pocketbase.PocketBase
	eventService *services.EventService
}

func NewEventHandler(app *pocketbase.PocketBase, eventService *services.EventService) *EventHandler {
	return &EventHandler{
		app:          app,
		eventService: eventService,
	}
}

// CreateEvent - Schedule a new event
func (h *EventHandler) CreateEvent(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req services.CreateEventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	event, err := h.eventService.CreateEvent(e.Request.Context(), &req, authUser(e))
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, event)
}

// GetEvent - Fetch a single event
func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")
	if eventID == "" {
		return apis.NewBadRequestError("Event ID is required", nil)
	}

	event, err := h.eventService.EventByID(e.Request.Context(), eventID)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, event)
}

// ListEvents - Page through events
func (h *EventHandler) ListEvents(e *core.RequestEvent) error {
	limit, _ := strconv.Atoi(e.Request.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(e.Request.URL.Query().Get("offset"))

	events, err := h.eventService.ListEvents(e.Request.Context(), limit, offset)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// JoinEvent - Register on the event roster
func (h *EventHandler) JoinEvent(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		EventID  string `json:"event_id"`
		Passcode string `json:"passcode"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	event, err := h.eventService.JoinEvent(e.Request.Context(), req.EventID, e.Auth.Id, req.Passcode)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":  "Successfully joined event",
		"event_id": event.ID,
	})
}

// LeaveEvent - Drop off the event roster
func (h *EventHandler) LeaveEvent(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		EventID string `json:"event_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.eventService.LeaveEvent(e.Request.Context(), req.EventID, e.Auth.Id); err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Successfully left event"})
}
