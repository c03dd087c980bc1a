package handlers

import (
	"net/http"
	"strconv"

	"econnect/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type ServiceHandler struct {
	app         *pocketbase.PocketBase
	marketplace *services.MarketplaceService
}

func NewServiceHandler(app *pocketbase.PocketBase, marketplace *services.MarketplaceService) *ServiceHandler {
	return &ServiceHandler{
		app:         app,
		marketplace: marketplace,
	}
}

// CreateService - List a new provider service (provider accounts only)
func (h *ServiceHandler) CreateService(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req services.CreateServiceRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	svc, err := h.marketplace.CreateService(e.Request.Context(), &req, authUser(e), authRole(e))
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, svc)
}

// ListServices - Page through the service catalog
func (h *ServiceHandler) ListServices(e *core.RequestEvent) error {
	limit, _ := strconv.Atoi(e.Request.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(e.Request.URL.Query().Get("offset"))

	list, err := h.marketplace.ListServices(e.Request.Context(), limit, offset)
	if err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"services": list,
		"count":    len(list),
	})
}

// DeleteService - Remove a listing (owner only)
func (h *ServiceHandler) DeleteService(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	serviceID := e.Request.PathValue("serviceId")
	if serviceID == "" {
		return apis.NewBadRequestError("Service ID is required", nil)
	}

	if err := h.marketplace.DeleteService(e.Request.Context(), serviceID, authUser(e), authRole(e)); err != nil {
		return mapError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Service deleted"})
}
