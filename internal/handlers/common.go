package handlers

import (
	"errors"
	"net/http"

	"econnect/internal/status"
	"econnect/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// mapError translates service-layer sentinel errors into API responses.
func mapError(err error) error {
	switch {
	case errors.Is(err, status.ErrNotFound):
		return apis.NewNotFoundError(err.Error(), err)
	case errors.Is(err, status.ErrPermission):
		return apis.NewForbiddenError(err.Error(), err)
	case errors.Is(err, status.ErrValidation), errors.Is(err, status.ErrTableFull):
		return apis.NewBadRequestError(err.Error(), err)
	case errors.Is(err, status.ErrRecordingTimeout):
		return apis.NewApiError(http.StatusGatewayTimeout, err.Error(), err)
	default:
		return apis.NewBadRequestError("Request failed", err)
	}
}

func authUser(e *core.RequestEvent) services.SessionUser {
	return services.SessionUser{
		ID:          e.Auth.Id,
		DisplayName: e.Auth.GetString("name"),
	}
}

func authRole(e *core.RequestEvent) string {
	return e.Auth.GetString("role")
}
