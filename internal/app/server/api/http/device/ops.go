package device

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "devices-list",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List paired devices",
		Tags:        []string{"devices"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) removeOp() huma.Operation {
	return huma.Operation{
		OperationID: "devices-remove",
		Method:      http.MethodDelete,
		Path:        "/api/devices/{device_id}",
		Summary:     "Remove device",
		Description: "Deactivates the device; its sync history is kept",
		Tags:        []string{"devices"},
		Middlewares: h.middleware,
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}
}
