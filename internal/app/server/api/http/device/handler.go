package device

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"storysync/internal/domain/device"
)

const messageRemoved = "Device removed"

type Handler struct {
	service    device.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service device.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.removeOp(), h.remove)
}

func (h *Handler) list(ctx context.Context, _ *listInput) (*listOutput, error) {
	devices, err := h.service.List(ctx)
	if err != nil {
		h.log.Error("list devices", slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("could not list devices")
	}

	out := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		out = append(out, DeviceInfo{
			DeviceID:   d.DeviceID,
			DeviceName: d.Name,
			IsActive:   d.IsActive,
			LastSyncAt: d.LastSync,
			CreatedAt:  d.CreatedAt,
		})
	}
	return &listOutput{Body: ListResponse{Devices: out}}, nil
}

func (h *Handler) remove(ctx context.Context, input *removeInput) (*removeOutput, error) {
	if err := h.service.Deactivate(ctx, input.DeviceID); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			return nil, huma.Error404NotFound("Device not found")
		}
		h.log.Error("deactivate device", slog.String("device_id", input.DeviceID), slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("could not remove device")
	}
	return &removeOutput{Body: RemoveResponse{Message: messageRemoved}}, nil
}
