package sync

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"storysync/internal/app/server/api/http/middleware/auth"
	"storysync/internal/domain/device"
	"storysync/internal/domain/sync"
)

const messagePushed = "Sync completed"

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pullOp(), h.pull)
	huma.Register(api, h.pushOp(), h.push)
	huma.Register(api, h.statusOp(), h.status)
}

func (h *Handler) pull(ctx context.Context, input *pullInput) (*pullOutput, error) {
	d, err := currentDevice(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.service.Pull(ctx, d, input.Body)
	if err != nil {
		h.log.Error("pull failed", slog.String("device_id", d.DeviceID), slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("pull failed")
	}
	return &pullOutput{Body: *resp}, nil
}

func (h *Handler) push(ctx context.Context, input *pushInput) (*pushOutput, error) {
	d, err := currentDevice(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.service.Push(ctx, d, input.Body.Changes)
	if err != nil {
		if errors.Is(err, sync.ErrBatchTooLarge) {
			return nil, huma.NewError(http.StatusRequestEntityTooLarge, err.Error())
		}
		h.log.Error("push failed", slog.String("device_id", d.DeviceID), slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("push failed")
	}

	return &pushOutput{
		Body: PushResponse{
			PushResult: *result,
			Message:    messagePushed,
		},
	}, nil
}

func (h *Handler) status(ctx context.Context, _ *statusInput) (*statusOutput, error) {
	d, err := currentDevice(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.service.Status(ctx, d)
	if err != nil {
		h.log.Error("status failed", slog.String("device_id", d.DeviceID), slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("status failed")
	}
	return &statusOutput{Body: *resp}, nil
}

func currentDevice(ctx context.Context) (*device.Device, error) {
	d, ok := auth.DeviceFrom(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	return d, nil
}
