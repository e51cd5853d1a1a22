package pairing

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"storysync/internal/domain/device"
	"storysync/internal/domain/pairing"
)

const (
	MessagePaired            = "Device paired successfully"
	MessageAlreadyRegistered = "Device already registered"
)

// Observer счетчик исходов сопряжения
type Observer interface {
	ObservePairing(result string)
}

type nopObserver struct{}

func (nopObserver) ObservePairing(string) {}

type Handler struct {
	service    pairing.Servicer
	metrics    Observer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service pairing.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		metrics:    nopObserver{},
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) WithMetrics(o Observer) *Handler {
	if o != nil {
		h.metrics = o
	}
	return h
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.qrDataOp(), h.qrData)
	huma.Register(api, h.qrImageOp(), h.qrImage)
	huma.Register(api, h.registerOp(), h.register)
}

func (h *Handler) qrData(ctx context.Context, _ *qrDataInput) (*qrDataOutput, error) {
	p, err := h.service.Issue(ctx, 0)
	if err != nil {
		h.log.Error("issue pairing token", slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("could not issue pairing token")
	}

	return &qrDataOutput{
		Body: QRData{
			IP:        p.IP,
			Port:      p.Port,
			Token:     p.Token,
			ExpiresAt: p.ExpiresAt,
		},
	}, nil
}

func (h *Handler) qrImage(ctx context.Context, input *qrImageInput) (*qrImageOutput, error) {
	p, err := h.service.Issue(ctx, 0)
	if err != nil {
		h.log.Error("issue pairing token", slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("could not issue pairing token")
	}

	png, err := pairing.EncodeQR(p, input.Size)
	if err != nil {
		h.log.Error("encode qr", slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("could not render qr code")
	}

	return &qrImageOutput{
		ContentType:  "image/png",
		CacheControl: "no-store",
		Body:         png,
	}, nil
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	req := input.Body

	reg, err := h.service.Register(ctx, req.DeviceID, req.DeviceName, req.PairingToken)
	if err != nil {
		switch {
		case errors.Is(err, pairing.ErrInvalidToken):
			h.metrics.ObservePairing("invalid_token")
			return nil, huma.Error401Unauthorized("Invalid or expired pairing token")
		case errors.Is(err, device.ErrInvalidDevice):
			h.metrics.ObservePairing("invalid_device")
			return nil, huma.Error400BadRequest(err.Error())
		}
		h.metrics.ObservePairing("error")
		h.log.Error("register device", slog.String("device_id", req.DeviceID), slog.String("error", err.Error()))
		return nil, huma.Error500InternalServerError("registration failed")
	}

	message := MessagePaired
	result := "paired"
	if reg.Existed {
		message = MessageAlreadyRegistered
		result = "already_registered"
	}
	h.metrics.ObservePairing(result)

	return &registerOutput{
		Body: RegisterResponse{
			DeviceID:   reg.Device.DeviceID,
			DeviceName: reg.Device.Name,
			AuthToken:  reg.Device.AuthToken,
			Message:    message,
		},
	}, nil
}
