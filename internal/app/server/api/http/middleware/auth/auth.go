package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"storysync/internal/domain/device"
)

type Auth struct {
	devices device.Servicer
	log     *slog.Logger
}

func New(devices device.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		devices: devices,
		log:     log.With(slog.String("component", "auth_middleware")),
	}
}

type contextKey string

const DeviceKey contextKey = "device"

const bearerPrefix = "Bearer "

// Middleware пускает дальше только запросы с токеном активного устройства
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			a.log.Debug("missing bearer token", slog.String("path", ctx.URL().Path))
			a.unauthorized(ctx)
			return
		}

		d, err := a.devices.Authenticate(ctx.Context(), strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			if !errors.Is(err, device.ErrUnauthorized) {
				a.log.Error("authenticate device", slog.String("error", err.Error()))
			}
			a.unauthorized(ctx)
			return
		}

		newCtx := context.WithValue(ctx.Context(), DeviceKey, d)
		next(huma.WithContext(ctx, newCtx))
	}
}

func (a *Auth) unauthorized(ctx huma.Context) {
	ctx.SetHeader("WWW-Authenticate", "Bearer")
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(http.StatusUnauthorized)

	if err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"error": "Unauthorized",
	}); err != nil {
		a.log.Error("json encode", slog.String("error", err.Error()))
	}
}

// DeviceFrom достает устройство, положенное в контекст middleware
func DeviceFrom(ctx context.Context) (*device.Device, bool) {
	d, ok := ctx.Value(DeviceKey).(*device.Device)
	return d, ok && d != nil
}
