package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"storysync/internal/domain/sync"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	pingTimeout = 2 * time.Second
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db         Pinger
	version    string
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(db Pinger, version string, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:         db,
		version:    version,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.rootOp(), h.healthCheck)
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	connected := true
	if err := h.db.Ping(pingCtx); err != nil {
		h.log.Warn("database ping failed", slog.String("error", err.Error()))
		connected = false
	}

	status := StatusHealthy
	if !connected {
		status = StatusDegraded
	}

	return &Output{
		Body: Response{
			Status:            status,
			Timestamp:         sync.NewTimestamp(time.Now()),
			DatabaseConnected: connected,
			Version:           h.version,
		},
	}, nil
}
