package localonly

import (
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"storysync/internal/netutil"
)

// Guard закрывает административные операции от запросов не с loopback
type Guard struct {
	enabled bool
	log     *slog.Logger
}

func New(enabled bool, log *slog.Logger) *Guard {
	return &Guard{
		enabled: enabled,
		log:     log.With(slog.String("component", "localonly_middleware")),
	}
}

func (g *Guard) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !g.enabled || netutil.IsLoopback(ctx.RemoteAddr()) {
			next(ctx)
			return
		}

		g.log.Warn("admin request from remote address rejected",
			slog.String("remote_addr", ctx.RemoteAddr()),
			slog.String("path", ctx.URL().Path),
		)
		ctx.SetHeader("Content-Type", "application/json")
		ctx.SetStatus(http.StatusForbidden)
		_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
			"error": "Forbidden",
		})
	}
}
