//GET    /                          # информация о сервисе (публичный)
//GET    /api/v1/health             # health check (публичный)
//GET    /api/pair/qr-data          # выпуск токена сопряжения (публичный, rate limit)
//GET    /api/pair/qr-image         # тот же токен в виде PNG (публичный, rate limit)
//POST   /api/pair/register         # обмен токена сопряжения на токен устройства
//POST   /api/sync/pull             # изменения для устройства (auth)
//POST   /api/sync/push             # применение изменений устройства (auth)
//GET    /api/sync/status           # состояние синхронизации (auth)
//GET    /api/devices               # список устройств (loopback)
//DELETE /api/devices/{device_id}   # отключение устройства (loopback)
//GET    /metrics                   # Prometheus

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"golang.org/x/exp/slog"

	"storysync/internal/app/server/api/http/device"
	healthAPI "storysync/internal/app/server/api/http/health"
	"storysync/internal/app/server/api/http/middleware"
	"storysync/internal/app/server/api/http/middleware/auth"
	"storysync/internal/app/server/api/http/middleware/localonly"
	"storysync/internal/app/server/api/http/middleware/logger"
	httpmetrics "storysync/internal/app/server/api/http/middleware/metrics"
	pairingAPI "storysync/internal/app/server/api/http/pairing"
	syncAPI "storysync/internal/app/server/api/http/sync"
	"storysync/internal/app/server/config"
	deviceDomain "storysync/internal/domain/device"
	"storysync/internal/domain/entity"
	"storysync/internal/domain/pairing"
	"storysync/internal/domain/sync"
	"storysync/internal/infrastructure/metrics"
	"storysync/internal/infrastructure/storage/sqlstore"
)

const (
	Title   = "Storymaster Sync API"
	Version = "1.0.0"

	pairPrefix = "/api/pair/"
)

type Handlers struct {
	Health  *healthAPI.Handler
	Pairing *pairingAPI.Handler
	Sync    *syncAPI.Handler
	Devices *device.Handler
}

// Deps зависимости, собранные в main
type Deps struct {
	Store    *sqlstore.Store
	Registry *entity.Registry
	Config   *config.Config
	Metrics  *metrics.Metrics
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(httpmetrics.Middleware(deps.Metrics))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	if deps.Config.Pairing.RateLimit > 0 {
		mux.Use(limitPrefix(pairPrefix, httprate.LimitByIP(deps.Config.Pairing.RateLimit, time.Minute)))
	}

	mux.Handle("/metrics", deps.Metrics.Handler())

	cfg := huma.DefaultConfig(Title, Version)
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, cfg)

	h := handlers(deps, log)
	h.Health.SetupRoutes(API)
	h.Pairing.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Devices.SetupRoutes(API)

	return mux
}

func handlers(deps Deps, log *slog.Logger) *Handlers {
	cfg := deps.Config

	deviceRepo := sqlstore.NewDeviceRepository(deps.Store)
	deviceService := deviceDomain.NewService(deviceRepo, log)

	authMW := auth.New(deviceService, log)
	loggerMW := logger.New(log)
	localMW := localonly.New(cfg.Server.AdminLocalOnly, log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(deps.Store, Version, log, middlewares.GetAllAndClear())

	pairingRepo := sqlstore.NewPairingRepository(deps.Store)
	pairingService := pairing.NewService(pairingRepo, deviceService, pairing.Config{
		AdvertiseHost: cfg.Server.AdvertiseHost,
		AdvertisePort: cfg.Server.AdvertisePort,
		TokenTTL:      cfg.Pairing.TokenTTL,
	}, log)
	middlewares.Add(loggerMW.Middleware())
	pairingHandler := pairingAPI.NewHandler(pairingService, log, middlewares.GetAllAndClear()).
		WithMetrics(deps.Metrics)

	syncService := sync.NewService(
		deps.Registry,
		sqlstore.NewEntityRepository(deps.Store),
		sqlstore.NewSyncLogRepository(deps.Store),
		deviceService,
		log,
		&sync.ServiceConfig{MaxBatchSize: cfg.Sync.MaxBatchSize},
	).WithMetrics(deps.Metrics)
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	syncHandler := syncAPI.NewHandler(syncService, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(localMW.Middleware())
	devicesHandler := device.NewHandler(deviceService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:  healthHandler,
		Pairing: pairingHandler,
		Sync:    syncHandler,
		Devices: devicesHandler,
	}
}

// limitPrefix применяет mw только к путям с префиксом: huma регистрирует все операции на одном mux
func limitPrefix(prefix string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
