package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"storysync/internal/app/server/config"
	"storysync/internal/domain/entity"
	"storysync/internal/infrastructure/metrics"
	"storysync/internal/infrastructure/migration"
	"storysync/internal/infrastructure/storage/sqlstore"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "storymaster.db")
	require.NoError(t, migration.NewMigration(config.DriverSQLite, path, nil).Up())

	store, err := sqlstore.Open(context.Background(), config.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{Env: config.EnvLocal}
	cfg.Server.AdvertiseHost = "192.168.1.10"
	cfg.Server.AdvertisePort = 8765
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Server.AdminLocalOnly = true
	cfg.Sync.MaxBatchSize = 10
	cfg.Pairing.TokenTTL = time.Minute
	cfg.Pairing.RateLimit = 100

	return New(Deps{
		Store:    store,
		Registry: entity.Storymaster(),
		Config:   cfg,
		Metrics:  metrics.New(),
	}, slog.Default())
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.168.1.50:40000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pair(t *testing.T, h http.Handler, deviceID, name string) string {
	t.Helper()

	rec := do(t, h, http.MethodGet, "/api/pair/qr-data", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	qr := decode[map[string]any](t, rec)
	assert.Equal(t, "192.168.1.10", qr["ip"])
	assert.EqualValues(t, 8765, qr["port"])

	rec = do(t, h, http.MethodPost, "/api/pair/register", "", map[string]any{
		"device_id":     deviceID,
		"device_name":   name,
		"pairing_token": qr["token"],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reg := decode[map[string]any](t, rec)
	token, _ := reg["auth_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAPI_PairPushPullStatus(t *testing.T) {
	h := newTestServer(t)
	token := pair(t, h, "d1", "Pixel")

	t.Run("sync requires bearer", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/sync/status", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

		rec = do(t, h, http.MethodGet, "/api/sync/status", "forged", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("push create and stale update", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/sync/push", token, map[string]any{
			"changes": []map[string]any{
				{
					"entity_type": "actor", "entity_id": 42, "operation": "create",
					"version": 1, "updated_at": "2024-05-01T10:00:00Z",
					"data": map[string]any{"first_name": "Ann", "group_id": 1},
				},
				{
					"entity_type": "spaceship", "entity_id": 1, "operation": "create",
					"version": 1, "updated_at": "2024-05-01T10:00:00Z", "data": map[string]any{},
				},
				{
					"entity_type": "actor", "entity_id": 42, "operation": "update",
					"version": 1, "updated_at": "2024-05-01T10:01:00Z",
					"data": map[string]any{"first_name": "Anna"},
				},
				{
					"entity_type": "actor", "entity_id": 42, "operation": "update",
					"version": 1, "updated_at": "2024-05-01T10:02:00Z",
					"data": map[string]any{"first_name": "Stale"},
				},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		res := decode[struct {
			Accepted  int              `json:"accepted"`
			Rejected  int              `json:"rejected"`
			Conflicts []map[string]any `json:"conflicts"`
			Message   string           `json:"message"`
		}](t, rec)
		assert.Equal(t, 2, res.Accepted)
		assert.Equal(t, 1, res.Rejected)
		require.Len(t, res.Conflicts, 1)
		assert.Equal(t, "merge", res.Conflicts[0]["resolution"])
		assert.EqualValues(t, 2, res.Conflicts[0]["desktop_version"])
		assert.Equal(t, "Sync completed", res.Message)
	})

	t.Run("full pull returns pushed entity", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/sync/pull", token, map[string]any{"entity_types": []string{"actor"}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		res := decode[struct {
			Changes []struct {
				EntityID  int64          `json:"entity_id"`
				Operation string         `json:"operation"`
				Version   int64          `json:"version"`
				Data      map[string]any `json:"data"`
			} `json:"changes"`
			SyncTimestamp string `json:"sync_timestamp"`
			HasMore       bool   `json:"has_more"`
		}](t, rec)
		require.Len(t, res.Changes, 1)
		assert.EqualValues(t, 42, res.Changes[0].EntityID)
		assert.Equal(t, "create", res.Changes[0].Operation)
		assert.EqualValues(t, 2, res.Changes[0].Version)
		assert.Equal(t, "Anna", res.Changes[0].Data["first_name"])
		assert.False(t, res.HasMore)
		assert.NotEmpty(t, res.SyncTimestamp)
	})

	t.Run("status after sync", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/sync/status", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		st := decode[map[string]any](t, rec)
		assert.Equal(t, "d1", st["device_id"])
		assert.Equal(t, "Pixel", st["device_name"])
		assert.NotNil(t, st["last_sync_at"])
		assert.EqualValues(t, 0, st["pending_changes_count"])
	})

	t.Run("batch over the cap", func(t *testing.T) {
		changes := make([]map[string]any, 11)
		for i := range changes {
			changes[i] = map[string]any{"entity_type": "actor", "entity_id": i + 100, "operation": "delete"}
		}
		rec := do(t, h, http.MethodPost, "/api/sync/push", token, map[string]any{"changes": changes})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestAPI_PushMalformedChange(t *testing.T) {
	h := newTestServer(t)
	token := pair(t, h, "d1", "Pixel")

	rec := do(t, h, http.MethodPost, "/api/sync/push", token, map[string]any{
		"changes": []any{
			map[string]any{
				"entity_type": "actor", "entity_id": 500, "operation": "create",
				"version": 1, "updated_at": "2024-05-01T10:00:00Z",
				"data": map[string]any{"first_name": "Ann", "group_id": 1},
			},
			map[string]any{
				"entity_type": "actor", "entity_id": 501, "operation": "create",
				"version": 1, "updated_at": "not-a-date",
				"data": map[string]any{"first_name": "Bob", "group_id": 1},
			},
			map[string]any{"entity_type": "actor", "entity_id": "abc", "operation": "delete"},
			map[string]any{
				"entity_type": "actor", "entity_id": 500, "operation": "update",
				"version": 1, "updated_at": "2024-05-01T10:01:00Z", "data": nil,
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, res["accepted"])
	assert.EqualValues(t, 3, res["rejected"])

	rec = do(t, h, http.MethodPost, "/api/sync/pull", token, map[string]any{"entity_types": []string{"actor"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pulled := decode[struct {
		Changes []struct {
			EntityID int64 `json:"entity_id"`
			Version  int64 `json:"version"`
		} `json:"changes"`
	}](t, rec)
	require.Len(t, pulled.Changes, 1)
	assert.EqualValues(t, 500, pulled.Changes[0].EntityID)
	// update с data: null не поднял версию
	assert.EqualValues(t, 1, pulled.Changes[0].Version)
}

func TestAPI_PairingTokenIsSingleUse(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/pair/qr-data", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	qr := decode[map[string]any](t, rec)

	body := map[string]any{"device_id": "d1", "device_name": "Pixel", "pairing_token": qr["token"]}
	rec = do(t, h, http.MethodPost, "/api/pair/register", "", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/pair/register", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_ReRegisterKeepsToken(t *testing.T) {
	h := newTestServer(t)

	first := pair(t, h, "d1", "Pixel")

	rec := do(t, h, http.MethodGet, "/api/pair/qr-data", "", nil)
	qr := decode[map[string]any](t, rec)
	rec = do(t, h, http.MethodPost, "/api/pair/register", "", map[string]any{
		"device_id": "d1", "device_name": "Renamed", "pairing_token": qr["token"],
	})
	require.Equal(t, http.StatusOK, rec.Code)

	reg := decode[map[string]any](t, rec)
	assert.Equal(t, first, reg["auth_token"])
	assert.Equal(t, "Pixel", reg["device_name"])
	assert.Equal(t, "Device already registered", reg["message"])
}

func TestAPI_DevicesAreLoopbackOnly(t *testing.T) {
	h := newTestServer(t)
	token := pair(t, h, "d1", "Pixel")

	rec := do(t, h, http.MethodGet, "/api/devices", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	local := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "127.0.0.1:50000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec = local(http.MethodGet, "/api/devices")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"device_id":"d1"`)

	rec = local(http.MethodDelete, "/api/devices/d1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = local(http.MethodDelete, "/api/devices/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// отключенное устройство больше не проходит авторизацию
	rec = do(t, h, http.MethodGet, "/api/sync/status", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, true, health["database_connected"])
	assert.Equal(t, Version, health["version"])

	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/api/v1/health",status="200"} 1`), body)
}

func TestAPI_PairingRateLimit(t *testing.T) {
	h := newTestServer(t)

	var limited bool
	for i := 0; i < 120; i++ {
		if rec := do(t, h, http.MethodGet, "/api/pair/qr-data", "", nil); rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)

	rec := do(t, h, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
