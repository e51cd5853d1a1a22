package localonly

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestGuard_Middleware(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		remoteAddr string
		wantStatus int
	}{
		{name: "loopback v4", enabled: true, remoteAddr: "127.0.0.1:5000", wantStatus: http.StatusNoContent},
		{name: "loopback v6", enabled: true, remoteAddr: "[::1]:5000", wantStatus: http.StatusNoContent},
		{name: "lan address", enabled: true, remoteAddr: "192.168.1.20:5000", wantStatus: http.StatusForbidden},
		{name: "garbage address", enabled: true, remoteAddr: "???", wantStatus: http.StatusForbidden},
		{name: "guard disabled", enabled: false, remoteAddr: "192.168.1.20:5000", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, api := humatest.New(t)
			g := New(tt.enabled, slog.Default())
			huma.Register(api, huma.Operation{
				OperationID: "admin",
				Method:      http.MethodGet,
				Path:        "/admin",
				Middlewares: huma.Middlewares{g.Middleware()},
			}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
				return nil, nil
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()
			api.Adapter().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
