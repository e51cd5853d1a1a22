package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storysync/internal/domain/sync"
)

func TestMetrics_ObserveChange(t *testing.T) {
	m := New()

	m.ObserveChange("actor", sync.OpUpdate, sync.OutcomeAccepted)
	m.ObserveChange("actor", sync.OpUpdate, sync.OutcomeAccepted)
	m.ObserveChange("unknown", sync.OpCreate, sync.OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncChangesTotal.WithLabelValues("actor", "update", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncChangesTotal.WithLabelValues("unknown", "create", "rejected")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObservePull("location", 3)
	m.ObserveHTTP(http.MethodPost, "/api/sync/pull", http.StatusOK, 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sync_pull_changes_total{entity_type="location"} 3`)
	assert.Contains(t, body, `http_requests_total{method="POST",path="/api/sync/pull",status="200"} 1`)
}
