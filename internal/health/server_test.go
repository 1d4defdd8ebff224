package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-better/internal/metrics"
	"github.com/yourusername/value-better/internal/scheduler"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

type stubScans struct {
	result *scheduler.RunResult
}

func (s stubScans) LastRun() (scheduler.RunResult, bool) {
	if s.result == nil {
		return scheduler.RunResult{}, false
	}
	return *s.result, true
}

func serve(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(Config{ServiceName: "value-better", Version: "1.2.0"})
	rec, body := serve(t, s, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.0", body["version"])
}

func TestReadyEndpoint(t *testing.T) {
	failed := &scheduler.RunResult{Name: "scan", Started: time.Now(), Err: errors.New("quota exhausted")}
	succeeded := &scheduler.RunResult{Name: "scan", Started: time.Now()}

	tests := []struct {
		name   string
		ready  bool
		db     DatabasePinger
		scans  ScanStatus
		status int
		checks map[string]string
	}{
		{"not marked ready", false, nil, nil, http.StatusServiceUnavailable, map[string]string{"service": "not_ready"}},
		{"ready", true, nil, nil, http.StatusOK, map[string]string{"service": "ok"}},
		{"database down", true, stubPinger{err: errors.New("refused")}, nil, http.StatusServiceUnavailable,
			map[string]string{"service": "ok", "database": "error: refused"}},
		{"no scan yet", true, stubPinger{}, stubScans{}, http.StatusOK,
			map[string]string{"service": "ok", "database": "ok", "scan": "pending"}},
		{"last scan failed", true, nil, stubScans{result: failed}, http.StatusServiceUnavailable,
			map[string]string{"service": "ok", "scan": "error: quota exhausted"}},
		{"last scan ok", true, nil, stubScans{result: succeeded}, http.StatusOK,
			map[string]string{"service": "ok", "scan": "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{ServiceName: "value-better", DB: tt.db, Scans: tt.scans})
			s.SetReady(tt.ready)

			rec, body := serve(t, s, "/ready")
			assert.Equal(t, tt.status, rec.Code)

			checks := map[string]string{}
			for k, v := range body["checks"].(map[string]interface{}) {
				checks[k] = v.(string)
			}
			assert.Equal(t, tt.checks, checks)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.InitRegistry()
	metrics.UpdateBankroll(1000)

	s := NewServer(Config{MetricsPath: "/prom"})
	rec, _ := serve(t, s, "/prom")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "value_better_bankroll")
}
