package obsmetrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cobaltlabs/sandboxsup/internal/obsmetrics"
)

func TestRegistryExposesMetrics(t *testing.T) {
	t.Helper()

	obsmetrics.EmitBuildInfo()
	obsmetrics.SpawnStarted()
	obsmetrics.SpawnFinished(true, false, false, 250*time.Millisecond, 4<<20)
	obsmetrics.SpawnFailed()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(obsmetrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status code from metrics handler: %d", rec.Code)
	}

	body := rec.Body.String()

	if !strings.Contains(body, `sandboxsup_spawns_total{cause="timed_out"} 1`) {
		t.Fatalf("expected timed_out spawn count in body:\n%s", body)
	}
	if !strings.Contains(body, `sandboxsup_spawns_total{cause="spawn_error"} 1`) {
		t.Fatalf("expected spawn_error count in body:\n%s", body)
	}
	if !strings.Contains(body, "sandboxsup_active_spawns 0") {
		t.Fatalf("expected active_spawns to return to zero after SpawnFinished:\n%s", body)
	}
	if !strings.Contains(body, "sandboxsup_cpu_time_seconds_sum") {
		t.Fatalf("expected cpu_time_seconds histogram in body:\n%s", body)
	}
	if !strings.Contains(body, "sandboxsup_peak_memory_bytes_sum") {
		t.Fatalf("expected peak_memory_bytes histogram in body:\n%s", body)
	}
	if !strings.Contains(body, "sandboxsup_build_info{") {
		t.Fatalf("expected build info metric in body:\n%s", body)
	}
	if !strings.Contains(body, "go_version=") {
		t.Fatalf("expected go_version label on build info metric:\n%s", body)
	}
}
