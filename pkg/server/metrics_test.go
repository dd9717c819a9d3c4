package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsJSONEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.metrics.RollsPerformed.Add(2)
	srv.metrics.DiceRolled.Add(5)

	rr := httptest.NewRecorder()
	srv.handleMetricsJSON(rr, httptest.NewRequest("GET", "/metrics.json", nil))

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var snap MetricsSnapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.RollsPerformed != 2 || snap.DiceRolled != 5 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestMetricsPrometheusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.metrics.Hellos.Add(3)

	rr := httptest.NewRecorder()
	srv.handleMetrics(rr, httptest.NewRequest("GET", "/metrics", nil))

	body := rr.Body.String()
	if !strings.Contains(body, "dire_hellos_total 3") {
		t.Fatalf("missing hello counter in:\n%s", body)
	}
}
