package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func TestMetricsRecordingAndHandler(t *testing.T) {
	m := NewMetrics("test")

	m.RecordFetch("daily_usage", OutcomeOK, 0.12)
	m.RecordFetch("balance", OutcomeRejected, 0.03)
	m.RecordSegment("ok")
	m.RecordCredentialLookup("env:YESCODE_API_KEY")
	m.SetTodaySpent(1.5)
	m.SetTotalBalance(50)
	m.RecordRequestLatency("/segment", "GET", "200", 0.01)
	m.RecordHTTPRequest("/segment", "GET", "200")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, name := range []string{
		"test_fetch_attempts_total",
		"test_fetch_duration_seconds",
		"test_segment_collections_total",
		"test_credential_lookups_total",
		"test_today_spent_dollars 1.5",
		"test_total_balance_dollars 50",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected metrics output to contain %s", name)
		}
	}

	families, err := m.registry.Gather()
	if err != nil {
		t.Fatalf("expected gather to succeed: %v", err)
	}
	if got := counterValue(families, "test_fetch_attempts_total", "outcome", OutcomeRejected); got != 1 {
		t.Fatalf("expected one rejected fetch, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordFetch("daily_usage", OutcomeOK, 0.1)
	m.RecordSegment("offline")
	m.RecordCredentialLookup("none")
	m.SetTodaySpent(1)
	m.SetTotalBalance(1)
}

func counterValue(families []*dto.MetricFamily, name, key, value string) float64 {
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.Metric {
			for _, label := range metric.Label {
				if label.GetName() == key && label.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
