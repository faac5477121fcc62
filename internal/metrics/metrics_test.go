package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCheckIn()
	c.RecordCheckIn()
	c.RecordExpenseCreated()
	c.RecordSyncSuccess()
	c.RecordSyncFailure()
	c.RecordAssistantCall()
	c.RecordAssistantError()
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)
	c.RecordHTTPStatus(200)

	if got := counterValue(t, reg, "kaoqin_checkins_total"); got != 2 {
		t.Errorf("checkins_total = %v, want 2", got)
	}
	if got := counterValue(t, reg, "kaoqin_expenses_created_total"); got != 1 {
		t.Errorf("expenses_created_total = %v, want 1", got)
	}
	if got := counterValue(t, reg, "kaoqin_http_status_total"); got != 3 {
		t.Errorf("http_status_total = %v, want 3", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCheckIn()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "kaoqin_checkins_total 1") {
		t.Errorf("scrape output missing checkins counter:\n%s", body)
	}
}
