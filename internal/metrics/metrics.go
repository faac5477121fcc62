// Package metrics collects and exposes Prometheus metrics for the app and
// the sync worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records application events. Handlers, services and the worker
// share one instance registered on a common registry.
type Collector struct {
	httpStatus      *prometheus.CounterVec
	httpLatency     prometheus.Histogram
	checkIns        prometheus.Counter
	expensesCreated prometheus.Counter
	syncSuccess     prometheus.Counter
	syncFailure     prometheus.Counter
	assistantCalls  prometheus.Counter
	assistantErrors prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaoqin_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kaoqin_http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kaoqin_checkins_total",
			Help: "Total attendance check-ins recorded.",
		}),
		expensesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kaoqin_expenses_created_total",
			Help: "Total expense entries created.",
		}),
		syncSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kaoqin_sync_success_total",
			Help: "Expenses successfully mirrored to the reimbursement sheet.",
		}),
		syncFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kaoqin_sync_failure_total",
			Help: "Expense sheet sync failures.",
		}),
		assistantCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kaoqin_assistant_requests_total",
			Help: "Assistant summary requests.",
		}),
		assistantErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kaoqin_assistant_errors_total",
			Help: "Assistant requests that fell back to the fixed failure message.",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.checkIns,
		c.expensesCreated,
		c.syncSuccess,
		c.syncFailure,
		c.assistantCalls,
		c.assistantErrors,
	)
	return c
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordHTTPLatency(d time.Duration) {
	c.httpLatency.Observe(d.Seconds())
}

func (c *Collector) RecordCheckIn()        { c.checkIns.Inc() }
func (c *Collector) RecordExpenseCreated() { c.expensesCreated.Inc() }
func (c *Collector) RecordSyncSuccess()    { c.syncSuccess.Inc() }
func (c *Collector) RecordSyncFailure()    { c.syncFailure.Inc() }
func (c *Collector) RecordAssistantCall()  { c.assistantCalls.Inc() }
func (c *Collector) RecordAssistantError() { c.assistantErrors.Inc() }

// Handler returns the Prometheus scrape handler for the registry.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
