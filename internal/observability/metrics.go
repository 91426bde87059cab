package observability

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

// Metrics is nil when METRICS_ENABLED is off; every method is safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	actionsRecorded   *prometheus.CounterVec
	profileUpdates    *prometheus.CounterVec
	profileConflicts  prometheus.Counter
	recommendRequests *prometheus.CounterVec
	recommendItems    *prometheus.HistogramVec
	ledgerStatus      *prometheus.CounterVec
	rateLimited       *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("prometheus metrics enabled")
		}
	})
	return instance
}

// NewMetrics builds a Metrics on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperrec_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paperrec_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "paperrec_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		actionsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperrec_actions_recorded_total",
			Help: "User actions appended to the action log by type.",
		}, []string{"action_type"}),
		profileUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperrec_profile_updates_total",
			Help: "Preference profile updates by outcome.",
		}, []string{"outcome"}),
		profileConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paperrec_profile_update_conflicts_total",
			Help: "Optimistic-lock conflicts while saving preference profiles.",
		}),
		recommendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperrec_recommend_requests_total",
			Help: "Recommendation requests by resolved mode and whether the ledger was written.",
		}, []string{"mode", "persisted"}),
		recommendItems: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paperrec_recommend_items",
			Help:    "Number of papers returned per recommendation request.",
			Buckets: []float64{0, 1, 5, 10, 20, 50},
		}, []string{"mode"}),
		ledgerStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperrec_ledger_status_updates_total",
			Help: "Recommendation status updates by new status.",
		}, []string{"status"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperrec_rate_limited_total",
			Help: "Requests rejected by the rate limiter by route.",
		}, []string{"route"}),
	}
	reg.MustRegister(
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.actionsRecorded, m.profileUpdates, m.profileConflicts,
		m.recommendRequests, m.recommendItems, m.ledgerStatus, m.rateLimited,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RegisterDBStats exports database/sql pool stats for db.
func (m *Metrics) RegisterDBStats(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, "paperrec")); err != nil && log != nil {
		log.Warn("metrics: db stats collector not registered", "error", err)
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncActionRecorded(actionType string) {
	if m == nil {
		return
	}
	m.actionsRecorded.WithLabelValues(actionType).Inc()
}

func (m *Metrics) IncProfileUpdate(outcome string) {
	if m == nil {
		return
	}
	m.profileUpdates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncProfileConflict() {
	if m == nil {
		return
	}
	m.profileConflicts.Inc()
}

func (m *Metrics) ObserveRecommend(mode string, persisted bool, items int) {
	if m == nil {
		return
	}
	m.recommendRequests.WithLabelValues(mode, strconv.FormatBool(persisted)).Inc()
	m.recommendItems.WithLabelValues(mode).Observe(float64(items))
}

func (m *Metrics) IncLedgerStatus(status string) {
	if m == nil {
		return
	}
	m.ledgerStatus.WithLabelValues(status).Inc()
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}
