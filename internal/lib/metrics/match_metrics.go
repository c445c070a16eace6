package metrics

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"tenant_match/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MatchMetrics — метрики поиска совпадений по обоим направлениям.
// Счётчики хранятся атомарно (для JSON-снимка) и дублируются в Prometheus.
type MatchMetrics struct {
	log *slog.Logger

	forTenant   directionCounters
	forProperty directionCounters

	notificationsSent   int64
	notificationsFailed int64

	registry      *prometheus.Registry
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	candidates    *prometheus.CounterVec
	matches       *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

type directionCounters struct {
	runsTotal       int64
	errorsTotal     int64
	candidatesTotal int64
	skippedTotal    int64
	matchesTotal    int64
	latencyTotalMs  int64
	lastLatencyMs   int64
}

// RunStats — итог одного прогона ранжирования.
type RunStats struct {
	Candidates int
	Skipped    int
	Matches    int
}

// NewMatchMetrics создаёт метрики с собственным реестром Prometheus.
func NewMatchMetrics(log *slog.Logger) *MatchMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &MatchMetrics{
		log:      log,
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matching_runs_total",
				Help: "Total number of ranking runs",
			},
			[]string{"direction", "status"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matching_run_duration_seconds",
				Help:    "Duration of ranking runs including candidate fetch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),
		candidates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matching_candidates_total",
				Help: "Candidates seen by the scorer",
			},
			[]string{"direction", "outcome"},
		),
		matches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matching_results_total",
				Help: "Matches returned above the inclusion threshold",
			},
			[]string{"direction"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matching_notifications_total",
				Help: "Match notifications emitted",
			},
			[]string{"status"},
		),
	}
}

func (m *MatchMetrics) counters(direction domain.MatchDirection) *directionCounters {
	if direction == domain.DirectionPropertyToTenants {
		return &m.forProperty
	}
	return &m.forTenant
}

// RecordRun записывает прогон ранжирования.
func (m *MatchMetrics) RecordRun(direction domain.MatchDirection, latency time.Duration, stats RunStats, err error) {
	latencyMs := latency.Milliseconds()
	c := m.counters(direction)

	atomic.AddInt64(&c.runsTotal, 1)
	atomic.AddInt64(&c.latencyTotalMs, latencyMs)
	atomic.StoreInt64(&c.lastLatencyMs, latencyMs)
	atomic.AddInt64(&c.candidatesTotal, int64(stats.Candidates))
	atomic.AddInt64(&c.skippedTotal, int64(stats.Skipped))
	atomic.AddInt64(&c.matchesTotal, int64(stats.Matches))

	status := "ok"
	if err != nil {
		atomic.AddInt64(&c.errorsTotal, 1)
		status = "error"
	}

	dir := direction.String()
	m.runsTotal.WithLabelValues(dir, status).Inc()
	m.runDuration.WithLabelValues(dir).Observe(latency.Seconds())
	m.candidates.WithLabelValues(dir, "scored").Add(float64(stats.Candidates - stats.Skipped))
	m.candidates.WithLabelValues(dir, "skipped").Add(float64(stats.Skipped))
	m.matches.WithLabelValues(dir).Add(float64(stats.Matches))

	if m.log != nil {
		attrs := []any{
			slog.String("direction", dir),
			slog.Int64("latency_ms", latencyMs),
			slog.Int("candidates", stats.Candidates),
			slog.Int("matches", stats.Matches),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			m.log.Warn("matching run failed", attrs...)
		} else {
			m.log.Debug("matching run completed", attrs...)
		}
	}
}

// RecordNotification записывает попытку отправки уведомления.
func (m *MatchMetrics) RecordNotification(err error) {
	if err != nil {
		atomic.AddInt64(&m.notificationsFailed, 1)
		m.notifications.WithLabelValues("error").Inc()
		return
	}
	atomic.AddInt64(&m.notificationsSent, 1)
	m.notifications.WithLabelValues("ok").Inc()
}

// RunTimer помогает измерять время прогона.
type RunTimer struct {
	metrics   *MatchMetrics
	direction domain.MatchDirection
	startTime time.Time
}

// StartTimer начинает измерение времени прогона.
func (m *MatchMetrics) StartTimer(direction domain.MatchDirection) *RunTimer {
	return &RunTimer{
		metrics:   m,
		direction: direction,
		startTime: time.Now(),
	}
}

// Stop останавливает таймер и записывает метрики.
func (t *RunTimer) Stop(stats RunStats, err error) {
	t.metrics.RecordRun(t.direction, time.Since(t.startTime), stats, err)
}

// Stats — снимок метрик.
type Stats struct {
	ForTenant           DirectionStats `json:"tenant_to_properties"`
	ForProperty         DirectionStats `json:"property_to_tenants"`
	NotificationsSent   int64          `json:"notifications_sent"`
	NotificationsFailed int64          `json:"notifications_failed"`
}

// DirectionStats — статистика по одному направлению поиска.
type DirectionStats struct {
	RunsTotal       int64   `json:"runs_total"`
	ErrorsTotal     int64   `json:"errors_total"`
	ErrorRate       float64 `json:"error_rate"`
	CandidatesTotal int64   `json:"candidates_total"`
	SkippedTotal    int64   `json:"skipped_total"`
	MatchesTotal    int64   `json:"matches_total"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	LastLatencyMs   int64   `json:"last_latency_ms"`
}

// GetStats возвращает текущую статистику.
func (m *MatchMetrics) GetStats() Stats {
	return Stats{
		ForTenant:           m.forTenant.snapshot(),
		ForProperty:         m.forProperty.snapshot(),
		NotificationsSent:   atomic.LoadInt64(&m.notificationsSent),
		NotificationsFailed: atomic.LoadInt64(&m.notificationsFailed),
	}
}

func (c *directionCounters) snapshot() DirectionStats {
	runs := atomic.LoadInt64(&c.runsTotal)
	errors := atomic.LoadInt64(&c.errorsTotal)
	latencyTotal := atomic.LoadInt64(&c.latencyTotalMs)

	var errorRate, avgLatency float64
	if runs > 0 {
		errorRate = float64(errors) / float64(runs)
		avgLatency = float64(latencyTotal) / float64(runs)
	}

	return DirectionStats{
		RunsTotal:       runs,
		ErrorsTotal:     errors,
		ErrorRate:       errorRate,
		CandidatesTotal: atomic.LoadInt64(&c.candidatesTotal),
		SkippedTotal:    atomic.LoadInt64(&c.skippedTotal),
		MatchesTotal:    atomic.LoadInt64(&c.matchesTotal),
		AvgLatencyMs:    avgLatency,
		LastLatencyMs:   atomic.LoadInt64(&c.lastLatencyMs),
	}
}

func (c *directionCounters) reset() {
	atomic.StoreInt64(&c.runsTotal, 0)
	atomic.StoreInt64(&c.errorsTotal, 0)
	atomic.StoreInt64(&c.candidatesTotal, 0)
	atomic.StoreInt64(&c.skippedTotal, 0)
	atomic.StoreInt64(&c.matchesTotal, 0)
	atomic.StoreInt64(&c.latencyTotalMs, 0)
	atomic.StoreInt64(&c.lastLatencyMs, 0)
}

// Reset сбрасывает JSON-снимок. Счётчики Prometheus монотонны и не сбрасываются.
func (m *MatchMetrics) Reset() {
	m.forTenant.reset()
	m.forProperty.reset()
	atomic.StoreInt64(&m.notificationsSent, 0)
	atomic.StoreInt64(&m.notificationsFailed, 0)
}

// Registry возвращает реестр Prometheus.
func (m *MatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus.
func (m *MatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
