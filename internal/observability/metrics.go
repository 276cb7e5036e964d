package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/aura-backend/internal/platform/envutil"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	verdicts            *CounterVec
	escalationOutcomes  *CounterVec
	notificationAttempt *CounterVec
	notificationLatency *HistogramVec
	scoringFallbacks    *CounterVec
	assignmentConflicts *Counter
	pipelineLatency     *HistogramVec
	providerCallbacks   *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	d := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Init returns the process-wide metrics, or nil when METRICS_ENABLED is off.
// Every method is safe on a nil receiver.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func NewMetrics() *Metrics {
	latencyBuckets := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	return &Metrics{
		apiRequests: NewCounterVec("aura_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("aura_api_request_duration_seconds", "API request latency in seconds by method/route/status.", []string{"method", "route", "status"}, latencyBuckets),
		apiInflight: NewGauge("aura_api_inflight_requests", "In-flight API requests."),

		verdicts:            NewCounterVec("aura_critical_verdicts_total", "Critical verdicts by alert type.", []string{"alert_type"}),
		escalationOutcomes:  NewCounterVec("aura_escalation_outcomes_total", "Escalation dispatch results by terminal state.", []string{"state"}),
		notificationAttempt: NewCounterVec("aura_notification_attempts_total", "Notification channel attempts by channel/status.", []string{"channel", "status"}),
		notificationLatency: NewHistogramVec("aura_notification_duration_seconds", "Notification channel latency by channel/status.", []string{"channel", "status"}, latencyBuckets),
		scoringFallbacks:    NewCounterVec("aura_sentiment_fallbacks_total", "Utterances scored with the neutral default.", []string{"reason"}),
		assignmentConflicts: NewCounter("aura_assignment_conflicts_total", "Escalations that found more than one active clinician."),
		pipelineLatency:     NewHistogramVec("aura_pipeline_duration_seconds", "Detection pipeline latency by result.", []string{"result"}, latencyBuckets),
		providerCallbacks:   NewCounterVec("aura_provider_callbacks_total", "Provider delivery callbacks by channel/result.", []string{"channel", "result"}),

		pgStats:   NewGaugeVec("aura_postgres_pool", "Postgres connection pool stats.", []string{"stat"}),
		redisUp:   NewGauge("aura_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("aura_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	all := []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.verdicts, m.escalationOutcomes, m.notificationAttempt, m.notificationLatency,
		m.scoringFallbacks, m.assignmentConflicts, m.pipelineLatency, m.providerCallbacks,
		m.pgStats, m.redisUp, m.redisPing,
	}
	for _, pw := range all {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
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

func (m *Metrics) IncVerdict(alertType string) {
	if m == nil {
		return
	}
	m.verdicts.Inc(alertType)
}

func (m *Metrics) IncEscalationOutcome(state string) {
	if m == nil {
		return
	}
	m.escalationOutcomes.Inc(state)
}

func (m *Metrics) EscalationOutcomes(state string) float64 {
	if m == nil {
		return 0
	}
	return m.escalationOutcomes.Value(state)
}

func (m *Metrics) ObserveNotification(channel, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.notificationAttempt.Inc(channel, status)
	m.notificationLatency.Observe(dur.Seconds(), channel, status)
}

func (m *Metrics) NotificationAttempts(channel, status string) float64 {
	if m == nil {
		return 0
	}
	return m.notificationAttempt.Value(channel, status)
}

func (m *Metrics) IncScoringFallback(reason string) {
	if m == nil {
		return
	}
	m.scoringFallbacks.Inc(reason)
}

func (m *Metrics) ScoringFallbacks(reason string) float64 {
	if m == nil {
		return 0
	}
	return m.scoringFallbacks.Value(reason)
}

func (m *Metrics) Verdicts(alertType string) float64 {
	if m == nil {
		return 0
	}
	return m.verdicts.Value(alertType)
}

func (m *Metrics) IncAssignmentConflict() {
	if m == nil {
		return
	}
	m.assignmentConflicts.Inc()
}

func (m *Metrics) ObservePipeline(result string, dur time.Duration) {
	if m == nil {
		return
	}
	m.pipelineLatency.Observe(dur.Seconds(), result)
}

func (m *Metrics) IncProviderCallback(channel, result string) {
	if m == nil {
		return
	}
	m.providerCallbacks.Inc(channel, result)
}

func (m *Metrics) ProviderCallbacks(channel, result string) float64 {
	if m == nil {
		return 0
	}
	return m.providerCallbacks.Value(channel, result)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings the shared client on the scrape interval.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
