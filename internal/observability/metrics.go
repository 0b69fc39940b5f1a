package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/idea2sns-backend/internal/platform/envutil"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests     *CounterVec
	apiLatency      *HistogramVec
	apiInflight     *Gauge
	llmRequests     *CounterVec
	llmLatency      *HistogramVec
	llmFallback     *CounterVec
	generations     *CounterVec
	quotaRejections *CounterVec
	dbStats         *GaugeVec
	redisUp         *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current is the process-wide registry, nil until Init runs with metrics enabled.
func Current() *Metrics {
	return instance
}

// Init installs the process-wide registry when METRICS_ENABLED is set.
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

// NewMetrics builds a standalone registry. Tests use it to avoid the global.
func NewMetrics() *Metrics {
	latency := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	return &Metrics{
		apiRequests: NewCounterVec("api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			latency,
		),
		apiInflight: NewGauge("api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("llm_provider_requests_total", "Provider calls by provider/model/status.", []string{"provider", "model", "status"}),
		llmLatency: NewHistogramVec(
			"llm_provider_latency_seconds",
			"Provider call latency in seconds by provider/model.",
			[]string{"provider", "model"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		),
		llmFallback:     NewCounterVec("llm_fallback_total", "Generations served by a provider other than the first choice.", []string{"provider"}),
		generations:     NewCounterVec("generation_outcomes_total", "Generation pipeline outcomes by source/outcome.", []string{"source", "outcome"}),
		quotaRejections: NewCounterVec("quota_rejections_total", "Requests rejected by the usage guard by reason.", []string{"reason"}),
		dbStats:         NewGaugeVec("db_pool_stats", "Database pool stats.", []string{"stat"}),
		redisUp:         NewGauge("redis_up", "Redis reachability (1 up, 0 down)."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmFallback,
		m.generations, m.quotaRejections,
		m.dbStats, m.redisUp,
	}
	for _, c := range writers {
		if err := c.WritePrometheus(w); err != nil {
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
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

// ObserveLLMAttempt records one provider call. status is the HTTP status, "0" for
// transport failures, or "ok".
func (m *Metrics) ObserveLLMAttempt(provider, model string, status int, ok bool, dur time.Duration) {
	if m == nil {
		return
	}
	label := "ok"
	if !ok {
		label = strconv.Itoa(status)
	}
	m.llmRequests.Inc(provider, model, label)
	m.llmLatency.Observe(dur.Seconds(), provider, model)
}

func (m *Metrics) IncLLMFallback(provider string) {
	if m == nil {
		return
	}
	m.llmFallback.Inc(provider)
}

// ObserveGeneration counts pipeline outcomes: ok, partial, provider_error.
func (m *Metrics) ObserveGeneration(source, outcome string) {
	if m == nil {
		return
	}
	m.generations.Inc(source, outcome)
}

func (m *Metrics) IncQuotaRejection(reason string) {
	if m == nil {
		return
	}
	m.quotaRejections.Inc(reason)
}

func (m *Metrics) LLMRequests(provider, model, status string) float64 {
	if m == nil {
		return 0
	}
	return m.llmRequests.Value(provider, model, status)
}

func (m *Metrics) LLMFallbacks(provider string) float64 {
	if m == nil {
		return 0
	}
	return m.llmFallback.Value(provider)
}

func (m *Metrics) QuotaRejections(reason string) float64 {
	if m == nil {
		return 0
	}
	return m.quotaRejections.Value(reason)
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
}

// StartDBCollector samples the connection pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
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
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings rdb on every scrape interval until ctx is done.
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
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
			}
		}
	}()
}
