// Package metrics provides Prometheus instrumentation for the Kollabary platform.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kollabary",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kollabary",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// RankingsRecalculatedTotal counts single-influencer recalculations by result.
	RankingsRecalculatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kollabary",
			Name:      "rankings_recalculated_total",
			Help:      "Total influencer ranking recalculations by result.",
		},
		[]string{"result"},
	)

	// RankingSweepsTotal counts full ranking sweeps.
	RankingSweepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kollabary",
		Name:      "ranking_sweeps_total",
		Help:      "Total full ranking sweeps completed.",
	})

	// RankingSweepDuration observes full sweep duration.
	RankingSweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kollabary",
		Name:      "ranking_sweep_duration_seconds",
		Help:      "Duration of a full ranking sweep in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	})

	// WeightUpdatesTotal counts admin weight table updates.
	WeightUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kollabary",
		Name:      "ranking_weight_updates_total",
		Help:      "Total accepted ranking weight table updates.",
	})

	// CollaborationTransitionsTotal counts accepted status transitions by target status.
	CollaborationTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kollabary",
			Name:      "collaboration_transitions_total",
			Help:      "Total accepted collaboration status transitions by target status.",
		},
		[]string{"status"},
	)

	// ReviewsCreatedTotal counts reviews created.
	ReviewsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kollabary",
		Name:      "reviews_created_total",
		Help:      "Total reviews created.",
	})

	// ReportsCreatedTotal counts reports filed against influencers.
	ReportsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kollabary",
		Name:      "reports_created_total",
		Help:      "Total reports filed.",
	})

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kollabary",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kollabary", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kollabary", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kollabary", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kollabary", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RankingsRecalculatedTotal,
		RankingSweepsTotal,
		RankingSweepDuration,
		WeightUpdatesTotal,
		CollaborationTransitionsTotal,
		ReviewsCreatedTotal,
		ReportsCreatedTotal,
		ActiveWebSocketClients,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		GoroutineCount,
	)
}

// StartDBStatsCollector periodically samples sql.DBStats and runtime goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
