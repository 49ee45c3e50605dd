package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// AttemptCounter 按身份类别和判定结果统计答案提交量
	AttemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puzzle_attempts_total",
			Help: "Total number of puzzle answer submissions",
		},
		[]string{"identity", "result"},
	)

	// SessionCounter 按结束方式统计对局完成量
	SessionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_sessions_total",
			Help: "Total number of completed game sessions",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(AttemptCounter)
	prometheus.MustRegister(SessionCounter)
}

func ObserveAttempt(authenticated bool, correct bool) {
	identity := "anonymous"
	if authenticated {
		identity = "authenticated"
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	AttemptCounter.WithLabelValues(identity, result).Inc()
}

func ObserveSession(solved, gaveUp bool) {
	outcome := "exhausted"
	if solved {
		outcome = "solved"
	} else if gaveUp {
		outcome = "gave_up"
	}
	SessionCounter.WithLabelValues(outcome).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
