package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	resp "account-auth-service/internal/transport/http/response"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests by envelope code"},
		[]string{"path", "method", "code"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency) }

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 未命中路由不按原始 URL 打标签，避免基数爆炸
		}
		code := strconv.Itoa(c.Writer.Status())
		if v, ok := c.Get(resp.CtxKeyCode); ok {
			code = strconv.Itoa(v.(int))
		}
		httpReqTotal.WithLabelValues(path, c.Request.Method, code).Inc()
		httpLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
