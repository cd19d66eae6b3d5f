// Package metrics Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// InvitationsCreated 成功创建的邀请码数量
	InvitationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_invitations_created_total",
			Help: "Total number of invitations created",
		},
	)

	// InvitationRedemptions 兑换结果计数
	InvitationRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_invitation_redemptions_total",
			Help: "Total number of invitation redemption attempts by result",
		},
		[]string{"result"}, // success, not_found, expired, exhausted, already_used, error
	)

	// IdentityEvents Webhook 事件处理结果
	IdentityEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_identity_events_total",
			Help: "Total number of identity events by type and result",
		},
		[]string{"type", "result"}, // result: applied, duplicate, ignored, rejected, error
	)

	// ResyncUsers 全量同步结果
	ResyncUsers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_resync_users_total",
			Help: "Total number of users processed by manual resync",
		},
		[]string{"outcome"}, // created, updated, error
	)

	// RequestCounter HTTP 请求计数
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration HTTP 请求耗时
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

var registerOnce sync.Once

// Register 注册全部指标（重复调用安全）
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			InvitationsCreated,
			InvitationRedemptions,
			IdentityEvents,
			ResyncUsers,
			RequestCounter,
			RequestDuration,
		)
	})
}

// Middleware 记录每个请求的计数和耗时
// path 使用路由模板（/api/invitations/:code），避免标签基数爆炸
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		RequestCounter.WithLabelValues(c.Request.Method, path, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
