// Package metrics 定义 HTTP 与视频处理流水线的 Prometheus 指标
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivideo_http_requests_total",
			Help: "HTTP 请求总数",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aivideo_http_request_duration_seconds",
			Help:    "HTTP 请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ReviewsTotal 审核结果计数，outcome 取 approved / harmful / unreadable
	ReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivideo_reviews_total",
			Help: "视频审核结果计数",
		},
		[]string{"outcome"},
	)

	// TaggingRunsTotal 打标签执行次数，source 取 GPT_IMAGE / DESKTOP_ML
	TaggingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivideo_tagging_runs_total",
			Help: "自动打标签执行次数",
		},
		[]string{"source", "result"},
	)

	// PromptSearchesTotal 提示词检索次数
	PromptSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aivideo_prompt_searches_total",
		Help: "提示词检索请求次数",
	})

	// TagCacheLookups 匹配器标签缓存命中情况
	TagCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivideo_tag_cache_lookups_total",
			Help: "匹配器标签缓存查询次数",
		},
		[]string{"result"},
	)

	// ReviewQueueDepth 审核队列中等待的任务数
	ReviewQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aivideo_review_queue_depth",
		Help: "审核队列中等待的任务数",
	})
)

// GinMiddleware 记录请求数量与耗时，route 取 gin 的路由模板以控制基数
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
