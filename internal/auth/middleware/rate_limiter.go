package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// 时间窗口内允许的最大请求数
	MaxRequests int
	// 时间窗口（秒）
	WindowSeconds int
	// 限流策略：user, endpoint, ip（默认）
	Strategy string
	// key 前缀，区分不同接口
	Prefix string
}

// ScriptRunner 执行 Lua 脚本，由 internal/pkg/redis.Client 实现
type ScriptRunner interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)
}

// slidingWindowScript 原子性滑动窗口限流，时间单位毫秒
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1, now + window}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
return {0, 0, tonumber(oldest) + window}
`

var nowFunc = time.Now

// RateLimiter 基于 Redis 的滑动窗口限流中间件，runner 为 nil 或 Redis 故障时放行
func RateLimiter(runner ScriptRunner, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.Strategy == "" {
		cfg.Strategy = "ip"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rate_limit"
	}

	return func(c *gin.Context) {
		if runner == nil {
			c.Next()
			return
		}

		key := buildRateLimitKey(c, cfg)
		allowed, remaining, resetAt, err := checkRateLimit(c.Request.Context(), runner, key, cfg)
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt/1000, 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(cfg.WindowSeconds))
			response.TooManyRequests(c, "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.")
			return
		}

		c.Next()
	}
}

// buildRateLimitKey 构建限流 key
func buildRateLimitKey(c *gin.Context, cfg RateLimiterConfig) string {
	ip := validator.GetIPOrDefault(c.ClientIP(), "unknown")

	switch cfg.Strategy {
	case "user":
		if userID, ok := GetUserID(c); ok {
			return fmt.Sprintf("%s:user:%s", cfg.Prefix, userID)
		}
		return fmt.Sprintf("%s:ip:%s", cfg.Prefix, ip)
	case "endpoint":
		return fmt.Sprintf("%s:endpoint:%s:%s", cfg.Prefix, c.FullPath(), ip)
	default:
		return fmt.Sprintf("%s:ip:%s", cfg.Prefix, ip)
	}
}

// checkRateLimit 执行滑动窗口脚本
func checkRateLimit(ctx context.Context, runner ScriptRunner, key string, cfg RateLimiterConfig) (allowed bool, remaining int, resetAt int64, err error) {
	now := nowFunc().UnixMilli()
	window := int64(cfg.WindowSeconds) * 1000
	// 同一毫秒内的请求需要不同的成员
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	result, err := runner.Eval(ctx, slidingWindowScript, []string{key}, now, window, cfg.MaxRequests, member)
	if err != nil {
		return false, 0, 0, err
	}
	return parseRateLimitResult(result)
}

func parseRateLimitResult(result any) (bool, int, int64, error) {
	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, 0, fmt.Errorf("invalid rate limit result: %v", result)
	}

	allowed, ok1 := values[0].(int64)
	remaining, ok2 := values[1].(int64)
	resetAt, ok3 := values[2].(int64)
	if !ok1 || !ok2 || !ok3 {
		return false, 0, 0, fmt.Errorf("invalid rate limit result: %v", result)
	}
	return allowed == 1, int(remaining), resetAt, nil
}
