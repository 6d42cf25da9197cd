package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"ShareServer/consts"
	rediskey "ShareServer/consts/redisKey"
	"ShareServer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// luaTokenBucket Redis 令牌桶脚本：原子补充令牌并判断是否放行。
//
//	KEYS[1]: 限流 key
//	ARGV[1]: 当前时间戳（毫秒）
//	ARGV[2]: 桶容量
//	ARGV[3]: 每秒产生令牌数
//	ARGV[4]: 本次消耗令牌数
//
// 返回 1 放行、0 限流。
const luaTokenBucket = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

local time_diff = math.max(0, now - last_time)
local new_tokens = math.floor((time_diff * rate) / 1000)
if new_tokens > 0 then
    current_tokens = math.min(capacity, current_tokens + new_tokens)
    last_time = now
end

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', current_tokens, 'last_time', last_time)

local fill_time = math.ceil(capacity / rate)
local ttl = math.max(60, fill_time * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

// RateLimiter IP 级别限流器：Redis 令牌桶为主，
// Redis 不可用时降级到进程内 x/time 令牌桶（多实例下阈值按实例数放大，可接受）。
type RateLimiter struct {
	redisClient *redis.Client
	ratePerSec  float64
	burst       int

	mu     sync.Mutex
	locals map[string]*rate.Limiter
}

// NewRateLimiter 创建限流器（redisClient 可为 nil，纯本地限流）
func NewRateLimiter(redisClient *redis.Client, ratePerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		ratePerSec:  ratePerSec,
		burst:       burst,
		locals:      make(map[string]*rate.Limiter),
	}
}

// Allow 判断该 key 的请求是否放行
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	if r.redisClient == nil {
		return r.allowLocal(key)
	}

	// Redis 操作加独立短超时，防止 Redis 响应慢拖死请求链路
	redisCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	result, err := r.redisClient.Eval(redisCtx, luaTokenBucket,
		[]string{key}, time.Now().UnixMilli(), r.burst, r.ratePerSec, 1).Result()
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "Redis 限流检查失败，降级本地限流",
				logger.String("key", key),
				logger.ErrorField("error", err),
			)
		}
		return r.allowLocal(key)
	}

	allowed, ok := result.(int64)
	if !ok {
		return r.allowLocal(key)
	}
	return allowed == 1
}

// allowLocal 进程内令牌桶兜底
func (r *RateLimiter) allowLocal(key string) bool {
	r.mu.Lock()
	lim, ok := r.locals[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(r.ratePerSec), r.burst)
		r.locals[key] = lim
	}
	r.mu.Unlock()
	return lim.Allow()
}

// IPRateLimitMiddleware 基于客户端 IP 的限流中间件
func IPRateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		if !limiter.Allow(NewContextWithGin(c), rediskey.RateLimitIPKey(ip)) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    consts.CodeTooManyRequests,
				"message": consts.GetMessage(consts.CodeTooManyRequests),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
