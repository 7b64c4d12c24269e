package security

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles station mutation endpoints so a stuck or
// misbehaving client cannot hammer the clinic API through the gateway.
type RateLimiter struct {
	redis     *redis.Client
	perMinute int
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{redis: redisClient, perMinute: perMinute}
}

// StationRateLimit limits requests per client IP per minute, redis-backed.
// Redis failures fail open; rate limiting is protective, not load-bearing.
func (r *RateLimiter) StationRateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.redis == nil {
				return next(c)
			}

			key := fmt.Sprintf("ratelimit:station:%s", c.RealIP())
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			count, err := r.redis.Incr(ctx, key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(ctx, key, time.Minute)
				}
				if count > int64(r.perMinute) {
					return c.JSON(429, map[string]string{
						"error": "Rate limit exceeded. Please try again later.",
					})
				}
			}

			return next(c)
		}
	}
}
