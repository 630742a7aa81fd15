package middleware

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/infrastructure/ratelimit"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/logger"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c echo.Context) string

// ByIP counts requests per client address.
func ByIP(c echo.Context) string {
	return c.RealIP()
}

// ByUser counts requests per authenticated user, falling back to the client address.
func ByUser(c echo.Context) string {
	if uid := UserID(c); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.RealIP()
}

// RateLimit rejects requests over the limiter's budget with 429 and a Retry-After hint.
func RateLimit(limiter *ratelimit.RateLimiter, key KeyFunc) echo.MiddlewareFunc {
	log := logger.With("rate_limit")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			k := key(c)
			if ok, wait := limiter.Allow(k); !ok {
				log.Warn().Str("key", k).Dur("retry_after", wait).Str("path", c.Path()).Msg("rate limit exceeded")
				return errors.TooManyRequests("Rate limit exceeded", wait)
			}
			return next(c)
		}
	}
}
