package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/middleware"
	"skipfurther/internal/infrastructure/ratelimit"
)

// Options carries what the route table needs besides the handler registry.
type Options struct {
	Environment string
	APILimiter  *ratelimit.RateLimiter
}

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, opts Options) {
	api := e.Group("/api")
	if opts.APILimiter != nil {
		api.Use(middleware.RateLimit(opts.APILimiter, middleware.ByIP))
	}

	SetupAuthRouter(api, authMiddleware)
	SetupProfileRouter(api, authMiddleware)
	SetupListingRouter(api, authMiddleware)
	SetupBidRouter(api, authMiddleware)
	SetupTransactionRouter(api, authMiddleware)
	SetupReviewRouter(api, authMiddleware)
	SetupNotificationRouter(api, authMiddleware)
	SetupWatchlistRouter(api, authMiddleware)
	SetupDashboardRouter(api, authMiddleware)

	SetupWebSocketRouter(e, authMiddleware)
	SetupHealthRouter(e)
	SetupDevRouter(e, opts.Environment)
}
