package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
)

func SetupWatchlistRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	watchlistHandler := handler.GetWatchlistHandler()

	watchlist := api.Group("/watchlist", authMiddleware.Authenticate)
	watchlist.GET("", watchlistHandler.List)
	watchlist.GET("/count", watchlistHandler.Count)
	watchlist.POST("/:listingId", watchlistHandler.Add)
	watchlist.DELETE("/:listingId", watchlistHandler.Remove)
}
