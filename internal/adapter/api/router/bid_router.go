package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
)

func SetupBidRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	bidHandler := handler.GetBidHandler()

	bids := api.Group("/bids", authMiddleware.Authenticate)
	bids.GET("", bidHandler.ListMine)
	bids.POST("", bidHandler.Place)
	bids.PATCH("/:id", bidHandler.UpdateStatus)
}
