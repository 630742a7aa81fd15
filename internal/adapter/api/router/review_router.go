package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
)

func SetupReviewRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	reviewHandler := handler.GetReviewHandler()

	reviews := api.Group("/reviews")
	reviews.GET("", reviewHandler.List)
	reviews.GET("/user/:id", reviewHandler.ForUser)
	reviews.POST("", reviewHandler.Create, authMiddleware.Authenticate)
}
