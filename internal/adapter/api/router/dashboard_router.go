package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
)

func SetupDashboardRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	api.GET("/dashboard", handler.GetDashboardHandler().Summary, authMiddleware.Authenticate)
}
