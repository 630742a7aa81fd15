package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
)

func SetupNotificationRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	notificationHandler := handler.GetNotificationHandler()

	notifications := api.Group("/notifications", authMiddleware.Authenticate)
	notifications.GET("", notificationHandler.List)
	notifications.PATCH("", notificationHandler.MarkAllRead)
	notifications.PATCH("/:id", notificationHandler.SetRead)
	notifications.DELETE("/:id", notificationHandler.Delete)
}
