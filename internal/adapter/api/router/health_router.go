package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	if healthHandler == nil {
		return
	}
	e.GET("/health", healthHandler.CheckHealth)
}
