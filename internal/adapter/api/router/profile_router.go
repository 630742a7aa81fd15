package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
)

func SetupProfileRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	profileHandler := handler.GetProfileHandler()

	profile := api.Group("/profile")
	profile.GET("", profileHandler.GetMe, authMiddleware.Authenticate)
	profile.PATCH("", profileHandler.UpdateMe, authMiddleware.Authenticate)
	profile.POST("/verify", profileHandler.SubmitVerification, authMiddleware.Authenticate)
	profile.GET("/:id", profileHandler.GetPublic)
}
