package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
)

func SetupTransactionRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	transactionHandler := handler.GetTransactionHandler()

	transactions := api.Group("/transactions", authMiddleware.Authenticate)
	transactions.GET("", transactionHandler.List)
	transactions.POST("", transactionHandler.Create)
	transactions.GET("/:id", transactionHandler.Get)
	transactions.PATCH("/:id/status", transactionHandler.UpdateStatus)
	transactions.POST("/:id/verify", transactionHandler.Verify)
	transactions.GET("/:id/verifications", transactionHandler.ListVerifications)
}
