package router

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/handler"
	"skipfurther/internal/adapter/api/middleware"
)

func SetupListingRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	listingHandler := handler.GetListingHandler()
	bidHandler := handler.GetBidHandler()

	listings := api.Group("/listings")

	// Public
	listings.GET("", listingHandler.List)
	listings.GET("/search", listingHandler.Search)
	listings.GET("/categories", listingHandler.Categories)
	listings.GET("/:id", listingHandler.Get, authMiddleware.Optional)
	listings.GET("/:id/bids", bidHandler.ListForListing)

	// Seller
	listings.POST("", listingHandler.Create, authMiddleware.Authenticate)
	listings.GET("/mine", listingHandler.Mine, authMiddleware.Authenticate)
	listings.PATCH("/:id", listingHandler.Update, authMiddleware.Authenticate)
	listings.DELETE("/:id", listingHandler.Delete, authMiddleware.Authenticate)
	listings.POST("/:id/images", listingHandler.UploadImage, authMiddleware.Authenticate)
	listings.DELETE("/:id/images", listingHandler.DeleteImage, authMiddleware.Authenticate)
}
