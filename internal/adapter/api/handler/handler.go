package handler

import (
	"io"
	"mime/multipart"

	"github.com/labstack/echo/v4"

	"skipfurther/internal/adapter/api/middleware"
	"skipfurther/internal/usecase"
	"skipfurther/pkg/errors"
)

var (
	authHandler         *AuthHandler
	profileHandler      *ProfileHandler
	listingHandler      *ListingHandler
	bidHandler          *BidHandler
	transactionHandler  *TransactionHandler
	reviewHandler       *ReviewHandler
	notificationHandler *NotificationHandler
	watchlistHandler    *WatchlistHandler
	dashboardHandler    *DashboardHandler
)

type UseCases struct {
	Auth         *usecase.AuthUseCase
	Profile      *usecase.ProfileUseCase
	Listing      *usecase.ListingUseCase
	Bid          *usecase.BidUseCase
	Transaction  *usecase.TransactionUseCase
	Review       *usecase.ReviewUseCase
	Notification *usecase.NotificationUseCase
	Watchlist    *usecase.WatchlistUseCase
	Dashboard    *usecase.DashboardUseCase
}

func Setup(uc UseCases) {
	authHandler = NewAuthHandler(uc.Auth)
	profileHandler = NewProfileHandler(uc.Profile)
	listingHandler = NewListingHandler(uc.Listing)
	bidHandler = NewBidHandler(uc.Bid)
	transactionHandler = NewTransactionHandler(uc.Transaction)
	reviewHandler = NewReviewHandler(uc.Review)
	notificationHandler = NewNotificationHandler(uc.Notification)
	watchlistHandler = NewWatchlistHandler(uc.Watchlist)
	dashboardHandler = NewDashboardHandler(uc.Dashboard)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetProfileHandler() *ProfileHandler {
	return profileHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetBidHandler() *BidHandler {
	return bidHandler
}

func GetTransactionHandler() *TransactionHandler {
	return transactionHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetWatchlistHandler() *WatchlistHandler {
	return watchlistHandler
}

func GetDashboardHandler() *DashboardHandler {
	return dashboardHandler
}

func currentUser(c echo.Context) string {
	return middleware.UserID(c)
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}

type upload struct {
	file        multipart.File
	contentType string
}

func (u *upload) reader() io.Reader {
	if u == nil {
		return nil
	}
	return u.file
}

func (u *upload) close() {
	if u != nil {
		u.file.Close()
	}
}

// formFile opens the multipart file in field. A missing optional file yields nil.
func formFile(c echo.Context, field string, required bool) (*upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if required {
			return nil, errors.BadRequest(field+" file is required", err)
		}
		return nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, errors.BadRequest("Failed to read "+field, err)
	}

	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &upload{file: file, contentType: contentType}, nil
}
