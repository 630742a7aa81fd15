package handler

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/domain/repository"
	"skipfurther/internal/usecase"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/response"
	"skipfurther/pkg/utils"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type createReviewRequest struct {
	UserID        string `json:"userId" validate:"required"`
	TransactionID string `json:"transactionId"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"max=2000"`
}

func (h *ReviewHandler) Create(c echo.Context) error {
	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.CreateReview(c.Request().Context(), currentUser(c), usecase.CreateReviewInput{
		UserID:        req.UserID,
		TransactionID: req.TransactionID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

func (h *ReviewHandler) List(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return response.Error(c, errors.BadRequest("userId is required", nil))
	}

	reviews, err := h.reviewUseCase.ListReviews(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reviews)
}

// ForUser returns a page of a user's reviews with their rating summary.
func (h *ReviewHandler) ForUser(c echo.Context) error {
	pagination := utils.GetPaginationParams(c, 10)
	sort := utils.GetSortParams(c, repository.SortCreatedAt, repository.SortCreatedAt, repository.ReviewSortRating)

	result, err := h.reviewUseCase.UserReviews(c.Request().Context(), c.Param("id"), sort.Field, sort.Desc, pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
