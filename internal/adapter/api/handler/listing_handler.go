package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"skipfurther/internal/domain/repository"
	"skipfurther/internal/usecase"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/response"
	"skipfurther/pkg/utils"
)

const defaultListingPageSize = 10

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type createListingRequest struct {
	CategoryID          string     `json:"category_id" validate:"required"`
	Title               string     `json:"title" validate:"required,max=200"`
	Description         string     `json:"description" validate:"max=5000"`
	CompanyOrEvent      string     `json:"company_or_event" validate:"required,max=200"`
	PositionNumber      *int       `json:"position_number" validate:"omitempty,min=1"`
	EstimatedAccessDate *time.Time `json:"estimated_access_date"`
	VerificationMethod  string     `json:"verification_method" validate:"required,oneof=screenshot invite_code email_transfer"`
	Tags                []string   `json:"tags" validate:"max=10,dive,max=40"`
	IsAuction           bool       `json:"is_auction"`
	Price               float64    `json:"price" validate:"gte=0"`
	MinimumBid          float64    `json:"minimum_bid" validate:"gte=0"`
	AuctionEndTime      *time.Time `json:"auction_end_time"`
}

type updateListingRequest struct {
	CategoryID          *string    `json:"category_id"`
	Title               *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description         *string    `json:"description" validate:"omitempty,max=5000"`
	CompanyOrEvent      *string    `json:"company_or_event" validate:"omitempty,min=1,max=200"`
	PositionNumber      *int       `json:"position_number" validate:"omitempty,min=1"`
	EstimatedAccessDate *time.Time `json:"estimated_access_date"`
	VerificationMethod  *string    `json:"verification_method"`
	Tags                []string   `json:"tags" validate:"omitempty,max=10,dive,max=40"`
	Price               *float64   `json:"price"`
	AuctionEndTime      *time.Time `json:"auction_end_time"`
}

func (h *ListingHandler) Create(c echo.Context) error {
	var req createListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.CreateListing(c.Request().Context(), currentUser(c), usecase.CreateListingInput{
		CategoryID:          req.CategoryID,
		Title:               req.Title,
		Description:         req.Description,
		CompanyOrEvent:      req.CompanyOrEvent,
		PositionNumber:      req.PositionNumber,
		EstimatedAccessDate: req.EstimatedAccessDate,
		VerificationMethod:  req.VerificationMethod,
		Tags:                req.Tags,
		IsAuction:           req.IsAuction,
		Price:               req.Price,
		MinimumBid:          req.MinimumBid,
		AuctionEndTime:      req.AuctionEndTime,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

func (h *ListingHandler) Get(c echo.Context) error {
	detail, err := h.listingUseCase.GetListing(c.Request().Context(), c.Param("id"), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *ListingHandler) Update(c echo.Context) error {
	var req updateListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.UpdateListing(c.Request().Context(), currentUser(c), c.Param("id"), usecase.UpdateListingInput{
		CategoryID:          req.CategoryID,
		Title:               req.Title,
		Description:         req.Description,
		CompanyOrEvent:      req.CompanyOrEvent,
		PositionNumber:      req.PositionNumber,
		EstimatedAccessDate: req.EstimatedAccessDate,
		VerificationMethod:  req.VerificationMethod,
		Tags:                req.Tags,
		Price:               req.Price,
		AuctionEndTime:      req.AuctionEndTime,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) Delete(c echo.Context) error {
	if err := h.listingUseCase.DeleteListing(c.Request().Context(), currentUser(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Listing deleted",
	})
}

func (h *ListingHandler) List(c echo.Context) error {
	return h.list(c, "")
}

// Search is List plus the free-text q parameter.
func (h *ListingHandler) Search(c echo.Context) error {
	return h.list(c, c.QueryParam("q"))
}

func (h *ListingHandler) list(c echo.Context, query string) error {
	pagination := utils.GetPaginationParams(c, defaultListingPageSize)
	sort := utils.GetSortParams(c, repository.SortCreatedAt, repository.ListingSortFields...)

	listings, total, err := h.listingUseCase.ListListings(c.Request().Context(), usecase.ListListingsInput{
		CategorySlug: c.QueryParam("category"),
		MinPrice:     utils.QueryFloat(c, "minPrice"),
		MaxPrice:     utils.QueryFloat(c, "maxPrice"),
		IsAuction:    utils.QueryBool(c, "isAuction"),
		Query:        query,
		SortBy:       sort.Field,
		SortDesc:     sort.Desc,
		Page:         pagination.Page,
		Limit:        pagination.PageSize,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, listings, total, pagination.Page, pagination.PageSize)
}

func (h *ListingHandler) Categories(c echo.Context) error {
	categories, err := h.listingUseCase.ListCategories(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, categories)
}

func (h *ListingHandler) Mine(c echo.Context) error {
	listings, err := h.listingUseCase.MyListings(c.Request().Context(), currentUser(c), c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listings)
}

func (h *ListingHandler) UploadImage(c echo.Context) error {
	image, err := formFile(c, "image", true)
	if err != nil {
		return response.Error(c, err)
	}
	defer image.close()

	isPrimary, _ := strconv.ParseBool(c.FormValue("isPrimary"))

	stored, err := h.listingUseCase.AddImage(c.Request().Context(), currentUser(c), c.Param("id"), image.reader(), image.contentType, isPrimary)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, stored)
}

func (h *ListingHandler) DeleteImage(c echo.Context) error {
	imageID := c.QueryParam("imageId")
	if imageID == "" {
		return response.Error(c, errors.BadRequest("Image ID is required", nil))
	}

	if err := h.listingUseCase.RemoveImage(c.Request().Context(), currentUser(c), c.Param("id"), imageID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Image deleted",
	})
}
