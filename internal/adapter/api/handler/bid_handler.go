package handler

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/usecase"
	"skipfurther/pkg/response"
)

type BidHandler struct {
	bidUseCase *usecase.BidUseCase
}

func NewBidHandler(bidUseCase *usecase.BidUseCase) *BidHandler {
	return &BidHandler{
		bidUseCase: bidUseCase,
	}
}

type placeBidRequest struct {
	ListingID string  `json:"listingId" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

type updateBidStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *BidHandler) Place(c echo.Context) error {
	var req placeBidRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	bid, err := h.bidUseCase.PlaceBid(c.Request().Context(), currentUser(c), req.ListingID, req.Amount)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, bid)
}

// ListForListing returns the top bids of the listing in the path.
func (h *BidHandler) ListForListing(c echo.Context) error {
	bids, err := h.bidUseCase.ListBids(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bids)
}

func (h *BidHandler) ListMine(c echo.Context) error {
	bids, err := h.bidUseCase.ListMyBids(c.Request().Context(), currentUser(c), c.QueryParam("listingId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bids)
}

func (h *BidHandler) UpdateStatus(c echo.Context) error {
	var req updateBidStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	bid, err := h.bidUseCase.UpdateBidStatus(c.Request().Context(), currentUser(c), c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bid)
}
