package handler

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/usecase"
	"skipfurther/pkg/response"
	"skipfurther/pkg/utils"
)

type WatchlistHandler struct {
	watchlistUseCase *usecase.WatchlistUseCase
}

func NewWatchlistHandler(watchlistUseCase *usecase.WatchlistUseCase) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistUseCase: watchlistUseCase,
	}
}

func (h *WatchlistHandler) Add(c echo.Context) error {
	item, err := h.watchlistUseCase.Add(c.Request().Context(), currentUser(c), c.Param("listingId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

func (h *WatchlistHandler) Remove(c echo.Context) error {
	if err := h.watchlistUseCase.Remove(c.Request().Context(), currentUser(c), c.Param("listingId")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Removed from watchlist",
	})
}

func (h *WatchlistHandler) List(c echo.Context) error {
	pagination := utils.GetPaginationParams(c, 20)

	items, total, err := h.watchlistUseCase.List(c.Request().Context(), currentUser(c), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *WatchlistHandler) Count(c echo.Context) error {
	count, err := h.watchlistUseCase.Count(c.Request().Context(), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{
		"count": count,
	})
}
