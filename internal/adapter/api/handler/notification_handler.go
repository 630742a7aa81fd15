package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/usecase"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/response"
	"skipfurther/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

type notificationList struct {
	Items       []*entity.Notification `json:"items"`
	UnreadCount int64                  `json:"unreadCount"`
}

type markAllRequest struct {
	MarkAllAsRead bool `json:"markAllAsRead"`
}

type setReadRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}

func (h *NotificationHandler) List(c echo.Context) error {
	unreadOnly := false
	if v := utils.QueryBool(c, "unreadOnly"); v != nil {
		unreadOnly = *v
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	items, unread, err := h.notificationUseCase.List(c.Request().Context(), currentUser(c), unreadOnly, limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, notificationList{Items: items, UnreadCount: unread})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	var req markAllRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	if !req.MarkAllAsRead {
		return response.Error(c, errors.BadRequest("Invalid request", nil))
	}

	updated, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{
		"updated": updated,
	})
}

func (h *NotificationHandler) SetRead(c echo.Context) error {
	var req setReadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	notification, err := h.notificationUseCase.SetRead(c.Request().Context(), currentUser(c), c.Param("id"), *req.IsRead)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, notification)
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	if err := h.notificationUseCase.Delete(c.Request().Context(), currentUser(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Notification deleted",
	})
}
