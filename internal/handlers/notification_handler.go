package handlers

import (
	"net/http"

	"github.com/bookcircle/backend/internal/middleware"
	"github.com/bookcircle/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the engagement notifications the mobile
// client polls
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notificationRepo}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read", h.MarkAllAsRead)
}

// GetNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	notifications, err := h.notificationRepository.GetByRecipientID(currentUser.ID.Hex(), 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the caller's unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	count, err := h.notificationRepository.GetUnreadCount(currentUser.ID.Hex())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

// MarkAllAsRead marks every unread notification of the caller as read.
// Safe to call repeatedly.
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	if err := h.notificationRepository.MarkAllAsRead(currentUser.ID.Hex()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
