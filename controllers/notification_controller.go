// controllers/notification_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/services"
	"github.com/threadora/threadora_backend/utils"
)

type NotificationController struct {
	DB            *mongo.Client
	Notifications *services.NotificationService
}

func NewNotificationController(db *mongo.Client, notifications *services.NotificationService) *NotificationController {
	return &NotificationController{DB: db, Notifications: notifications}
}

// GetNotifications lists the caller's notifications from the last 30 days
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	notifications, err := nc.Notifications.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Notifications fetched successfully",
		Data:    notifications,
	})
}

// SearchNotifications filters the caller's notifications by actor username
// or full name
func (nc *NotificationController) SearchNotifications(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.NotificationSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Match text is required",
		})
	}

	notifications, err := nc.Notifications.Search(c.Request().Context(), userID, utils.SanitizeInput(req.MatchText))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Notifications fetched successfully",
		Data:    notifications,
	})
}
