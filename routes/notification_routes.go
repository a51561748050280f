package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/threadora/threadora_backend/controllers"
	"github.com/threadora/threadora_backend/middleware"
)

// RegisterNotificationRoutes sets up the notification endpoints
func RegisterNotificationRoutes(e *echo.Echo, notificationController *controllers.NotificationController) {
	notifications := e.Group("/api/notifications", middleware.JWTMiddleware())

	notifications.GET("", notificationController.GetNotifications)
	notifications.POST("", notificationController.SearchNotifications)
}
