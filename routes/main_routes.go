package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/threadora/threadora_backend/controllers"
	"github.com/threadora/threadora_backend/middleware"
	"github.com/threadora/threadora_backend/services"
)

// SetupRoutes wires the service layer to its controllers and registers every
// route group
func SetupRoutes(e *echo.Echo, db *mongo.Client, store services.Store, authController *controllers.AuthController) {
	notifications := services.NewNotificationService(store)
	tags := services.NewTagService(store)
	threads := services.NewThreadService(store, tags)
	engagement := services.NewEngagementService(store, notifications, services.Policy{})
	cascade := services.NewCascadeService(store)
	saved := services.NewSavedService(store, threads)
	feed := services.NewFeedService(store, threads)
	follow := services.NewFollowService(store)
	communities := services.NewCommunityService(store, threads)

	threadController := controllers.NewThreadController(db, threads, feed, engagement, cascade, saved, tags)
	userController := controllers.NewUserController(db, follow)
	communityController := controllers.NewCommunityController(db, communities, feed, cascade)
	notificationController := controllers.NewNotificationController(db, notifications)
	tagController := controllers.NewTagController(db, feed)

	RegisterAuthRoutes(e, db, authController)
	RegisterThreadRoutes(e, threadController)
	RegisterUserRoutes(e, userController)
	RegisterCommunityRoutes(e, communityController)
	RegisterNotificationRoutes(e, notificationController)
	RegisterTagRoutes(e, tagController)
	RegisterFileRoutes(e)

	// Global search shares the thread search handler
	e.POST("/api/search", threadController.SearchPosts, middleware.JWTMiddleware())
}
