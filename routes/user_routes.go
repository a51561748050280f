package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/threadora/threadora_backend/controllers"
	"github.com/threadora/threadora_backend/middleware"
)

// RegisterUserRoutes sets up profile, follow and discovery endpoints
func RegisterUserRoutes(e *echo.Echo, userController *controllers.UserController) {
	api := e.Group("/api", middleware.JWTMiddleware())

	api.GET("/profile", userController.Profile)
	api.PUT("/update-profile", userController.UpdateProfile)
	api.POST("/upload-avatar", userController.UploadAvatar)

	api.PUT("/follow/:userId", userController.ToggleFollow)
	api.GET("/user/followers", userController.FollowLists)
	api.GET("/user/all-users", userController.AllUsers)
	api.GET("/user/:username", userController.UserByUsername)
}
