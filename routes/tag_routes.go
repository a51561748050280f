package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/threadora/threadora_backend/controllers"
	"github.com/threadora/threadora_backend/middleware"
)

// RegisterTagRoutes sets up the tag browsing endpoints
func RegisterTagRoutes(e *echo.Echo, tagController *controllers.TagController) {
	tag := e.Group("/api/tag", middleware.JWTMiddleware())

	tag.GET("/get-tags", tagController.GetTags)
	tag.GET("/recent-post/:tagName", tagController.RecentPosts)
	tag.GET("/top-post/:tagName", tagController.TopPosts)
}
