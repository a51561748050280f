package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/threadora/threadora_backend/controllers"
	"github.com/threadora/threadora_backend/middleware"
)

// RegisterCommunityRoutes sets up the community endpoints
func RegisterCommunityRoutes(e *echo.Echo, communityController *controllers.CommunityController) {
	community := e.Group("/api/community", middleware.JWTMiddleware())

	community.POST("", communityController.CreateCommunity)
	community.GET("", communityController.TopCommunities)
	community.GET("/:communityId", communityController.GetCommunity)
	community.PUT("/join/:communityId", communityController.ToggleJoin)
	community.GET("/members/:communityId", communityController.Members)
	community.PUT("/update-community/:communityId", communityController.UpdateCommunity)

	community.POST("/add-post/:communityId", communityController.AddPost)
	community.GET("/add-post/:communityId", communityController.CommunityPosts)
	community.DELETE("/post/:postId", communityController.DeletePost)
	community.POST("/comment/:communityId", communityController.AddComment)
}
