package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/threadora/threadora_backend/controllers"
	"github.com/threadora/threadora_backend/middleware"
)

// RegisterThreadRoutes sets up the post, comment, like and save endpoints.
// The single-post share link stays public; everything else needs a token.
func RegisterThreadRoutes(e *echo.Echo, threadController *controllers.ThreadController) {
	e.GET("/api/thread/get-single-post/:threadId", threadController.GetSinglePost)

	thread := e.Group("/api/thread", middleware.JWTMiddleware())
	thread.POST("/add-post", threadController.AddPost)
	thread.GET("/get-posts", threadController.GetPosts)
	thread.GET("/get-posts/:threadId", threadController.GetPost)
	thread.PUT("/update-post/:threadId", threadController.UpdatePost)
	thread.PUT("/update-post/image-update/:threadId", threadController.UpdatePostImage)
	thread.DELETE("/delete-post/:threadId", threadController.DeletePost)

	thread.POST("/like/:threadId", threadController.ToggleLike)
	thread.GET("/like/:threadId", threadController.LikeCount)
	thread.GET("/like", threadController.LikedPosts)

	thread.POST("/comment/:threadId", threadController.AddComment)
	thread.POST("/comment-reply", threadController.AddReply)
	thread.GET("/comment-reply/:parentCommentId", threadController.GetReplies)
	thread.GET("/reply/:userId", threadController.UserReplies)

	thread.POST("/save-post/:threadId", threadController.SavePost)
	thread.GET("/save-post", threadController.SavedPosts)

	thread.GET("/user-posts/:userId", threadController.UserPosts)
	thread.POST("/search-posts", threadController.SearchPosts)
	thread.PUT("/search-posts", threadController.RecountLikes)

	e.GET("/api/comment/:threadId", threadController.GetComments, middleware.JWTMiddleware())
}
