// controllers/tag_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/threadora/threadora_backend/config"
	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/services"
)

type TagController struct {
	DB   *mongo.Client
	Feed *services.FeedService
}

func NewTagController(db *mongo.Client, feed *services.FeedService) *TagController {
	return &TagController{DB: db, Feed: feed}
}

// GetTags lists every tag
func (tc *TagController) GetTags(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(tc.DB, "tags")
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to fetch tags",
		})
	}
	defer cursor.Close(ctx)

	tags := []models.Tag{}
	if err := cursor.All(ctx, &tags); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to decode tags",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Tags fetched successfully",
		Data:    tags,
	})
}

// RecentPosts lists a tag's threads newest first
func (tc *TagController) RecentPosts(c echo.Context) error {
	tagName := c.Param("tagName")
	views, err := tc.Feed.TagRecent(c.Request().Context(), tagName)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Posts fetched successfully",
		Data:    views,
	})
}

// TopPosts lists a tag's threads by likes plus comments
func (tc *TagController) TopPosts(c echo.Context) error {
	tagName := c.Param("tagName")
	views, err := tc.Feed.TagTop(c.Request().Context(), tagName)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Posts fetched successfully",
		Data:    views,
	})
}
