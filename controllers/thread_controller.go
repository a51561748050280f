// controllers/thread_controller.go
package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/threadora/threadora_backend/config"
	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/services"
	"github.com/threadora/threadora_backend/utils"
)

// ThreadController serves the post, comment, like and feed endpoints. The
// domain rules live in the services; handlers parse, delegate and shape the
// response.
type ThreadController struct {
	DB         *mongo.Client
	Threads    *services.ThreadService
	Feed       *services.FeedService
	Engagement *services.EngagementService
	Cascade    *services.CascadeService
	Saved      *services.SavedService
	Tags       *services.TagService
}

func NewThreadController(db *mongo.Client, threads *services.ThreadService, feed *services.FeedService,
	engagement *services.EngagementService, cascade *services.CascadeService, saved *services.SavedService,
	tags *services.TagService) *ThreadController {
	return &ThreadController{
		DB:         db,
		Threads:    threads,
		Feed:       feed,
		Engagement: engagement,
		Cascade:    cascade,
		Saved:      saved,
		Tags:       tags,
	}
}

// requireVerifiedCaller loads the authenticated user and rejects unverified
// accounts. Returns the user id on success.
func (tc *ThreadController) requireVerifiedCaller(c echo.Context) (primitive.ObjectID, error) {
	userID, err := callerID(c)
	if err != nil {
		return primitive.NilObjectID, unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	collection := config.GetCollection(tc.DB, "users")
	if err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return primitive.NilObjectID, c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "User not found",
		})
	}
	if !user.IsVerified {
		return primitive.NilObjectID, c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "Account is not verified",
		})
	}
	return userID, nil
}

// saveUploadedMedia stores the images and videos of a multipart post request
// and returns their serving URLs. Video thumbnails are generated best-effort.
func saveUploadedMedia(c echo.Context) (images, videos []string, err error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No media attached
		return []string{}, []string{}, nil
	}

	images = []string{}
	videos = []string{}

	for _, file := range form.File["images"] {
		if !utils.IsValidImageFile(file) {
			return nil, nil, fmt.Errorf("unsupported image type: %s", file.Filename)
		}
		src, err := file.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, nil, err
		}
		filename := uuid.New().String() + filepath.Ext(file.Filename)
		url, err := utils.UploadFileToPath(data, filename, "image", "threads")
		if err != nil {
			return nil, nil, err
		}
		images = append(images, url)
	}

	for _, file := range form.File["videos"] {
		if !utils.IsValidVideoFile(file) {
			return nil, nil, fmt.Errorf("unsupported video type: %s", file.Filename)
		}
		src, err := file.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, nil, err
		}
		filename := "video_" + uuid.New().String() + filepath.Ext(file.Filename)
		url, err := utils.UploadFileToPath(data, filename, "video", "threads")
		if err != nil {
			return nil, nil, err
		}
		videos = append(videos, url)

		// Thumbnail failures should not block the post
		if _, err := utils.GenerateVideoThumbnail(url); err != nil {
			c.Logger().Warnf("thumbnail generation failed for %s: %v", url, err)
		}
	}

	return images, videos, nil
}

// AddPost creates a new thread from a multipart form
func (tc *ThreadController) AddPost(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	description := utils.SanitizeInput(c.FormValue("description"))
	tagName := utils.SanitizeInput(c.FormValue("tag"))
	if description == "" || tagName == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Description and tag are required",
		})
	}

	images, videos, err := saveUploadedMedia(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Failed to store uploaded media: " + err.Error(),
		})
	}

	thread, err := tc.Threads.Create(c.Request().Context(), userID, description, tagName, images, videos)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Post created successfully",
		Data:    thread,
	})
}

// GetPosts returns one of the three feed variants
func (tc *ThreadController) GetPosts(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	var views []models.ThreadView
	switch c.QueryParam("type") {
	case "", "home":
		views, err = tc.Feed.Home(ctx)
	case "following":
		views, err = tc.Feed.Following(ctx, userID)
	case "foryou":
		views, err = tc.Feed.ForYou(ctx, userID)
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Unknown feed type",
		})
	}
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Posts fetched successfully",
		Data:    views,
	})
}

// GetPost returns a single thread for a verified caller
func (tc *ThreadController) GetPost(c echo.Context) error {
	if _, err := tc.requireVerifiedCaller(c); err != nil {
		return err
	}
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	view, err := tc.Threads.Single(c.Request().Context(), threadID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post fetched successfully",
		Data:    view,
	})
}

// GetSinglePost is the public single-thread read used by share links
func (tc *ThreadController) GetSinglePost(c echo.Context) error {
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	view, err := tc.Threads.Single(c.Request().Context(), threadID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post fetched successfully",
		Data:    view,
	})
}

// UpdatePost edits the description and tag of the caller's post
func (tc *ThreadController) UpdatePost(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(tc.DB, "threads")
	var thread models.Thread
	if err := collection.FindOne(ctx, bson.M{"_id": threadID}).Decode(&thread); err != nil {
		return serviceError(c, services.ErrThreadNotFound)
	}
	if thread.OwnerID != userID {
		return serviceError(c, services.ErrNotOwner)
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Description != "" {
		update["description"] = utils.SanitizeInput(req.Description)
	}
	if req.Tag != "" {
		tagID, err := tc.Tags.Resolve(ctx, utils.SanitizeInput(req.Tag), userID)
		if err != nil {
			return serviceError(c, err)
		}
		update["tag"] = tagID
	}

	if _, err := collection.UpdateOne(ctx, bson.M{"_id": threadID}, bson.M{"$set": update}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to update post",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post updated successfully",
	})
}

// UpdatePostImage replaces one image of the caller's post with a new upload
func (tc *ThreadController) UpdatePostImage(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	oldURL := c.FormValue("oldImage")
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Image file is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Failed to read uploaded image",
		})
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Failed to read uploaded image",
		})
	}

	filename := uuid.New().String() + filepath.Ext(file.Filename)
	newURL, err := utils.UploadFileToPath(data, filename, "image", "threads")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(tc.DB, "threads")
	var thread models.Thread
	if err := collection.FindOne(ctx, bson.M{"_id": threadID}).Decode(&thread); err != nil {
		return serviceError(c, services.ErrThreadNotFound)
	}
	if thread.OwnerID != userID {
		return serviceError(c, services.ErrNotOwner)
	}

	// Positional update keeps the image order stable
	result, err := collection.UpdateOne(ctx,
		bson.M{"_id": threadID, "images": oldURL},
		bson.M{"$set": bson.M{"images.$": newURL, "updatedAt": time.Now()}})
	if err != nil || result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "Image not found on this post",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Image updated successfully",
		Data:    map[string]string{"image": newURL},
	})
}

// DeletePost removes the caller's post together with everything referencing it
func (tc *ThreadController) DeletePost(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	if err := tc.Cascade.DeleteThread(c.Request().Context(), userID, threadID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post and all related data deleted successfully",
	})
}

// ToggleLike likes or unlikes a thread
func (tc *ThreadController) ToggleLike(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	var communityID *primitive.ObjectID
	if hex := c.QueryParam("communityId"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return badID(c, "community")
		}
		communityID = &id
	}

	like, added, err := tc.Engagement.ToggleLike(c.Request().Context(), userID, threadID, communityID)
	if err != nil {
		return serviceError(c, err)
	}

	message := "Like removed"
	if added {
		message = "Post liked"
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    like,
	})
}

// LikeCount returns the number of likes on a thread
func (tc *ThreadController) LikeCount(c echo.Context) error {
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	count, err := tc.Engagement.LikeCount(c.Request().Context(), threadID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Like count fetched successfully",
		Data:    map[string]int64{"likes": count},
	})
}

// LikedPosts lists the threads the caller has liked
func (tc *ThreadController) LikedPosts(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	threads, err := tc.Engagement.LikedThreads(c.Request().Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	views, err := tc.Threads.Decorate(c.Request().Context(), threads)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Liked posts fetched successfully",
		Data:    views,
	})
}

// AddComment creates a top-level comment on a thread
func (tc *ThreadController) AddComment(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Comment content is required",
		})
	}

	comment, err := tc.Engagement.AddComment(c.Request().Context(), userID, threadID, utils.SanitizeInput(req.Content))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Comment added successfully",
		Data:    comment,
	})
}

// GetComments lists a thread's top-level comments with their authors
func (tc *ThreadController) GetComments(c echo.Context) error {
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	comments, err := tc.Feed.ThreadComments(c.Request().Context(), threadID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Comments fetched successfully",
		Data:    comments,
	})
}

// AddReply creates a nested comment under an existing one
func (tc *ThreadController) AddReply(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.ReplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Thread ID, parent comment ID and content are required",
		})
	}

	threadID, err := primitive.ObjectIDFromHex(req.ThreadID)
	if err != nil {
		return badID(c, "thread")
	}
	parentID, err := primitive.ObjectIDFromHex(req.ParentCommentID)
	if err != nil {
		return badID(c, "comment")
	}

	reply, err := tc.Engagement.AddReply(c.Request().Context(), userID, threadID, parentID, utils.SanitizeInput(req.Content))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Reply added successfully",
		Data:    reply,
	})
}

// GetReplies lists the direct children of a comment
func (tc *ThreadController) GetReplies(c echo.Context) error {
	parentID, ok := pathObjectID(c, "parentCommentId")
	if !ok {
		return badID(c, "comment")
	}

	replies, err := tc.Feed.Replies(c.Request().Context(), parentID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Replies fetched successfully",
		Data:    replies,
	})
}

// UserReplies lists comments authored by a user together with their threads
func (tc *ThreadController) UserReplies(c echo.Context) error {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return badID(c, "user")
	}

	replies, err := tc.Feed.UserReplies(c.Request().Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "User replies fetched successfully",
		Data:    replies,
	})
}

// SavePost adds a thread to the caller's saved list
func (tc *ThreadController) SavePost(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	threadID, ok := pathObjectID(c, "threadId")
	if !ok {
		return badID(c, "thread")
	}

	if err := tc.Saved.SavePost(c.Request().Context(), userID, threadID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post saved successfully",
	})
}

// SavedPosts lists the caller's saved threads
func (tc *ThreadController) SavedPosts(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	views, err := tc.Saved.ListSaved(c.Request().Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Saved posts fetched successfully",
		Data:    views,
	})
}

// UserPosts lists a user's threads
func (tc *ThreadController) UserPosts(c echo.Context) error {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return badID(c, "user")
	}

	views, err := tc.Threads.UserPosts(c.Request().Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "User posts fetched successfully",
		Data:    views,
	})
}

// SearchPosts runs the text search over users, tags and communities
func (tc *ThreadController) SearchPosts(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Search text is required",
		})
	}

	results, err := tc.Feed.Search(c.Request().Context(), utils.SanitizeInput(req.SearchText))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Search completed successfully",
		Data:    results,
	})
}

// RecountLikes repairs a thread's like counter from the likes collection
func (tc *ThreadController) RecountLikes(c echo.Context) error {
	var req models.RecountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Thread ID is required",
		})
	}
	threadID, err := primitive.ObjectIDFromHex(req.ThreadID)
	if err != nil {
		return badID(c, "thread")
	}

	thread, err := tc.Engagement.RecountLikes(c.Request().Context(), threadID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Like count recalculated",
		Data:    thread,
	})
}
