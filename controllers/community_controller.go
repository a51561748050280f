// controllers/community_controller.go
package controllers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/threadora/threadora_backend/config"
	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/services"
	"github.com/threadora/threadora_backend/utils"
)

type CommunityController struct {
	DB          *mongo.Client
	Communities *services.CommunityService
	Feed        *services.FeedService
	Cascade     *services.CascadeService
}

func NewCommunityController(db *mongo.Client, communities *services.CommunityService,
	feed *services.FeedService, cascade *services.CascadeService) *CommunityController {
	return &CommunityController{DB: db, Communities: communities, Feed: feed, Cascade: cascade}
}

// CreateCommunity creates a community with the caller as admin and first
// member. Cover image comes in as multipart.
func (cc *CommunityController) CreateCommunity(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	name := utils.SanitizeInput(c.FormValue("name"))
	description := utils.SanitizeInput(c.FormValue("description"))
	about := utils.SanitizeInput(c.FormValue("about"))
	if name == "" || description == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Name and description are required",
		})
	}

	coverURL := ""
	if file, err := c.FormFile("coverImage"); err == nil {
		if !utils.IsValidImageFile(file) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "Unsupported image type",
			})
		}
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "Failed to read cover image",
			})
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "Failed to read cover image",
			})
		}
		filename := "cover_" + uuid.New().String() + filepath.Ext(file.Filename)
		coverURL, err = utils.UploadFileToPath(data, filename, "image", "covers")
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: err.Error(),
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(cc.DB, "communities")
	count, err := collection.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to create community",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Success: false,
			Message: "A community with this name already exists",
		})
	}

	community := models.Community{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		About:       about,
		CoverImage:  coverURL,
		Members:     []primitive.ObjectID{userID},
		Admin:       []primitive.ObjectID{userID},
		Threads:     []primitive.ObjectID{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if _, err := collection.InsertOne(ctx, community); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to create community",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Community created successfully",
		Data:    community,
	})
}

// TopCommunities lists communities ranked by followers and engagement
func (cc *CommunityController) TopCommunities(c echo.Context) error {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}

	ranks, err := cc.Feed.TopCommunities(c.Request().Context(), (page-1)*pageSize, pageSize)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Communities fetched successfully",
		Data:    ranks,
	})
}

// GetCommunity returns a single community
func (cc *CommunityController) GetCommunity(c echo.Context) error {
	communityID, ok := pathObjectID(c, "communityId")
	if !ok {
		return badID(c, "community")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var community models.Community
	collection := config.GetCollection(cc.DB, "communities")
	if err := collection.FindOne(ctx, bson.M{"_id": communityID}).Decode(&community); err != nil {
		return serviceError(c, services.ErrCommunityNotFound)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Community fetched successfully",
		Data:    community,
	})
}

// ToggleJoin joins or leaves the community
func (cc *CommunityController) ToggleJoin(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	communityID, ok := pathObjectID(c, "communityId")
	if !ok {
		return badID(c, "community")
	}

	joined, err := cc.Communities.ToggleMembership(c.Request().Context(), userID, communityID)
	if err != nil {
		return serviceError(c, err)
	}

	message := "Left community"
	if joined {
		message = "Joined community"
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    map[string]bool{"joined": joined},
	})
}

// Members lists the community's members as user refs
func (cc *CommunityController) Members(c echo.Context) error {
	communityID, ok := pathObjectID(c, "communityId")
	if !ok {
		return badID(c, "community")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var community models.Community
	communities := config.GetCollection(cc.DB, "communities")
	if err := communities.FindOne(ctx, bson.M{"_id": communityID}).Decode(&community); err != nil {
		return serviceError(c, services.ErrCommunityNotFound)
	}

	all := append(append([]primitive.ObjectID{}, community.Members...), community.Admin...)
	refs := []models.UserRef{}
	if len(all) > 0 {
		users := config.GetCollection(cc.DB, "users")
		opts := options.Find().SetProjection(bson.M{
			"username": 1,
			"fullName": 1,
			"avatar":   1,
		})
		cursor, err := users.Find(ctx, bson.M{"_id": bson.M{"$in": all}}, opts)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Success: false,
				Message: "Failed to fetch members",
			})
		}
		defer cursor.Close(ctx)
		if err := cursor.All(ctx, &refs); err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Success: false,
				Message: "Failed to decode members",
			})
		}
	}

	// Admins are listed separately from plain members
	isAdmin := make(map[primitive.ObjectID]bool, len(community.Admin))
	for _, id := range community.Admin {
		isAdmin[id] = true
	}
	members := []models.UserRef{}
	admins := []models.UserRef{}
	for _, ref := range refs {
		if isAdmin[ref.ID] {
			admins = append(admins, ref)
		} else {
			members = append(members, ref)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Members fetched successfully",
		Data: map[string]interface{}{
			"members": members,
			"admins":  admins,
		},
	})
}

// UpdateCommunity edits description and about. Admins only.
func (cc *CommunityController) UpdateCommunity(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	communityID, ok := pathObjectID(c, "communityId")
	if !ok {
		return badID(c, "community")
	}

	var req models.UpdateCommunityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(cc.DB, "communities")
	var community models.Community
	if err := collection.FindOne(ctx, bson.M{"_id": communityID}).Decode(&community); err != nil {
		return serviceError(c, services.ErrCommunityNotFound)
	}

	admin := false
	for _, id := range community.Admin {
		if id == userID {
			admin = true
			break
		}
	}
	if !admin {
		return serviceError(c, services.ErrNotAdmin)
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Description != "" {
		update["description"] = utils.SanitizeInput(req.Description)
	}
	if req.About != "" {
		update["about"] = utils.SanitizeInput(req.About)
	}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": communityID}, bson.M{"$set": update}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to update community",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Community updated successfully",
	})
}

// AddPost creates a thread inside the community
func (cc *CommunityController) AddPost(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	communityID, ok := pathObjectID(c, "communityId")
	if !ok {
		return badID(c, "community")
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

	thread, err := cc.Communities.AddPost(c.Request().Context(), userID, communityID, description, tagName, images, videos)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Post created successfully",
		Data:    thread,
	})
}

// CommunityPosts returns a page of the community's threads
func (cc *CommunityController) CommunityPosts(c echo.Context) error {
	communityID, ok := pathObjectID(c, "communityId")
	if !ok {
		return badID(c, "community")
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}

	views, err := cc.Communities.CommunityThreads(c.Request().Context(), communityID, (page-1)*pageSize, pageSize)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Community posts fetched successfully",
		Data:    views,
	})
}

// DeletePost removes a community post on behalf of an admin, cascading the
// same way an owner delete does
func (cc *CommunityController) DeletePost(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	postID, ok := pathObjectID(c, "postId")
	if !ok {
		return badID(c, "post")
	}

	var req models.CommunityPostDeleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Community ID is required",
		})
	}
	communityID, err := primitive.ObjectIDFromHex(req.CommunityID)
	if err != nil {
		return badID(c, "community")
	}

	if err := cc.Cascade.AdminDeleteCommunityPost(c.Request().Context(), userID, communityID, postID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post and all related data deleted successfully",
	})
}

// AddComment comments on a community thread. Members and admins only.
func (cc *CommunityController) AddComment(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	communityID, ok := pathObjectID(c, "communityId")
	if !ok {
		return badID(c, "community")
	}

	var req models.CommunityCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Thread ID and comment are required",
		})
	}
	threadID, err := primitive.ObjectIDFromHex(req.ThreadID)
	if err != nil {
		return badID(c, "thread")
	}

	comment, err := cc.Communities.AddComment(c.Request().Context(), userID, communityID, threadID, utils.SanitizeInput(req.Comment))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Comment added successfully",
		Data:    comment,
	})
}
