// controllers/user_controller.go
package controllers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/threadora/threadora_backend/config"
	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/services"
	"github.com/threadora/threadora_backend/utils"
)

type UserController struct {
	DB     *mongo.Client
	Follow *services.FollowService
}

func NewUserController(db *mongo.Client, follow *services.FollowService) *UserController {
	return &UserController{DB: db, Follow: follow}
}

// Profile returns the authenticated user's own account
func (uc *UserController) Profile(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, uc.DB)
	if err != nil {
		return unauthorized(c)
	}
	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile fetched successfully",
		Data:    user,
	})
}

// UpdateProfile edits name, bio and username. Usernames stay unique and
// lowercase.
func (uc *UserController) UpdateProfile(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		update["fullName"] = utils.SanitizeInput(req.FullName)
	}
	if req.Bio != "" {
		update["bio"] = utils.SanitizeInput(req.Bio)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(uc.DB, "users")
	if req.Username != "" {
		username := strings.ToLower(utils.SanitizeInput(req.Username))
		count, err := collection.CountDocuments(ctx, bson.M{
			"username": username,
			"_id":      bson.M{"$ne": userID},
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Success: false,
				Message: "Failed to update profile",
			})
		}
		if count > 0 {
			return c.JSON(http.StatusConflict, models.Response{
				Success: false,
				Message: "Username is already taken",
			})
		}
		update["username"] = username
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": update}, opts).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "User not found",
		})
	}
	user.Password = ""

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile updated successfully",
		Data:    user,
	})
}

// UploadAvatar stores a square-cropped avatar image for the caller
func (uc *UserController) UploadAvatar(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Avatar file is required",
		})
	}
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
			Message: "Failed to read uploaded file",
		})
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid image data",
		})
	}
	avatar := imaging.Fill(img, 400, 400, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, avatar, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to process image",
		})
	}

	filename := "avatar_" + uuid.New().String() + ".jpg"
	url, err := utils.UploadFileToPath(buf.Bytes(), filename, "image", "avatars")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to store avatar",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(uc.DB, "users")
	_, err = collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"avatar": url, "updatedAt": time.Now()}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to save avatar",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Avatar uploaded successfully",
		Data:    map[string]string{"avatar": url},
	})
}

// ToggleFollow follows or unfollows the target user
func (uc *UserController) ToggleFollow(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, ok := pathObjectID(c, "userId")
	if !ok {
		return badID(c, "user")
	}

	following, err := uc.Follow.ToggleFollow(c.Request().Context(), userID, targetID)
	if err != nil {
		return serviceError(c, err)
	}

	message := "User unfollowed"
	if following {
		message = "User followed"
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    map[string]bool{"following": following},
	})
}

// FollowLists returns either side of the caller's follow graph
func (uc *UserController) FollowLists(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(uc.DB, "users")
	var user models.User
	if err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "User not found",
		})
	}

	ids := user.Followers
	if c.QueryParam("type") == "following" {
		ids = user.Following
	}
	if len(ids) == 0 {
		return c.JSON(http.StatusOK, models.Response{
			Success: true,
			Message: "Users fetched successfully",
			Data:    []models.UserRef{},
		})
	}

	opts := options.Find().SetProjection(bson.M{
		"username": 1,
		"fullName": 1,
		"avatar":   1,
	})
	cursor, err := collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to fetch users",
		})
	}
	defer cursor.Close(ctx)

	refs := []models.UserRef{}
	if err := cursor.All(ctx, &refs); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to decode users",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Users fetched successfully",
		Data:    refs,
	})
}

// AllUsers lists accounts page by page for the people-discovery screen
func (uc *UserController) AllUsers(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return unauthorized(c)
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(uc.DB, "users")
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)

	cursor, err := collection.Find(ctx, bson.M{"_id": bson.M{"$ne": userID}}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to fetch users",
		})
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to decode users",
		})
	}
	for i := range users {
		users[i].Password = ""
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Users fetched successfully",
		Data:    users,
	})
}

// UserByUsername returns a public profile by username
func (uc *UserController) UserByUsername(c echo.Context) error {
	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	if username == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Username is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(uc.DB, "users")
	var user models.User
	if err := collection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "User not found",
		})
	}
	user.Password = ""

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "User fetched successfully",
		Data:    user,
	})
}
