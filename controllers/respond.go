package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/services"
	"github.com/threadora/threadora_backend/utils"
)

// pageSize is the fixed page length of the paginated listings.
const pageSize = 9

// serviceError maps the service layer's sentinel errors onto the response
// envelope with the status codes clients expect.
func serviceError(c echo.Context, err error) error {
	var status int
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrThreadNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrCommunityNotFound),
		errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUserNotVerified),
		errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrAlreadySaved):
		status = http.StatusConflict
	case errors.Is(err, services.ErrNoFollowing):
		status = http.StatusBadRequest
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Something went wrong",
		})
	}
	return c.JSON(status, models.Response{
		Success: false,
		Message: err.Error(),
	})
}

// callerID resolves the authenticated user's object id from the JWT.
func callerID(c echo.Context) (primitive.ObjectID, error) {
	return utils.GetUserIDFromToken(c)
}

// pathObjectID parses a hex object id path parameter.
func pathObjectID(c echo.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	return id, err == nil
}

func badID(c echo.Context, what string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Success: false,
		Message: "Invalid " + what + " ID",
	})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Success: false,
		Message: "Authentication required",
	})
}
