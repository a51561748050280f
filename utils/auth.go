// utils/auth.go
package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/threadora/threadora_backend/config"
	"github.com/threadora/threadora_backend/middleware"
	"github.com/threadora/threadora_backend/models"
)

// ValidateTokenResponse is what the session check endpoint returns to
// clients deciding whether to re-login.
type ValidateTokenResponse struct {
	Valid     bool         `json:"valid"`
	User      *models.User `json:"user,omitempty"`
	Message   string       `json:"message,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

func invalidToken(message string) *ValidateTokenResponse {
	return &ValidateTokenResponse{Valid: false, Message: message}
}

// ValidateToken checks a JWT's signature, expiry and blacklist state, then
// confirms the account still exists and is verified.
func ValidateToken(tokenString string, db *mongo.Client) (*ValidateTokenResponse, error) {
	if tokenString == "" {
		return invalidToken("No token provided"), nil
	}
	if middleware.IsTokenBlacklisted(tokenString) {
		return invalidToken("Token has been revoked"), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &middleware.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil {
		return invalidToken("Invalid token: " + err.Error()), nil
	}

	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok || !token.Valid {
		return invalidToken("Token is not valid"), nil
	}
	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return invalidToken("Token has expired"), nil
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return invalidToken("Invalid user ID format"), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = config.GetCollection(db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return invalidToken("User not found"), nil
		}
		return invalidToken("Error retrieving user"), nil
	}
	if !user.IsVerified {
		return invalidToken("User account is not verified"), nil
	}
	user.Password = ""

	response := &ValidateTokenResponse{Valid: true, User: &user, Message: "Token is valid"}
	if claims.ExpiresAt > 0 {
		expTime := time.Unix(claims.ExpiresAt, 0)
		response.ExpiresAt = &expTime
	}
	return response, nil
}

// ValidateTokenFromHeader strips the Bearer prefix and validates the token
func ValidateTokenFromHeader(authHeader string, db *mongo.Client) (*ValidateTokenResponse, error) {
	if authHeader == "" {
		return invalidToken("No authorization header provided"), nil
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return invalidToken("Invalid authorization header format"), nil
	}
	return ValidateToken(strings.TrimPrefix(authHeader, "Bearer "), db)
}

// tokenClaims pulls the custom claims the JWT middleware stored on the
// context
func tokenClaims(c echo.Context) (*middleware.JwtCustomClaims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("no token found")
	}
	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}

// GetUserFromToken loads the authenticated user's full document
func GetUserFromToken(c echo.Context, db *mongo.Client) (*models.User, error) {
	claims, err := tokenClaims(c)
	if err != nil {
		return nil, err
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, errors.New("invalid user ID format")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = config.GetCollection(db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("user not found")
		}
		return nil, errors.New("error retrieving user")
	}
	user.Password = ""
	return &user, nil
}

// GetUserIDFromToken returns just the authenticated user's object id
func GetUserIDFromToken(c echo.Context) (primitive.ObjectID, error) {
	claims, err := tokenClaims(c)
	if err != nil {
		return primitive.NilObjectID, echo.ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, echo.ErrUnauthorized
	}
	return id, nil
}
