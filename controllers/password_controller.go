// controllers/password_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/threadora/threadora_backend/config"
	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/utils"
)

// PasswordController handles password reset functionality
type PasswordController struct {
	DB *mongo.Client
}

// NewPasswordController creates a new password controller
func NewPasswordController(db *mongo.Client) *PasswordController {
	return &PasswordController{DB: db}
}

// ForgotPassword emails a reset code to the account's address
func (pc *PasswordController) ForgotPassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Email is required",
		})
	}
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid email address",
		})
	}

	// Throttle reset requests per address when Redis is available
	if redisClient := config.GetRedisClient(); redisClient != nil {
		if err := utils.ValidateOTPAttempts("reset:"+email, redisClient); err != nil {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Success: false,
				Message: "Too many reset requests, try again later",
			})
		}
	}

	collection := config.GetCollection(pc.DB, "users")
	var user models.User
	if err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "No account associated with this email",
		})
	}

	code := generateVerifyCode()
	_, err = collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"resetCode":       code,
		"resetCodeExpiry": time.Now().Add(verifyCodeTTL),
		"updatedAt":       time.Now(),
	}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to save reset code",
		})
	}

	go func(email, name string) {
		if err := utils.SendPasswordResetEmail(email, name, code); err != nil {
			log.Printf("Failed to send reset email to %s: %v", maskEmail(email), err)
		}
	}(user.Email, user.FullName)

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Password reset code sent",
		Data:    map[string]string{"email": maskEmail(user.Email)},
	})
}

// ResetPassword sets a new password after checking the emailed code
func (pc *PasswordController) ResetPassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Email, code and new password are required",
		})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Password must be at least 8 characters",
		})
	}
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid email address",
		})
	}

	collection := config.GetCollection(pc.DB, "users")
	var user models.User
	if err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "No account associated with this email",
		})
	}

	if user.ResetCode == "" || user.ResetCode != strings.TrimSpace(req.Code) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid reset code",
		})
	}
	if time.Now().After(user.ResetCodeExpiry) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Reset code has expired",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to process password",
		})
	}

	_, err = collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set":   bson.M{"password": string(hashed), "updatedAt": time.Now()},
		"$unset": bson.M{"resetCode": "", "resetCodeExpiry": ""},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to reset password",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Password reset successfully",
	})
}

// maskEmail hides most of the local part for display
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}
