package controllers

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/threadora/threadora_backend/config"
	"github.com/threadora/threadora_backend/middleware"
	"github.com/threadora/threadora_backend/models"
	"github.com/threadora/threadora_backend/utils"
)

const verifyCodeTTL = 15 * time.Minute

// AuthController contains authentication logic
type AuthController struct {
	DB     *mongo.Client
	logger *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{
		DB:     db,
		logger: log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// RandomStringGenerator generates a random string of specified length with given charset
func RandomStringGenerator(length int, charsetType string) string {
	var charset string
	switch charsetType {
	case "numeric":
		charset = "0123456789"
	case "alphanumeric":
		charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	default:
		charset = "0123456789"
	}

	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rand.Intn(len(charset))]
	}

	return string(result)
}

// generateVerifyCode generates a 6-digit verification code for signup
func generateVerifyCode() string {
	return RandomStringGenerator(6, "numeric")
}

// Signup handler
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Missing or invalid signup fields",
		})
	}

	// Validate and sanitize email
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid email format",
		})
	}
	req.Email = email
	req.FullName = utils.SanitizeInput(req.FullName)
	req.Username = strings.ToLower(utils.SanitizeInput(req.Username))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")

	// Reject duplicate email or username up front; the unique indexes are the
	// real guard against races.
	count, err := collection.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": req.Email},
		bson.M{"username": req.Username},
	}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to check existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Success: false,
			Message: "Email or username already in use",
		})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to process password",
		})
	}

	code := generateVerifyCode()
	now := time.Now()
	user := models.User{
		FullName:         req.FullName,
		Username:         req.Username,
		Email:            req.Email,
		Password:         string(hashedPassword),
		VerifyCode:       code,
		VerifyCodeExpiry: now.Add(verifyCodeTTL),
		IsVerified:       false,
		Threads:          []primitive.ObjectID{},
		Followers:        []primitive.ObjectID{},
		Following:        []primitive.ObjectID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	result, err := collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Success: false,
				Message: "Email or username already in use",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to create user",
		})
	}

	// Send the verification email without holding up the response
	go func() {
		if err := utils.SendVerificationEmail(req.Email, req.FullName, code); err != nil {
			ac.logger.Printf("failed to send verification email to %s: %v", req.Email, err)
		}
	}()

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "User registered successfully. Please verify your email.",
		Data:    map[string]interface{}{"id": result.InsertedID},
	})
}

// VerifyCode confirms the emailed signup code and activates the account
func (ac *AuthController) VerifyCode(c echo.Context) error {
	var req models.VerifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Username and code are required",
		})
	}
	req.Username = strings.ToLower(utils.SanitizeInput(req.Username))

	// Throttle brute-force attempts per account when Redis is available
	if redisClient := config.GetRedisClient(); redisClient != nil {
		if err := utils.ValidateOTPAttempts(req.Username, redisClient); err != nil {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Success: false,
				Message: "Too many verification attempts. Try again later.",
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")
	var user models.User
	err := collection.FindOne(ctx, bson.M{"username": req.Username}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "User not found",
		})
	}

	if user.IsVerified {
		return c.JSON(http.StatusOK, models.Response{
			Success: true,
			Message: "Account is already verified",
		})
	}
	if user.VerifyCode != req.Code {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Incorrect verification code",
		})
	}
	if time.Now().After(user.VerifyCodeExpiry) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Verification code has expired. Please request a new one.",
		})
	}

	update := bson.M{
		"$set":   bson.M{"isVerified": true, "updatedAt": time.Now()},
		"$unset": bson.M{"verifyCode": "", "verifyCodeExpiry": ""},
	}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to verify account",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Account verified successfully",
	})
}

// ResendCode issues a fresh verification code for an unverified account
func (ac *AuthController) ResendCode(c echo.Context) error {
	var req struct {
		Username string `json:"username" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	req.Username = strings.ToLower(utils.SanitizeInput(req.Username))
	if req.Username == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Username is required",
		})
	}

	if redisClient := config.GetRedisClient(); redisClient != nil {
		if err := utils.ValidateOTPAttempts("resend:"+req.Username, redisClient); err != nil {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Success: false,
				Message: "Too many resend requests. Try again later.",
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")
	var user models.User
	if err := collection.FindOne(ctx, bson.M{"username": req.Username}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "User not found",
		})
	}
	if user.IsVerified {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Account is already verified",
		})
	}

	code := generateVerifyCode()
	update := bson.M{"$set": bson.M{
		"verifyCode":       code,
		"verifyCodeExpiry": time.Now().Add(verifyCodeTTL),
		"updatedAt":        time.Now(),
	}}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to refresh verification code",
		})
	}

	go func() {
		if err := utils.SendVerificationEmail(user.Email, user.FullName, code); err != nil {
			ac.logger.Printf("failed to resend verification email to %s: %v", user.Email, err)
		}
	}()

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "A new verification code has been sent",
	})
}

// Login handler
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if req.Password == "" || (req.Email == "" && req.Username == "") {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Email or username, and password are required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if req.Email != "" {
		email, err := utils.SanitizeEmail(req.Email)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "Invalid email format",
			})
		}
		filter["email"] = email
	} else {
		filter["username"] = strings.ToLower(utils.SanitizeInput(req.Username))
	}

	collection := config.GetCollection(ac.DB, "users")
	var user models.User
	err := collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		// Same message for unknown account and wrong password
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Invalid credentials",
		})
	}

	if !user.IsVerified {
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "Please verify your email before logging in",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to generate session token",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data: models.AuthData{
			Token:        token,
			RefreshToken: refreshToken,
			User:         &user,
		},
	})
}

// Logout invalidates the caller's current token
func (ac *AuthController) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if len(authHeader) < 8 || !strings.HasPrefix(authHeader, "Bearer ") {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "No token provided",
		})
	}
	tokenString := authHeader[7:]

	// Blacklist until the token would have expired anyway
	claims := middleware.GetUserFromToken(c)
	expiry := time.Now().Add(24 * time.Hour)
	if claims != nil && claims.ExpiresAt > 0 {
		expiry = time.Unix(claims.ExpiresAt, 0)
	}
	middleware.BlacklistToken(tokenString, expiry)

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// ValidateSession reports whether the presented token is still usable
func (ac *AuthController) ValidateSession(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	result, err := utils.ValidateTokenFromHeader(authHeader, ac.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to validate session",
		})
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, models.Response{
		Success: result.Valid,
		Message: result.Message,
		Data:    result,
	})
}
