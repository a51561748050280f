package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/threadora/threadora_backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client, authController *controllers.AuthController) {
	passwordController := controllers.NewPasswordController(db)

	e.POST("/api/auth/signup", authController.Signup)
	e.POST("/api/auth/verify-code", authController.VerifyCode)
	e.POST("/api/auth/resend-code", authController.ResendCode)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/logout", authController.Logout)
	e.GET("/api/auth/validate-session", authController.ValidateSession)

	e.POST("/api/auth/forgot-password", passwordController.ForgotPassword)
	e.POST("/api/auth/reset-password", passwordController.ResetPassword)
}
