package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/threadora/threadora_backend/models"
)

// RegisterFileRoutes sets up the upload serving routes
func RegisterFileRoutes(e *echo.Echo) {
	e.GET("/uploads/*", ServeFile)
	e.GET("/uploads/:filename", ServeImage)
}

// ServeImage serves an uploaded image by bare filename, checking the media
// subdirectories in order
func ServeImage(c echo.Context) error {
	path := c.Param("*")
	if path == "" {
		path = c.Param("filename")
	}

	potentialPaths := []string{
		filepath.Join("uploads", path),
		filepath.Join("uploads", "threads", path),
		filepath.Join("uploads", "avatars", path),
		filepath.Join("uploads", "covers", path),
		filepath.Join("uploads", "thumbnails", path),
	}

	for _, filePath := range potentialPaths {
		if _, err := os.Stat(filePath); !os.IsNotExist(err) {
			return c.File(filePath)
		}
	}

	return c.JSON(http.StatusNotFound, models.Response{
		Success: false,
		Message: "Image not found",
	})
}

// ServeFile serves uploaded files with directory traversal protection
func ServeFile(c echo.Context) error {
	path := c.Param("*")
	if path == "" {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "File not found",
		})
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, "../") {
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "Access denied",
		})
	}

	fullPath := filepath.Join("uploads", cleanPath)
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "File not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error accessing file",
		})
	}
	if info.IsDir() {
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "Access denied",
		})
	}

	// Uploads are immutable, cache aggressively
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000")
	c.Response().Header().Set("Expires", time.Now().AddDate(1, 0, 0).Format(time.RFC1123))

	return c.File(fullPath)
}
