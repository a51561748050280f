// utils/valid.go
package utils

import (
	"errors"
	"html"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	scriptRegex = regexp.MustCompile(`<script[^>]*>.*?</script>`)
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
}

// IsValidImageFile reports whether the upload has an accepted image extension
func IsValidImageFile(file *multipart.FileHeader) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(file.Filename))]
}

// IsValidVideoFile reports whether the upload has an accepted video extension
func IsValidVideoFile(file *multipart.FileHeader) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(file.Filename))]
}

// SanitizeInput strips control characters and script tags and escapes HTML.
// Post descriptions, comments and names all pass through here before any
// write.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = scriptRegex.ReplaceAllString(input, "")
	input = html.EscapeString(input)
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return -1
		}
		return r
	}, input)
	return input
}

// SanitizeEmail lowercases and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// ValidateFile rejects oversized uploads and unknown media extensions
func ValidateFile(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if imageExtensions[ext] {
		if size > 10*1024*1024 {
			return errors.New("image exceeds the 10MB limit")
		}
		return nil
	}
	if videoExtensions[ext] {
		if size > 100*1024*1024 {
			return errors.New("video exceeds the 100MB limit")
		}
		return nil
	}
	return errors.New("unsupported file type")
}

// SanitizeStringArray sanitizes every element in place
func SanitizeStringArray(inputs []string) []string {
	sanitized := make([]string, len(inputs))
	for i, input := range inputs {
		sanitized[i] = SanitizeInput(input)
	}
	return sanitized
}
