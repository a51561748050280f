// utils/file_utils.go
package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	uploadBaseDir = "uploads"
	baseURL       = "/uploads"
)

// mediaDirs are the subdirectories created under uploads/ at startup. Thread
// media, video thumbnails, profile avatars and community covers each get
// their own directory so serving stays path-predictable.
var mediaDirs = []string{"threads", "thumbnails", "avatars", "covers"}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// cleanFilename strips path components and anything outside the safe set
func cleanFilename(filename string) string {
	return unsafeFilenameChars.ReplaceAllString(filepath.Base(filename), "")
}

// InitializeStorage creates the uploads directory tree
func InitializeStorage() error {
	for _, dir := range append([]string{""}, mediaDirs...) {
		if err := os.MkdirAll(filepath.Join(uploadBaseDir, dir), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %v", filepath.Join(uploadBaseDir, dir), err)
		}
	}
	return nil
}

// UploadFileToPath stores media bytes under uploads/<subDir>/ and returns
// the serving URL. mediaType is "image" or "video" and gates both the
// extension and the size limit.
func UploadFileToPath(fileData []byte, filename string, mediaType string, subDir string) (string, error) {
	cleanName := cleanFilename(filename)
	if err := ValidateFile(cleanName, int64(len(fileData))); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(cleanName))
	switch mediaType {
	case "image":
		if !imageExtensions[ext] {
			return "", fmt.Errorf("not an image file: %s", cleanName)
		}
	case "video":
		if !videoExtensions[ext] {
			return "", fmt.Errorf("not a video file: %s", cleanName)
		}
	default:
		return "", fmt.Errorf("unknown media type %q", mediaType)
	}

	fullPath := filepath.Join(uploadBaseDir, subDir, cleanName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}

	return fmt.Sprintf("%s/%s/%s", baseURL, strings.TrimPrefix(subDir, "uploads/"), cleanName), nil
}

// GenerateVideoThumbnail extracts a frame one second into the video, scales
// it to 320px wide and stores it under uploads/thumbnails. Returns the
// thumbnail's serving URL.
func GenerateVideoThumbnail(videoURL string) (string, error) {
	videoPath := strings.TrimPrefix(videoURL, baseURL+"/")
	fullVideoPath := filepath.Join(uploadBaseDir, videoPath)

	videoName := filepath.Base(videoPath)
	stem := strings.TrimSuffix(videoName, filepath.Ext(videoName))
	framePath := filepath.Join(os.TempDir(), stem+"_frame.jpg")
	defer os.Remove(framePath)

	err := ffmpeg.Input(fullVideoPath).
		Output(framePath, ffmpeg.KwArgs{"vframes": 1, "ss": "00:00:01"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to extract video frame: %v", err)
	}

	img, err := imaging.Open(framePath)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted frame: %v", err)
	}
	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %v", err)
	}

	thumbnailName := stem + ".jpg"
	fullThumbnailPath := filepath.Join(uploadBaseDir, "thumbnails", thumbnailName)
	if err := os.MkdirAll(filepath.Dir(fullThumbnailPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %v", err)
	}
	if err := os.WriteFile(fullThumbnailPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %v", err)
	}

	return fmt.Sprintf("%s/thumbnails/%s", baseURL, thumbnailName), nil
}
