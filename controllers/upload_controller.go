package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/repairhub/repairhub-api/utils"
)

// servableMedia maps the media folders to the file types served from them
var servableMedia = map[string]map[string]string{
	"images": {
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".webp": "image/webp",
	},
	"videos": {
		".mp4":       "video/mp4",
		".webm":      "video/webm",
		".quicktime": "video/quicktime",
		".mov":       "video/quicktime",
	},
}

// GetUploadedMedia handles GET /api/v1/uploads/orders/:kind/:filename - serves order media
// stored by the local storage driver
func GetUploadedMedia(c *gin.Context) {
	kind := c.Param("kind")
	filename := c.Param("filename")

	types, ok := servableMedia[kind]
	if !ok {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Media not found")
		return
	}

	// Validate filename is not empty
	if filename == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	contentType, ok := types[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Unsupported media type")
		return
	}

	filePath := filepath.Join(utils.UploadDir, "orders", kind, filename)

	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Media not found")
		return
	}

	// Serve the file with appropriate headers
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
