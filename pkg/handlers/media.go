package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListImages returns the cached image-asset listing.
func (a *API) ListImages(c *gin.Context) {
	c.JSON(http.StatusOK, a.session(c).Cache.Images())
}

// UploadImage stores an uploaded file in the image directory and
// returns the refreshed asset entry.
func (a *API) UploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open upload: " + err.Error()})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload: " + err.Error()})
		return
	}

	asset, err := a.Sync.UploadImage(c.Request.Context(), a.session(c), header.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// DeleteImage removes an asset at its listed revision.
func (a *API) DeleteImage(c *gin.Context) {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.BindJSON(&req); err != nil || req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := a.Sync.DeleteImage(c.Request.Context(), a.session(c), req.Path); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
