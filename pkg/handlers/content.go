package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitcms/pkg/models"
	"gitcms/pkg/services"
)

// ListCollections returns the registry: which kinds exist and where
// their documents live.
func (a *API) ListCollections(c *gin.Context) {
	c.JSON(http.StatusOK, a.Sync.Collections)
}

// GetCollection returns the cached items of one collection.
func (a *API) GetCollection(c *gin.Context) {
	kind := c.Param("kind")
	if _, ok := a.Sync.CollectionByKind(kind); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	s := a.session(c)
	entry, ok := s.Cache.Collection(kind)
	if !ok {
		respondError(c, services.ErrNotLoaded)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entry.Body.Items, "revision": entry.Revision})
}

// SaveRecord upserts one record and persists the collection.
func (a *API) SaveRecord(c *gin.Context) {
	var rec models.Record
	if err := c.BindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	saved, err := a.Sync.SaveRecord(c.Request.Context(), a.session(c), c.Param("kind"), rec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "record": saved})
}

// DeleteRecord removes one record by id. Deleting an absent id still
// reports success.
func (a *API) DeleteRecord(c *gin.Context) {
	err := a.Sync.DeleteRecord(c.Request.Context(), a.session(c), c.Param("kind"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetSettings returns the cached site configuration.
func (a *API) GetSettings(c *gin.Context) {
	entry, ok := a.session(c).Cache.Config()
	if !ok {
		respondError(c, services.ErrNotLoaded)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": entry.Body, "revision": entry.Revision})
}

// SaveSettings replaces the whole site configuration document.
func (a *API) SaveSettings(c *gin.Context) {
	var cfg models.SiteConfig
	if err := c.BindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := a.Sync.SaveSettings(c.Request.Context(), a.session(c), cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// Reload re-reads every document and the image listing. This is the
// manual recovery path after a stale-copy conflict.
func (a *API) Reload(c *gin.Context) {
	result := a.Sync.LoadAll(c.Request.Context(), a.session(c))
	status := http.StatusOK
	if !result.Loaded {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// Status reports the session's operation state for the panel's status
// indicator.
func (a *API) Status(c *gin.Context) {
	state, lastError := a.session(c).Status()
	c.JSON(http.StatusOK, gin.H{"status": state, "error": lastError})
}
