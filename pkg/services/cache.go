package services

import (
	"sync"

	"gitcms/pkg/models"
)

// SessionCache mirrors the remote documents for one session: the site
// configuration, one collection document per kind, and the image
// listing, each collection and the config paired with the revision
// token it was last read or written at. Replace is atomic — body and
// revision always change together under the lock, so a reader never
// sees a torn pair.
type SessionCache struct {
	mu          sync.Mutex
	config      *models.Versioned[models.SiteConfig]
	collections map[string]*models.Versioned[models.CollectionDocument]
	images      []models.ImageAsset
}

// NewSessionCache returns an empty cache. Every document starts
// unloaded; a fresh session always re-reads from the store.
func NewSessionCache() *SessionCache {
	return &SessionCache{
		collections: make(map[string]*models.Versioned[models.CollectionDocument]),
	}
}

// Config returns the cached site configuration, or false when unloaded.
func (c *SessionCache) Config() (models.Versioned[models.SiteConfig], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config == nil {
		return models.Versioned[models.SiteConfig]{}, false
	}
	return *c.config, true
}

// ReplaceConfig swaps in a new configuration body and revision.
func (c *SessionCache) ReplaceConfig(body models.SiteConfig, revision string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = &models.Versioned[models.SiteConfig]{Body: body, Revision: revision}
}

// Collection returns the cached document for a kind, or false when
// unloaded.
func (c *SessionCache) Collection(kind string) (models.Versioned[models.CollectionDocument], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.collections[kind]
	if !ok {
		return models.Versioned[models.CollectionDocument]{}, false
	}
	return *entry, true
}

// ReplaceCollection swaps in a new collection body and revision.
func (c *SessionCache) ReplaceCollection(kind string, body models.CollectionDocument, revision string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections[kind] = &models.Versioned[models.CollectionDocument]{Body: body, Revision: revision}
}

// Images returns the cached image listing.
func (c *SessionCache) Images() []models.ImageAsset {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ImageAsset, len(c.images))
	copy(out, c.images)
	return out
}

// SetImages replaces the image listing. Called after every load and
// after every mutating image operation.
func (c *SessionCache) SetImages(assets []models.ImageAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = assets
}

// Reset discards everything. Called on logout; the next login forces a
// full reload before any cached value is trusted again.
func (c *SessionCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = nil
	c.collections = make(map[string]*models.Versioned[models.CollectionDocument])
	c.images = nil
}
