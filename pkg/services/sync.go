package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitcms/pkg/models"
	"gitcms/pkg/store"
)

// ErrNotLoaded means a mutation was attempted before the session loaded
// its documents.
var ErrNotLoaded = errors.New("document not loaded")

// ErrStale means the remote document changed since it was last read;
// the pending mutation was discarded and the caller must reload.
var ErrStale = errors.New("stale copy, reload before retrying")

// ErrUnknownCollection means the kind is not in the registry.
var ErrUnknownCollection = errors.New("unknown collection")

// Syncer sequences the read-modify-write cycles between a session's
// cache and the remote store. It never retries and never leaves the
// cache partially updated: an operation either commits its whole effect
// on the cache or has none.
type Syncer struct {
	Collections []models.Collection
	ConfigPath  string
	ImageDir    string

	logger *zap.Logger
}

// NewSyncer builds a syncer over the given collections registry.
func NewSyncer(collections []models.Collection, configPath, imageDir string, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		Collections: collections,
		ConfigPath:  configPath,
		ImageDir:    imageDir,
		logger:      logger,
	}
}

// CollectionByKind looks up a registered collection.
func (sy *Syncer) CollectionByKind(kind string) (models.Collection, bool) {
	for _, col := range sy.Collections {
		if col.Kind == kind {
			return col, true
		}
	}
	return models.Collection{}, false
}

// LoadResult reports the outcome of a load batch: which documents
// failed, and whether the batch as a whole is usable. Successful reads
// populate the cache even when a sibling read failed.
type LoadResult struct {
	Loaded bool              `json:"loaded"`
	Errors map[string]string `json:"errors,omitempty"`
}

// LoadAll reads the site configuration, every collection document and
// the image listing concurrently. A missing document is a valid empty
// default, not a failure. Completion order is unspecified; each result
// is handled independently.
func (sy *Syncer) LoadAll(ctx context.Context, s *Session) LoadResult {
	s.setStatus(StatusLoading)

	var (
		mu       sync.Mutex
		failures = make(map[string]string)
		wg       sync.WaitGroup
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures[name] = err.Error()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		raw, rev, err := s.Store.ReadDocument(ctx, sy.ConfigPath)
		if errors.Is(err, store.ErrNotFound) {
			s.Cache.ReplaceConfig(models.SiteConfig{}, "")
			return
		}
		if err != nil {
			record("config", err)
			return
		}
		var cfg models.SiteConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			record("config", fmt.Errorf("parse %s: %w", sy.ConfigPath, err))
			return
		}
		s.Cache.ReplaceConfig(cfg, rev)
	}()

	for _, col := range sy.Collections {
		wg.Add(1)
		go func(col models.Collection) {
			defer wg.Done()
			raw, rev, err := s.Store.ReadDocument(ctx, col.Path)
			if errors.Is(err, store.ErrNotFound) {
				s.Cache.ReplaceCollection(col.Kind, models.EmptyCollection(col.Container), "")
				return
			}
			if err != nil {
				record(col.Kind, err)
				return
			}
			doc := models.CollectionDocument{Container: col.Container}
			if err := json.Unmarshal(raw, &doc); err != nil {
				record(col.Kind, fmt.Errorf("parse %s: %w", col.Path, err))
				return
			}
			s.Cache.ReplaceCollection(col.Kind, doc, rev)
		}(col)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		assets, err := s.Store.ListDirectory(ctx, sy.ImageDir)
		if err != nil {
			record("images", err)
			return
		}
		s.Cache.SetImages(assets)
	}()

	wg.Wait()

	if len(failures) > 0 {
		sy.logger.Warn("load batch finished with failures",
			zap.Int("failed", len(failures)))
		s.setError(fmt.Errorf("%d document(s) failed to load", len(failures)))
		return LoadResult{Loaded: false, Errors: failures}
	}
	sy.logger.Info("load batch finished",
		zap.Int("collections", len(sy.Collections)))
	s.setStatus(StatusIdle)
	return LoadResult{Loaded: true}
}

// SaveRecord upserts one record into a collection and persists the
// whole document at the cached revision. The cache is replaced only
// after the store confirms the write; a Conflict discards the mutation.
func (sy *Syncer) SaveRecord(ctx context.Context, s *Session, kind string, rec models.Record) (models.Record, error) {
	col, ok := sy.CollectionByKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCollection, kind)
	}

	prepared, err := PrepareRecord(rec, col.IDPrefix, time.Now())
	if err != nil {
		return nil, err
	}

	err = sy.mutateCollection(ctx, s, col, fmt.Sprintf("Update %s via gitcms", col.Path),
		func(items []models.Record) ([]models.Record, bool) {
			return Upsert(items, prepared), true
		})
	if err != nil {
		return nil, err
	}
	return prepared, nil
}

// DeleteRecord removes one record by id. Deleting an id the collection
// does not hold is reported as success without minting a commit.
func (sy *Syncer) DeleteRecord(ctx context.Context, s *Session, kind, id string) error {
	col, ok := sy.CollectionByKind(kind)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownCollection, kind)
	}
	return sy.mutateCollection(ctx, s, col, fmt.Sprintf("Update %s via gitcms", col.Path),
		func(items []models.Record) ([]models.Record, bool) {
			if _, found := FindByID(items, id); !found {
				return items, false
			}
			return Remove(items, id), true
		})
}

// mutateCollection runs one read-modify-write cycle over a collection
// document, serialized per document path. mutate returns the new items
// and whether anything changed.
func (sy *Syncer) mutateCollection(ctx context.Context, s *Session, col models.Collection, message string,
	mutate func([]models.Record) ([]models.Record, bool)) error {

	lock := s.docLock(col.Path)
	lock.Lock()
	defer lock.Unlock()

	entry, ok := s.Cache.Collection(col.Kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, col.Kind)
	}

	items, changed := mutate(entry.Body.Items)
	if !changed {
		return nil
	}
	doc := models.CollectionDocument{Container: col.Container, Items: items}

	s.setStatus(StatusSaving)
	newRev, err := sy.writeJSON(ctx, s, col.Path, doc, entry.Revision, message)
	if err != nil {
		s.setError(err)
		return err
	}

	s.Cache.ReplaceCollection(col.Kind, doc, newRev)
	s.setStatus(StatusIdle)
	sy.logger.Info("collection saved",
		zap.String("kind", col.Kind), zap.String("revision", newRev))
	return nil
}

// SaveSettings replaces the whole site configuration document.
func (sy *Syncer) SaveSettings(ctx context.Context, s *Session, cfg models.SiteConfig) error {
	lock := s.docLock(sy.ConfigPath)
	lock.Lock()
	defer lock.Unlock()

	entry, ok := s.Cache.Config()
	if !ok {
		return fmt.Errorf("%w: config", ErrNotLoaded)
	}

	s.setStatus(StatusSaving)
	newRev, err := sy.writeJSON(ctx, s, sy.ConfigPath, cfg, entry.Revision,
		fmt.Sprintf("Update %s via gitcms", sy.ConfigPath))
	if err != nil {
		s.setError(err)
		return err
	}

	s.Cache.ReplaceConfig(cfg, newRev)
	s.setStatus(StatusIdle)
	return nil
}

func (sy *Syncer) writeJSON(ctx context.Context, s *Session, path string, body interface{}, revision, message string) (string, error) {
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	newRev, err := s.Store.WriteDocument(ctx, path, data, revision, message)
	if errors.Is(err, store.ErrConflict) {
		return "", fmt.Errorf("%w (%s)", ErrStale, path)
	}
	if err != nil {
		return "", err
	}
	return newRev, nil
}
