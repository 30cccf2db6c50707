package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"gitcms/pkg/models"
)

type collectionsFile struct {
	Collections []models.Collection `yaml:"collections"`
}

// DefaultCollections are the three content collections the public site
// renders. The container key differs per kind even though the shape is
// identical.
func DefaultCollections() []models.Collection {
	return []models.Collection{
		{Kind: "news", Label: "News", Path: "content/news.json", Container: "articles", IDPrefix: "news"},
		{Kind: "projects", Label: "Projects", Path: "content/projects.json", Container: "projects", IDPrefix: "proj"},
		{Kind: "events", Label: "Events", Path: "content/events.json", Container: "events", IDPrefix: "evt"},
	}
}

// LoadCollections reads the collections registry file, falling back to
// the defaults when the file is absent.
func LoadCollections(path string) ([]models.Collection, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCollections(), nil
		}
		return nil, err
	}

	var file collectionsFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Collections) == 0 {
		return DefaultCollections(), nil
	}
	for _, col := range file.Collections {
		if col.Kind == "" || col.Path == "" || col.Container == "" {
			return nil, fmt.Errorf("collection in %s missing kind, path or container", path)
		}
	}
	return file.Collections, nil
}
