package models

import (
	"encoding/json"
	"fmt"
)

// Versioned pairs a document body with the revision token the store
// assigned to it. Every write must present the revision observed by the
// most recent read or write of the same path, so the two travel
// together everywhere.
type Versioned[T any] struct {
	Body     T
	Revision string
}

// CollectionDocument is the body of a collection file: an ordered
// sequence of records serialized under a per-kind container key
// ("articles", "projects" or "events"). Order is display order,
// newest first.
type CollectionDocument struct {
	Container string
	Items     []Record
}

// MarshalJSON writes the items under the container key.
func (d CollectionDocument) MarshalJSON() ([]byte, error) {
	if d.Container == "" {
		return nil, fmt.Errorf("collection document has no container key")
	}
	items := d.Items
	if items == nil {
		items = []Record{}
	}
	return json.Marshal(map[string][]Record{d.Container: items})
}

// UnmarshalJSON reads the items from the container key. The key must be
// set on the receiver before decoding; unknown keys are ignored so a
// document written by a newer panel still loads.
func (d *CollectionDocument) UnmarshalJSON(data []byte) error {
	if d.Container == "" {
		return fmt.Errorf("collection document has no container key")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items, ok := raw[d.Container]
	if !ok {
		d.Items = []Record{}
		return nil
	}
	d.Items = nil
	if err := json.Unmarshal(items, &d.Items); err != nil {
		return err
	}
	if d.Items == nil {
		d.Items = []Record{}
	}
	return nil
}

// EmptyCollection is the default body for a collection document the
// store does not have yet.
func EmptyCollection(container string) CollectionDocument {
	return CollectionDocument{Container: container, Items: []Record{}}
}

// SiteConfig is the site configuration document: a nested settings
// mapping (site name, theme colors, hero copy, stats, contact info).
// Saves replace the whole document, there is no per-field diffing.
type SiteConfig map[string]interface{}

// ImageAsset is one entry of the image directory listing. The revision
// is only needed to delete the asset.
type ImageAsset struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Revision string `json:"sha"`
	Size     int64  `json:"size,omitempty"`
}
