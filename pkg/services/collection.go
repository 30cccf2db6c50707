// Package services holds the session state, the collection engine and
// the sync layer between the in-memory cache and the remote store.
package services

import (
	"fmt"
	"time"

	"gitcms/pkg/models"
)

// Upsert adds rec to items or replaces the record sharing its id.
// New records are prepended so the public site lists newest first;
// updates keep their position. Uniqueness of ids is structural: replace
// in place can never introduce a duplicate. The input slice is not
// modified.
func Upsert(items []models.Record, rec models.Record) []models.Record {
	id := rec.ID()
	for i, existing := range items {
		if existing.ID() == id {
			out := make([]models.Record, len(items))
			copy(out, items)
			out[i] = rec
			return out
		}
	}
	out := make([]models.Record, 0, len(items)+1)
	out = append(out, rec)
	return append(out, items...)
}

// Remove filters out the record with the given id. Removing an absent
// id is a no-op.
func Remove(items []models.Record, id string) []models.Record {
	out := make([]models.Record, 0, len(items))
	for _, rec := range items {
		if rec.ID() != id {
			out = append(out, rec)
		}
	}
	return out
}

// FindByID returns the record with the given id.
func FindByID(items []models.Record, id string) (models.Record, bool) {
	for _, rec := range items {
		if rec.ID() == id {
			return rec, true
		}
	}
	return nil, false
}

// PrepareRecord validates and normalizes a record before upsert: a
// missing id gets "<prefix>-<timestamp>", and the published/featured
// flags are materialized with their defaults. Returns a copy; the
// caller's record is untouched.
func PrepareRecord(rec models.Record, prefix string, now time.Time) (models.Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("record is empty")
	}
	out := rec.Clone()
	if out.ID() == "" {
		if prefix == "" {
			return nil, fmt.Errorf("record has no id and collection has no id prefix")
		}
		out["id"] = models.NewRecordID(prefix, now)
	}
	if _, ok := out["published"]; !ok {
		out["published"] = true
	}
	if _, ok := out["featured"]; !ok {
		out["featured"] = false
	}
	return out, nil
}
