package models

import (
	"fmt"
	"time"
)

// Record is one entry in a content collection (an article, project or
// event). Kind-specific display fields vary, so the shape stays loose;
// the only universally required field is the id.
type Record map[string]interface{}

// ID returns the record's unique id, or "" when unset.
func (r Record) ID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

// Published reports whether the record is visible on the public site.
// A missing field means published.
func (r Record) Published() bool {
	if v, ok := r["published"].(bool); ok {
		return v
	}
	return true
}

// Featured reports whether the record is highlighted. Defaults to false.
func (r Record) Featured() bool {
	if v, ok := r["featured"].(bool); ok {
		return v
	}
	return false
}

// StringField returns a display field as a string, or "" when absent.
func (r Record) StringField(name string) string {
	if v, ok := r[name].(string); ok {
		return v
	}
	return ""
}

// Clone returns a shallow copy. Collection mutations always operate on
// copies so a failed save never leaks into cached state.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// NewRecordID builds a collision-avoiding id from the collection's kind
// prefix and a creation timestamp.
func NewRecordID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
}
