package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitcms/pkg/models"
)

func TestRecord_EscapesUserText(t *testing.T) {
	rec := models.Record{
		"id":    "news-1",
		"title": `<script>alert("x")</script>`,
		"body":  "a & b",
	}
	html, err := Record("news", rec)
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<script>")
	assert.Contains(t, string(html), "&lt;script&gt;")
	assert.Contains(t, string(html), "a &amp; b")
}

func TestRecord_UnpublishedRendersNothing(t *testing.T) {
	html, err := Record("news", models.Record{"id": "news-1", "published": false})
	require.NoError(t, err)
	assert.Empty(t, html)
}

func TestRecord_MissingImageFallsBack(t *testing.T) {
	html, err := Record("projects", models.Record{"id": "proj-1", "title": "Well"})
	require.NoError(t, err)
	assert.Contains(t, string(html), PlaceholderImage)
}

func TestRecord_UnknownKind(t *testing.T) {
	_, err := Record("pages", models.Record{"id": "p-1"})
	assert.Error(t, err)
}

func TestCollection_DisplayOrder(t *testing.T) {
	items := []models.Record{
		{"id": "evt-2", "title": "Second", "location": "Hall B"},
		{"id": "evt-1", "title": "First", "published": false},
	}
	html, err := Collection("events", items)
	require.NoError(t, err)

	assert.Contains(t, string(html), "Second")
	assert.NotContains(t, string(html), "First")
	assert.Contains(t, string(html), "Hall B")
}

func TestRecord_FeaturedClass(t *testing.T) {
	html, err := Record("news", models.Record{"id": "news-1", "featured": true})
	require.NoError(t, err)
	assert.Contains(t, string(html), "featured")
}
