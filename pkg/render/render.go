// Package render turns content records into the markup the public site
// embeds. It is pure: no I/O, no state. Escaping is structural —
// user-supplied text only ever passes through html/template, never
// string concatenation.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"gitcms/pkg/models"
)

// PlaceholderImage is shown when a record references an image that no
// longer exists or references none at all.
const PlaceholderImage = "/assets/placeholder.svg"

var cardTemplates = template.Must(template.New("cards").Parse(`
{{define "article"}}<article class="card news-card{{if .Featured}} featured{{end}}">
  <img src="{{.Image}}" alt="{{.Title}}">
  <div class="card-body">
    <h3>{{.Title}}</h3>
    <time>{{.Date}}</time>
    <p>{{.Text}}</p>
  </div>
</article>{{end}}

{{define "project"}}<article class="card project-card{{if .Featured}} featured{{end}}">
  <img src="{{.Image}}" alt="{{.Title}}">
  <div class="card-body">
    <h3>{{.Title}}</h3>
    <p>{{.Text}}</p>
  </div>
</article>{{end}}

{{define "event"}}<article class="card event-card{{if .Featured}} featured{{end}}">
  <div class="card-body">
    <h3>{{.Title}}</h3>
    <time>{{.Date}}</time>
    <span class="location">{{.Location}}</span>
    <p>{{.Text}}</p>
  </div>
</article>{{end}}
`))

// card is the typed view of a record; missing fields fall back to
// defaults instead of erroring.
type card struct {
	Title    string
	Date     string
	Text     string
	Image    string
	Location string
	Featured bool
}

func cardFromRecord(rec models.Record) card {
	image := rec.StringField("image")
	if image == "" {
		image = PlaceholderImage
	}
	text := rec.StringField("body")
	if text == "" {
		text = rec.StringField("description")
	}
	return card{
		Title:    rec.StringField("title"),
		Date:     rec.StringField("date"),
		Text:     text,
		Image:    image,
		Location: rec.StringField("location"),
		Featured: rec.Featured(),
	}
}

var kindTemplates = map[string]string{
	"news":     "article",
	"projects": "project",
	"events":   "event",
}

// Record renders one published record as a card. Unpublished records
// render as nothing.
func Record(kind string, rec models.Record) (template.HTML, error) {
	name, ok := kindTemplates[kind]
	if !ok {
		return "", fmt.Errorf("no template for kind %q", kind)
	}
	if !rec.Published() {
		return "", nil
	}
	var b strings.Builder
	if err := cardTemplates.ExecuteTemplate(&b, name, cardFromRecord(rec)); err != nil {
		return "", fmt.Errorf("render %s card: %w", kind, err)
	}
	return template.HTML(b.String()), nil
}

// Collection renders every published record of a collection in display
// order.
func Collection(kind string, items []models.Record) (template.HTML, error) {
	var b strings.Builder
	for _, rec := range items {
		html, err := Record(kind, rec)
		if err != nil {
			return "", err
		}
		b.WriteString(string(html))
	}
	return template.HTML(b.String()), nil
}
