package model

import (
	"html/template"
	"time"
)

// Record is one normalized content item. It maps to exactly one output page
// at {outputRoot}/{Slug}/index.html.
type Record struct {
	Slug              string
	Title             string
	MetaDescription   string
	Summary           string
	HTMLContent       template.HTML // trusted markup, rendered as-is
	AffiliateLinksRaw string
	ImageURL          string
	ImageAlt          string
	LastUpdated       string    // YYYY-MM-DD
	Updated           time.Time // LastUpdated parsed, used for ordering
	Origin            string    // where the row came from, e.g. "articles.csv:4"
}

// Button is one call-to-action link parsed from Record.AffiliateLinksRaw.
type Button struct {
	Label string
	URL   string
	Class string
}
