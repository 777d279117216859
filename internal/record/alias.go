package record

import "strings"

// Canonical field names.
const (
	FieldSlug            = "slug"
	FieldTitle           = "title"
	FieldMetaDescription = "metaDescription"
	FieldSummary         = "summary"
	FieldHTMLContent     = "htmlContent"
	FieldAffiliateLinks  = "affiliateLinksRaw"
	FieldImageURL        = "imageUrl"
	FieldImageAlt        = "imageAlt"
	FieldLastUpdated     = "lastUpdated"
	FieldMarkdown        = "markdown"
)

// Aliases maps a compacted column name (see CompactName) to its canonical
// field. Every historical spelling of a column belongs here.
var Aliases = map[string]string{
	"slug": FieldSlug,

	"title": FieldTitle,

	"metadesc":        FieldMetaDescription,
	"metadescription": FieldMetaDescription,
	"description":     FieldMetaDescription,

	"summary": FieldSummary,

	"htmlcontent": FieldHTMLContent,
	"content":     FieldHTMLContent,
	"html":        FieldHTMLContent,

	"affiliatelinks": FieldAffiliateLinks,
	"affiliates":     FieldAffiliateLinks,
	"links":          FieldAffiliateLinks,

	"imageurl": FieldImageURL,
	"image":    FieldImageURL,

	"imagealt": FieldImageAlt,
	"alt":      FieldImageAlt,

	"lastupdated": FieldLastUpdated,
	"updated":     FieldLastUpdated,
	"date":        FieldLastUpdated,

	"markdown": FieldMarkdown,
	"bodymd":   FieldMarkdown,
}

// CompactName lowercases name and drops spaces, underscores and hyphens,
// so "Meta Desc", "meta_desc" and "metadesc" compare equal.
func CompactName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

// Canonical returns the canonical field for a raw column name.
func Canonical(name string) (string, bool) {
	f, ok := Aliases[CompactName(name)]
	return f, ok
}
