// Package inject rewrites the marked "latest" region of the hand-authored
// homepage with one card per record.
package inject

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/francois-cf/guidefacile/internal/model"
	"github.com/francois-cf/guidefacile/internal/sitefs"
)

// Sentinel markers delimiting the replaceable region of the homepage.
const (
	StartMarker = "<!-- LATEST-START -->"
	EndMarker   = "<!-- LATEST-END -->"
)

var (
	// ErrMarkersNotFound means the document lacks a usable marker pair.
	ErrMarkersNotFound = errors.New("markers not found")
	// ErrHomepageMissing means the homepage document does not exist.
	ErrHomepageMissing = errors.New("homepage not found")
)

var cardsTemplate = template.Must(template.New("cards").Parse(
	`{{range .}}
<div class="card"><a href="./{{.Slug}}/index.html">{{.Title}}</a>{{with .Summary}}<p>{{.}}</p>{{end}}</div>
{{- end}}
`))

// ReplaceRegion replaces the text strictly between start and end in doc.
// Both markers are kept; everything outside them is untouched. When either
// marker is missing, or end does not follow start, it returns
// ErrMarkersNotFound.
func ReplaceRegion(doc, start, end, replacement string) (string, error) {
	i := strings.Index(doc, start)
	if i < 0 {
		return "", fmt.Errorf("start marker %q: %w", start, ErrMarkersNotFound)
	}
	regionStart := i + len(start)
	j := strings.Index(doc[regionStart:], end)
	if j < 0 {
		return "", fmt.Errorf("end marker %q: %w", end, ErrMarkersNotFound)
	}
	regionEnd := regionStart + j

	var b strings.Builder
	b.Grow(len(doc) - (regionEnd - regionStart) + len(replacement))
	b.WriteString(doc[:regionStart])
	b.WriteString(replacement)
	b.WriteString(doc[regionEnd:])
	return b.String(), nil
}

// Unique returns records with duplicate slugs removed, keeping the first
// occurrence. limit caps the result; zero means no cap.
func Unique(records []model.Record, limit int) []model.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Slug]; dup {
			continue
		}
		seen[rec.Slug] = struct{}{}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Cards renders one card per unique slug.
func Cards(records []model.Record, limit int) (string, error) {
	var buf bytes.Buffer
	if err := cardsTemplate.Execute(&buf, Unique(records, limit)); err != nil {
		return "", fmt.Errorf("failed to render cards: %w", err)
	}
	return buf.String(), nil
}

// Inject returns doc with its marked region replaced by the cards for
// records.
func Inject(doc string, records []model.Record, limit int) (string, error) {
	cards, err := Cards(records, limit)
	if err != nil {
		return "", err
	}
	return ReplaceRegion(doc, StartMarker, EndMarker, cards)
}

// InjectFile rewrites the homepage at path in place. It returns
// ErrHomepageMissing or ErrMarkersNotFound without touching the file.
func InjectFile(path string, records []model.Record, limit int) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", path, ErrHomepageMissing)
		}
		return 0, fmt.Errorf("failed to read homepage '%s': %w", path, err)
	}

	updated, err := Inject(string(data), records, limit)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := sitefs.WriteFile(path, []byte(updated)); err != nil {
		return 0, err
	}
	return len(Unique(records, limit)), nil
}
