// Package record turns raw source rows into canonical model.Record values.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
	stripmd "github.com/writeas/go-strip-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/francois-cf/guidefacile/internal/model"
	"github.com/francois-cf/guidefacile/internal/slug"
	"github.com/francois-cf/guidefacile/internal/source"
)

// MaxMetaDescription is the longest meta description kept, in characters.
const MaxMetaDescription = 155

// DateLayout is the ISO calendar date format used for LastUpdated.
const DateLayout = "2006-01-02"

// ErrMissingField is returned for rows lacking a slug or a title.
var ErrMissingField = errors.New("missing required field")

// Normalizer validates rows and fills in defaults. It is not safe for
// concurrent use.
type Normalizer struct {
	logger    *zap.Logger
	buildDate time.Time
	md        goldmark.Markdown
	policy    *bluemonday.Policy
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSanitizer passes htmlContent through a bluemonday UGC policy. Without
// it the content fragment is trusted and kept verbatim.
func WithSanitizer() Option {
	return func(n *Normalizer) {
		n.policy = bluemonday.UGCPolicy()
	}
}

// NewNormalizer returns a Normalizer that defaults missing dates to
// buildDate.
func NewNormalizer(logger *zap.Logger, buildDate time.Time, opts ...Option) *Normalizer {
	n := &Normalizer{
		logger:    logger,
		buildDate: Day(buildDate),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
			),
		),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeAll normalizes rows in order and returns the admitted records.
// Rejected rows are logged and skipped.
func (n *Normalizer) NormalizeAll(rows []source.Row) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := n.Normalize(row)
		if err != nil {
			n.logger.Warn("Dropping row",
				zap.Int("row", row.Index),
				zap.String("origin", row.Origin),
				zap.String("content", row.String()),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	n.logger.Info("Normalized rows",
		zap.Int("read", len(rows)),
		zap.Int("admitted", len(records)),
		zap.Int("dropped", len(rows)-len(records)))
	return records
}

// Normalize builds a Record from row. It fails with ErrMissingField when
// slug or title is empty after trimming.
func (n *Normalizer) Normalize(row source.Row) (model.Record, error) {
	fields := n.canonicalize(row)

	rawSlug := fields[FieldSlug]
	title := fields[FieldTitle]
	var missing []string
	if rawSlug == "" {
		missing = append(missing, FieldSlug)
	}
	if title == "" {
		missing = append(missing, FieldTitle)
	}
	if len(missing) > 0 {
		return model.Record{}, fmt.Errorf("row %d (%s): %w: %s", row.Index, row.Origin, ErrMissingField, strings.Join(missing, ", "))
	}

	content := fields[FieldHTMLContent]
	metaDesc := fields[FieldMetaDescription]
	if markdown := fields[FieldMarkdown]; markdown != "" {
		if content == "" {
			var buf bytes.Buffer
			if err := n.md.Convert([]byte(markdown), &buf); err != nil {
				n.logger.Warn("Could not convert markdown, leaving content empty",
					zap.String("origin", row.Origin), zap.Error(err))
			} else {
				content = strings.TrimSpace(buf.String())
			}
		}
		if metaDesc == "" {
			metaDesc = strings.Join(strings.Fields(stripmd.Strip(markdown)), " ")
		}
	}
	if n.policy != nil {
		content = n.policy.Sanitize(content)
	}

	updated, ok := n.parseDate(fields[FieldLastUpdated], row.Origin)
	if !ok {
		updated = n.buildDate
	}

	alt := fields[FieldImageAlt]
	if alt == "" {
		alt = title
	}

	return model.Record{
		Slug:              slug.Sanitize(rawSlug),
		Title:             title,
		MetaDescription:   truncate(metaDesc, MaxMetaDescription),
		Summary:           fields[FieldSummary],
		HTMLContent:       template.HTML(content),
		AffiliateLinksRaw: fields[FieldAffiliateLinks],
		ImageURL:          fields[FieldImageURL],
		ImageAlt:          alt,
		LastUpdated:       updated.Format(DateLayout),
		Updated:           updated,
		Origin:            row.Origin,
	}, nil
}

// canonicalize maps each raw field to its canonical name and reduces it to
// trimmed text. When several alias columns feed the same field, the first
// non-empty one wins. A list value is flattened into one string.
func (n *Normalizer) canonicalize(row source.Row) map[string]string {
	out := make(map[string]string)
	from := make(map[string]string)
	for _, f := range row.Fields {
		name, ok := Canonical(f.Name)
		if !ok {
			if strings.TrimSpace(f.Name) != "" {
				n.logger.Debug("Ignoring unknown column",
					zap.String("origin", row.Origin), zap.String("column", f.Name))
			}
			continue
		}
		parts := flatten(f.Value)
		if len(parts) == 0 {
			continue
		}
		if prev, taken := from[name]; taken {
			n.logger.Warn("Ignoring duplicate column",
				zap.Int("row", row.Index),
				zap.String("origin", row.Origin),
				zap.String("field", name),
				zap.String("kept", prev),
				zap.String("column", f.Name))
			continue
		}
		if len(parts) > 1 {
			n.logger.Warn("Flattening multi-value field",
				zap.Int("row", row.Index),
				zap.String("origin", row.Origin),
				zap.String("field", name),
				zap.Strings("values", parts))
		}
		from[name] = f.Name
		out[name] = strings.Join(parts, separator(name))
	}
	return out
}

// separator joins the parts of a flattened value. Affiliate entries keep
// their own ';' delimiter so each one still becomes a button.
func separator(field string) string {
	if field == FieldAffiliateLinks {
		return "; "
	}
	return ", "
}

// flatten reduces a raw value to its non-empty trimmed text parts.
func flatten(v any) []string {
	var parts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	switch val := v.(type) {
	case nil:
	case string:
		add(val)
	case []string:
		for _, s := range val {
			add(s)
		}
	case []interface{}:
		for _, item := range val {
			parts = append(parts, flatten(item)...)
		}
	case time.Time:
		add(val.Format(DateLayout))
	case map[interface{}]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, fmt.Sprint(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(fmt.Sprintf("%s: %v", k, val[k]))
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(fmt.Sprintf("%s: %v", k, val[k]))
		}
	default:
		add(fmt.Sprint(val))
	}
	return parts
}

// parseDate reads an unambiguous date. Slash dates like 03/04/2024 could be
// either day or month first and are rejected.
func (n *Normalizer) parseDate(s, origin string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		n.logger.Warn("Unparsable date, using build date",
			zap.String("origin", origin), zap.String("value", s), zap.Error(err))
		return time.Time{}, false
	}
	return Day(t), true
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
