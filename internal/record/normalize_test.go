package record

import (
	"errors"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/francois-cf/guidefacile/internal/model"
	"github.com/francois-cf/guidefacile/internal/source"
)

var buildDate = time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC)

func row(index int, kv ...any) source.Row {
	r := source.Row{Index: index, Origin: "test.csv"}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Fields = append(r.Fields, source.Field{Name: kv[i].(string), Value: kv[i+1]})
	}
	return r
}

func TestCompactName(t *testing.T) {
	for _, in := range []string{"meta_desc", "Meta Desc", "metadesc", "  META-DESC "} {
		assert.Equal(t, "metadesc", CompactName(in), in)
		f, ok := Canonical(in)
		assert.True(t, ok)
		assert.Equal(t, FieldMetaDescription, f)
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), buildDate)

	got, err := n.Normalize(row(1,
		" Slug ", "  Caméra 4K!! ",
		"TITLE", "  Best 4K cameras ",
		"meta desc", strings.Repeat("a", 200),
		"Summary", " Short <b>summary</b> ",
		"content", "<p>Hello</p>",
		"affiliate links", "Amazon:https://a.co/x",
		"image", "/img/cam.jpg",
		"last_updated", "2024-03-01",
	))
	require.NoError(t, err)

	want := model.Record{
		Slug:              "camera-4k",
		Title:             "Best 4K cameras",
		MetaDescription:   strings.Repeat("a", MaxMetaDescription),
		Summary:           "Short <b>summary</b>",
		HTMLContent:       template.HTML("<p>Hello</p>"),
		AffiliateLinksRaw: "Amazon:https://a.co/x",
		ImageURL:          "/img/cam.jpg",
		ImageAlt:          "Best 4K cameras",
		LastUpdated:       "2024-03-01",
		Updated:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Origin:            "test.csv",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeMetaDescriptionCountsCharacters(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), buildDate)
	got, err := n.Normalize(row(1, "slug", "s", "title", "t", "meta_desc", strings.Repeat("é", 160)))
	require.NoError(t, err)
	assert.Equal(t, MaxMetaDescription, len([]rune(got.MetaDescription)))
}

func TestNormalizeRejectsMissingRequired(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), buildDate)

	tests := []struct {
		name string
		row  source.Row
	}{
		{"no slug", row(1, "title", "T")},
		{"blank slug", row(2, "slug", "   ", "title", "T")},
		{"no title", row(3, "slug", "s")},
		{"empty", row(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.row)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingField))
		})
	}
}

func TestNormalizeSlugFallback(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), buildDate)
	got, err := n.Normalize(row(1, "slug", "!!!", "title", "T"))
	require.NoError(t, err)
	assert.Equal(t, "page", got.Slug)
}

func TestNormalizeDates(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), buildDate)

	tests := []struct {
		raw  any
		want string
	}{
		{nil, "2026-10-18"},
		{"", "2026-10-18"},
		{"not a date", "2026-10-18"},
		{"2024-03-01", "2024-03-01"},
		{"2024/03/01", "2024-03-01"},
		{"2024-03-01T10:00:00Z", "2024-03-01"},
		{"03/04/2024", "2026-10-18"},
		{"25/12/2024", "2026-10-18"},
		{time.Date(2023, 5, 6, 0, 0, 0, 0, time.UTC), "2023-05-06"},
	}
	for _, tt := range tests {
		got, err := n.Normalize(row(1, "slug", "s", "title", "t", "lastupdated", tt.raw))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.LastUpdated, "raw %v", tt.raw)
	}
}

func TestNormalizeFlattensMultiValue(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := NewNormalizer(zap.New(core), buildDate)

	got, err := n.Normalize(row(7,
		"slug", "s",
		"title", []interface{}{"Kettles", "Teapots"},
		"affiliate_links", []interface{}{"A:https://a.example", "B:https://b.example"},
	))
	require.NoError(t, err)
	assert.Equal(t, "Kettles, Teapots", got.Title)
	assert.Equal(t, "A:https://a.example; B:https://b.example", got.AffiliateLinksRaw)
	assert.Equal(t, 2, logs.FilterMessage("Flattening multi-value field").Len())
}

func TestNormalizeFirstAliasColumnWins(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := NewNormalizer(zap.New(core), buildDate)

	got, err := n.Normalize(row(3,
		"slug", "s",
		"title", "t",
		"affiliate_links", "",
		"affiliates", "Amazon:https://a.co/x",
		"links", "Fnac:https://fnac.fr/y",
	))
	require.NoError(t, err)
	assert.Equal(t, "Amazon:https://a.co/x", got.AffiliateLinksRaw)

	dup := logs.FilterMessage("Ignoring duplicate column").All()
	require.Len(t, dup, 1)
	assert.Equal(t, "affiliates", dup[0].ContextMap()["kept"])
	assert.Equal(t, "links", dup[0].ContextMap()["column"])
	assert.Zero(t, logs.FilterMessage("Flattening multi-value field").Len())
}

func TestNormalizeAmbiguousDateIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := NewNormalizer(zap.New(core), buildDate)

	got, err := n.Normalize(row(1, "slug", "s", "title", "t", "last_updated", "03/04/2024"))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", got.LastUpdated)
	assert.Equal(t, 1, logs.FilterMessage("Unparsable date, using build date").Len())
}

func TestNormalizeMarkdown(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), buildDate)

	got, err := n.Normalize(row(1,
		"slug", "kettles",
		"title", "Kettles",
		"markdown", "# Best kettles\n\nBoil **water** fast.",
	))
	require.NoError(t, err)
	assert.Contains(t, string(got.HTMLContent), `<h1 id="best-kettles">Best kettles</h1>`)
	assert.Contains(t, string(got.HTMLContent), "<strong>water</strong>")
	assert.Equal(t, "Best kettles Boil water fast.", got.MetaDescription)

	// explicit html content wins over markdown
	got, err = n.Normalize(row(2,
		"slug", "kettles",
		"title", "Kettles",
		"html_content", "<p>kept</p>",
		"meta_desc", "kept too",
		"markdown", "ignored",
	))
	require.NoError(t, err)
	assert.Equal(t, template.HTML("<p>kept</p>"), got.HTMLContent)
	assert.Equal(t, "kept too", got.MetaDescription)
}

func TestNormalizeContentIsTrustedByDefault(t *testing.T) {
	raw := `<p>ok</p><script>alert(1)</script>`

	got, err := NewNormalizer(zap.NewNop(), buildDate).Normalize(row(1, "slug", "s", "title", "t", "html_content", raw))
	require.NoError(t, err)
	assert.Equal(t, template.HTML(raw), got.HTMLContent)

	got, err = NewNormalizer(zap.NewNop(), buildDate, WithSanitizer()).Normalize(row(1, "slug", "s", "title", "t", "html_content", raw))
	require.NoError(t, err)
	assert.Equal(t, template.HTML("<p>ok</p>"), got.HTMLContent)
}

func TestNormalizeAllDropsAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewNormalizer(zap.New(core), buildDate)

	records := n.NormalizeAll([]source.Row{
		row(1, "slug", "a", "title", "A"),
		row(2, "slug", "", "title", "B"),
		row(3, "slug", "c", "title", "C"),
	})
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Slug)
	assert.Equal(t, "c", records[1].Slug)

	dropped := logs.FilterMessage("Dropping row").All()
	require.Len(t, dropped, 1)
	assert.EqualValues(t, 2, dropped[0].ContextMap()["row"])
}
