package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffslug,Title,affiliate_links\n" +
		"camera,\"Caméra, 4K\",\"Amazon:https://a.co/x;Fnac:https://fnac.fr/y\"\n" +
		"\n" +
		"short,Only two\n" +
		"extra,Three,links,overflow\n"

	rows, err := ReadCSV(strings.NewReader(in), "articles.csv")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "articles.csv:2", first.Origin)
	v, ok := first.Get("slug")
	require.True(t, ok, "BOM must be stripped from the first header")
	assert.Equal(t, "camera", v)
	v, _ = first.Get("title")
	assert.Equal(t, "Caméra, 4K", v)
	v, _ = first.Get("affiliate_links")
	assert.Equal(t, "Amazon:https://a.co/x;Fnac:https://fnac.fr/y", v)

	assert.Len(t, rows[1].Fields, 2)
	assert.Len(t, rows[2].Fields, 4)
	assert.Equal(t, "", rows[2].Fields[3].Name)
}

func TestReadCSVEmpty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""), "empty.csv")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSVFileMissing(t *testing.T) {
	_, err := ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReadMarkdownDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "guides"), 0o755))

	withFM := "---\ntitle: Best Kettles\nslug: kettles\ntags:\n  - kitchen\n  - tea\n---\n# Kettles\n\nBoil water.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guides", "kettles.md"), []byte(withFM), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robot-vacuums.md"), []byte("Just a body."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	rows, err := ReadMarkdownDir(dir)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// WalkDir is lexical: guides/ comes before robot-vacuums.md
	kettles := rows[0]
	assert.Equal(t, "content/guides/kettles.md", kettles.Origin)
	v, _ := kettles.Get("title")
	assert.Equal(t, "Best Kettles", v)
	v, _ = kettles.Get("tags")
	assert.Equal(t, []interface{}{"kitchen", "tea"}, v)
	v, _ = kettles.Get(MarkdownField)
	assert.Contains(t, v, "Boil water.")
	assert.NotContains(t, v, "title:")

	robot := rows[1]
	v, _ = robot.Get("slug")
	assert.Equal(t, "robot-vacuums", v)
	v, _ = robot.Get("title")
	assert.Equal(t, "Robot Vacuums", v)
	v, _ = robot.Get(MarkdownField)
	assert.Equal(t, "Just a body.", v)
}

func TestReadMarkdownDirMissing(t *testing.T) {
	rows, err := ReadMarkdownDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}
