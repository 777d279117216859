package source

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownField is the field name carrying a markdown file's body.
const MarkdownField = "markdown"

// ReadMarkdownDir turns every *.md file under dir into a Row. Frontmatter
// keys become fields, the body becomes the "markdown" field. When the
// frontmatter has no slug or title they are derived from the file name.
// A missing dir yields no rows and no error: the content directory is
// optional.
func ReadMarkdownDir(dir string) ([]Row, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var rows []Row
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", path, walkErr)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		fileBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file '%s': %w", path, err)
		}

		rel, _ := filepath.Rel(dir, path)
		row := markdownRow(fileBytes, d.Name())
		row.Index = len(rows) + 1
		row.Origin = filepath.ToSlash(filepath.Join(filepath.Base(dir), rel))
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return rows, fmt.Errorf("error during content collection walk: %w", err)
	}
	return rows, nil
}

func markdownRow(fileBytes []byte, fileName string) Row {
	var fmData map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fmData)
	if err != nil {
		// no usable frontmatter, treat the whole file as markdown
		body = fileBytes
		fmData = nil
	}

	keys := make([]string, 0, len(fmData))
	for k := range fmData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var row Row
	for _, k := range keys {
		row.Fields = append(row.Fields, Field{Name: k, Value: fmData[k]})
	}

	baseName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if v, ok := row.Get("slug"); !ok || isEmpty(v) {
		row.Fields = append(row.Fields, Field{Name: "slug", Value: baseName})
	}
	if v, ok := row.Get("title"); !ok || isEmpty(v) {
		tempTitle := strings.ReplaceAll(strings.ReplaceAll(baseName, "-", " "), "_", " ")
		titleCaser := cases.Title(language.English)
		row.Fields = append(row.Fields, Field{Name: "title", Value: titleCaser.String(tempTitle)})
	}
	row.Fields = append(row.Fields, Field{Name: MarkdownField, Value: string(body)})
	return row
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
