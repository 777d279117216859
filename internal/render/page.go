// Package render turns records into standalone HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/francois-cf/guidefacile/internal/affiliate"
	"github.com/francois-cf/guidefacile/internal/model"
	"github.com/francois-cf/guidefacile/internal/sitefs"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	pageTemplateName    = "page"
	defaultPageTemplate = "templates/article.html"
	partialsTemplate    = "templates/partials.html"
)

// Options configures a Renderer.
type Options struct {
	// TemplateFile replaces the built-in article layout when set. It is
	// executed with model.PageData and may use the "cta" partial.
	TemplateFile string
	SiteTitle    string
	Language     string
}

// Renderer executes the article template for records. Field escaping is
// contextual (html/template): every text field is escaped, the content
// fragment is inserted as-is.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

// New parses the page template and returns a Renderer.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New(pageTemplateName).ParseFS(templatesFS, partialsTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse partials: %w", err)
	}

	var body []byte
	if opts.TemplateFile != "" {
		body, err = os.ReadFile(opts.TemplateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read page template '%s': %w", opts.TemplateFile, err)
		}
	} else {
		body, err = templatesFS.ReadFile(defaultPageTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in page template: %w", err)
		}
	}

	if _, err := tmpl.Parse(string(body)); err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// Data builds the template data for rec. The same button slice feeds both
// call-to-action blocks.
func (r *Renderer) Data(rec model.Record) model.PageData {
	return model.PageData{
		SiteTitle:       r.opts.SiteTitle,
		Language:        r.opts.Language,
		Title:           rec.Title,
		MetaDescription: rec.MetaDescription,
		Summary:         rec.Summary,
		Content:         rec.HTMLContent,
		Buttons:         affiliate.Parse(rec.AffiliateLinksRaw),
		ImageURL:        rec.ImageURL,
		ImageAlt:        rec.ImageAlt,
		LastUpdated:     rec.LastUpdated,
	}
}

// Render writes the page for rec to w.
func (r *Renderer) Render(w io.Writer, rec model.Record) error {
	if err := r.tmpl.ExecuteTemplate(w, pageTemplateName, r.Data(rec)); err != nil {
		return fmt.Errorf("failed to execute page template for '%s': %w", rec.Slug, err)
	}
	return nil
}

// PagePath is where the page for slug lives under outputRoot.
func PagePath(outputRoot, slug string) string {
	return filepath.Join(outputRoot, slug, "index.html")
}

// WritePage renders rec and writes it to PagePath, replacing any existing
// file. It returns the written path.
func (r *Renderer) WritePage(outputRoot string, rec model.Record) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, rec); err != nil {
		return "", err
	}
	outputPath := PagePath(outputRoot, rec.Slug)
	if err := sitefs.WriteFile(outputPath, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write page for '%s': %w", rec.Slug, err)
	}
	return outputPath, nil
}
