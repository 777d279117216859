// Package pipeline runs a full site build: ingest, normalize, render pages,
// inject homepage cards, then write the sitemap and RSS feed.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/francois-cf/guidefacile/internal/config"
	"github.com/francois-cf/guidefacile/internal/feed"
	"github.com/francois-cf/guidefacile/internal/inject"
	"github.com/francois-cf/guidefacile/internal/model"
	"github.com/francois-cf/guidefacile/internal/record"
	"github.com/francois-cf/guidefacile/internal/render"
	"github.com/francois-cf/guidefacile/internal/sitefs"
	"github.com/francois-cf/guidefacile/internal/source"
)

// ErrSourceMissing is returned when the input CSV does not exist. Nothing is
// written in that case.
var ErrSourceMissing = errors.New("input source missing")

const (
	homepageName = "index.html"
	sitemapName  = "sitemap.xml"
	rssName      = "rss.xml"
)

// Report summarizes a build.
type Report struct {
	RowsRead        int
	Admitted        int
	PagesWritten    int
	Cards           int
	HomepageSkipped bool
	FeedItems       int
	SiteRoot        string
	MarkerCreated   bool
}

// Dropped is the number of rows rejected during normalization.
func (r Report) Dropped() int { return r.RowsRead - r.Admitted }

// Run builds the site described by cfg. buildDate stands in for "now"
// everywhere: its calendar day replaces missing record dates, and the feed's
// pubDate carries it unchanged. Run is sequential; given the same input and
// build date it writes the same bytes.
func Run(logger *zap.Logger, cfg config.Config, buildDate time.Time) (*Report, error) {
	if _, err := os.Stat(cfg.InputFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, cfg.InputFile)
		}
		return nil, fmt.Errorf("failed to stat input '%s': %w", cfg.InputFile, err)
	}

	renderer, err := render.New(render.Options{
		TemplateFile: cfg.TemplateFile,
		SiteTitle:    cfg.SiteTitle,
		Language:     cfg.Language,
	})
	if err != nil {
		return nil, err
	}

	rows, err := readRows(logger, cfg)
	if err != nil {
		return nil, err
	}

	var opts []record.Option
	if cfg.SanitizeContent {
		opts = append(opts, record.WithSanitizer())
	}
	records := record.NewNormalizer(logger, buildDate, opts...).NormalizeAll(rows)
	report := &Report{RowsRead: len(rows), Admitted: len(records)}

	outputDir := cfg.OutputDir
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return report, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}
	if err := copyStatic(logger, cfg.StaticDir, outputDir); err != nil {
		return report, err
	}

	// Pages are written in source order, so a repeated slug ends up with the
	// last row's content.
	for _, rec := range records {
		outputPath, err := renderer.WritePage(outputDir, rec)
		if err != nil {
			return report, err
		}
		report.PagesWritten++
		logger.Debug("Generated page", zap.String("path", outputPath), zap.String("origin", rec.Origin))
	}
	logger.Info("Pages generated", zap.Int("count", report.PagesWritten))

	SortByUpdated(records)

	homepage := filepath.Join(outputDir, homepageName)
	cards, err := inject.InjectFile(homepage, records, cfg.HomeCardLimit)
	switch {
	case errors.Is(err, inject.ErrHomepageMissing), errors.Is(err, inject.ErrMarkersNotFound):
		report.HomepageSkipped = true
		logger.Warn("Skipping homepage card injection", zap.String("path", homepage), zap.Error(err))
	case err != nil:
		return report, err
	default:
		report.Cards = cards
		logger.Info("Homepage cards injected", zap.String("path", homepage), zap.Int("cards", cards))
	}

	report.SiteRoot = cfg.ResolvedSiteRoot()
	logger.Info("Using site root", zap.String("siteRoot", report.SiteRoot))

	sitemap, err := feed.Sitemap(records, report.SiteRoot)
	if err != nil {
		return report, err
	}
	if err := sitefs.WriteFile(filepath.Join(outputDir, sitemapName), sitemap); err != nil {
		return report, err
	}

	rss, err := feed.RSS(records, report.SiteRoot, feed.Channel{
		Title:       cfg.SiteTitle,
		Description: cfg.SiteDescription,
		Language:    cfg.Language,
		Limit:       cfg.FeedLimit,
		BuildDate:   buildDate,
	})
	if err != nil {
		return report, err
	}
	if err := sitefs.WriteFile(filepath.Join(outputDir, rssName), rss); err != nil {
		return report, err
	}
	report.FeedItems = feedItems(len(records), cfg.FeedLimit)
	logger.Info("Feeds written", zap.Int("sitemapURLs", len(records)+1), zap.Int("rssItems", report.FeedItems))

	if cfg.MarkerFile != "" {
		created, err := sitefs.EnsureMarker(outputDir, cfg.MarkerFile)
		if err != nil {
			return report, err
		}
		report.MarkerCreated = created
	}

	return report, nil
}

// SortByUpdated orders records most recent first. Records sharing a date
// keep their relative order.
func SortByUpdated(records []model.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Updated.After(records[j].Updated)
	})
}

func readRows(logger *zap.Logger, cfg config.Config) ([]source.Row, error) {
	rows, err := source.ReadCSVFile(cfg.InputFile)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, cfg.InputFile)
		}
		return nil, err
	}
	logger.Info("Read input rows", zap.String("path", cfg.InputFile), zap.Int("rows", len(rows)))

	if cfg.ContentDir == "" {
		return rows, nil
	}
	mdRows, err := source.ReadMarkdownDir(cfg.ContentDir)
	if err != nil {
		return nil, err
	}
	if len(mdRows) > 0 {
		logger.Info("Read markdown content", zap.String("dir", cfg.ContentDir), zap.Int("files", len(mdRows)))
	}
	return append(rows, mdRows...), nil
}

func copyStatic(logger *zap.Logger, staticDir, outputDir string) error {
	if staticDir == "" {
		return nil
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		logger.Debug("Static assets directory not found, skipping copy", zap.String("dir", staticDir))
		return nil
	}
	if err := sitefs.CopyDir(staticDir, outputDir); err != nil {
		return fmt.Errorf("failed to copy static assets: %w", err)
	}
	logger.Info("Static assets copied", zap.String("from", staticDir), zap.String("to", outputDir))
	return nil
}

func feedItems(n, limit int) int {
	if limit <= 0 {
		limit = feed.DefaultLimit
	}
	if n > limit {
		return limit
	}
	return n
}
