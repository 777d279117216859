// cmd/build.go
package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/francois-cf/guidefacile/internal/config"
	"github.com/francois-cf/guidefacile/internal/pipeline"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the site from the articles CSV",
	Long: `The build command reads the articles CSV (and markdown files from the
content directory, if any), writes {outputDir}/{slug}/index.html for every
valid row, rewrites the region between <!-- LATEST-START --> and
<!-- LATEST-END --> in {outputDir}/index.html, and regenerates sitemap.xml
and rss.xml. A missing input CSV aborts the build before anything is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runBuildProcess(appConfig)
		return err
	},
}

func runBuildProcess(cfg config.Config) (*pipeline.Report, error) {
	buildDate, err := config.ParseBuildDate(buildDateFlag, time.Now())
	if err != nil {
		return nil, err
	}

	logger.Info("Starting build",
		zap.String("input", cfg.InputFile),
		zap.String("output", cfg.OutputDir),
		zap.String("buildDate", buildDate.Format("2006-01-02")))

	report, err := pipeline.Run(logger, cfg, buildDate)
	if err != nil {
		return report, err
	}

	logger.Info("Build completed",
		zap.Int("rows", report.RowsRead),
		zap.Int("pages", report.PagesWritten),
		zap.Int("dropped", report.Dropped()),
		zap.Int("cards", report.Cards),
		zap.Int("rssItems", report.FeedItems),
		zap.String("siteRoot", report.SiteRoot))
	return report, nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
