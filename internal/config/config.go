package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// PlaceholderSiteRoot is used when neither an override nor a repository
// identity is available.
const PlaceholderSiteRoot = "https://example.github.io/repo"

// Config holds the build settings. Paths are relative to the working
// directory.
type Config struct {
	InputFile       string `mapstructure:"inputFile" yaml:"inputFile"`
	OutputDir       string `mapstructure:"outputDir" yaml:"outputDir"`
	TemplateFile    string `mapstructure:"templateFile" yaml:"templateFile"`
	ContentDir      string `mapstructure:"contentDir" yaml:"contentDir"`
	StaticDir       string `mapstructure:"staticDir" yaml:"staticDir"`
	SiteRoot        string `mapstructure:"siteRoot" yaml:"siteRoot"`
	Repository      string `mapstructure:"repository" yaml:"repository"`
	SiteTitle       string `mapstructure:"siteTitle" yaml:"siteTitle"`
	SiteDescription string `mapstructure:"siteDescription" yaml:"siteDescription"`
	Language        string `mapstructure:"language" yaml:"language"`
	FeedLimit       int    `mapstructure:"feedLimit" yaml:"feedLimit"`
	HomeCardLimit   int    `mapstructure:"homeCardLimit" yaml:"homeCardLimit"`
	SanitizeContent bool   `mapstructure:"sanitizeContent" yaml:"sanitizeContent"`
	MarkerFile      string `mapstructure:"markerFile" yaml:"markerFile"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() map[string]any {
	return map[string]any{
		"inputFile":       filepath.Join("data", "articles.csv"),
		"outputDir":       "docs",
		"templateFile":    "",
		"contentDir":      "content",
		"staticDir":       "static",
		"siteRoot":        "",
		"repository":      "",
		"siteTitle":       "Guides",
		"siteDescription": "",
		"language":        "fr",
		"feedLimit":       50,
		"homeCardLimit":   0,
		"sanitizeContent": false,
		"markerFile":      ".nojekyll",
	}
}

// SiteRootSources are the optional inputs the site root is derived from, in
// priority order.
type SiteRootSources struct {
	Override   string // explicit site root, e.g. SITE_ROOT
	Repository string // "owner/name", e.g. GITHUB_REPOSITORY
}

// ResolveSiteRoot picks the site root: the override when set, else the
// GitHub Pages URL of the repository, else PlaceholderSiteRoot. The result
// never ends with '/'.
func ResolveSiteRoot(src SiteRootSources) string {
	if root := strings.TrimRight(strings.TrimSpace(src.Override), "/"); root != "" {
		return root
	}
	if owner, name, ok := splitRepository(src.Repository); ok {
		return fmt.Sprintf("https://%s.github.io/%s", owner, name)
	}
	return PlaceholderSiteRoot
}

func splitRepository(repo string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(strings.TrimSpace(repo), "/")
	owner, name = strings.TrimSpace(owner), strings.Trim(strings.TrimSpace(name), "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

// ResolvedSiteRoot resolves the site root from c.
func (c Config) ResolvedSiteRoot() string {
	return ResolveSiteRoot(SiteRootSources{Override: c.SiteRoot, Repository: c.Repository})
}

// ParseBuildDate parses a YYYY-MM-DD build date. An empty value yields now.
func ParseBuildDate(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return now, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid build date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
