// Package feed builds the sitemap and RSS documents for the whole site.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/francois-cf/guidefacile/internal/model"
)

// DefaultLimit caps the number of RSS items.
const DefaultLimit = 50

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description,omitempty"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate,omitempty"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// Channel describes the RSS channel.
type Channel struct {
	Title       string
	Description string
	Language    string
	// Limit caps the item count; zero or less means DefaultLimit.
	Limit int
	// BuildDate is stamped on every item as pubDate.
	BuildDate time.Time
}

// PageURL is the public URL of the page for slug.
func PageURL(siteRoot, slug string) string {
	return strings.TrimRight(siteRoot, "/") + "/" + slug + "/"
}

// Sitemap returns a sitemap listing the site root followed by one entry per
// record, in order.
func Sitemap(records []model.Record, siteRoot string) ([]byte, error) {
	root := strings.TrimRight(siteRoot, "/")
	set := urlSet{
		Xmlns: sitemapNamespace,
		URLs:  make([]sitemapURL, 0, len(records)+1),
	}
	set.URLs = append(set.URLs, sitemapURL{Loc: root + "/"})
	for _, rec := range records {
		set.URLs = append(set.URLs, sitemapURL{Loc: PageURL(root, rec.Slug)})
	}
	return marshal(set)
}

// RSS returns an RSS 2.0 document with one item per record, capped at
// ch.Limit. Every item's pubDate is the build date rather than the record's
// own date.
func RSS(records []model.Record, siteRoot string, ch Channel) ([]byte, error) {
	root := strings.TrimRight(siteRoot, "/")
	limit := ch.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}

	var pubDate string
	if !ch.BuildDate.IsZero() {
		pubDate = ch.BuildDate.UTC().Format(time.RFC1123Z)
	}

	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          root + "/",
			Description:   ch.Description,
			Language:      ch.Language,
			LastBuildDate: pubDate,
			Items:         make([]rssItem, 0, len(records)),
		},
	}
	for _, rec := range records {
		link := PageURL(root, rec.Slug)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       rec.Title,
			Link:        link,
			Description: rec.Summary,
			GUID: rssGUID{
				Value: "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String(),
			},
			PubDate: pubDate,
		})
	}
	return marshal(doc)
}

func marshal(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode xml: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
