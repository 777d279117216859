// Package affiliate parses the affiliate links column into call-to-action
// buttons.
package affiliate

import (
	"net/url"
	"strings"

	"github.com/francois-cf/guidefacile/internal/model"
)

const (
	// DefaultLabel is used for entries that carry only a URL.
	DefaultLabel = "View product"

	// Rel is set on every button anchor.
	Rel = "nofollow sponsored noopener"

	ClassDefault   = "btn"
	ClassAffiliate = "btn btn-affiliate"
)

// KnownHosts are host substrings recognized as affiliate networks.
var KnownHosts = []string{"amazon.", "amzn.to", "amzn.eu"}

// ShortLinkHosts are affiliate short-link hosts matched exactly.
var ShortLinkHosts = []string{"a.co"}

// Parse splits raw on ';' into buttons, keeping input order. Each entry is
// either "label:url" or a bare URL. Entries that start with a scheme or have
// no ':' are bare URLs and get DefaultLabel. Entries with no URL are skipped.
func Parse(raw string) []model.Button {
	var buttons []model.Button
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		label, link := split(entry)
		if link == "" {
			continue
		}
		if label == "" {
			label = DefaultLabel
		}
		buttons = append(buttons, model.Button{
			Label: label,
			URL:   link,
			Class: classify(link),
		})
	}
	return buttons
}

func split(entry string) (label, link string) {
	if isBareURL(entry) {
		return "", entry
	}
	label, link, found := strings.Cut(entry, ":")
	if !found {
		return "", strings.TrimSpace(entry)
	}
	return strings.TrimSpace(label), strings.TrimSpace(link)
}

func isBareURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//")
}

func classify(link string) string {
	host := hostOf(link)
	for _, known := range KnownHosts {
		if strings.Contains(host, known) {
			return ClassAffiliate
		}
	}
	for _, short := range ShortLinkHosts {
		if host == short || strings.HasSuffix(host, "."+short) {
			return ClassAffiliate
		}
	}
	return ClassDefault
}

// hostOf returns the lowercased host of link. Scheme-less links such as
// "amzn.to/abc" are cut at the first '/'.
func hostOf(link string) string {
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	host, _, _ := strings.Cut(link, "/")
	return strings.ToLower(host)
}
