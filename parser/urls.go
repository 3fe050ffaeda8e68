package parser

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"article2pdf/models"
)

var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?(.*?)['"]?\s*\)`)

// NormalizeURL makes a scraped URL absolute relative to the page URL:
// protocol-relative URLs get https, absolute http(s) URLs are kept,
// root-relative paths get the page origin and everything else is resolved
// against the page URL.
func NormalizeURL(pageURL, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}

	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw, nil
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw, nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(raw, "/") {
		if base.Scheme == "" || base.Host == "" {
			return "", errors.New("page url has no origin: " + pageURL)
		}
		return base.Scheme + "://" + base.Host + raw, nil
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// BackgroundURL extracts the first url(...) reference of a CSS
// background-image value.
func BackgroundURL(css string) string {
	m := cssURLPattern.FindStringSubmatch(css)
	if m == nil {
		return ""
	}
	return m[1]
}

// MergeCandidates reduces a page scan to an ordered, duplicate-free list of
// absolute image URLs. Direct images come first, then lazy elements, then
// CSS backgrounds; within each group DOM order is kept. Empty, data: and
// unresolvable URLs are dropped.
func MergeCandidates(pageURL string, scan models.PageScan) []models.ImageCandidate {
	var out []models.ImageCandidate
	seen := make(map[string]struct{})

	add := func(raw string, el models.ScannedElement, source models.CandidateSource) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
			return
		}
		abs, err := NormalizeURL(pageURL, raw)
		if err != nil {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, models.ImageCandidate{
			URL:    abs,
			Width:  int(el.Width),
			Height: int(el.Height),
			Source: source,
		})
	}

	for _, el := range scan.Images {
		add(el.URL, el, models.SourceImg)
	}
	for _, el := range scan.Lazy {
		add(el.URL, el, models.SourceLazy)
	}
	for _, el := range scan.Backgrounds {
		raw := el.URL
		if raw == "" {
			raw = BackgroundURL(el.BackgroundImage)
		}
		add(raw, el, models.SourceBackground)
	}
	return out
}
