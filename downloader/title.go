package downloader

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ArticleTitle returns the article title found in html, or "" when the
// page has none.
func ArticleTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if t := strings.TrimSpace(doc.Find("#activity-name").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
