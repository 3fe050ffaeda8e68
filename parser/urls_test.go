package parser

import (
	"testing"

	"article2pdf/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://mp.example.com/s/abc/def?x=1"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"//cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"https://cdn.example.com/a.jpg?wx_fmt=png", "https://cdn.example.com/a.jpg?wx_fmt=png"},
		{"/img/a.png", "https://mp.example.com/img/a.png"},
		{"img/a.png", "https://mp.example.com/s/abc/img/a.png"},
		{"../a.png", "https://mp.example.com/s/a.png"},
		{"  //cdn.example.com/b.jpg ", "https://cdn.example.com/b.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeURL(pageURL, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeURL(pageURL, got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "normalization must be idempotent")
		})
	}
}

func TestNormalizeURLErrors(t *testing.T) {
	_, err := NormalizeURL(pageURL, "")
	assert.Error(t, err)

	_, err = NormalizeURL("not a page", "/a.png")
	assert.Error(t, err)
}

func TestBackgroundURL(t *testing.T) {
	assert.Equal(t, "https://x/a.jpg", BackgroundURL(`url("https://x/a.jpg")`))
	assert.Equal(t, "//x/a.jpg", BackgroundURL(`url('//x/a.jpg')`))
	assert.Equal(t, "a.jpg", BackgroundURL(`url(a.jpg)`))
	assert.Equal(t, "a.jpg", BackgroundURL(`url("a.jpg"), url("b.jpg")`))
	assert.Equal(t, "", BackgroundURL("none"))
	assert.Equal(t, "", BackgroundURL("linear-gradient(red, blue)"))
}

func TestMergeCandidatesOrderAndDedup(t *testing.T) {
	scan := models.PageScan{
		Images: []models.ScannedElement{
			{URL: "//cdn.example.com/1.jpg", Width: 200, Height: 200},
			{URL: "data:image/svg+xml;base64,AAAA", Width: 300, Height: 300},
			{URL: "https://cdn.example.com/2.jpg", Width: 300, Height: 400},
		},
		Lazy: []models.ScannedElement{
			{URL: "https://cdn.example.com/1.jpg"},
			{URL: "/lazy/3.png"},
			{URL: ""},
		},
		Backgrounds: []models.ScannedElement{
			{BackgroundImage: `url("https://cdn.example.com/2.jpg")`, Width: 150, Height: 150},
			{BackgroundImage: `url("bg/4.jpg")`, Width: 500, Height: 120},
			{BackgroundImage: `url("data:image/png;base64,BBBB")`, Width: 500, Height: 500},
		},
	}

	want := []models.ImageCandidate{
		{URL: "https://cdn.example.com/1.jpg", Width: 200, Height: 200, Source: models.SourceImg},
		{URL: "https://cdn.example.com/2.jpg", Width: 300, Height: 400, Source: models.SourceImg},
		{URL: "https://mp.example.com/lazy/3.png", Source: models.SourceLazy},
		{URL: "https://mp.example.com/s/abc/bg/4.jpg", Width: 500, Height: 120, Source: models.SourceBackground},
	}

	got := MergeCandidates(pageURL, scan)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeCandidates mismatch (-want +got):\n%s", diff)
	}

	seen := map[string]bool{}
	for _, c := range got {
		assert.False(t, seen[c.URL], "duplicate %s", c.URL)
		seen[c.URL] = true
	}
}

// The in-page scan already drops the 50x50 <img>, so the merge only sees
// the two qualifying images plus a background that repeats one of them.
func TestMergeCandidatesBackgroundDuplicate(t *testing.T) {
	scan := models.PageScan{
		Images: []models.ScannedElement{
			{URL: "https://cdn.example.com/a.jpg", Width: 200, Height: 200},
			{URL: "https://cdn.example.com/c.jpg", Width: 300, Height: 400},
		},
		Backgrounds: []models.ScannedElement{
			{BackgroundImage: `url("https://cdn.example.com/a.jpg")`, Width: 150, Height: 150},
		},
	}

	got := MergeCandidates(pageURL, scan)
	require.Len(t, got, 2)
	assert.Equal(t, "https://cdn.example.com/a.jpg", got[0].URL)
	assert.Equal(t, "https://cdn.example.com/c.jpg", got[1].URL)
}

// A background that reuses the URL of the filtered 50x50 <img> brings it
// back as a third candidate.
func TestMergeCandidatesBackgroundRevivesSmallImage(t *testing.T) {
	scan := models.PageScan{
		Images: []models.ScannedElement{
			{URL: "https://cdn.example.com/a.jpg", Width: 200, Height: 200},
			{URL: "https://cdn.example.com/c.jpg", Width: 300, Height: 400},
		},
		Backgrounds: []models.ScannedElement{
			{BackgroundImage: `url("https://cdn.example.com/b.jpg")`, Width: 150, Height: 150},
			{BackgroundImage: `url("https://cdn.example.com/a.jpg")`, Width: 150, Height: 150},
		},
	}

	got := MergeCandidates(pageURL, scan)
	urls := make([]string, len(got))
	for i, c := range got {
		urls[i] = c.URL
	}
	assert.Equal(t, []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/c.jpg",
		"https://cdn.example.com/b.jpg",
	}, urls)
}

func TestMergeCandidatesEmpty(t *testing.T) {
	assert.Empty(t, MergeCandidates(pageURL, models.PageScan{}))
}
