package downloader

import (
	"context"
	"net/http"
)

// Page is the rendered-page surface the pipeline drives. BrowserSession
// implements it over chromedp.
type Page interface {
	// Navigate loads url and waits for the document body.
	Navigate(ctx context.Context, url string) error

	// Evaluate runs javascript in the page and decodes its JSON result into
	// res. A nil res discards the result.
	Evaluate(ctx context.Context, javascript string, res any) error

	// CaptureViewport returns a PNG of the current viewport.
	CaptureViewport(ctx context.Context) ([]byte, error)

	// HTML returns the outer HTML of the document.
	HTML(ctx context.Context) (string, error)

	// Cookies returns the browser cookies that apply to urls.
	Cookies(ctx context.Context, urls ...string) ([]*http.Cookie, error)

	Close()
}

// PageFactory opens a fresh page for one run.
type PageFactory func(ctx context.Context) (Page, error)

// Stage names reported through ProgressCallback and StageError.
const (
	StageLoad     = "load"
	StageExtract  = "extract"
	StageFetch    = "fetch"
	StageFallback = "fallback"
	StageAssemble = "assemble"
)

// ProgressCallback is called as the run advances.
// Parameters: stage name, items done, items total (0 when unknown)
type ProgressCallback func(stage string, done, total int)

// RunRequest describes one article to convert.
type RunRequest struct {
	URL       string
	OutputDir string
	// DocumentName is the PDF file name; empty derives it from the page title.
	DocumentName string
}
