package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"

	"article2pdf/config"
	"article2pdf/logging"
	"article2pdf/models"
	"article2pdf/parser"

	"github.com/rs/zerolog"
)

// contentBoxScript measures the first matching content container, or the
// body when none matches.
const contentBoxScript = `(() => {
	const selectors = %s;
	for (const sel of selectors) {
		const el = document.querySelector(sel);
		if (el) {
			return { selector: sel, height: el.getBoundingClientRect().height };
		}
	}
	return { selector: 'body', height: document.body.getBoundingClientRect().height };
})()`

type contentBox struct {
	Selector string  `json:"selector"`
	Height   float64 `json:"height"`
}

// Fallback captures the article as a series of viewport screenshots.
type Fallback struct {
	cfg       *config.Config
	log       zerolog.Logger
	outputDir string
	progress  func(done, total int)
}

func NewFallback(cfg *config.Config, logger zerolog.Logger, outputDir string) *Fallback {
	return &Fallback{
		cfg:       cfg,
		log:       logging.Component(logger, "fallback"),
		outputDir: outputDir,
	}
}

func contentBoxJS(selectors []string) string {
	// a []string always marshals
	list, _ := json.Marshal(selectors)
	return fmt.Sprintf(contentBoxScript, list)
}

// CaptureSlices scrolls through the content container in SliceHeight
// steps and saves a screenshot of each band as screenshot_NNN.jpg. The
// first error ends the capture; bands saved before it are returned.
func (f *Fallback) CaptureSlices(ctx context.Context, page Page) []models.RetrievedImage {
	var box contentBox
	if err := page.Evaluate(ctx, contentBoxJS(f.cfg.ContentSelectors), &box); err != nil {
		f.log.Warn().Err(err).Msg("could not measure content")
		return nil
	}

	step := f.cfg.SliceHeight
	total := int(math.Ceil(box.Height / float64(step)))
	f.log.Info().Str("selector", box.Selector).Float64("height", box.Height).Int("slices", total).Msg("capturing screenshots")

	var slices []models.RetrievedImage
	for idx, offset := 0, 0; float64(offset) < box.Height; idx, offset = idx+1, offset+step {
		shot, err := f.captureSlice(ctx, page, idx, offset)
		if err != nil {
			f.log.Warn().Err(err).Int("slice", idx).Msg("screenshot capture stopped")
			break
		}
		slices = append(slices, *shot)
		if f.progress != nil {
			f.progress(len(slices), total)
		}
	}

	f.log.Info().Int("slices", len(slices)).Msg("screenshots captured")
	return slices
}

func (f *Fallback) captureSlice(ctx context.Context, page Page, idx, offset int) (*models.RetrievedImage, error) {
	if err := page.Evaluate(ctx, scrollToJS(offset), nil); err != nil {
		return nil, fmt.Errorf("failed to scroll to %d: %w", offset, err)
	}
	if err := pause(ctx, f.cfg.SettlePause); err != nil {
		return nil, err
	}

	buf, err := page.CaptureViewport(ctx)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(f.outputDir, parser.ScreenshotFileName(idx))
	img, err := parser.ConvertImageToJPEG(buf, path, f.cfg.JPEGQuality)
	if err != nil {
		return nil, err
	}

	size := img.Bounds().Size()
	return &models.RetrievedImage{
		SourcePath:  path,
		PixelWidth:  size.X,
		PixelHeight: size.Y,
		Index:       idx,
	}, nil
}
