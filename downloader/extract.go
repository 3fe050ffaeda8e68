package downloader

import (
	"context"
	"fmt"

	"article2pdf/config"
	"article2pdf/logging"
	"article2pdf/models"
	"article2pdf/parser"

	"github.com/rs/zerolog"
)

// pageScanScript collects image URLs from three signals in one pass:
// sized <img> elements, lazy-load attributes and CSS backgrounds.
// Backgrounds are returned as raw CSS values and parsed in Go.
const pageScanScript = `(() => {
	const min = %d;
	const scan = { images: [], lazy: [], backgrounds: [] };

	document.querySelectorAll('img').forEach(img => {
		if (img.width >= min && img.height >= min) {
			const url = img.src || img.getAttribute('data-src') || img.getAttribute('data-original');
			if (url) {
				scan.images.push({ url: url, width: img.width, height: img.height });
			}
		}
	});

	document.querySelectorAll('[data-src], [data-original], [data-lazy-src]').forEach(el => {
		const url = el.getAttribute('data-src') || el.getAttribute('data-original') || el.getAttribute('data-lazy-src');
		if (url) {
			scan.lazy.push({ url: url, width: el.width || 0, height: el.height || 0 });
		}
	});

	document.querySelectorAll('*').forEach(el => {
		const bg = window.getComputedStyle(el).backgroundImage;
		if (bg && bg !== 'none' && el.offsetWidth >= min && el.offsetHeight >= min) {
			scan.backgrounds.push({ backgroundImage: bg, width: el.offsetWidth, height: el.offsetHeight });
		}
	});

	return scan;
})()`

// Extractor finds candidate image URLs on a loaded page.
type Extractor struct {
	cfg *config.Config
	log zerolog.Logger
}

func NewExtractor(cfg *config.Config, logger zerolog.Logger) *Extractor {
	return &Extractor{cfg: cfg, log: logging.Component(logger, "extractor")}
}

// Extract returns the deduplicated candidates in page order. Evaluation
// errors are logged and yield no candidates.
func (e *Extractor) Extract(ctx context.Context, page Page, pageURL string) []models.ImageCandidate {
	var scan models.PageScan
	if err := page.Evaluate(ctx, fmt.Sprintf(pageScanScript, e.cfg.MinDimension), &scan); err != nil {
		e.log.Warn().Err(err).Msg("image scan failed, continuing without candidates")
		return nil
	}

	candidates := parser.MergeCandidates(pageURL, scan)
	e.log.Info().
		Int("img", len(scan.Images)).
		Int("lazy", len(scan.Lazy)).
		Int("background", len(scan.Backgrounds)).
		Int("candidates", len(candidates)).
		Msg("extracted image candidates")
	return candidates
}
