package downloader

import (
	"context"
	"fmt"
	"time"

	"article2pdf/config"
	"article2pdf/logging"

	"github.com/rs/zerolog"
)

const (
	scrollHeightJS   = `document.body.scrollHeight`
	scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight)`
)

func scrollToJS(y int) string {
	return fmt.Sprintf("window.scrollTo(0, %d)", y)
}

// Loader renders an article and scrolls it until lazy content stops appearing.
type Loader struct {
	cfg *config.Config
	log zerolog.Logger
}

func NewLoader(cfg *config.Config, logger zerolog.Logger) *Loader {
	return &Loader{cfg: cfg, log: logging.Component(logger, "loader")}
}

// Load navigates page to url and runs the scroll routine.
func (l *Loader) Load(ctx context.Context, page Page, url string) error {
	if err := page.Navigate(ctx, url); err != nil {
		return err
	}
	return l.Scroll(ctx, page)
}

// Scroll first scrolls to the bottom until the document height stops
// growing, then sweeps the page top to bottom in fixed steps so
// viewport-triggered loaders fire.
func (l *Loader) Scroll(ctx context.Context, page Page) error {
	iterations, err := l.exhaust(ctx, page)
	if err != nil {
		return err
	}
	l.log.Debug().Int("iterations", iterations).Msg("scroll exhausted")

	return l.sweep(ctx, page)
}

// exhaust returns the number of bottom scrolls performed.
func (l *Loader) exhaust(ctx context.Context, page Page) (int, error) {
	var last float64
	if err := page.Evaluate(ctx, scrollHeightJS, &last); err != nil {
		return 0, fmt.Errorf("failed to read page height: %w", err)
	}

	for i := 1; i <= l.cfg.ScrollAttempts; i++ {
		if err := page.Evaluate(ctx, scrollToBottomJS, nil); err != nil {
			return i, fmt.Errorf("failed to scroll: %w", err)
		}
		if err := pause(ctx, l.cfg.ScrollPause); err != nil {
			return i, err
		}

		var height float64
		if err := page.Evaluate(ctx, scrollHeightJS, &height); err != nil {
			return i, fmt.Errorf("failed to read page height: %w", err)
		}
		if height == last {
			return i, nil
		}
		last = height
	}
	return l.cfg.ScrollAttempts, nil
}

func (l *Loader) sweep(ctx context.Context, page Page) error {
	var height float64
	if err := page.Evaluate(ctx, scrollHeightJS, &height); err != nil {
		return fmt.Errorf("failed to read page height: %w", err)
	}

	if err := page.Evaluate(ctx, scrollToJS(0), nil); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}

	steps := l.cfg.SweepSteps
	for i := 0; i < steps; i++ {
		y := int(height * float64(i) / float64(steps))
		if err := page.Evaluate(ctx, scrollToJS(y), nil); err != nil {
			return fmt.Errorf("failed to scroll: %w", err)
		}
		if err := pause(ctx, l.cfg.SweepPause); err != nil {
			return err
		}
	}
	return nil
}

// pause sleeps for d unless ctx is done first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
