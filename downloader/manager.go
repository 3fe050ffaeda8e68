package downloader

import (
	"context"
	"fmt"
	"path/filepath"

	"article2pdf/config"
	"article2pdf/document"
	"article2pdf/logging"
	"article2pdf/models"
	"article2pdf/parser"
	"article2pdf/validation"

	"github.com/rs/zerolog"
)

// Manager orchestrates one article conversion: load, extract, fetch,
// screenshot fallback and assembly.
type Manager struct {
	cfg       *config.Config
	logger    zerolog.Logger
	log       zerolog.Logger
	openPage  PageFactory
	loader    *Loader
	extractor *Extractor
	assembler *document.Assembler
	progress  ProgressCallback
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPageFactory replaces the headless browser with another Page source.
func WithPageFactory(f PageFactory) ManagerOption {
	return func(m *Manager) { m.openPage = f }
}

// WithProgress registers a progress callback.
func WithProgress(cb ProgressCallback) ManagerOption {
	return func(m *Manager) { m.progress = cb }
}

// NewManager creates a new conversion manager
func NewManager(cfg *config.Config, logger zerolog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:       cfg,
		logger:    logger,
		log:       logging.Component(logger, "manager"),
		openPage:  OpenBrowserPage(cfg, logger),
		loader:    NewLoader(cfg, logger),
		extractor: NewExtractor(cfg, logger),
		assembler: document.NewAssembler(logging.Component(logger, "assembler"), cfg.JPEGQuality),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// nextMode switches to screenshots when direct fetching produced nothing.
func nextMode(mode models.FetchMode, retrieved int) models.FetchMode {
	if mode == models.ModeDirect && retrieved == 0 {
		return models.ModeFallback
	}
	return mode
}

// Run executes the full conversion workflow. The returned result is never
// nil; its OutputDocumentPath is empty unless a document was written.
func (m *Manager) Run(ctx context.Context, req RunRequest) (*models.PipelineResult, error) {
	result := &models.PipelineResult{Mode: models.ModeDirect}

	if err := validation.ValidateRun(req.URL, req.OutputDir, req.DocumentName); err != nil {
		return result, err
	}

	m.log.Info().Str("url", req.URL).Str("output", req.OutputDir).Msg("starting conversion")

	// Step 1: Render the page and trigger lazy loading
	m.report(StageLoad, 0, 1)
	page, err := m.openPage(ctx)
	if err != nil {
		return result, &StageError{Stage: StageLoad, Err: err}
	}
	defer page.Close()

	if err := m.loader.Load(ctx, page, req.URL); err != nil {
		return result, &StageError{Stage: StageLoad, Err: err}
	}
	m.report(StageLoad, 1, 1)

	name := req.DocumentName
	if name == "" {
		name = m.documentName(ctx, page)
	}

	// Step 2: Collect candidate URLs
	m.report(StageExtract, 0, 1)
	candidates := m.extractor.Extract(ctx, page, req.URL)
	result.Candidates = len(candidates)
	m.report(StageExtract, 1, 1)

	// Step 3: Fetch candidates directly
	images, err := m.fetch(ctx, page, req, candidates)
	if err != nil {
		return result, &StageError{Stage: StageFetch, Err: err}
	}

	// Step 4: Fall back to screenshots if nothing usable was fetched
	result.Mode = nextMode(result.Mode, len(images))
	if result.Mode == models.ModeFallback {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		m.log.Warn().Int("candidates", len(candidates)).Msg("no images retrieved, falling back to screenshots")

		m.report(StageFallback, 0, 0)
		fallback := NewFallback(m.cfg, m.logger, req.OutputDir)
		fallback.progress = func(done, total int) { m.report(StageFallback, done, total) }
		images = fallback.CaptureSlices(ctx, page)
	}
	result.Images = images

	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Step 5: Assemble the document
	m.report(StageAssemble, 0, len(images))
	path, err := m.assembler.Assemble(images, filepath.Join(req.OutputDir, name))
	if err != nil {
		return result, &StageError{Stage: StageAssemble, Err: err}
	}
	m.report(StageAssemble, len(images), len(images))

	result.OutputDocumentPath = path
	m.log.Info().
		Str("path", path).
		Str("mode", result.Mode.String()).
		Int("pages", len(images)).
		Msg("conversion complete")
	return result, nil
}

func (m *Manager) fetch(ctx context.Context, page Page, req RunRequest, candidates []models.ImageCandidate) ([]models.RetrievedImage, error) {
	opts := []FetcherOption{
		WithFetchProgress(func(done, total int) { m.report(StageFetch, done, total) }),
	}
	if m.cfg.SendReferer {
		opts = append(opts, WithReferer(req.URL))
	}
	if m.cfg.CopyCookies && len(candidates) > 0 {
		cookies, err := page.Cookies(ctx, req.URL)
		if err != nil {
			m.log.Warn().Err(err).Msg("could not copy browser cookies")
		} else {
			opts = append(opts, WithCookies(req.URL, cookies))
		}
	}

	fetcher, err := NewFetcher(m.cfg, m.logger, req.OutputDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	m.report(StageFetch, 0, len(candidates))
	return fetcher.Fetch(ctx, candidates), nil
}

// documentName derives the PDF name from the rendered page title.
func (m *Manager) documentName(ctx context.Context, page Page) string {
	html, err := page.HTML(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("could not read page html for title")
		return parser.DefaultDocumentName
	}
	return parser.DocumentName(ArticleTitle(html))
}

func (m *Manager) report(stage string, done, total int) {
	if m.progress != nil {
		m.progress(stage, done, total)
	}
}
