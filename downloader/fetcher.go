package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"sync"

	"article2pdf/config"
	"article2pdf/logging"
	"article2pdf/models"
	"article2pdf/parser"

	"github.com/gocolly/colly"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"
)

const acceptImage = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"

// Fetcher downloads candidate images, validates them and stores them as
// JPEGs named by candidate position.
type Fetcher struct {
	cfg       *config.Config
	log       zerolog.Logger
	outputDir string
	referer   string
	jar       *cookiejar.Jar
	progress  func(done, total int)
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithReferer sends ref as the Referer of every image request.
func WithReferer(ref string) FetcherOption {
	return func(f *Fetcher) { f.referer = ref }
}

// WithCookies seeds the cookie jar with cookies valid for pageURL.
func WithCookies(pageURL string, cookies []*http.Cookie) FetcherOption {
	return func(f *Fetcher) {
		u, err := url.Parse(pageURL)
		if err != nil || len(cookies) == 0 {
			return
		}
		f.jar.SetCookies(u, cookies)
	}
}

// WithFetchProgress reports each finished candidate, successful or not.
func WithFetchProgress(fn func(done, total int)) FetcherOption {
	return func(f *Fetcher) { f.progress = fn }
}

func NewFetcher(cfg *config.Config, logger zerolog.Logger, outputDir string, opts ...FetcherOption) (*Fetcher, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	f := &Fetcher{
		cfg:       cfg,
		log:       logging.Component(logger, "fetcher"),
		outputDir: outputDir,
		jar:       jar,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch retrieves every candidate once. Failed candidates are skipped and
// leave a gap in the file numbering. The result is in candidate order
// regardless of FetchConcurrency.
func (f *Fetcher) Fetch(ctx context.Context, candidates []models.ImageCandidate) []models.RetrievedImage {
	if len(candidates) == 0 {
		return nil
	}

	var limiter *parser.RateLimiter
	if f.cfg.FetchInterval > 0 {
		limiter = parser.NewRateLimiter(f.cfg.FetchInterval)
		defer limiter.Stop()
	}

	slots := make([]*models.RetrievedImage, len(candidates))
	var (
		progressMu sync.Mutex
		done       int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.FetchConcurrency)

	for i, c := range candidates {
		if gctx.Err() != nil {
			break
		}
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}

		i, c := i, c
		g.Go(func() error {
			index := i + 1
			img, err := f.fetchOne(gctx, index, c)
			if err != nil {
				f.log.Warn().Err(err).Int("index", index).Str("url", c.URL).Msg("skipping image")
			} else {
				slots[i] = img
				f.log.Debug().Int("index", index).Int("width", img.PixelWidth).Int("height", img.PixelHeight).Msg("image saved")
			}

			progressMu.Lock()
			done++
			if f.progress != nil {
				f.progress(done, len(candidates))
			}
			progressMu.Unlock()
			// per-candidate failures never cancel the group
			return nil
		})
	}
	_ = g.Wait()

	var images []models.RetrievedImage
	for _, img := range slots {
		if img != nil {
			images = append(images, *img)
		}
	}

	f.log.Info().Int("candidates", len(candidates)).Int("retrieved", len(images)).Msg("fetch complete")
	return images
}

// fetchOne downloads, decodes, size-checks and stores a single candidate.
func (f *Fetcher) fetchOne(ctx context.Context, index int, c models.ImageCandidate) (*models.RetrievedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := f.download(c.URL)
	if err != nil {
		return nil, err
	}

	img, err := parser.DecodeImage(body)
	if err != nil {
		return nil, err
	}

	size := img.Bounds().Size()
	if size.X < f.cfg.MinDimension || size.Y < f.cfg.MinDimension {
		return nil, fmt.Errorf("image too small: %dx%d", size.X, size.Y)
	}

	path := filepath.Join(f.outputDir, parser.ImageFileName(index))
	if err := parser.SaveJPEG(parser.ToRGB(img), path, f.cfg.JPEGQuality); err != nil {
		return nil, err
	}

	return &models.RetrievedImage{
		SourcePath:  path,
		PixelWidth:  size.X,
		PixelHeight: size.Y,
		Index:       index,
		URL:         c.URL,
	}, nil
}

// download makes one GET request through a fresh collector and returns the
// decompressed body. Non-2xx responses are errors.
func (f *Fetcher) download(imageURL string) ([]byte, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.cfg.FetchTimeout)
	c.SetCookieJar(f.jar)
	c.MaxBodySize = 0
	c.ParseHTTPErrorResponse = true

	var responseData []byte
	var statusCode int
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptImage)
		r.Headers.Set("Accept-Encoding", "gzip, br")
		if f.referer != "" {
			r.Headers.Set("Referer", f.referer)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body, decompressed, err := decompressBody(r.Body, r.Headers.Get("Content-Encoding"))
		if err != nil {
			fetchErr = fmt.Errorf("failed to decompress response: %w", err)
			return
		}
		if decompressed {
			f.log.Debug().Str("url", imageURL).Int("compressed", len(r.Body)).Int("size", len(body)).Msg("decompressed response")
		}
		responseData = body
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("request failed: %w", err)
	})

	if err := c.Visit(imageURL); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if statusCode < 200 || statusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", statusCode)
	}
	if len(responseData) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return responseData, nil
}
