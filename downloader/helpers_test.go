package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"article2pdf/config"
	"article2pdf/models"

	"github.com/stretchr/testify/require"
)

// fakePage answers the scripts the pipeline evaluates from canned data.
type fakePage struct {
	mu sync.Mutex

	navErr  error
	heights []float64 // successive scrollHeight answers, the last one repeats
	scan    models.PageScan
	scanErr error
	box     contentBox
	shot    []byte
	shotErr error
	failAt  int // CaptureViewport call that fails, 0 for never
	html    string
	cookies []*http.Cookie

	heightReads int
	scrolls     []string
	shots       int
	closed      int
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	return p.navErr
}

func (p *fakePage) Evaluate(ctx context.Context, js string, res any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case js == scrollHeightJS:
		if len(p.heights) == 0 {
			return assign(res, 0)
		}
		i := p.heightReads
		if i >= len(p.heights) {
			i = len(p.heights) - 1
		}
		p.heightReads++
		return assign(res, p.heights[i])
	case strings.HasPrefix(js, "window.scrollTo"):
		p.scrolls = append(p.scrolls, js)
		return nil
	case strings.Contains(js, "scan.backgrounds"):
		if p.scanErr != nil {
			return p.scanErr
		}
		return assign(res, p.scan)
	case strings.Contains(js, "getBoundingClientRect"):
		return assign(res, p.box)
	}
	return fmt.Errorf("unexpected script: %s", js)
}

func (p *fakePage) CaptureViewport(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shots++
	if p.failAt > 0 && p.shots == p.failAt {
		return nil, errors.New("capture failed")
	}
	if p.shotErr != nil {
		return nil, p.shotErr
	}
	return p.shot, nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	return p.html, nil
}

func (p *fakePage) Cookies(ctx context.Context, urls ...string) ([]*http.Cookie, error) {
	return p.cookies, nil
}

func (p *fakePage) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
}

func assign(res, v any) error {
	if res == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, res)
}

// testConfig is the default configuration without pauses.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ScrollPause = 0
	cfg.SweepPause = 0
	cfg.SettlePause = 0
	return cfg
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
