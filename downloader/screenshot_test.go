package downloader

import (
	"context"
	"path/filepath"
	"testing"

	"article2pdf/parser"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureSlices(t *testing.T) {
	dir := t.TempDir()
	page := &fakePage{
		box:  contentBox{Selector: "#js_content", Height: 2500},
		shot: pngBytes(t, 320, 250),
	}

	var progress [][2]int
	f := NewFallback(testConfig(), zerolog.Nop(), dir)
	f.progress = func(done, total int) { progress = append(progress, [2]int{done, total}) }

	slices := f.CaptureSlices(context.Background(), page)
	require.Len(t, slices, 3)
	for i, s := range slices {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, filepath.Join(dir, parser.ScreenshotFileName(i)), s.SourcePath)
		assert.Equal(t, 320, s.PixelWidth)
		assert.Equal(t, 250, s.PixelHeight)
		assert.Empty(t, s.URL)
		assert.FileExists(t, s.SourcePath)
	}
	assert.Equal(t, []string{scrollToJS(0), scrollToJS(1000), scrollToJS(2000)}, page.scrolls)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
}

func TestCaptureSlicesPartial(t *testing.T) {
	page := &fakePage{
		box:    contentBox{Selector: "body", Height: 4000},
		shot:   pngBytes(t, 64, 64),
		failAt: 3,
	}

	slices := NewFallback(testConfig(), zerolog.Nop(), t.TempDir()).CaptureSlices(context.Background(), page)
	assert.Len(t, slices, 2)
}

func TestCaptureSlicesUndecodableScreenshot(t *testing.T) {
	page := &fakePage{
		box:  contentBox{Selector: "body", Height: 1500},
		shot: []byte("definitely not a png"),
	}

	slices := NewFallback(testConfig(), zerolog.Nop(), t.TempDir()).CaptureSlices(context.Background(), page)
	assert.Empty(t, slices)
}

func TestCaptureSlicesEmptyContent(t *testing.T) {
	page := &fakePage{box: contentBox{Selector: "body", Height: 0}}
	slices := NewFallback(testConfig(), zerolog.Nop(), t.TempDir()).CaptureSlices(context.Background(), page)
	assert.Empty(t, slices)
	assert.Zero(t, page.shots)
}

func TestContentBoxJS(t *testing.T) {
	js := contentBoxJS([]string{"#js_content", ".rich_media_content"})
	assert.Contains(t, js, `const selectors = ["#js_content",".rich_media_content"];`)
}
