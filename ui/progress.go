// Package ui renders run progress in the terminal.
package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

var stageDescriptions = map[string]string{
	"load":     "Loading page",
	"extract":  "Finding images",
	"fetch":    "Fetching images",
	"fallback": "Capturing screenshots",
	"assemble": "Writing PDF",
}

// StageProgress shows one progress bar per pipeline stage. Update matches
// the downloader's ProgressCallback signature.
type StageProgress struct {
	mu    sync.Mutex
	out   io.Writer
	bar   *progressbar.ProgressBar
	stage string
}

func NewStageProgress(out io.Writer) *StageProgress {
	return &StageProgress{out: out}
}

// Update moves the bar of stage to done out of total. A total of 0 shows
// a spinner until the total is known.
func (p *StageProgress) Update(stage string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil || stage != p.stage {
		p.finish()
		p.bar = p.newBar(stage, total)
		p.stage = stage
	}
	if total > 0 && p.bar.GetMax() != total {
		p.bar.ChangeMax(total)
	}
	_ = p.bar.Set(done)
}

// Finish completes the current bar.
func (p *StageProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finish()
}

func (p *StageProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

func (p *StageProgress) newBar(stage string, total int) *progressbar.ProgressBar {
	desc, ok := stageDescriptions[stage]
	if !ok {
		desc = stage
	}
	limit := total
	if limit <= 0 {
		limit = -1
	}

	return progressbar.NewOptions(limit,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(fmt.Sprintf("%-22s", desc)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.out, "\n")
		}),
	)
}
