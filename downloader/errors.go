package downloader

import (
	"errors"
	"fmt"

	"article2pdf/document"
)

var (
	// ErrNoImages is returned when neither fetching nor screenshots produced an image.
	ErrNoImages = document.ErrNoImages

	// ErrClosed is returned by a BrowserSession that has been closed.
	ErrClosed = errors.New("browser session closed")
)

// StageError is returned when a pipeline stage aborts the run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsStage reports whether err is a StageError for stage.
func IsStage(err error, stage string) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == stage
}
