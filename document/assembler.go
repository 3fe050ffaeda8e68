// Package document turns retrieved images into a single PDF.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"article2pdf/models"
	"article2pdf/parser"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"
)

// ErrNoImages is returned when there is nothing to assemble.
var ErrNoImages = errors.New("no images to assemble")

var disableConfigDir sync.Once

// Assembler writes one PDF page per image, sized to the image.
type Assembler struct {
	log     zerolog.Logger
	quality int
}

// NewAssembler creates an assembler that re-encodes transient copies at
// the given JPEG quality.
func NewAssembler(log zerolog.Logger, quality int) *Assembler {
	// pdfcpu would otherwise install its config under the user config dir
	disableConfigDir.Do(api.DisableConfigDir)
	return &Assembler{log: log, quality: quality}
}

// Assemble writes images, in order, to outPath and returns the path.
// No file is left at outPath when assembly fails.
func (a *Assembler) Assemble(images []models.RetrievedImage, outPath string) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}

	var transient []string
	defer func() {
		for _, f := range transient {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				a.log.Warn().Err(err).Str("file", f).Msg("could not remove transient image")
			}
		}
	}()

	for _, img := range images {
		tmp := transientPath(img.SourcePath)
		transient = append(transient, tmp)
		if err := a.prepare(img.SourcePath, tmp); err != nil {
			return "", err
		}
	}

	partial, err := os.MkdirTemp(filepath.Dir(outPath), ".assemble-*")
	if err != nil {
		return "", fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(partial)

	tmpOut := filepath.Join(partial, filepath.Base(outPath))
	if err := api.ImportImagesFile(transient, tmpOut, importConfig(), model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}

	if err := os.Rename(tmpOut, outPath); err != nil {
		return "", fmt.Errorf("failed to move pdf into place: %w", err)
	}

	a.log.Info().Str("path", outPath).Int("pages", len(images)).Msg("document written")
	return outPath, nil
}

// prepare re-decodes one image and stores it flattened to RGB at tmp.
func (a *Assembler) prepare(path, tmp string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return parser.SaveJPEG(parser.ToRGB(img), tmp, a.quality)
}

func transientPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "_temp.jpg"
}

// importConfig places every image on a page of its own size.
func importConfig() *pdfcpu.Import {
	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full
	return imp
}

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
