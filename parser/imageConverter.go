package parser

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// detectImageFormat reads the magic bytes and returns the current image format string
func detectImageFormat(data []byte) (string, error) {
	if len(data) < 12 {
		return "", errors.New("data too short to determine format")
	}

	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg", nil
	}
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "png", nil
	}
	if string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a" {
		return "gif", nil
	}
	if string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return "webp", nil
	}
	if string(data[0:2]) == "BM" {
		return "bmp", nil
	}
	if string(data[0:4]) == "II*\x00" || string(data[0:4]) == "MM\x00*" {
		return "tiff", nil
	}

	return "", errors.New("unknown image format")
}

// DecodeImage decodes JPEG, PNG, GIF, WebP, BMP or TIFF bytes.
func DecodeImage(data []byte) (image.Image, error) {
	format, err := detectImageFormat(data)
	if err != nil {
		return nil, err
	}

	var img image.Image
	if format == "webp" {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return img, nil
}

// IsOpaqueRGB reports whether img is already a plain opaque RGB image.
func IsOpaqueRGB(img image.Image) bool {
	switch m := img.(type) {
	case *image.YCbCr:
		return true
	case *image.RGBA:
		return m.Opaque()
	case *image.NRGBA:
		return m.Opaque()
	}
	return false
}

// ToRGB flattens palette, grayscale and transparent images onto a white
// canvas. Opaque RGB images are returned unchanged.
func ToRGB(img image.Image) image.Image {
	if IsOpaqueRGB(img) {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// SaveJPEG writes img to path as a JPEG of the given quality.
func SaveJPEG(img image.Image, path string, quality int) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// ConvertImageToJPEG decodes image bytes, flattens them to RGB and saves
// them as a JPEG at outputPath. The decoded image is returned.
func ConvertImageToJPEG(imgBytes []byte, outputPath string, quality int) (image.Image, error) {
	if len(imgBytes) == 0 {
		return nil, errors.New("empty image data")
	}

	img, err := DecodeImage(imgBytes)
	if err != nil {
		return nil, err
	}

	rgb := ToRGB(img)
	if err := SaveJPEG(rgb, outputPath, quality); err != nil {
		return nil, err
	}
	return rgb, nil
}
