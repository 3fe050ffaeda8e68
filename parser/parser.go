package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// DefaultDocumentName is used when no usable title is available.
	DefaultDocumentName = "article.pdf"

	maxNameRunes = 100
)

// ExpandPath expands ~ to the user's home directory, or returns the path as-is
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// ImageFileName returns the padded name of a fetched image, e.g. image_007.jpg.
func ImageFileName(index int) string {
	return fmt.Sprintf("image_%03d.jpg", index)
}

// ScreenshotFileName returns the padded name of a screenshot band, e.g. screenshot_000.jpg.
func ScreenshotFileName(index int) string {
	return fmt.Sprintf("screenshot_%03d.jpg", index)
}

// DocumentName turns an article title into a safe PDF file name.
func DocumentName(title string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsSpace(r):
			if !space {
				b.WriteRune(' ')
			}
			space = true
		case strings.ContainsRune(`/\:*?"<>|`, r) || unicode.IsControl(r):
			b.WriteRune('_')
			space = false
		default:
			b.WriteRune(r)
			space = false
		}
	}

	name := strings.Trim(b.String(), " .")
	if runes := []rune(name); len(runes) > maxNameRunes {
		name = strings.TrimSpace(string(runes[:maxNameRunes]))
	}
	if name == "" || strings.Trim(name, "_") == "" {
		return DefaultDocumentName
	}
	return name + ".pdf"
}
