package validation

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidateRun checks the inputs of a conversion run. An empty documentName
// is allowed; the name is then derived from the page.
func ValidateRun(articleURL, outputDir, documentName string) error {
	if strings.TrimSpace(articleURL) == "" {
		return errors.New("URL is required")
	}

	u, err := url.Parse(articleURL)
	if err != nil {
		return errors.New("invalid URL: " + err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must use http or https")
	}
	if u.Host == "" {
		return errors.New("URL has no host")
	}

	if strings.TrimSpace(outputDir) == "" {
		return errors.New("output directory is required")
	}

	if documentName != "" {
		if filepath.Base(documentName) != documentName {
			return errors.New("document name must not contain a path")
		}
		if !strings.EqualFold(filepath.Ext(documentName), ".pdf") {
			return errors.New("document name must end in .pdf")
		}
	}

	return nil
}
