package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRun(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		dir     string
		doc     string
		wantErr bool
	}{
		{"ok", "https://mp.example.com/s/abc", "output", "article.pdf", false},
		{"derived name", "http://example.com/a", "out", "", false},
		{"upper case ext", "https://example.com/a", "out", "A.PDF", false},
		{"missing url", "", "out", "", true},
		{"ftp", "ftp://example.com/a", "out", "", true},
		{"no host", "https:///a", "out", "", true},
		{"relative url", "/s/abc", "out", "", true},
		{"missing dir", "https://example.com", " ", "", true},
		{"not pdf", "https://example.com", "out", "article.doc", true},
		{"path in name", "https://example.com", "out", "../a.pdf", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRun(tt.url, tt.dir, tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
