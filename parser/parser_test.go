package parser

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/.config/article2pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/article2pdf"), got)

	got, err = ExpandPath("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", got)
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "image_001.jpg", ImageFileName(1))
	assert.Equal(t, "image_042.jpg", ImageFileName(42))
	assert.Equal(t, "image_1234.jpg", ImageFileName(1234))
	assert.Equal(t, "screenshot_000.jpg", ScreenshotFileName(0))
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "Hello World.pdf"},
		{"  a/b:c  ", "a_b_c.pdf"},
		{"line\nbreak\t\ttabs", "line break tabs.pdf"},
		{"", DefaultDocumentName},
		{"   ", DefaultDocumentName},
		{"???", DefaultDocumentName},
		{"周末读书笔记", "周末读书笔记.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentName(tt.title))
		})
	}

	long := DocumentName(strings.Repeat("x", 300))
	assert.Equal(t, maxNameRunes+len(".pdf"), len(long))
}
