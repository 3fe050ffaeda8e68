package downloader

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// decompressBody returns body decompressed when it is gzip (detected by
// magic bytes) or Brotli (detected by Content-Encoding). Other bodies are
// returned unchanged.
//
// Returns:
//   - []byte: The decompressed body
//   - bool: true if decompression was performed
//   - error: any error encountered during decompression
func decompressBody(body []byte, contentEncoding string) ([]byte, bool, error) {
	if len(body) == 0 {
		return body, false, nil
	}

	// gzip magic bytes: 1f 8b
	if len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b {
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, false, err
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, false, err
		}
		return decompressed, true, nil
	}

	if strings.EqualFold(strings.TrimSpace(contentEncoding), "br") {
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, false, err
		}
		return decompressed, true, nil
	}

	return body, false, nil
}
