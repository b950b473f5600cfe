package upstream

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const acceptEncoding = "gzip, deflate"

// decodedBody wraps the response body in a reader matching its
// Content-Encoding. Closing the returned reader does not close resp.Body.
func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading gzip response: %w", err)
		}
		return r, nil
	case "deflate":
		// Servers disagree on whether deflate means zlib framed or raw.
		br := bufio.NewReader(resp.Body)
		if isZlib(br) {
			r, err := zlib.NewReader(br)
			if err != nil {
				return nil, fmt.Errorf("error reading deflate response: %w", err)
			}
			return r, nil
		}
		return flate.NewReader(br), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding: '%s'", encoding)
	}
}

// isZlib checks for a zlib header: deflate compression method and a header
// checksum divisible by 31.
func isZlib(br *bufio.Reader) bool {
	h, err := br.Peek(2)
	if err != nil {
		return false
	}
	return h[0]&0x0f == 8 && (uint16(h[0])<<8|uint16(h[1]))%31 == 0
}
