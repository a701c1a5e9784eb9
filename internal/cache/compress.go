package cache

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
	"strings"
)

// compressMarker prefixes compressed values so Load can detect and reverse
// the transform. Plain JSON never starts with this sequence.
const compressMarker = "gz64:"

// compress gzips the serialized entry and wraps it in base64 so the result
// stays a byte-safe string for any backend.
func compress(data string) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(data)); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return compressMarker + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// isCompressed reports whether the raw value carries the sentinel marker.
func isCompressed(data string) bool {
	return strings.HasPrefix(data, compressMarker)
}

// decompress reverses compress. Passing an unmarked value returns it as-is.
func decompress(data string) (string, error) {
	if !isCompressed(data) {
		return data, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(data, compressMarker))
	if err != nil {
		return "", err
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
