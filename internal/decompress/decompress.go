// Package decompress detects zlib/gzip payloads by their leading magic
// bytes and inflates them, passing everything else through unchanged.
package decompress

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
)

var magicGzip = []byte{0x1f, 0x8b}

// zlibMagicSecondByte holds the four valid second bytes of a zlib stream
// header (CMF/FLG pairs with FLG chosen so the 16-bit value is a multiple
// of 31, per RFC 1950); the first byte 0x78 denotes a 32K window.
var zlibMagicSecondByte = map[byte]struct{}{
	0x01: {}, 0x5e: {}, 0x9c: {}, 0xda: {},
}

// Inflate returns b unchanged if it doesn't start with a recognized
// compression magic, otherwise returns the decompressed payload.
func Inflate(b []byte) ([]byte, error) {
	switch {
	case isZlib(b):
		return inflateZlib(b)
	case isGzip(b):
		return inflateGzip(b)
	default:
		return b, nil
	}
}

func isZlib(b []byte) bool {
	if len(b) < 2 || b[0] != 0x78 {
		return false
	}
	_, ok := zlibMagicSecondByte[b[1]]
	return ok
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && bytes.Equal(b[:2], magicGzip)
}

func inflateZlib(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, gelferr.DecodeErr(err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, gelferr.DecodeErr(err)
	}
	return out, nil
}

func inflateGzip(b []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, gelferr.DecodeErr(err)
	}
	defer gr.Close()
	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, gelferr.DecodeErr(err)
	}
	return out, nil
}
