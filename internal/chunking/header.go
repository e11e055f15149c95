package chunking

import "bytes"

const (
	headerLen = 12
	magicLen  = 2
)

var magicChunked = []byte{0x1e, 0x0f}

// Header is the 12-byte prefix of a chunked GELF UDP datagram: 2-byte
// magic, 8-byte message id, 1-byte sequence number, 1-byte sequence
// count.
type Header struct {
	MessageID [8]byte
	Sequence  uint8
	Count     uint8
}

// IsChunked reports whether b begins with the GELF chunk magic. This is
// the hot-path check: it touches no table state and allocates nothing.
func IsChunked(b []byte) bool {
	return len(b) >= magicLen && bytes.Equal(b[:magicLen], magicChunked)
}

// parseHeader reads the 12-byte header from b. Callers must first check
// len(b) >= headerLen; a short buffer with a matching magic is a
// FormatError at the call site, not here.
func parseHeader(b []byte) Header {
	var h Header
	copy(h.MessageID[:], b[magicLen:magicLen+8])
	h.Sequence = b[magicLen+8]
	h.Count = b[magicLen+9]
	return h
}
