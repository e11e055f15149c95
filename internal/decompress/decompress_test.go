package decompress

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInflatePassthrough(t *testing.T) {
	raw := []byte(`{"hello":"world"}`)
	out, err := Inflate(raw)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestInflateZlib(t *testing.T) {
	want := []byte(`{"a":1}`)
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(want)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	got, err := Inflate(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestInflateGzip(t *testing.T) {
	want := []byte(`{"a":2}`)
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(want)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	got, err := Inflate(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestInflateMalformedZlib(t *testing.T) {
	_, err := Inflate([]byte{0x78, 0x9c, 0x00, 0x00})
	require.Error(t, err)
}

func TestInflateEmpty(t *testing.T) {
	out, err := Inflate(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}
