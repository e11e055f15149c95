package gelferr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesKind(t *testing.T) {
	err := FormatErr("bad header")
	require.True(t, Is(err, Format))
	require.False(t, Is(err, Decode))
}

func TestIsRejectsPlainErrors(t *testing.T) {
	require.False(t, Is(errors.New("plain"), Parse))
}

func TestMissingFieldMessage(t *testing.T) {
	err := MissingField("host")
	require.Contains(t, err.Error(), "host")
	require.True(t, Is(err, Parse))
}
