package sentrysink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDSN(t *testing.T) {
	dsn, err := ParseDSN("https://abc123@sentry.example.com/7")
	require.NoError(t, err)
	require.Equal(t, "https", dsn.Protocol)
	require.Equal(t, "abc123", dsn.PublicKey)
	require.Equal(t, "sentry.example.com", dsn.Host)
	require.Equal(t, "7", dsn.ProjectID)
}

func TestParseDSNMalformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-url", "https://sentry.example.com/7", "https://abc123@sentry.example.com/"} {
		_, err := ParseDSN(raw)
		require.Error(t, err, raw)
	}
}
