package gelf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
)

func TestParseRequiredFieldsAndMeta(t *testing.T) {
	in := []byte(`{"version":"1.1","host":"h","short_message":"m","level":5,"timestamp":1582213226,"_a":"x"}`)
	ev, err := Parse(in)
	require.NoError(t, err)
	require.Equal(t, "h", ev.Host)
	require.Equal(t, "m", ev.ShortMessage)
	require.Equal(t, "1.1", ev.Version)
	require.Equal(t, Notice, ev.Level)
	require.Equal(t, float64(1582213226), ev.Timestamp)
	require.Equal(t, 1, ev.Meta.Len())

	var gotKey string
	ev.Meta.Range(func(k string, v json.RawMessage) { gotKey = k })
	require.Equal(t, "a", gotKey)
}

func TestParseMissingHost(t *testing.T) {
	in := []byte(`{"version":"1.1","short_message":"m","level":5,"timestamp":1.0}`)
	_, err := Parse(in)
	require.Error(t, err)
	require.True(t, gelferr.Is(err, gelferr.Parse))
}

func TestParseInvalidLevel(t *testing.T) {
	in := []byte(`{"version":"1.1","host":"h","short_message":"m","level":9,"timestamp":1.0}`)
	_, err := Parse(in)
	require.Error(t, err)
}

func TestParseInvalidTimestamp(t *testing.T) {
	in := []byte(`{"version":"1.1","host":"h","short_message":"m","level":1,"timestamp":"nope"}`)
	_, err := Parse(in)
	require.Error(t, err)
}

func TestParsePreservesKeyOrder(t *testing.T) {
	in := []byte(`{"host":"h","short_message":"m","version":"1.1","level":0,"timestamp":1.0,"_z":1,"_a":2,"other_b":3,"other_a":4}`)
	ev, err := Parse(in)
	require.NoError(t, err)

	var metaKeys []string
	ev.Meta.Range(func(k string, _ json.RawMessage) { metaKeys = append(metaKeys, k) })
	require.Equal(t, []string{"z", "a"}, metaKeys)

	var mechKeys []string
	ev.Mechanism.Range(func(k string, _ json.RawMessage) { mechKeys = append(mechKeys, k) })
	require.Equal(t, []string{"other_b", "other_a"}, mechKeys)
}
