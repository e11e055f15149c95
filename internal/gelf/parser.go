// Package gelf parses a GELF 1.1 JSON payload into a strongly-typed
// Event, partitioning the remaining keys into meta (underscore-prefixed)
// and mechanism (everything else), preserving input key order in both.
// A plain map-based decode cannot preserve key order, so Parse walks
// the input with a json.Decoder token stream instead.
package gelf

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
)

// Parse decodes a single JSON object into an Event.
func Parse(data []byte) (*Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, gelferr.ParseErr(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, gelferr.ParseErr(errNotObject)
	}

	ev := &Event{Meta: NewOrderedMap(), Mechanism: NewOrderedMap()}
	var haveHost, haveShort, haveVersion, haveLevel, haveTimestamp bool

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, gelferr.ParseErr(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, gelferr.ParseErr(errNotObject)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, gelferr.ParseErr(err)
		}

		switch {
		case key == "host":
			if err := json.Unmarshal(raw, &ev.Host); err != nil {
				return nil, gelferr.ParseErr(err)
			}
			haveHost = true
		case key == "short_message":
			if err := json.Unmarshal(raw, &ev.ShortMessage); err != nil {
				return nil, gelferr.ParseErr(err)
			}
			haveShort = true
		case key == "version":
			if err := json.Unmarshal(raw, &ev.Version); err != nil {
				return nil, gelferr.ParseErr(err)
			}
			haveVersion = true
		case key == "timestamp":
			var f float64
			if err := json.Unmarshal(raw, &f); err != nil {
				return nil, gelferr.InvalidTimestamp(string(raw))
			}
			ev.Timestamp = f
			haveTimestamp = true
		case key == "level":
			var f float64
			if err := json.Unmarshal(raw, &f); err != nil || math.Trunc(f) != f {
				return nil, gelferr.InvalidLevel(string(raw))
			}
			level := Severity(int32(f))
			if !level.Valid() {
				return nil, gelferr.InvalidLevel(string(raw))
			}
			ev.Level = level
			haveLevel = true
		case strings.HasPrefix(key, "_"):
			ev.Meta.Set(strings.TrimPrefix(key, "_"), raw)
		default:
			ev.Mechanism.Set(key, raw)
		}
	}

	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, gelferr.ParseErr(err)
	}

	switch {
	case !haveHost:
		return nil, gelferr.MissingField("host")
	case !haveShort:
		return nil, gelferr.MissingField("short_message")
	case !haveVersion:
		return nil, gelferr.MissingField("version")
	case !haveTimestamp:
		return nil, gelferr.MissingField("timestamp")
	case !haveLevel:
		return nil, gelferr.MissingField("level")
	}

	return ev, nil
}

type parseError string

func (e parseError) Error() string { return string(e) }

const errNotObject = parseError("gelf: payload is not a JSON object")
