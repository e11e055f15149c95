// Package sentryevent translates a parsed GELF event into a Sentry
// "store" event: one exception value per meta entry (in iteration
// order), followed by a terminal GelfException value built from the
// mechanism map and short_message.
package sentryevent

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelf"
)

// Level is one of the five Sentry severity strings.
type Level string

const (
	LevelFatal   Level = "fatal"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelDebug   Level = "debug"
)

// Mechanism is Sentry's structured metadata attached to an exception
// value; only the terminal GelfException entry carries one.
type Mechanism struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// ExceptionValue is one entry of event.exception.values. Value holds
// whatever JSON shape the source meta entry had (string, number,
// object, ...) except for the terminal GelfException entry, whose value
// is always the GELF short_message string.
type ExceptionValue struct {
	Type      string      `json:"type"`
	Value     interface{} `json:"value"`
	Mechanism *Mechanism  `json:"mechanism,omitempty"`
}

// Event is the JSON payload Sentry's /api/{project}/store/ endpoint
// accepts.
type Event struct {
	EventID    uuid.UUID `json:"event_id"`
	ServerName string    `json:"server_name"`
	Timestamp  float64   `json:"timestamp"`
	Level      Level     `json:"level"`
	Exception  struct {
		Values []ExceptionValue `json:"values"`
	} `json:"exception"`
}

// severityLevel maps GELF severity to Sentry's five-level scale. The
// mapping is total: every valid Severity resolves to a Level.
func severityLevel(s gelf.Severity) Level {
	switch s {
	case gelf.Emergency:
		return LevelFatal
	case gelf.Alert, gelf.Critical, gelf.Error:
		return LevelError
	case gelf.Warning, gelf.Notice:
		return LevelWarning
	case gelf.Info:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// Translate converts a parsed GELF event into a Sentry store event. A
// fresh UUIDv4 is generated for event_id on every call.
func Translate(ev *gelf.Event) *Event {
	out := &Event{
		EventID:    uuid.New(),
		ServerName: ev.Host,
		Timestamp:  ev.Timestamp,
		Level:      severityLevel(ev.Level),
	}

	ev.Meta.Range(func(key string, raw json.RawMessage) {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			v = string(raw)
		}
		out.Exception.Values = append(out.Exception.Values, ExceptionValue{Type: key, Value: v})
	})

	mechanismData := make(map[string]interface{}, ev.Mechanism.Len())
	ev.Mechanism.Range(func(key string, raw json.RawMessage) {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err == nil {
			mechanismData[key] = v
		}
	})

	out.Exception.Values = append(out.Exception.Values, ExceptionValue{
		Type:  "GelfException",
		Value: ev.ShortMessage,
		Mechanism: &Mechanism{
			Type: "generic",
			Data: mechanismData,
		},
	})

	return out
}
