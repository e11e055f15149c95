// Package logging builds the two diagnostic loggers the gateway uses:
// one at stderr for errors/diagnostics, one at stdout for responses and
// eviction traces. Both are built on sirupsen/logrus.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Loggers bundles the two diagnostic streams. Both are plain
// *logrus.Logger values (not Entry) so downstream packages — which take
// a *logrus.Logger, not a FieldLogger — can use them directly; the
// SYSTEM tag is added as a static hook instead of a bound field.
type Loggers struct {
	Diagnostics *logrus.Logger // stderr: errors, startup failures, drops
	Trace       *logrus.Logger // stdout: sentry responses, eviction events
}

type systemTag string

func (s systemTag) Levels() []logrus.Level { return logrus.AllLevels }

func (s systemTag) Fire(e *logrus.Entry) error {
	e.Data["system"] = string(s)
	return nil
}

// New builds both loggers, tagged with the runtime system name (the
// SYSTEM env var) on every entry.
func New(system string) *Loggers {
	diagnostics := logrus.New()
	diagnostics.SetOutput(os.Stderr)
	diagnostics.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	diagnostics.AddHook(systemTag(system))

	trace := logrus.New()
	trace.SetOutput(os.Stdout)
	trace.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	trace.AddHook(systemTag(system))

	return &Loggers{Diagnostics: diagnostics, Trace: trace}
}
