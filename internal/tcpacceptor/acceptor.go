// Package tcpacceptor binds a TCP listener and, per accepted connection,
// reads to EOF, trims one trailing NUL framing terminator, and runs the
// pipeline runner on the result. The terminator convention is the same
// one GELF TCP senders append to every frame.
package tcpacceptor

import (
	"io"
	"net"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
	"github.com/viruscoding/gelf-sentry-gateway/internal/pipeline"
)

// Acceptor owns one TCP listener.
type Acceptor struct {
	listener net.Listener
	runner   *pipeline.Runner
	log      *logrus.Logger
}

// Bind opens the TCP listener at addr. Bind failures are reported as a
// SocketError and are fatal to the process.
func Bind(addr string, runner *pipeline.Runner, log *logrus.Logger) (*Acceptor, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, gelferr.SocketErr(err)
	}
	return &Acceptor{listener: l, runner: runner, log: log}, nil
}

// Serve accepts connections until the listener is closed. Each
// connection is handled on its own goroutine; per-connection processing
// is FIFO, but connections are otherwise independent.
func (a *Acceptor) Serve() error {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			return gelferr.SocketErr(err)
		}
		go a.handle(conn)
	}
}

func (a *Acceptor) handle(conn net.Conn) {
	defer conn.Close()

	data, err := io.ReadAll(conn)
	if err != nil {
		a.log.WithError(err).Warn("tcp read failed, dropping connection")
		return
	}

	if n := len(data); n > 0 && data[n-1] == 0x00 {
		data = data[:n-1]
	}

	outcome := a.runner.ProcessPayload(data)
	if outcome.State != pipeline.Dropped {
		return
	}
	if outcome.Stage != pipeline.Parsed {
		a.log.WithFields(logrus.Fields{
			"stage":  outcome.Stage,
			"reason": outcome.Reason,
		}).Debug("tcp frame dropped")
		return
	}

	// Parse failures are diagnosed with the original frame bytes,
	// lossy-rendered since a malformed payload need not be valid UTF-8.
	a.log.WithFields(logrus.Fields{
		"reason":   outcome.Reason,
		"original": strings.ToValidUTF8(string(data), "�"),
	}).Warn("tcp frame parse failed, dropping")
}

// Close shuts down the listener, ending Serve's accept loop.
func (a *Acceptor) Close() error {
	return a.listener.Close()
}
