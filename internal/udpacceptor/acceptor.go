// Package udpacceptor binds a UDP socket and fans each incoming datagram
// through the reassembler and pipeline runner: one receive loop
// spawning one handler goroutine per datagram.
package udpacceptor

import (
	"net"

	"github.com/sirupsen/logrus"

	"github.com/viruscoding/gelf-sentry-gateway/internal/chunking"
	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
	"github.com/viruscoding/gelf-sentry-gateway/internal/pipeline"
)

const maxDatagramSize = 8192

// Acceptor owns one UDP socket and the reassembler feeding it.
type Acceptor struct {
	conn        *net.UDPConn
	reassembler *chunking.Reassembler
	runner      *pipeline.Runner
	log         *logrus.Logger
}

// Bind opens the UDP socket at addr. Bind failures are reported as a
// SocketError and are fatal to the process.
func Bind(addr string, reassembler *chunking.Reassembler, runner *pipeline.Runner, log *logrus.Logger) (*Acceptor, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, gelferr.SocketErr(err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, gelferr.SocketErr(err)
	}
	return &Acceptor{conn: conn, reassembler: reassembler, runner: runner, log: log}, nil
}

// Serve runs the single receive loop until the socket is closed. Each
// packet is handled on its own goroutine so a slow or failing packet
// never blocks the receive loop or other in-flight packets.
func (a *Acceptor) Serve() error {
	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := a.conn.ReadFromUDP(buf)
		if err != nil {
			return gelferr.SocketErr(err)
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		go a.handle(datagram)
	}
}

func (a *Acceptor) handle(datagram []byte) {
	payload, complete, err := a.reassembler.Submit(datagram)
	if err != nil {
		a.log.WithError(err).Warn("chunk reassembly failed, dropping datagram")
		return
	}
	if !complete {
		return
	}

	outcome := a.runner.ProcessPayload(payload)
	if outcome.State == pipeline.Dropped {
		a.log.WithFields(logrus.Fields{
			"stage":  outcome.Stage,
			"reason": outcome.Reason,
		}).Debug("udp datagram dropped")
	}
}

// Close shuts down the socket, ending Serve's receive loop.
func (a *Acceptor) Close() error {
	return a.conn.Close()
}
