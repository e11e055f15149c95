// Command gelfgw runs the GELF-to-Sentry ingestion gateway: it binds a
// UDP and a TCP listener, reassembles chunked UDP datagrams, decodes and
// translates GELF events, and forwards them to Sentry.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/viruscoding/gelf-sentry-gateway/internal/chunking"
	"github.com/viruscoding/gelf-sentry-gateway/internal/config"
	"github.com/viruscoding/gelf-sentry-gateway/internal/logging"
	"github.com/viruscoding/gelf-sentry-gateway/internal/pipeline"
	"github.com/viruscoding/gelf-sentry-gateway/internal/sentrysink"
	"github.com/viruscoding/gelf-sentry-gateway/internal/stats"
	"github.com/viruscoding/gelf-sentry-gateway/internal/tcpacceptor"
	"github.com/viruscoding/gelf-sentry-gateway/internal/udpacceptor"
)

// sendPoolSize is fixed rather than env-configured: sending to Sentry
// is I/O-bound and small relative to decompression/parsing.
const sendPoolSize = 8

// mailboxCapacity bounds each worker pool's queue; once full, Submit
// blocks the caller, which is the gateway's sole back-pressure
// mechanism.
const mailboxCapacity = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logs := logging.New(cfg.System)

	dsn, err := sentrysink.ParseDSN(cfg.DSN)
	if err != nil {
		return err
	}

	sink := sentrysink.New(dsn, http.DefaultClient, logs.Trace)
	runner := pipeline.NewRunner(cfg.UnpackerThreads, cfg.ReaderThreads, sendPoolSize, mailboxCapacity, sink, logs.Diagnostics)
	defer runner.Close()

	reassembler := chunking.New(cfg.MaxParallelChunks, logs.Trace)
	defer reassembler.Close()

	udp, err := udpacceptor.Bind(cfg.UDPAddr, reassembler, runner, logs.Diagnostics)
	if err != nil {
		return err
	}
	defer udp.Close()

	tcp, err := tcpacceptor.Bind(cfg.TCPAddr, runner, logs.Diagnostics)
	if err != nil {
		return err
	}
	defer tcp.Close()

	heartbeat, err := stats.Start("@every 30s", logs.Trace, tableStatsSources(reassembler, runner)...)
	if err != nil {
		return err
	}
	defer heartbeat.Stop()

	go func() {
		if err := udp.Serve(); err != nil {
			logs.Diagnostics.WithError(err).Error("udp acceptor stopped")
		}
	}()
	go func() {
		if err := tcp.Serve(); err != nil {
			logs.Diagnostics.WithError(err).Error("tcp acceptor stopped")
		}
	}()

	logs.Diagnostics.WithField("udp_addr", cfg.UDPAddr).WithField("tcp_addr", cfg.TCPAddr).Info("gateway started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logs.Diagnostics.Info("shutting down")
	return nil
}

func tableStatsSources(r *chunking.Reassembler, runner *pipeline.Runner) []stats.Source {
	return []stats.Source{
		{Name: "reassembly_table_size", Read: func() int { return r.Stats().Size }},
		{Name: "inflate_queue_depth", Read: func() int { i, _, _ := runner.QueueDepths(); return i }},
		{Name: "translate_queue_depth", Read: func() int { _, t, _ := runner.QueueDepths(); return t }},
		{Name: "send_queue_depth", Read: func() int { _, _, s := runner.QueueDepths(); return s }},
	}
}
