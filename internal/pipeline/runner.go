package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/viruscoding/gelf-sentry-gateway/internal/decompress"
	"github.com/viruscoding/gelf-sentry-gateway/internal/gelf"
	"github.com/viruscoding/gelf-sentry-gateway/internal/sentryevent"
	"github.com/viruscoding/gelf-sentry-gateway/internal/sentrysink"
	"github.com/viruscoding/gelf-sentry-gateway/internal/workerpool"
)

type decodeResult struct {
	data []byte
	err  error
}

type translateResult struct {
	event *sentryevent.Event
	err   error
}

// Runner holds the three worker pools shared by both acceptors and runs
// a payload through decompress → parse → translate → send, the common
// tail of both the UDP and TCP dataflows.
type Runner struct {
	inflate   *workerpool.Pool[[]byte, decodeResult]
	translate *workerpool.Pool[[]byte, translateResult]
	send      *workerpool.Pool[*sentryevent.Event, error]
	sink      *sentrysink.Sink
	log       *logrus.Logger
}

// NewRunner builds the three pools: inflateWorkers and translateWorkers
// come from UNPACKER_THREADS/READER_THREADS; sendWorkers is a small
// fixed pool, since sending is I/O-bound and already off any event loop
// via net/http's own transport.
func NewRunner(inflateWorkers, translateWorkers, sendWorkers, mailboxCapacity int, sink *sentrysink.Sink, log *logrus.Logger) *Runner {
	r := &Runner{sink: sink, log: log}

	r.inflate = workerpool.New(inflateWorkers, mailboxCapacity, func(payload []byte) decodeResult {
		data, err := decompress.Inflate(payload)
		return decodeResult{data: data, err: err}
	})

	r.translate = workerpool.New(translateWorkers, mailboxCapacity, func(data []byte) translateResult {
		ev, err := gelf.Parse(data)
		if err != nil {
			return translateResult{err: err}
		}
		return translateResult{event: sentryevent.Translate(ev)}
	})

	r.send = workerpool.New(sendWorkers, mailboxCapacity, func(ev *sentryevent.Event) error {
		return r.sink.Send(ev)
	})

	return r
}

// ProcessPayload runs one already-reassembled/framed payload through the
// decompress → parse+translate → send stages, stopping and logging at
// whichever stage fails first. A failure in one item never affects any
// other in-flight item.
func (r *Runner) ProcessPayload(payload []byte) Outcome {
	decoded := r.inflate.Submit(payload)
	if decoded.err != nil {
		outcome := DroppedAt(Inflated, decoded.err.Error())
		r.logDrop(outcome, decoded.err)
		return outcome
	}

	translated := r.translate.Submit(decoded.data)
	if translated.err != nil {
		outcome := DroppedAt(Parsed, translated.err.Error())
		r.logDrop(outcome, translated.err)
		return outcome
	}

	if err := r.send.Submit(translated.event); err != nil {
		outcome := DroppedAt(Sent, err.Error())
		r.logDrop(outcome, err)
		return outcome
	}

	return Ok()
}

func (r *Runner) logDrop(outcome Outcome, cause error) {
	r.log.WithFields(logrus.Fields{
		"state": outcome.State,
		"stage": outcome.Stage,
	}).WithError(cause).Warn("dropping payload")
}

// QueueDepths reports current mailbox occupancy for the heartbeat.
func (r *Runner) QueueDepths() (inflate, translate, send int) {
	return r.inflate.QueueDepth(), r.translate.QueueDepth(), r.send.QueueDepth()
}

// Close stops all three pools.
func (r *Runner) Close() {
	r.inflate.Close()
	r.translate.Close()
	r.send.Close()
}
