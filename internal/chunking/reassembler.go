// Package chunking detects GELF chunk envelopes and reassembles the
// fragments of a chunked UDP message into a single payload. A single
// goroutine (the "actor") owns the reassembly table exclusively, the
// same single-owner mailbox discipline used for the work queues
// elsewhere in this codebase, specialized here to a table instead of a
// plain list because completion and eviction both need to inspect more
// than one entry at a time.
package chunking

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
)

// EvictAfter is the age, measured from a partial message's first chunk,
// after which it is eligible for eviction on the next capacity-bound
// insert. Later chunks do not reset the age.
const EvictAfter = 5 * time.Second

type partial struct {
	firstSeen time.Time
	expected  uint8
	chunks    map[uint8][]byte
}

type request struct {
	header  Header
	payload []byte
	reply   chan response
}

type response struct {
	payload  []byte
	complete bool
	err      error
}

type statsRequest struct {
	reply chan Stats
}

// Stats is a read-only snapshot of reassembler occupancy, used by the
// diagnostic heartbeat (never by eviction, which stays triggered solely
// by capacity-bound insert).
type Stats struct {
	Size int
}

// Reassembler owns one reassembly table and processes chunk datagrams
// one at a time on its own goroutine.
type Reassembler struct {
	capacity int
	in       chan request
	stats    chan statsRequest
	done     chan struct{}
	log      *logrus.Logger
}

// New starts the reassembler's actor goroutine and returns a handle to
// it. capacity is MAX_PARALLEL_CHUNKS; log receives eviction and
// capacity-drop diagnostics.
func New(capacity int, log *logrus.Logger) *Reassembler {
	r := &Reassembler{
		capacity: capacity,
		in:       make(chan request),
		stats:    make(chan statsRequest),
		done:     make(chan struct{}),
		log:      log,
	}
	go r.run()
	return r
}

// Submit processes one datagram. If it is not a chunk envelope, it is
// returned unchanged with complete=true and the table is never touched.
// Otherwise the datagram is routed to the actor goroutine and this call
// blocks until that chunk has been filed into (or completed) its
// partial message.
func (r *Reassembler) Submit(datagram []byte) (payload []byte, complete bool, err error) {
	if !IsChunked(datagram) {
		return datagram, true, nil
	}
	if len(datagram) < headerLen {
		return nil, false, gelferr.FormatErr("chunk header truncated: %d bytes", len(datagram))
	}

	header := parseHeader(datagram)
	// copy the payload slice: the caller's datagram buffer may be reused
	// for the next receive once Submit returns control to it.
	payload = append([]byte(nil), datagram[headerLen:]...)

	reply := make(chan response, 1)
	r.in <- request{header: header, payload: payload, reply: reply}
	res := <-reply
	return res.payload, res.complete, res.err
}

// Stats returns a snapshot of current table occupancy.
func (r *Reassembler) Stats() Stats {
	reply := make(chan Stats, 1)
	r.stats <- statsRequest{reply: reply}
	return <-reply
}

// Close stops the actor goroutine. In-flight Submit calls made after
// Close is safe to call will block forever; callers must stop submitting
// before closing.
func (r *Reassembler) Close() {
	close(r.done)
}

func (r *Reassembler) run() {
	table := make(map[[8]byte]*partial, r.capacity)
	for {
		select {
		case <-r.done:
			return
		case sr := <-r.stats:
			sr.reply <- Stats{Size: len(table)}
		case req := <-r.in:
			req.reply <- r.handle(table, req)
		}
	}
}

func (r *Reassembler) handle(table map[[8]byte]*partial, req request) response {
	now := time.Now()
	p, ok := table[req.header.MessageID]
	if !ok {
		if len(table) >= r.capacity {
			evicted := r.evictStale(table, now)
			if evicted == 0 {
				r.log.WithFields(logrus.Fields{
					"message_id": req.header.MessageID,
					"table_size": len(table),
				}).Warn("reassembly table at capacity, dropping chunk")
				return response{complete: false}
			}
		}
		p = &partial{
			firstSeen: now,
			expected:  req.header.Count,
			chunks:    make(map[uint8][]byte, req.header.Count),
		}
		table[req.header.MessageID] = p
	}

	if req.header.Count != p.expected {
		return response{err: gelferr.FormatErr(
			"inconsistent sequence_count for message %x: have %d, got %d",
			req.header.MessageID, p.expected, req.header.Count)}
	}
	if req.header.Sequence >= p.expected {
		return response{err: gelferr.FormatErr(
			"sequence_number %d out of range for count %d", req.header.Sequence, p.expected)}
	}

	// Overwrite on duplicate sequence numbers; the map key dedups
	// automatically so duplicates never inflate the completion count.
	p.chunks[req.header.Sequence] = req.payload

	if len(p.chunks) != int(p.expected) {
		return response{complete: false}
	}

	delete(table, req.header.MessageID)
	return response{payload: concatenate(p), complete: true}
}

func (r *Reassembler) evictStale(table map[[8]byte]*partial, now time.Time) int {
	var evicted int
	for id, p := range table {
		if now.Sub(p.firstSeen) > EvictAfter {
			delete(table, id)
			evicted++
			r.log.WithFields(logrus.Fields{
				"message_id": id,
				"age":        now.Sub(p.firstSeen),
			}).Info("evicted stale chunk partial")
		}
	}
	return evicted
}

func concatenate(p *partial) []byte {
	seqs := make([]uint8, 0, len(p.chunks))
	for seq := range p.chunks {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })

	var out []byte
	for _, seq := range seqs {
		out = append(out, p.chunks[seq]...)
	}
	return out
}
