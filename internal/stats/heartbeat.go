// Package stats runs a periodic diagnostic heartbeat that logs
// reassembly-table occupancy and worker-pool queue depth to the trace
// stream. It only reads state through the same read-only query paths
// the rest of the system already exposes (Reassembler.Stats,
// Pool.QueueDepth) — it never locks or mutates anything, so it cannot
// interfere with the reassembler's single-owner eviction discipline.
package stats

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
)

// Source names one gauge to sample on every tick.
type Source struct {
	Name string
	Read func() int
}

// Heartbeat owns the cron job driving periodic reporting.
type Heartbeat struct {
	cron *cron.Cron
}

// Start schedules a heartbeat on the given cron expression (e.g.
// "@every 30s"), logging every source's current value to log at Info
// level on every tick.
func Start(schedule string, log *logrus.Logger, sources ...Source) (*Heartbeat, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		fields := make(logrus.Fields, len(sources))
		for _, s := range sources {
			fields[s.Name] = s.Read()
		}
		log.WithFields(fields).Info("gateway heartbeat")
	})
	if err != nil {
		return nil, gelferr.ConfigErr(err)
	}
	c.Start()
	return &Heartbeat{cron: c}, nil
}

// Stop halts the heartbeat, waiting for any in-flight tick to finish.
func (h *Heartbeat) Stop() {
	<-h.cron.Stop().Done()
}
