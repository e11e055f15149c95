// Package sentrysink builds the Sentry store-event URL and POSTs the
// translated event as JSON over a shared *http.Client.
package sentrysink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
	"github.com/viruscoding/gelf-sentry-gateway/internal/sentryevent"
)

// Sink POSTs Sentry events to the store endpoint derived from a DSN.
// The HTTP client is shared read-only across every caller.
type Sink struct {
	client *http.Client
	dsn    *DSN
	log    *logrus.Logger
	now    func() time.Time
}

// New builds a Sink for dsn. client is shared across the process; a nil
// client falls back to http.DefaultClient.
func New(dsn *DSN, client *http.Client, log *logrus.Logger) *Sink {
	if client == nil {
		client = http.DefaultClient
	}
	return &Sink{client: client, dsn: dsn, log: log, now: time.Now}
}

func (s *Sink) storeURL() string {
	return fmt.Sprintf(
		"%s://%s/api/%s/store/?sentry_version=5&sentry_key=%s&sentry_timestamp=%d",
		s.dsn.Protocol, s.dsn.Host, s.dsn.ProjectID, s.dsn.PublicKey, s.now().Unix(),
	)
}

// Send marshals ev and POSTs it. Transport errors are returned to the
// caller to log and drop; a non-2xx response is logged but never
// treated as an error — the response status is informational only.
func (s *Sink) Send(ev *sentryevent.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return gelferr.TransportErr(err)
	}

	resp, err := s.client.Post(s.storeURL(), "application/json", bytes.NewReader(body))
	if err != nil {
		return gelferr.TransportErr(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return gelferr.TransportErr(err)
	}

	s.log.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"event_id":    ev.EventID,
		"server_name": ev.ServerName,
	}).Info(string(respBody))

	return nil
}
