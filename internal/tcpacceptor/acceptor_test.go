package tcpacceptor

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/viruscoding/gelf-sentry-gateway/internal/pipeline"
	"github.com/viruscoding/gelf-sentry-gateway/internal/sentrysink"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// capturingHook records every entry's fields so tests can assert on
// what a log line actually carried.
type capturingHook struct {
	mu      sync.Mutex
	entries []logrus.Fields
}

func (h *capturingHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *capturingHook) Fire(e *logrus.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e.Data)
	return nil
}

func (h *capturingHook) find(field string) (interface{}, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, fields := range h.entries {
		if v, ok := fields[field]; ok {
			return v, true
		}
	}
	return nil, false
}

func TestTCPAcceptorTrimsNulAndSends(t *testing.T) {
	events := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		events <- body
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dsn, err := sentrysink.ParseDSN("http://pub@" + srv.Listener.Addr().String() + "/1")
	require.NoError(t, err)
	sink := sentrysink.New(dsn, srv.Client(), silentLogger())
	runner := pipeline.NewRunner(1, 1, 1, 4, sink, silentLogger())
	defer runner.Close()

	acceptor, err := Bind("127.0.0.1:0", runner, silentLogger())
	require.NoError(t, err)
	defer acceptor.Close()
	go acceptor.Serve()

	conn, err := net.Dial("tcp", acceptor.listener.Addr().String())
	require.NoError(t, err)

	msg := []byte(`{"version":"1.1","host":"h","short_message":"m","level":0,"timestamp":1.0}`)
	_, err = conn.Write(append(msg, 0x00))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	select {
	case body := <-events:
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &ev))
		require.Equal(t, "h", ev["server_name"])
		require.Equal(t, "fatal", ev["level"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sentry event")
	}
}

// A peer that closes the connection without ever writing the NUL
// terminator is still a complete, parseable frame: trimming is
// conditional on the last byte, not mandatory.
func TestTCPAcceptorAcceptsFrameWithoutTrailingNul(t *testing.T) {
	events := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		events <- body
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dsn, err := sentrysink.ParseDSN("http://pub@" + srv.Listener.Addr().String() + "/1")
	require.NoError(t, err)
	sink := sentrysink.New(dsn, srv.Client(), silentLogger())
	runner := pipeline.NewRunner(1, 1, 1, 4, sink, silentLogger())
	defer runner.Close()

	acceptor, err := Bind("127.0.0.1:0", runner, silentLogger())
	require.NoError(t, err)
	defer acceptor.Close()
	go acceptor.Serve()

	conn, err := net.Dial("tcp", acceptor.listener.Addr().String())
	require.NoError(t, err)

	msg := []byte(`{"version":"1.1","host":"no-nul","short_message":"m","level":1,"timestamp":1.0}`)
	_, err = conn.Write(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	select {
	case body := <-events:
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &ev))
		require.Equal(t, "no-nul", ev["server_name"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sentry event")
	}
}

// A frame that fails to parse as GELF JSON must surface the original
// bytes, lossy-UTF-8 rendered, on the diagnostic logger.
func TestTCPAcceptorLogsOriginalBytesOnParseFailure(t *testing.T) {
	log := silentLogger()
	hook := &capturingHook{}
	log.AddHook(hook)

	sink := sentrysink.New(&sentrysink.DSN{Protocol: "http", Host: "unused", PublicKey: "pub", ProjectID: "1"}, http.DefaultClient, silentLogger())
	runner := pipeline.NewRunner(1, 1, 1, 4, sink, silentLogger())
	defer runner.Close()

	acceptor, err := Bind("127.0.0.1:0", runner, log)
	require.NoError(t, err)
	defer acceptor.Close()
	go acceptor.Serve()

	conn, err := net.Dial("tcp", acceptor.listener.Addr().String())
	require.NoError(t, err)

	malformed := append([]byte("not json \xff\xfe"), 0x00)
	_, err = conn.Write(malformed)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		_, ok := hook.find("original")
		return ok
	}, 2*time.Second, 20*time.Millisecond)

	original, ok := hook.find("original")
	require.True(t, ok)
	require.Contains(t, original.(string), "not json")
	require.NotContains(t, original.(string), "\xff")
}
