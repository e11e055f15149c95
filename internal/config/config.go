// Package config parses the gateway's environment variables once at
// startup, the same "fail fast at boot, typed after that" shape the
// teacher applies to its backend options structs.
package config

import (
	"os"

	"github.com/spf13/cast"

	"github.com/viruscoding/gelf-sentry-gateway/internal/gelferr"
)

// Config is the fully parsed, validated runtime configuration.
type Config struct {
	DSN               string
	UDPAddr           string
	TCPAddr           string
	System            string
	ReaderThreads     int
	UnpackerThreads   int
	MaxParallelChunks int
}

const (
	defaultUDPAddr           = "0.0.0.0:8080"
	defaultTCPAddr           = "0.0.0.0:8081"
	defaultSystem            = "Gelf Mover"
	defaultReaderThreads     = 1
	defaultUnpackerThreads   = 1
	defaultMaxParallelChunks = 100000
)

// Load reads and validates the environment. SENTRY_DSN is required; every
// other variable falls back to its documented default.
func Load() (*Config, error) {
	dsn, ok := os.LookupEnv("SENTRY_DSN")
	if !ok || dsn == "" {
		return nil, gelferr.ConfigErr(errString("SENTRY_DSN is required"))
	}

	readerThreads, err := intEnv("READER_THREADS", defaultReaderThreads)
	if err != nil {
		return nil, err
	}
	unpackerThreads, err := intEnv("UNPACKER_THREADS", defaultUnpackerThreads)
	if err != nil {
		return nil, err
	}
	maxParallelChunks, err := intEnv("MAX_PARALLEL_CHUNKS", defaultMaxParallelChunks)
	if err != nil {
		return nil, err
	}

	return &Config{
		DSN:               dsn,
		UDPAddr:           stringEnv("UDP_ADDR", defaultUDPAddr),
		TCPAddr:           stringEnv("TCP_ADDR", defaultTCPAddr),
		System:            stringEnv("SYSTEM", defaultSystem),
		ReaderThreads:     readerThreads,
		UnpackerThreads:   unpackerThreads,
		MaxParallelChunks: maxParallelChunks,
	}, nil
}

func stringEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	return cast.ToString(v)
}

func intEnv(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, gelferr.ConfigErr(err)
	}
	return n, nil
}

type errString string

func (e errString) Error() string { return string(e) }
