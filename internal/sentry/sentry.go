// Package sentry wraps Sentry SDK initialization for Better Stack error
// tracking. The DSN is assembled from the Better Stack token and ingesting
// host so the rest of the application never handles Sentry specifics.
package sentry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds Sentry configuration for Better Stack integration.
type Config struct {
	// Token is the Better Stack Errors application token.
	// Empty disables error tracking entirely.
	Token string

	// Host is the Better Stack Errors ingesting host
	// (e.g., "errors.betterstack.com").
	Host string

	// Environment identifies the deployment environment.
	Environment string

	// Release identifies the application release version.
	Release string
}

// Initialize sets up the Sentry SDK. A missing token disables Sentry and
// returns nil; a token without a host is a configuration error.
func Initialize(cfg Config) error {
	if cfg.Token == "" {
		return nil
	}
	if cfg.Host == "" {
		return fmt.Errorf("sentry host is required when token is provided")
	}

	// Better Stack DSN: https://$TOKEN@$HOST/1. The project ID segment is
	// required by the SDK and ignored by Better Stack.
	dsn := fmt.Sprintf("https://%s@%s/1", cfg.Token, cfg.Host)

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
	})
}

// IsEnabled reports whether Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureException sends an error to Sentry. No-op when disabled.
func CaptureException(err error) {
	sentry.CaptureException(err)
}

// Flush waits for buffered events to reach the server. Returns false if the
// timeout expired with events still queued.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
