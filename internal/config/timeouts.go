// Package config provides centralized timeout constants for the application.
//
// # LINE API Constraints
//
// LINE webhook has specific timing requirements:
//   - Reply token: valid for a limited window, reply ASAP for good UX
//   - Webhook response: LINE expects quick acknowledgment (200 OK)
//   - Loading animation: shows for up to 60 seconds while the user waits
//
// The completion service is the slow dependency here: a suggestion or recipe
// call commonly takes several seconds, so the write timeout leaves room for
// one full completion round-trip.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout. LINE sends small JSON payloads,
	// so this can stay short.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the server write timeout. Webhook acknowledgment itself
	// is immediate; the completion call happens off the request path.
	HTTPWrite = 30 * time.Second

	// HTTPIdle is the idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)
