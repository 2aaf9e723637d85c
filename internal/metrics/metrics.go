// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLoginSuccess()
	IncLoginFailure()
	IncFederatedLogin()
	IncProfileEdited()
	IncPhotoUploaded()

	// IncTokenRejected records a rejected token.
	// reason: "decode_failed" or "unknown_subject"
	IncTokenRejected(reason string)

	// Upstream proxy metrics
	IncUpstreamRequest(upstream, outcome string) // outcome: "success" or "error"
	ObserveUpstreamDuration(upstream string, duration time.Duration)
	IncQuoteCacheHit()
	IncQuoteCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
