package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncFederatedLogin is a no-op.
func (n *NoopRecorder) IncFederatedLogin() {}

// IncProfileEdited is a no-op.
func (n *NoopRecorder) IncProfileEdited() {}

// IncPhotoUploaded is a no-op.
func (n *NoopRecorder) IncPhotoUploaded() {}

// IncTokenRejected is a no-op.
func (n *NoopRecorder) IncTokenRejected(reason string) {}

// IncUpstreamRequest is a no-op.
func (n *NoopRecorder) IncUpstreamRequest(upstream, outcome string) {}

// ObserveUpstreamDuration is a no-op.
func (n *NoopRecorder) ObserveUpstreamDuration(upstream string, duration time.Duration) {}

// IncQuoteCacheHit is a no-op.
func (n *NoopRecorder) IncQuoteCacheHit() {}

// IncQuoteCacheMiss is a no-op.
func (n *NoopRecorder) IncQuoteCacheMiss() {}
