package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered     uint64
	LoginSuccesses      uint64
	LoginFailures       uint64
	FederatedLogins     uint64
	ProfilesEdited      uint64
	PhotosUploaded      uint64
	TokensRejected      map[string]uint64
	UpstreamRequests    map[string]uint64 // keyed "<upstream>:<outcome>"
	UpstreamDurationNs  map[string]int64
	QuoteCacheHits      uint64
	QuoteCacheMisses    uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered  uint64
	loginSuccesses   uint64
	loginFailures    uint64
	federatedLogins  uint64
	profilesEdited   uint64
	photosUploaded   uint64
	quoteCacheHits   uint64
	quoteCacheMisses uint64

	mu                 sync.Mutex
	tokensRejected     map[string]uint64
	upstreamRequests   map[string]uint64
	upstreamDurationNs map[string]int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		tokensRejected:     make(map[string]uint64),
		upstreamRequests:   make(map[string]uint64),
		upstreamDurationNs: make(map[string]int64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	rejected := make(map[string]uint64, len(m.tokensRejected))
	for k, v := range m.tokensRejected {
		rejected[k] = v
	}
	requests := make(map[string]uint64, len(m.upstreamRequests))
	for k, v := range m.upstreamRequests {
		requests[k] = v
	}
	durations := make(map[string]int64, len(m.upstreamDurationNs))
	for k, v := range m.upstreamDurationNs {
		durations[k] = v
	}

	return Snapshot{
		UsersRegistered:    atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:     atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:      atomic.LoadUint64(&m.loginFailures),
		FederatedLogins:    atomic.LoadUint64(&m.federatedLogins),
		ProfilesEdited:     atomic.LoadUint64(&m.profilesEdited),
		PhotosUploaded:     atomic.LoadUint64(&m.photosUploaded),
		TokensRejected:     rejected,
		UpstreamRequests:   requests,
		UpstreamDurationNs: durations,
		QuoteCacheHits:     atomic.LoadUint64(&m.quoteCacheHits),
		QuoteCacheMisses:   atomic.LoadUint64(&m.quoteCacheMisses),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncFederatedLogin increments the federated login counter.
func (m *InMemoryRecorder) IncFederatedLogin() {
	atomic.AddUint64(&m.federatedLogins, 1)
}

// IncProfileEdited increments the profile edit counter.
func (m *InMemoryRecorder) IncProfileEdited() {
	atomic.AddUint64(&m.profilesEdited, 1)
}

// IncPhotoUploaded increments the photo upload counter.
func (m *InMemoryRecorder) IncPhotoUploaded() {
	atomic.AddUint64(&m.photosUploaded, 1)
}

// IncTokenRejected increments the rejected token counter for a reason.
func (m *InMemoryRecorder) IncTokenRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokensRejected[reason]++
}

// IncUpstreamRequest increments the upstream request counter.
func (m *InMemoryRecorder) IncUpstreamRequest(upstream, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upstreamRequests[upstream+":"+outcome]++
}

// ObserveUpstreamDuration records upstream call duration.
func (m *InMemoryRecorder) ObserveUpstreamDuration(upstream string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upstreamDurationNs[upstream] += duration.Nanoseconds()
}

// IncQuoteCacheHit increments the quote cache hit counter.
func (m *InMemoryRecorder) IncQuoteCacheHit() {
	atomic.AddUint64(&m.quoteCacheHits, 1)
}

// IncQuoteCacheMiss increments the quote cache miss counter.
func (m *InMemoryRecorder) IncQuoteCacheMiss() {
	atomic.AddUint64(&m.quoteCacheMisses, 1)
}
