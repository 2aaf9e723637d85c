package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()

	m.IncUserRegistered()
	m.IncLoginSuccess()
	m.IncLoginFailure()
	m.IncLoginFailure()
	m.IncTokenRejected("decode_failed")
	m.IncTokenRejected("decode_failed")
	m.IncTokenRejected("unknown_subject")
	m.IncUpstreamRequest("market", "success")
	m.IncUpstreamRequest("market", "error")
	m.IncUpstreamRequest("weather", "success")
	m.ObserveUpstreamDuration("market", 100*time.Millisecond)
	m.IncQuoteCacheHit()
	m.IncQuoteCacheMiss()

	snap := m.Snapshot()

	if snap.UsersRegistered != 1 {
		t.Errorf("UsersRegistered: got %d", snap.UsersRegistered)
	}
	if snap.LoginFailures != 2 {
		t.Errorf("LoginFailures: got %d", snap.LoginFailures)
	}
	if snap.TokensRejected["decode_failed"] != 2 || snap.TokensRejected["unknown_subject"] != 1 {
		t.Errorf("TokensRejected: got %v", snap.TokensRejected)
	}
	if snap.UpstreamRequests["market:success"] != 1 || snap.UpstreamRequests["market:error"] != 1 {
		t.Errorf("UpstreamRequests: got %v", snap.UpstreamRequests)
	}
	if snap.UpstreamDurationNs["market"] != (100 * time.Millisecond).Nanoseconds() {
		t.Errorf("UpstreamDurationNs: got %v", snap.UpstreamDurationNs)
	}
	if snap.QuoteCacheHits != 1 || snap.QuoteCacheMisses != 1 {
		t.Errorf("cache counters: hits %d, misses %d", snap.QuoteCacheHits, snap.QuoteCacheMisses)
	}
}

func TestInMemoryRecorder_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncTokenRejected("decode_failed")

	snap := m.Snapshot()
	snap.TokensRejected["decode_failed"] = 99

	if got := m.Snapshot().TokensRejected["decode_failed"]; got != 1 {
		t.Errorf("snapshot mutation leaked into recorder: got %d", got)
	}
}

func TestInMemoryRecorder_ConcurrentUse(t *testing.T) {
	t.Parallel()

	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncUserRegistered()
			m.IncTokenRejected("decode_failed")
			m.IncUpstreamRequest("market", "success")
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.UsersRegistered != 50 {
		t.Errorf("UsersRegistered: got %d", snap.UsersRegistered)
	}
	if snap.TokensRejected["decode_failed"] != 50 {
		t.Errorf("TokensRejected: got %v", snap.TokensRejected)
	}
	if snap.UpstreamRequests["market:success"] != 50 {
		t.Errorf("UpstreamRequests: got %v", snap.UpstreamRequests)
	}
}
