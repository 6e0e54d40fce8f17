package health

import (
	"sync"
	"time"
)

// Tracker keeps a sliding window of chat request outcomes. The health
// endpoint reads the error rate to report a degraded status when the chatbot
// pipeline keeps hitting the apology path.
type Tracker struct {
	mu        sync.Mutex
	successes []time.Time
	errors    []time.Time
}

const retention = 5 * time.Minute

// RecordSuccess records a request that produced a normal answer (including
// canned branches; "no matches" is not an error).
func (t *Tracker) RecordSuccess() {
	t.record(&t.successes)
}

// RecordError records a request that ended in the apology path.
func (t *Tracker) RecordError() {
	t.record(&t.errors)
}

func (t *Tracker) record(slice *[]time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	*slice = append(*slice, now)
	t.pruneLocked(now)
}

// ErrorRate returns (errorCount, totalCount) within the window.
func (t *Tracker) ErrorRate(window time.Duration) (errors, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-window)
	e := countSince(t.errors, cutoff)
	s := countSince(t.successes, cutoff)
	return e, e + s
}

// Reset clears recorded outcomes. For tests only.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.successes = nil
	t.errors = nil
}

func countSince(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// pruneLocked drops timestamps older than the retention horizon. Must be
// called with the mutex held.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-retention)
	prune := func(slice *[]time.Time) {
		times := *slice
		i := 0
		for ; i < len(times) && times[i].Before(cutoff); i++ {
		}
		if i > 0 {
			*slice = append(times[:0], times[i:]...)
		}
	}
	prune(&t.successes)
	prune(&t.errors)
}
