// Package progress tracks transfer throughput for user-facing
// output. The protocol engine knows nothing about it; callers feed a
// Tracker by wrapping their sink with Writer or by registering a
// FrameLogger as a trace logger.
package progress

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of a transfer.
type Snapshot struct {
	// Transferred is the number of bytes counted so far.
	Transferred int64

	// Total is the expected byte count, 0 when unknown.
	Total int64

	// Percent is the completed fraction in percent, 0 when the total
	// is unknown.
	Percent float64

	// Rate is the average throughput in bytes per second.
	Rate float64

	// Elapsed is the time since the tracker was created.
	Elapsed time.Duration

	// ETA estimates the remaining transfer time, 0 when unknown.
	ETA time.Duration
}

// Tracker accumulates transferred byte counts and derives progress
// statistics. All methods are safe for concurrent use.
type Tracker struct {
	mu          sync.Mutex
	total       int64
	transferred int64
	started     time.Time
	onUpdate    func(Snapshot)
	interval    time.Duration
	lastFire    time.Time

	now func() time.Time
}

// NewTracker creates a tracker for a transfer of total bytes. A zero
// total means the size is unknown; Percent and ETA stay zero then.
func NewTracker(total int64) *Tracker {
	t := &Tracker{total: total, now: time.Now}
	t.started = t.now()
	t.lastFire = t.started
	return t
}

// OnUpdate registers a callback invoked from Add with a current
// snapshot, at most once per interval. The callback runs on the
// caller of Add, so it must not block.
func (t *Tracker) OnUpdate(fn func(Snapshot), interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUpdate = fn
	t.interval = interval
}

// Add records n more transferred bytes.
func (t *Tracker) Add(n int) {
	t.mu.Lock()
	t.transferred += int64(n)
	fn := t.onUpdate
	fire := false
	if fn != nil {
		now := t.now()
		if now.Sub(t.lastFire) >= t.interval {
			t.lastFire = now
			fire = true
		}
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if fire {
		fn(snap)
	}
}

// Finish fires the update callback one final time, regardless of the
// throttle interval.
func (t *Tracker) Finish() {
	t.mu.Lock()
	fn := t.onUpdate
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// Transferred returns the bytes counted so far.
func (t *Tracker) Transferred() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transferred
}

// Percent returns the completed fraction in percent, 0 when the
// total is unknown.
func (t *Tracker) Percent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked().Percent
}

// Rate returns the average throughput in bytes per second.
func (t *Tracker) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked().Rate
}

// Elapsed returns the time since the tracker was created.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Sub(t.started)
}

// ETA estimates the remaining transfer time from the average rate,
// 0 when the total or the rate is unknown.
func (t *Tracker) ETA() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked().ETA
}

// Snapshot returns a consistent view of all statistics.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	elapsed := t.now().Sub(t.started)
	snap := Snapshot{
		Transferred: t.transferred,
		Total:       t.total,
		Elapsed:     elapsed,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		snap.Rate = float64(t.transferred) / secs
	}
	if t.total > 0 {
		snap.Percent = 100 * float64(t.transferred) / float64(t.total)
		if snap.Rate > 0 && t.transferred < t.total {
			remaining := float64(t.total-t.transferred) / snap.Rate
			snap.ETA = time.Duration(remaining * float64(time.Second))
		}
	}
	return snap
}
