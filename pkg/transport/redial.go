package transport

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net"
	"sync"
	"time"
)

// Redial backoff defaults, tuned for serial-over-TCP bridges that come
// back within seconds of a flap.
const (
	// InitialRedialDelay is the wait before the first redial.
	InitialRedialDelay = 500 * time.Millisecond

	// MaxRedialDelay caps the wait between redials.
	MaxRedialDelay = 30 * time.Second

	// RedialMultiplier is the factor by which the wait grows.
	RedialMultiplier = 2.0

	// RedialJitterFactor bounds the random extension of each wait as a
	// fraction of its base value.
	RedialJitterFactor = 0.25
)

// Backoff yields the waits between successive dial attempts on an
// exponential schedule. The zero value uses the package defaults and
// never gives up. Fields must not be changed once a dial loop is
// using the Backoff.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64

	// Jitter is the upper bound of the random extension added to each
	// wait, as a fraction of its base value. Zero takes the default;
	// a negative value disables jitter.
	Jitter float64

	// MaxRetries caps how many redials may be scheduled after the
	// first attempt. Zero means no limit.
	MaxRetries int

	mu  sync.Mutex
	n   int
	rng *rand.Rand
}

// Next returns the wait before the upcoming redial and counts it
// against the retry budget.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.waitFor(b.n)
	b.n++
	return d
}

// Retries returns how many waits Next has handed out.
func (b *Backoff) Retries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

// Exhausted reports whether the retry budget is spent.
func (b *Backoff) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.MaxRetries > 0 && b.n >= b.MaxRetries
}

// waitFor computes the jittered wait before retry n. Callers hold mu.
func (b *Backoff) waitFor(n int) time.Duration {
	initial := b.Initial
	if initial <= 0 {
		initial = InitialRedialDelay
	}
	ceiling := b.Max
	if ceiling <= 0 {
		ceiling = MaxRedialDelay
	}
	growth := b.Multiplier
	if growth <= 1 {
		growth = RedialMultiplier
	}

	base := ceiling
	if scaled := float64(initial) * math.Pow(growth, float64(n)); scaled < float64(ceiling) {
		base = time.Duration(scaled)
	}

	jitter := b.Jitter
	if jitter == 0 {
		jitter = RedialJitterFactor
	}
	if jitter < 0 || base <= 0 {
		return base
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return base + time.Duration(b.rng.Int63n(int64(float64(base)*jitter)+1))
}

// DialRetry dials addr, retrying under b until it connects, b's retry
// budget is spent, or the context is cancelled. A nil b uses the
// default schedule. The connection is returned wrapped as a Conn
// transport.
func DialRetry(ctx context.Context, network, addr string, b *Backoff) (*Conn, error) {
	if b == nil {
		b = &Backoff{}
	}

	var dialer net.Dialer
	var lastErr error

	for {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err == nil {
			return NewConn(conn), nil
		}
		lastErr = err

		if b.Exhausted() {
			return nil, fmt.Errorf("dial %s: %w", addr, lastErr)
		}

		timer := time.NewTimer(b.Next())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}
