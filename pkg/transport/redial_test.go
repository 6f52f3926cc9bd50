package transport

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestBackoff_Growth(t *testing.T) {
	b := &Backoff{
		Initial:    100 * time.Millisecond,
		Max:        400 * time.Millisecond,
		Multiplier: 2,
		Jitter:     -1,
	}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		400 * time.Millisecond, // capped
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() #%d = %v, want %v", i, got, w)
		}
	}
	if got := b.Retries(); got != len(want) {
		t.Errorf("Retries() = %d, want %d", got, len(want))
	}
}

func TestBackoff_ZeroValueDefaults(t *testing.T) {
	var b Backoff

	got := b.Next()
	max := InitialRedialDelay + time.Duration(float64(InitialRedialDelay)*RedialJitterFactor)
	if got < InitialRedialDelay || got > max {
		t.Errorf("first Next() = %v, want within [%v, %v]", got, InitialRedialDelay, max)
	}
	if b.Exhausted() {
		t.Error("zero value Exhausted() = true, want unlimited retries")
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	base := 100 * time.Millisecond
	b := &Backoff{Initial: base, Max: base, Jitter: 0.25}

	for i := 0; i < 100; i++ {
		got := b.Next()
		if got < base || got > base+base/4 {
			t.Fatalf("Next() = %v, want within [%v, %v]", got, base, base+base/4)
		}
	}
}

func TestBackoff_Exhausted(t *testing.T) {
	b := &Backoff{Initial: time.Millisecond, MaxRetries: 2}

	if b.Exhausted() {
		t.Fatal("Exhausted() = true before any retry")
	}
	b.Next()
	b.Next()
	if !b.Exhausted() {
		t.Fatal("Exhausted() = false after spending the budget")
	}
}

func TestDialRetry_ConnectsImmediately(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	c, err := DialRetry(context.Background(), "tcp", ln.Addr().String(), nil)
	if err != nil {
		t.Fatalf("DialRetry() error: %v", err)
	}
	c.Close()
}

func TestDialRetry_GivesUpAfterRetryBudget(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing listens here anymore

	b := &Backoff{
		Initial:    time.Millisecond,
		Max:        2 * time.Millisecond,
		Jitter:     -1,
		MaxRetries: 2,
	}

	_, err = DialRetry(context.Background(), "tcp", addr, b)
	if err == nil {
		t.Fatal("DialRetry() succeeded against a closed port")
	}
	if got := b.Retries(); got != 2 {
		t.Errorf("Retries() = %d, want 2", got)
	}
}

func TestDialRetry_ContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	b := &Backoff{Initial: 10 * time.Millisecond, Max: 10 * time.Millisecond, Jitter: -1}

	_, err = DialRetry(ctx, "tcp", addr, b)
	if err == nil {
		t.Fatal("DialRetry() succeeded against a closed port")
	}
}
