package transport

import (
	"errors"
	"testing"
	"time"
)

func TestPipe_SendReceive(t *testing.T) {
	a, b := NewPipe()
	defer a.Close()
	defer b.Close()

	if err := a.Send([]byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	for _, want := range []byte{0x01, 0x02, 0x03} {
		got, err := b.Receive(time.Second)
		if err != nil {
			t.Fatalf("Receive() error: %v", err)
		}
		if got != want {
			t.Errorf("Receive() = 0x%02X, want 0x%02X", got, want)
		}
	}
}

func TestPipe_BothDirections(t *testing.T) {
	a, b := NewPipe()
	defer a.Close()
	defer b.Close()

	if err := a.Send([]byte{0xAA}); err != nil {
		t.Fatalf("a.Send() error: %v", err)
	}
	if err := b.Send([]byte{0xBB}); err != nil {
		t.Fatalf("b.Send() error: %v", err)
	}

	if got, err := b.Receive(time.Second); err != nil || got != 0xAA {
		t.Errorf("b.Receive() = 0x%02X, %v, want 0xAA, nil", got, err)
	}
	if got, err := a.Receive(time.Second); err != nil || got != 0xBB {
		t.Errorf("a.Receive() = 0x%02X, %v, want 0xBB, nil", got, err)
	}
}

func TestPipe_ReceiveTimeout(t *testing.T) {
	a, b := NewPipe()
	defer a.Close()
	defer b.Close()

	start := time.Now()
	_, err := a.Receive(20 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Receive() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Receive() returned after %v, want at least 20ms", elapsed)
	}
}

func TestPipe_ReceiveAfterLocalClose(t *testing.T) {
	a, b := NewPipe()
	defer b.Close()

	a.Close()
	if _, err := a.Receive(time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("Receive() error = %v, want ErrClosed", err)
	}
	if err := a.Send([]byte{0x01}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() error = %v, want ErrClosed", err)
	}
}

func TestPipe_DrainsBufferedBytesAfterPeerClose(t *testing.T) {
	a, b := NewPipe()
	defer b.Close()

	if err := a.Send([]byte{0x11, 0x22}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	a.Close()

	for _, want := range []byte{0x11, 0x22} {
		got, err := b.Receive(time.Second)
		if err != nil {
			t.Fatalf("Receive() error: %v", err)
		}
		if got != want {
			t.Errorf("Receive() = 0x%02X, want 0x%02X", got, want)
		}
	}

	if _, err := b.Receive(time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("Receive() after drain error = %v, want ErrClosed", err)
	}
}

func TestPipe_SendToClosedPeer(t *testing.T) {
	a, b := NewPipe()
	defer a.Close()

	b.Close()
	if err := a.Send([]byte{0x00}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() to closed peer error = %v, want ErrClosed", err)
	}
}

func TestPipe_CloseIdempotent(t *testing.T) {
	a, b := NewPipe()
	defer b.Close()

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestPipe_ConcurrentEcho(t *testing.T) {
	a, b := NewPipe()
	defer a.Close()
	defer b.Close()

	const n = 4096 // larger than the channel buffer

	done := make(chan error, 1)
	go func() {
		for i := 0; i < n; i++ {
			got, err := b.Receive(time.Second)
			if err != nil {
				done <- err
				return
			}
			if err := b.Send([]byte{got}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := 0; i < n; i++ {
		want := byte(i)
		if err := a.Send([]byte{want}); err != nil {
			t.Fatalf("Send() error at %d: %v", i, err)
		}
		got, err := a.Receive(time.Second)
		if err != nil {
			t.Fatalf("Receive() error at %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("echo byte %d = 0x%02X, want 0x%02X", i, got, want)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("echo goroutine error: %v", err)
	}
}
