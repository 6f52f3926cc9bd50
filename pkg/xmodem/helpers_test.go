package xmodem

import (
	"testing"

	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
)

// testPayload returns n bytes of a non-repeating pattern that does
// not align with block boundaries.
func testPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}
	return p
}

// buildTestFrame encodes one data frame the way a conforming sender
// would.
func buildTestFrame(t *testing.T, blockNum byte, payload []byte, mode frame.Mode) []byte {
	t.Helper()
	var buf [frame.MaxFrameLength]byte
	n, err := frame.Encode(&buf, blockNum, payload, mode)
	if err != nil {
		t.Fatalf("encoding block %d: %v", blockNum, err)
	}
	return append([]byte(nil), buf[:n]...)
}

// paddedLength returns the number of bytes a receiver delivers for a
// transfer of n payload bytes at the given block size.
func paddedLength(n int, size frame.BlockSize) int {
	if n == 0 {
		return 0
	}
	blocks := (n + int(size) - 1) / int(size)
	return blocks * int(size)
}
