package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xmodem-protocol/xmodem-go/pkg/checksum"
)

func TestModeGeometry(t *testing.T) {
	tests := []struct {
		name        string
		mode        Mode
		frameLength int
		marker      byte
		str         string
	}{
		{
			name:        "128 classic",
			mode:        Mode{Size: Block128, Kind: ChecksumClassic},
			frameLength: 3 + 128 + 1,
			marker:      SOH,
			str:         "128/CLASSIC",
		},
		{
			name:        "128 crc",
			mode:        Mode{Size: Block128, Kind: ChecksumCRC16},
			frameLength: 3 + 128 + 2,
			marker:      SOH,
			str:         "128/CRC16",
		},
		{
			name:        "1k classic",
			mode:        Mode{Size: Block1K, Kind: ChecksumClassic},
			frameLength: 3 + 1024 + 1,
			marker:      STX,
			str:         "1024/CLASSIC",
		},
		{
			name:        "1k crc",
			mode:        Mode{Size: Block1K, Kind: ChecksumCRC16},
			frameLength: 3 + 1024 + 2,
			marker:      STX,
			str:         "1024/CRC16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.FrameLength(); got != tt.frameLength {
				t.Errorf("FrameLength() = %d, want %d", got, tt.frameLength)
			}
			if got := tt.mode.Marker(); got != tt.marker {
				t.Errorf("Marker() = 0x%02X, want 0x%02X", got, tt.marker)
			}
			if got := tt.mode.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
			if tt.mode.FrameLength() > MaxFrameLength {
				t.Errorf("FrameLength() = %d exceeds MaxFrameLength %d", tt.mode.FrameLength(), MaxFrameLength)
			}
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	mode := Mode{Size: Block128, Kind: ChecksumClassic}
	payload := bytes.Repeat([]byte{0xAB}, 128)

	var buf [MaxFrameLength]byte
	n, err := Encode(&buf, 7, payload, mode)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if n != 132 {
		t.Fatalf("Encode() = %d bytes, want 132", n)
	}

	if buf[0] != SOH {
		t.Errorf("marker = 0x%02X, want SOH", buf[0])
	}
	if buf[1] != 7 {
		t.Errorf("block number = %d, want 7", buf[1])
	}
	if buf[2] != 248 {
		t.Errorf("complement = %d, want 248", buf[2])
	}
	if !bytes.Equal(buf[3:131], payload) {
		t.Error("payload bytes do not match input")
	}
	if want := checksum.Classic(payload); buf[131] != want {
		t.Errorf("trailer = 0x%02X, want 0x%02X", buf[131], want)
	}
}

func TestEncode_CRCTrailerBigEndian(t *testing.T) {
	mode := Mode{Size: Block128, Kind: ChecksumCRC16}
	payload := bytes.Repeat([]byte{0x11}, 128)

	var buf [MaxFrameLength]byte
	n, err := Encode(&buf, 1, payload, mode)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if n != 133 {
		t.Fatalf("Encode() = %d bytes, want 133", n)
	}

	crc := checksum.CRC16(payload)
	if buf[131] != byte(crc>>8) || buf[132] != byte(crc) {
		t.Errorf("trailer = %02X %02X, want %02X %02X (big endian)",
			buf[131], buf[132], byte(crc>>8), byte(crc))
	}
}

func TestEncode_PadsShortPayload(t *testing.T) {
	mode := Mode{Size: Block128, Kind: ChecksumClassic}
	payload := bytes.Repeat([]byte{0x55}, 72)

	var buf [MaxFrameLength]byte
	if _, err := Encode(&buf, 2, payload, mode); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	for i := 3 + 72; i < 3+128; i++ {
		if buf[i] != Filler {
			t.Fatalf("buf[%d] = 0x%02X, want filler 0x%02X", i, buf[i], Filler)
		}
	}

	// The checksum covers the padded block, not just the caller bytes.
	if want := checksum.Classic(buf[3 : 3+128]); buf[131] != want {
		t.Errorf("trailer = 0x%02X, want 0x%02X", buf[131], want)
	}
}

func TestEncode_PayloadTooLarge(t *testing.T) {
	mode := Mode{Size: Block128, Kind: ChecksumClassic}
	payload := make([]byte, 129)

	var buf [MaxFrameLength]byte
	_, err := Encode(&buf, 1, payload, mode)
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Encode() error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	modes := []Mode{
		{Size: Block128, Kind: ChecksumClassic},
		{Size: Block128, Kind: ChecksumCRC16},
		{Size: Block1K, Kind: ChecksumClassic},
		{Size: Block1K, Kind: ChecksumCRC16},
	}

	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			payload := make([]byte, mode.Size)
			for i := range payload {
				payload[i] = byte(i * 31)
			}

			var buf [MaxFrameLength]byte
			n, err := Encode(&buf, 42, payload, mode)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}

			blockNum, got, err := Decode(buf[:n], mode)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if blockNum != 42 {
				t.Errorf("block number = %d, want 42", blockNum)
			}
			if !bytes.Equal(got, payload) {
				t.Error("decoded payload does not match encoded payload")
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	mode := Mode{Size: Block128, Kind: ChecksumCRC16}
	payload := bytes.Repeat([]byte{0xC3}, 128)

	encode := func() []byte {
		var buf [MaxFrameLength]byte
		n, err := Encode(&buf, 9, payload, mode)
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
		fr := make([]byte, n)
		copy(fr, buf[:n])
		return fr
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name:   "wrong marker",
			mutate: func(fr []byte) []byte { fr[0] = STX; return fr },
		},
		{
			name:   "marker not a marker at all",
			mutate: func(fr []byte) []byte { fr[0] = 0x7F; return fr },
		},
		{
			name:   "bad complement",
			mutate: func(fr []byte) []byte { fr[2]++; return fr },
		},
		{
			name:   "corrupted payload byte",
			mutate: func(fr []byte) []byte { fr[50] ^= 0x01; return fr },
		},
		{
			name:   "corrupted crc high byte",
			mutate: func(fr []byte) []byte { fr[131] ^= 0x80; return fr },
		},
		{
			name:   "corrupted crc low byte",
			mutate: func(fr []byte) []byte { fr[132] ^= 0x01; return fr },
		},
		{
			name:   "truncated",
			mutate: func(fr []byte) []byte { return fr[:100] },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := tt.mutate(encode())
			_, _, err := Decode(fr, mode)
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("Decode() error = %v, want ErrMalformedFrame", err)
			}
		})
	}
}

func TestDecode_ClassicChecksumMismatch(t *testing.T) {
	mode := Mode{Size: Block128, Kind: ChecksumClassic}
	payload := bytes.Repeat([]byte{0x10}, 128)

	var buf [MaxFrameLength]byte
	n, err := Encode(&buf, 3, payload, mode)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	buf[n-1]++
	if _, _, err := Decode(buf[:n], mode); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("Decode() error = %v, want ErrMalformedFrame", err)
	}
}

// Every single-byte corruption of a CRC-mode frame must fail to decode.
func TestDecode_AnyByteCorruptionRejected(t *testing.T) {
	mode := Mode{Size: Block128, Kind: ChecksumCRC16}
	payload := []byte("block payload with some distinctive content here")

	var buf [MaxFrameLength]byte
	n, err := Encode(&buf, 5, payload, mode)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	fr := make([]byte, n)
	for i := 0; i < n; i++ {
		copy(fr, buf[:n])
		fr[i] ^= 0x40

		if _, _, err := Decode(fr, mode); err == nil {
			t.Errorf("Decode() accepted frame corrupted at byte %d", i)
		}
	}
}

func TestBlockSizeValid(t *testing.T) {
	if !Block128.Valid() || !Block1K.Valid() {
		t.Error("defined block sizes must be valid")
	}
	if BlockSize(256).Valid() {
		t.Error("BlockSize(256).Valid() = true, want false")
	}
	if BlockSize(0).Valid() {
		t.Error("BlockSize(0).Valid() = true, want false")
	}
}

func BenchmarkEncode_1KCRC(b *testing.B) {
	mode := Mode{Size: Block1K, Kind: ChecksumCRC16}
	payload := bytes.Repeat([]byte{0x77}, 1024)
	var buf [MaxFrameLength]byte

	b.SetBytes(1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(&buf, byte(i), payload, mode); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode_1KCRC(b *testing.B) {
	mode := Mode{Size: Block1K, Kind: ChecksumCRC16}
	payload := bytes.Repeat([]byte{0x77}, 1024)
	var buf [MaxFrameLength]byte
	n, err := Encode(&buf, 1, payload, mode)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Decode(buf[:n], mode); err != nil {
			b.Fatal(err)
		}
	}
}
