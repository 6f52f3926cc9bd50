package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/xmodem-protocol/xmodem-go/pkg/checksum"
)

// Codec errors.
var (
	// ErrMalformedFrame reports a data frame that failed validation:
	// wrong marker, bad complement byte, short input, or a checksum
	// mismatch. Callers must not distinguish further; every malformed
	// frame means the block must be resent.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrPayloadTooLarge reports a payload longer than the mode's
	// block size.
	ErrPayloadTooLarge = errors.New("payload larger than block size")
)

// Encode writes a data frame for the given block into buf and returns
// the frame length. Payloads shorter than the mode's block size are
// right-padded with Filler bytes. Encode does not allocate.
func Encode(buf *[MaxFrameLength]byte, blockNum byte, payload []byte, mode Mode) (int, error) {
	size := int(mode.Size)
	if len(payload) > size {
		return 0, fmt.Errorf("%w: %d bytes into %d-byte blocks", ErrPayloadTooLarge, len(payload), size)
	}

	buf[0] = mode.Marker()
	buf[1] = blockNum
	buf[2] = 255 - blockNum

	n := copy(buf[HeaderLength:], payload)
	for i := HeaderLength + n; i < HeaderLength+size; i++ {
		buf[i] = Filler
	}

	block := buf[HeaderLength : HeaderLength+size]
	switch mode.Kind {
	case ChecksumCRC16:
		binary.BigEndian.PutUint16(buf[HeaderLength+size:], checksum.CRC16(block))
	default:
		buf[HeaderLength+size] = checksum.Classic(block)
	}

	return mode.FrameLength(), nil
}

// Decode validates a received data frame and returns its block number
// and payload. The payload aliases fr; it is valid until fr is reused.
// Any validation failure returns an error wrapping ErrMalformedFrame.
func Decode(fr []byte, mode Mode) (byte, []byte, error) {
	if len(fr) < mode.FrameLength() {
		return 0, nil, fmt.Errorf("%w: %d bytes, want %d", ErrMalformedFrame, len(fr), mode.FrameLength())
	}
	if fr[0] != mode.Marker() {
		return 0, nil, fmt.Errorf("%w: marker 0x%02X, want 0x%02X", ErrMalformedFrame, fr[0], mode.Marker())
	}

	blockNum := fr[1]
	if fr[2] != 255-blockNum {
		return 0, nil, fmt.Errorf("%w: complement 0x%02X for block %d", ErrMalformedFrame, fr[2], blockNum)
	}

	size := int(mode.Size)
	payload := fr[HeaderLength : HeaderLength+size]

	switch mode.Kind {
	case ChecksumCRC16:
		got := binary.BigEndian.Uint16(fr[HeaderLength+size:])
		if want := checksum.CRC16(payload); got != want {
			return 0, nil, fmt.Errorf("%w: crc 0x%04X, want 0x%04X", ErrMalformedFrame, got, want)
		}
	default:
		got := fr[HeaderLength+size]
		if want := checksum.Classic(payload); got != want {
			return 0, nil, fmt.Errorf("%w: checksum 0x%02X, want 0x%02X", ErrMalformedFrame, got, want)
		}
	}

	return blockNum, payload, nil
}
