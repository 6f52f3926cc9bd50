package frame

import "fmt"

// Protocol control bytes, wire-exact.
const (
	// SOH marks a data frame with a 128-byte payload.
	SOH byte = 0x01

	// STX marks a data frame with a 1024-byte payload.
	STX byte = 0x02

	// EOT signals the end of transmission.
	EOT byte = 0x04

	// ACK acknowledges a valid block or an EOT.
	ACK byte = 0x06

	// NAK rejects a block and requests retransmission. It is also the
	// receiver's opening byte when requesting classic checksum mode.
	NAK byte = 0x15

	// CAN cancels the transfer.
	CAN byte = 0x18

	// CRCRequest ('C') is the receiver's opening byte requesting
	// CRC-16 mode.
	CRCRequest byte = 0x43

	// Filler pads the final block up to the negotiated block size.
	Filler byte = 0x1A
)

// ControlName returns the protocol name of a control byte, or the
// empty string if the byte has no protocol meaning.
func ControlName(b byte) string {
	switch b {
	case SOH:
		return "SOH"
	case STX:
		return "STX"
	case EOT:
		return "EOT"
	case ACK:
		return "ACK"
	case NAK:
		return "NAK"
	case CAN:
		return "CAN"
	case CRCRequest:
		return "C"
	default:
		return ""
	}
}

// Frame geometry.
const (
	// HeaderLength is the marker, block number, and complement bytes.
	HeaderLength = 3

	// MaxFrameLength is the longest possible frame: header, a
	// 1024-byte payload, and a 2-byte CRC trailer.
	MaxFrameLength = HeaderLength + 1024 + 2
)

// BlockSize is the payload length of a data frame.
type BlockSize int

const (
	// Block128 is the classic 128-byte block.
	Block128 BlockSize = 128

	// Block1K is the XMODEM-1K 1024-byte block.
	Block1K BlockSize = 1024
)

// Valid reports whether the block size is one the protocol defines.
func (s BlockSize) Valid() bool {
	return s == Block128 || s == Block1K
}

// Marker returns the frame marker byte for this block size.
func (s BlockSize) Marker() byte {
	if s == Block1K {
		return STX
	}
	return SOH
}

// String returns the block size in bytes.
func (s BlockSize) String() string {
	return fmt.Sprintf("%d", int(s))
}

// ChecksumKind selects the block verification algorithm.
type ChecksumKind uint8

const (
	// ChecksumClassic is the 8-bit additive checksum (1-byte trailer).
	ChecksumClassic ChecksumKind = iota

	// ChecksumCRC16 is CRC-16/XMODEM (2-byte big-endian trailer).
	ChecksumCRC16
)

// TrailerLength returns the number of checksum bytes in a frame.
func (k ChecksumKind) TrailerLength() int {
	if k == ChecksumCRC16 {
		return 2
	}
	return 1
}

// String returns the checksum kind name.
func (k ChecksumKind) String() string {
	switch k {
	case ChecksumClassic:
		return "CLASSIC"
	case ChecksumCRC16:
		return "CRC16"
	default:
		return "UNKNOWN"
	}
}

// Mode is a negotiated transfer mode: block size plus checksum kind.
// It is fixed for the whole session once negotiated.
type Mode struct {
	Size BlockSize
	Kind ChecksumKind
}

// FrameLength returns the total encoded frame length for this mode.
func (m Mode) FrameLength() int {
	return HeaderLength + int(m.Size) + m.Kind.TrailerLength()
}

// Marker returns the data frame marker byte for this mode.
func (m Mode) Marker() byte {
	return m.Size.Marker()
}

// String returns the mode as "size/kind", e.g. "1024/CRC16".
func (m Mode) String() string {
	return m.Size.String() + "/" + m.Kind.String()
}
