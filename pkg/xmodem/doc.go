// Package xmodem implements the XMODEM file-transfer protocol state
// machines for both roles, sender and receiver.
//
// # Overview
//
// XMODEM moves a byte sequence across a reliable, ordered byte stream
// in fixed-size numbered blocks, each acknowledged individually. The
// package supports all four practical variants: 128-byte and 1024-byte
// blocks, combined with the classic 8-bit additive checksum or
// CRC-16/XMODEM verification. A session owns its transport for its
// whole lifetime and runs synchronously to completion:
//
//	sent, err := xmodem.Send(link, data)
//	received, err := xmodem.Recv(link, &out)
//
// Sessions are single-threaded and blocking. The transfer path uses a
// fixed frame buffer inside the session struct and performs no heap
// allocation.
//
// # Mode Negotiation
//
// The receiver opens the session. Its first byte selects the checksum
// kind for the whole transfer:
//
//   - 'C' (0x43) requests CRC-16 verification
//   - NAK (0x15) requests the classic additive checksum
//
// By default a receiver asks for CRC-16 three times before falling
// back to classic mode. The block size is not negotiated on the wire;
// both sides are configured with it up front.
//
// # Sender States
//
//	AWAIT_MODE_REQUEST -> SENDING_BLOCK -> AWAIT_ACK -+-> SEND_EOT -> AWAIT_EOT_ACK -> DONE
//	                           ^                      |
//	                           +----------------------+
//	                             (ACK: next block, NAK/timeout: resend)
//
// ABORTED is reachable from every state: retry exhaustion (the sender
// writes CAN first), a CAN byte from the peer, local cancellation, or
// a transport failure.
//
// # Receiver States
//
//	REQUEST_MODE -> AWAIT_FRAME -> DONE
//	                  |      ^
//	                  +------+
//	                  (deliver+ACK, duplicate re-ACK, or NAK retry)
//
// A frame carrying the expected block number is delivered to the sink
// and acknowledged. A frame carrying the previous block number is a
// retransmission caused by a lost ACK: it is acknowledged again but
// not delivered twice. Anything malformed is answered with NAK until
// the retry budget runs out.
//
// # Length Ambiguity
//
// XMODEM has no length field. The final block is padded to the block
// size with 0x1A filler bytes, and the receiver cannot tell padding
// from data. Recv therefore returns a multiple of the block size even
// when the sender supplied fewer bytes; callers that need the exact
// length must communicate it out of band.
package xmodem
