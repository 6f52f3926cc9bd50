// Package frame implements the XMODEM data frame codec and defines the
// protocol's control bytes.
//
// # Frame Structure
//
// A data frame carries one numbered block:
//
//	+--------+----------+------------+-------------------+----------+
//	| marker | blockNum | 255-block  | payload           | trailer  |
//	| 1 byte | 1 byte   | 1 byte     | 128 or 1024 bytes | 1-2 bytes|
//	+--------+----------+------------+-------------------+----------+
//
// The marker identifies the block size: SOH for 128-byte payloads, STX
// for 1024-byte payloads. The third byte is the ones' complement of the
// block number (blockNum + complement == 255). The trailer is a single
// additive checksum byte in classic mode or a big-endian CRC-16/XMODEM
// value in CRC mode.
//
// Everything else on the wire is a single control byte: ACK, NAK, EOT,
// CAN, or the receiver's opening 'C' requesting CRC mode.
//
// # Padding
//
// A final block shorter than the negotiated size is right-padded with
// Filler (0x1A) bytes. The protocol carries no length field, so the
// receiver cannot tell padding from data; callers needing exact lengths
// must convey them out of band.
//
// Encode and Decode operate on caller-resident fixed-size buffers and do
// not allocate.
package frame
