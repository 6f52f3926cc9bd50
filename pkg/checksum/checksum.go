// Package checksum implements the two block-verification algorithms used
// by XMODEM: the classic 8-bit additive checksum and CRC-16/XMODEM.
//
// CRC-16/XMODEM parameters: polynomial 0x1021, initial value 0x0000, no
// input or output reflection, no final XOR, most significant bit first.
// The check value over the ASCII string "123456789" is 0x31C3.
package checksum

// Poly is the CRC-16/XMODEM generator polynomial.
const Poly = 0x1021

var crcTable [256]uint16

func init() {
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ Poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// Classic returns the classic XMODEM checksum: the sum of all payload
// bytes modulo 256.
func Classic(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// CRC16 returns the CRC-16/XMODEM value over the payload.
func CRC16(payload []byte) uint16 {
	var crc uint16
	for _, b := range payload {
		crc = CRC16Update(crc, b)
	}
	return crc
}

// CRC16Update folds a single byte into a running CRC-16/XMODEM value.
// Start from 0 and feed bytes in order to reproduce CRC16.
func CRC16Update(crc uint16, b byte) uint16 {
	idx := byte(crc>>8) ^ b
	return (crc << 8) ^ crcTable[idx]
}
