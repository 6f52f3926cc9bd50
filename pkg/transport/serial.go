package transport

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// ErrNoDevice reports a serial configuration without a device path.
var ErrNoDevice = errors.New("no serial device specified")

// SerialConfig describes a serial port. XMODEM requires an 8-bit clean
// link, so the port is always opened 8-N-1.
type SerialConfig struct {
	// Device is the port path, e.g. /dev/ttyUSB0 or COM3.
	Device string

	// BaudRate is the line speed in bits per second.
	BaudRate int
}

// DefaultSerialConfig returns a serial configuration with the
// conventional 115200 baud rate. Device must still be set.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		BaudRate: 115200,
	}
}

// Serial is a ByteTransport over a local serial port.
type Serial struct {
	port serial.Port
	buf  [1]byte
}

// OpenSerial opens the configured port in 8-N-1 framing.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	if cfg.Device == "" {
		return nil, ErrNoDevice
	}

	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultSerialConfig().BaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	return &Serial{port: port}, nil
}

// Receive reads one byte, waiting up to timeout. The port read timeout
// is adjusted per call; a zero-byte read means the line stayed silent.
func (s *Serial) Receive(timeout time.Duration) (byte, error) {
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, err
	}

	n, err := s.port.Read(s.buf[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return s.buf[0], nil
}

// Send writes the whole buffer to the port.
func (s *Serial) Send(p []byte) error {
	for len(p) > 0 {
		n, err := s.port.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Close closes the port.
func (s *Serial) Close() error {
	return s.port.Close()
}

// Compile-time interface satisfaction check.
var _ ByteTransport = (*Serial)(nil)
