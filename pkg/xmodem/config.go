package xmodem

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
)

const (
	// DefaultReadTimeout is the per-read deadline used when
	// Config.ReadTimeout is zero.
	DefaultReadTimeout = time.Second

	// DefaultMaxRetries is the retry budget used when
	// Config.MaxRetries is zero.
	DefaultMaxRetries = 10

	// DefaultModeAttempts is the number of CRC mode requests a
	// receiver makes before falling back to the classic checksum.
	DefaultModeAttempts = 3
)

// Config carries the tunable parameters of a session. The zero value
// is usable: zero-valued fields are replaced with defaults at
// construction time.
type Config struct {
	// BlockSize selects the payload size of data frames: senders
	// emit frames of this size, receivers reject frames whose marker
	// does not match it. Zero means Block128.
	BlockSize frame.BlockSize

	// Checksum selects the trailer kind. Senders adopt the mode the
	// receiver requests regardless of this field; receivers request
	// this mode during the handshake. The zero value is
	// ChecksumClassic.
	Checksum frame.ChecksumKind

	// ReadTimeout bounds every single read from the transport. Zero
	// means DefaultReadTimeout.
	ReadTimeout time.Duration

	// MaxRetries is how many times one step may be retried after its
	// first attempt fails. Zero means DefaultMaxRetries.
	MaxRetries int

	// ModeAttempts is how many CRC mode requests a receiver makes
	// before falling back to classic mode. Zero means
	// DefaultModeAttempts.
	ModeAttempts int

	// Logger receives trace events for every frame, control byte,
	// state change and error of the session. Nil disables tracing.
	Logger trace.Logger

	// SessionID tags the session's trace events. Empty means a
	// random UUID is assigned.
	SessionID string

	// Endpoint optionally names the transport peer in trace events,
	// for example a device path or remote address.
	Endpoint string
}

// DefaultConfig returns the configuration used by Send and Recv:
// 128-byte blocks with CRC-16 error detection.
func DefaultConfig() Config {
	return Config{
		BlockSize:    frame.Block128,
		Checksum:     frame.ChecksumCRC16,
		ReadTimeout:  DefaultReadTimeout,
		MaxRetries:   DefaultMaxRetries,
		ModeAttempts: DefaultModeAttempts,
	}
}

// normalize fills zero-valued fields with defaults and validates the
// rest. It returns the completed configuration.
func (c Config) normalize() (Config, error) {
	if c.BlockSize == 0 {
		c.BlockSize = frame.Block128
	}
	if !c.BlockSize.Valid() {
		return c, fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	}
	if c.Checksum != frame.ChecksumClassic && c.Checksum != frame.ChecksumCRC16 {
		return c, fmt.Errorf("%w: checksum kind %d", ErrInvalidConfig, c.Checksum)
	}
	if c.ReadTimeout < 0 {
		return c, fmt.Errorf("%w: negative read timeout", ErrInvalidConfig)
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.MaxRetries < 0 {
		return c, fmt.Errorf("%w: negative max retries", ErrInvalidConfig)
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.ModeAttempts < 0 {
		return c, fmt.Errorf("%w: negative mode attempts", ErrInvalidConfig)
	}
	if c.ModeAttempts == 0 {
		c.ModeAttempts = DefaultModeAttempts
	}
	if c.SessionID == "" {
		c.SessionID = uuid.NewString()
	}
	return c, nil
}
