package xmodem

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
	"github.com/xmodem-protocol/xmodem-go/pkg/transport"
)

// Receiver drives the receiving side of a transfer. It requests a
// transfer mode, validates incoming frames one at a time and writes
// accepted payloads to the caller's sink.
//
// A Receiver runs one transfer and is not reusable. Run must be
// called exactly once; State and Cancel may be called from other
// goroutines.
type Receiver struct {
	session

	t    transport.ByteTransport
	cfg  Config
	sink io.Writer

	mode     frame.Mode
	expected byte
	retries  int
	received int

	// pending holds the byte that answered the mode request, -1 when
	// empty. It is the first byte of the first frame.
	pending int

	err error

	state     atomic.Uint32
	cancelled atomic.Bool

	ctrl [1]byte
	buf  [frame.MaxFrameLength]byte
}

// NewReceiver creates a receiver delivering to out with the default
// configuration.
func NewReceiver(t transport.ByteTransport, out io.Writer) *Receiver {
	cfg := DefaultConfig()
	cfg.SessionID = uuid.NewString()
	return newReceiver(t, out, cfg)
}

// NewReceiverWithConfig creates a receiver delivering to out with a
// custom configuration. Zero-valued fields of cfg take their
// defaults.
func NewReceiverWithConfig(t transport.ByteTransport, out io.Writer, cfg Config) (*Receiver, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	return newReceiver(t, out, cfg), nil
}

func newReceiver(t transport.ByteTransport, out io.Writer, cfg Config) *Receiver {
	return &Receiver{
		session: session{
			logger:    cfg.Logger,
			sessionID: cfg.SessionID,
			role:      trace.RoleReceiver,
			endpoint:  cfg.Endpoint,
		},
		t:        t,
		cfg:      cfg,
		sink:     out,
		expected: 1,
		pending:  -1,
	}
}

// Recv receives a transfer from t into out with the default
// configuration and returns the number of bytes delivered.
func Recv(t transport.ByteTransport, out io.Writer) (int, error) {
	return NewReceiver(t, out).Run()
}

// RecvWithConfig receives a transfer from t into out with a custom
// configuration.
func RecvWithConfig(t transport.ByteTransport, out io.Writer, cfg Config) (int, error) {
	r, err := NewReceiverWithConfig(t, out, cfg)
	if err != nil {
		return 0, err
	}
	return r.Run()
}

// State returns the receiver's current state.
func (r *Receiver) State() ReceiverState {
	return ReceiverState(r.state.Load())
}

// Cancel requests that the transfer stop. The receiver writes a CAN
// byte and aborts at its next step. Safe to call from any goroutine.
func (r *Receiver) Cancel() {
	r.cancelled.Store(true)
}

// Run executes the transfer and blocks until it reaches a terminal
// state. It returns the number of bytes delivered to the sink, which
// includes the filler padding of the final block. On failure the
// count covers what was delivered before the error.
func (r *Receiver) Run() (int, error) {
	for {
		if r.cancelled.Load() && !r.State().Terminal() {
			r.writeCAN()
			r.fail(&CancelError{Remote: false}, "cancelled locally")
		}
		switch r.State() {
		case ReceiverRequestMode:
			r.requestMode()
		case ReceiverAwaitFrame:
			r.awaitFrame()
		case ReceiverDone:
			return r.received, nil
		case ReceiverAborted:
			return r.received, r.err
		}
	}
}

// requestMode polls for a sender. CRC mode is requested first when
// configured, then the receiver falls back to the classic checksum.
// The byte that answers is kept for awaitFrame: it is already the
// start of the first frame.
func (r *Receiver) requestMode() {
	if r.cfg.Checksum == frame.ChecksumCRC16 {
		for attempt := 0; attempt < r.cfg.ModeAttempts; attempt++ {
			if err := r.writeControl(frame.CRCRequest); err != nil {
				r.fail(fmt.Errorf("writing mode request: %w", err), "transport failure")
				return
			}
			b, err := r.t.Receive(r.cfg.ReadTimeout)
			if err != nil {
				if errors.Is(err, transport.ErrTimeout) {
					continue
				}
				r.fail(fmt.Errorf("reading mode answer: %w", err), "transport failure")
				return
			}
			r.mode = frame.Mode{Size: r.cfg.BlockSize, Kind: frame.ChecksumCRC16}
			r.pending = int(b)
			r.setState(ReceiverAwaitFrame, "crc mode answered")
			return
		}
		r.logError(trace.LayerProtocol, ErrTimeout, "falling back to classic checksum", false)
	}
	for attempt := 0; attempt < r.cfg.MaxRetries; attempt++ {
		if err := r.writeControl(frame.NAK); err != nil {
			r.fail(fmt.Errorf("writing mode request: %w", err), "transport failure")
			return
		}
		b, err := r.t.Receive(r.cfg.ReadTimeout)
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) {
				continue
			}
			r.fail(fmt.Errorf("reading mode answer: %w", err), "transport failure")
			return
		}
		r.mode = frame.Mode{Size: r.cfg.BlockSize, Kind: frame.ChecksumClassic}
		r.pending = int(b)
		r.setState(ReceiverAwaitFrame, "classic mode answered")
		return
	}
	r.fail(fmt.Errorf("%w: no sender answered", ErrTimeout), "handshake timeout")
}

// nextByte consumes the handshake answer first, then reads from the
// transport.
func (r *Receiver) nextByte() (byte, error) {
	if r.pending >= 0 {
		b := byte(r.pending)
		r.pending = -1
		return b, nil
	}
	return r.t.Receive(r.cfg.ReadTimeout)
}

func (r *Receiver) awaitFrame() {
	b, err := r.nextByte()
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) {
			r.logError(trace.LayerTransport, err, "awaiting frame", false)
			r.frameRetry("frame timeout")
			return
		}
		r.fail(fmt.Errorf("reading frame: %w", err), "transport failure")
		return
	}
	switch b {
	case frame.EOT:
		r.logControl(trace.DirectionIn, b)
		if err := r.writeControl(frame.ACK); err != nil {
			r.fail(fmt.Errorf("writing ack: %w", err), "transport failure")
			return
		}
		r.setState(ReceiverDone, "EOT acknowledged")
	case frame.CAN:
		r.logControl(trace.DirectionIn, b)
		r.fail(&CancelError{Remote: true}, "remote cancel")
	case frame.SOH, frame.STX:
		r.readBlock(b)
	default:
		r.logControl(trace.DirectionIn, b)
		r.drain()
		r.frameRetry("unrecognized byte")
	}
}

// readBlock reads the remainder of a data frame. The arriving marker
// determines how many bytes belong to the frame, so a frame of the
// wrong size is still consumed whole and then rejected by the
// decoder, keeping the byte stream in sync.
func (r *Receiver) readBlock(marker byte) {
	size := frame.Block128
	if marker == frame.STX {
		size = frame.Block1K
	}
	length := frame.Mode{Size: size, Kind: r.mode.Kind}.FrameLength()
	r.buf[0] = marker
	for i := 1; i < length; i++ {
		b, err := r.t.Receive(r.cfg.ReadTimeout)
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) {
				r.logError(trace.LayerTransport, err, "truncated frame", false)
				r.frameRetry("truncated frame")
				return
			}
			r.fail(fmt.Errorf("reading block %d: %w", r.expected, err), "transport failure")
			return
		}
		r.buf[i] = b
	}
	r.logFrame(trace.DirectionIn, marker, r.buf[1], r.buf[:length])

	blockNum, payload, err := frame.Decode(r.buf[:length], r.mode)
	if err != nil {
		r.logError(trace.LayerProtocol, err, "decoding frame", false)
		r.frameRetry("malformed frame")
		return
	}
	switch blockNum {
	case r.expected:
		r.deliver(blockNum, payload)
	case r.expected - 1:
		// The ACK for this block was lost and the sender repeated
		// it. Acknowledge again without delivering twice.
		if err := r.writeControl(frame.ACK); err != nil {
			r.fail(fmt.Errorf("writing ack: %w", err), "transport failure")
			return
		}
		r.retries = 0
	default:
		r.logError(trace.LayerProtocol,
			fmt.Errorf("%w: got %d, expected %d", ErrBlockOutOfSequence, blockNum, r.expected),
			"sequence check", false)
		r.frameRetry("block out of sequence")
	}
}

// deliver writes an accepted payload to the sink and acknowledges it.
// The sink sees the payload before the ACK goes out, so an
// acknowledged block is always a delivered block.
func (r *Receiver) deliver(blockNum byte, payload []byte) {
	n, err := r.sink.Write(payload)
	if err == nil && n != len(payload) {
		err = io.ErrShortWrite
	}
	if err != nil {
		r.fail(fmt.Errorf("delivering block %d: %w", blockNum, err), "sink failure")
		return
	}
	r.received += n
	if err := r.writeControl(frame.ACK); err != nil {
		r.fail(fmt.Errorf("writing ack: %w", err), "transport failure")
		return
	}
	r.expected++
	r.retries = 0
}

// frameRetry rejects the current frame with NAK, or cancels the
// session once the retry budget is spent.
func (r *Receiver) frameRetry(reason string) {
	r.retries++
	if r.retries > r.cfg.MaxRetries {
		r.writeCAN()
		r.fail(fmt.Errorf("%w: block %d after %d attempts", ErrMaxRetriesExceeded, r.expected, r.retries), reason)
		return
	}
	if err := r.writeControl(frame.NAK); err != nil {
		r.fail(fmt.Errorf("writing reject: %w", err), "transport failure")
	}
}

// drain discards bytes until the line goes quiet, so the response to
// a NAK is not misread against the tail of a frame we lost sync with.
func (r *Receiver) drain() {
	for i := 0; i < frame.MaxFrameLength; i++ {
		if _, err := r.t.Receive(r.cfg.ReadTimeout); err != nil {
			return
		}
	}
}

func (r *Receiver) writeControl(b byte) error {
	r.ctrl[0] = b
	if err := r.t.Send(r.ctrl[:]); err != nil {
		return err
	}
	r.logControl(trace.DirectionOut, b)
	return nil
}

// writeCAN is best-effort: a transport that already failed must not
// mask the error that got us here.
func (r *Receiver) writeCAN() {
	if err := r.writeControl(frame.CAN); err != nil {
		r.logError(trace.LayerTransport, err, "writing cancel", false)
	}
}

func (r *Receiver) fail(err error, reason string) {
	r.err = err
	r.logError(trace.LayerSession, err, reason, true)
	r.setState(ReceiverAborted, reason)
}

func (r *Receiver) setState(next ReceiverState, reason string) {
	old := ReceiverState(r.state.Swap(uint32(next)))
	if old != next {
		r.logStateChange(old.String(), next.String(), reason)
	}
}
