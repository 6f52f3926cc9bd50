package xmodem

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/xmodem-protocol/xmodem-go/pkg/frame"
	"github.com/xmodem-protocol/xmodem-go/pkg/trace"
	"github.com/xmodem-protocol/xmodem-go/pkg/transport"
)

// Sender drives the transmitting side of a transfer. It waits for the
// receiver's mode request, streams the payload in numbered blocks,
// resends on rejection and finishes with an EOT exchange.
//
// A Sender runs one transfer and is not reusable. Run must be called
// exactly once; State and Cancel may be called from other goroutines.
type Sender struct {
	session

	t    transport.ByteTransport
	cfg  Config
	data []byte

	mode     frame.Mode
	blockNum byte
	offset   int
	retries  int
	err      error

	state     atomic.Uint32
	cancelled atomic.Bool

	ctrl [1]byte
	buf  [frame.MaxFrameLength]byte
}

// NewSender creates a sender for data with the default configuration.
func NewSender(t transport.ByteTransport, data []byte) *Sender {
	cfg := DefaultConfig()
	cfg.SessionID = uuid.NewString()
	return newSender(t, data, cfg)
}

// NewSenderWithConfig creates a sender for data with a custom
// configuration. Zero-valued fields of cfg take their defaults.
func NewSenderWithConfig(t transport.ByteTransport, data []byte, cfg Config) (*Sender, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	return newSender(t, data, cfg), nil
}

func newSender(t transport.ByteTransport, data []byte, cfg Config) *Sender {
	return &Sender{
		session: session{
			logger:    cfg.Logger,
			sessionID: cfg.SessionID,
			role:      trace.RoleSender,
			endpoint:  cfg.Endpoint,
		},
		t:        t,
		cfg:      cfg,
		data:     data,
		blockNum: 1,
	}
}

// Send transmits data over t with the default configuration and
// returns the number of payload bytes sent.
func Send(t transport.ByteTransport, data []byte) (int, error) {
	return NewSender(t, data).Run()
}

// SendWithConfig transmits data over t with a custom configuration.
func SendWithConfig(t transport.ByteTransport, data []byte, cfg Config) (int, error) {
	s, err := NewSenderWithConfig(t, data, cfg)
	if err != nil {
		return 0, err
	}
	return s.Run()
}

// State returns the sender's current state.
func (s *Sender) State() SenderState {
	return SenderState(s.state.Load())
}

// Cancel requests that the transfer stop. The sender writes a CAN
// byte and aborts at its next step. Safe to call from any goroutine.
func (s *Sender) Cancel() {
	s.cancelled.Store(true)
}

// Run executes the transfer and blocks until it reaches a terminal
// state. On success it returns the number of payload bytes sent, not
// counting filler padding. On failure it returns the terminal error.
func (s *Sender) Run() (int, error) {
	for {
		if s.cancelled.Load() && !s.State().Terminal() {
			s.writeCAN()
			s.fail(&CancelError{Remote: false}, "cancelled locally")
		}
		switch s.State() {
		case SenderAwaitModeRequest:
			s.awaitModeRequest()
		case SenderSendingBlock:
			s.sendBlock()
		case SenderAwaitAck:
			s.awaitAck()
		case SenderSendEOT:
			s.sendEOT()
		case SenderAwaitEOTAck:
			s.awaitEOTAck()
		case SenderDone:
			return len(s.data), nil
		case SenderAborted:
			return 0, s.err
		}
	}
}

// awaitModeRequest reads the receiver's opening byte. 'C' selects CRC
// mode, NAK selects the classic checksum. Unrecognized bytes are
// skipped but charged against the same attempt budget as timeouts.
func (s *Sender) awaitModeRequest() {
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		b, err := s.t.Receive(s.cfg.ReadTimeout)
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) {
				s.logError(trace.LayerTransport, err, "awaiting mode request", false)
				continue
			}
			s.fail(fmt.Errorf("reading mode request: %w", err), "transport failure")
			return
		}
		s.logControl(trace.DirectionIn, b)
		switch b {
		case frame.CRCRequest:
			s.mode = frame.Mode{Size: s.cfg.BlockSize, Kind: frame.ChecksumCRC16}
		case frame.NAK:
			s.mode = frame.Mode{Size: s.cfg.BlockSize, Kind: frame.ChecksumClassic}
		case frame.CAN:
			s.fail(&CancelError{Remote: true}, "remote cancel")
			return
		default:
			continue
		}
		if len(s.data) == 0 {
			s.setState(SenderSendEOT, "mode negotiated, nothing to send")
		} else {
			s.setState(SenderSendingBlock, "mode negotiated")
		}
		return
	}
	s.fail(fmt.Errorf("%w: no mode request received", ErrTimeout), "handshake timeout")
}

func (s *Sender) sendBlock() {
	end := s.offset + int(s.mode.Size)
	if end > len(s.data) {
		end = len(s.data)
	}
	n, err := frame.Encode(&s.buf, s.blockNum, s.data[s.offset:end], s.mode)
	if err != nil {
		s.fail(fmt.Errorf("encoding block %d: %w", s.blockNum, err), "encode failure")
		return
	}
	if err := s.t.Send(s.buf[:n]); err != nil {
		s.fail(fmt.Errorf("writing block %d: %w", s.blockNum, err), "transport failure")
		return
	}
	s.logFrame(trace.DirectionOut, s.mode.Marker(), s.blockNum, s.buf[:n])
	s.setState(SenderAwaitAck, "block sent")
}

func (s *Sender) awaitAck() {
	b, err := s.t.Receive(s.cfg.ReadTimeout)
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) {
			s.logError(trace.LayerTransport, err, "awaiting ack", false)
			s.retryBlock("ack timeout")
			return
		}
		s.fail(fmt.Errorf("reading ack: %w", err), "transport failure")
		return
	}
	s.logControl(trace.DirectionIn, b)
	switch b {
	case frame.ACK:
		s.advance()
	case frame.NAK:
		s.retryBlock("block rejected")
	case frame.CAN:
		s.fail(&CancelError{Remote: true}, "remote cancel")
	default:
		s.retryBlock("unexpected response")
	}
}

// advance moves past the block the receiver just acknowledged. The
// block number wraps through zero after 255.
func (s *Sender) advance() {
	end := s.offset + int(s.mode.Size)
	if end > len(s.data) {
		end = len(s.data)
	}
	s.offset = end
	s.retries = 0
	if s.offset >= len(s.data) {
		s.setState(SenderSendEOT, "all blocks acknowledged")
		return
	}
	s.blockNum++
	s.setState(SenderSendingBlock, "block acknowledged")
}

func (s *Sender) sendEOT() {
	if err := s.writeControl(frame.EOT); err != nil {
		s.fail(fmt.Errorf("writing EOT: %w", err), "transport failure")
		return
	}
	s.setState(SenderAwaitEOTAck, "EOT sent")
}

func (s *Sender) awaitEOTAck() {
	b, err := s.t.Receive(s.cfg.ReadTimeout)
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) {
			s.logError(trace.LayerTransport, err, "awaiting EOT ack", false)
			s.retryEOT("EOT ack timeout")
			return
		}
		s.fail(fmt.Errorf("reading EOT ack: %w", err), "transport failure")
		return
	}
	s.logControl(trace.DirectionIn, b)
	switch b {
	case frame.ACK:
		s.setState(SenderDone, "EOT acknowledged")
	case frame.CAN:
		s.fail(&CancelError{Remote: true}, "remote cancel")
	default:
		s.retryEOT("EOT rejected")
	}
}

// retryBlock resends the current block, or cancels the session once
// the retry budget is spent.
func (s *Sender) retryBlock(reason string) {
	s.retries++
	if s.retries > s.cfg.MaxRetries {
		s.writeCAN()
		s.fail(fmt.Errorf("%w: block %d after %d attempts", ErrMaxRetriesExceeded, s.blockNum, s.retries), reason)
		return
	}
	s.setState(SenderSendingBlock, reason)
}

func (s *Sender) retryEOT(reason string) {
	s.retries++
	if s.retries > s.cfg.MaxRetries {
		s.writeCAN()
		s.fail(fmt.Errorf("%w: end of transmission after %d attempts", ErrMaxRetriesExceeded, s.retries), reason)
		return
	}
	s.setState(SenderSendEOT, reason)
}

func (s *Sender) writeControl(b byte) error {
	s.ctrl[0] = b
	if err := s.t.Send(s.ctrl[:]); err != nil {
		return err
	}
	s.logControl(trace.DirectionOut, b)
	return nil
}

// writeCAN is best-effort: a transport that already failed must not
// mask the error that got us here.
func (s *Sender) writeCAN() {
	if err := s.writeControl(frame.CAN); err != nil {
		s.logError(trace.LayerTransport, err, "writing cancel", false)
	}
}

func (s *Sender) fail(err error, reason string) {
	s.err = err
	s.logError(trace.LayerSession, err, reason, true)
	s.setState(SenderAborted, reason)
}

func (s *Sender) setState(next SenderState, reason string) {
	old := SenderState(s.state.Swap(uint32(next)))
	if old != next {
		s.logStateChange(old.String(), next.String(), reason)
	}
}
