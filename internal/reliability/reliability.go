// Package reliability implements the stop-and-wait delivery engine shared by
// both ends of the protocol: at most one frame outstanding at a time, a
// 500ms retransmission timeout, and a five-retry give-up ceiling, per
// spec §4.3.
package reliability

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"ethertreasure-go/internal/protocol"
	"ethertreasure-go/internal/transport"
)

// Timeout and MaxRetries are the fixed stop-and-wait parameters; the
// protocol defines no negotiation for either.
const (
	Timeout    = 500 * time.Millisecond
	MaxRetries = 5
)

// ErrGiveUp is returned when a frame goes unacknowledged after MaxRetries
// send attempts (the first send plus MaxRetries-1 retransmissions) — spec
// §4.3's "link considered dead" condition.
var ErrGiveUp = errors.New("reliability: peer unresponsive after max retries")

// ErrNacked is returned when the peer explicitly rejects a frame. Code
// carries the NACK payload's single error byte, if present.
type ErrNacked struct {
	Code protocol.ErrorCode
}

func (e *ErrNacked) Error() string {
	return fmt.Sprintf("reliability: peer sent NACK (code %d)", e.Code)
}

// Engine drives one side of the stop-and-wait exchange over a Transport. A
// single Engine is not safe for concurrent Send calls — spec §4.3 allows
// only one outstanding frame per endpoint, so callers serialize sends the
// same way the original serializes them behind mutex_jogo /
// mutex_movimento.
type Engine struct {
	tr   transport.Transport
	peer net.HardwareAddr
	seq  protocol.SeqCounter

	mu      sync.Mutex
	waiting bool
	wantSeq byte
	result  chan ackResult
}

type ackResult struct {
	ok   bool // true = ACK, false = NACK
	code protocol.ErrorCode
}

// New builds an Engine that sends to peer over tr.
func New(tr transport.Transport, peer net.HardwareAddr) *Engine {
	return &Engine{tr: tr, peer: peer}
}

// SendReliable sends one frame and blocks until it is ACKed, NACKed, or the
// retry budget is exhausted. It returns the sequence number the frame was
// sent with (for callers that need to correlate a later ACK-carried
// side-effect, e.g. movement application) and ErrNacked/ErrGiveUp on
// failure. An ACK or a NACK completes the exchange and advances the
// sequence counter; a NACK is never retransmitted. A give-up leaves the
// counter where it was.
func (e *Engine) SendReliable(typ protocol.FrameType, payload []byte) (seq byte, err error) {
	e.mu.Lock()
	seq = e.seq.Current()
	e.waiting = true
	e.wantSeq = seq
	e.result = make(chan ackResult, 1)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.waiting = false
		e.mu.Unlock()
	}()

	for attempt := 0; attempt < MaxRetries; attempt++ {
		if sendErr := e.tr.Send(e.peer, typ, seq, payload); sendErr != nil {
			return seq, sendErr
		}

		select {
		case res := <-e.result:
			e.seq.Advance()
			if res.ok {
				return seq, nil
			}
			return seq, &ErrNacked{Code: res.code}
		case <-time.After(Timeout):
			continue
		}
	}
	return seq, ErrGiveUp
}

// OnACKOrNACK must be called by the receive pump for every inbound ACK or
// NACK frame. It wakes a blocked SendReliable if the frame's sequence
// number matches the one currently outstanding; otherwise it is a stray
// (duplicate or stale) ACK/NACK and is dropped, per spec §4.3's duplicate
// handling.
func (e *Engine) OnACKOrNACK(f protocol.Frame) {
	e.mu.Lock()
	if !e.waiting || f.Seq != e.wantSeq {
		e.mu.Unlock()
		return
	}
	ch := e.result
	e.waiting = false
	e.mu.Unlock()

	var code protocol.ErrorCode
	if len(f.Payload) > 0 {
		code = protocol.ErrorCode(f.Payload[0])
	}
	select {
	case ch <- ackResult{ok: f.Type == protocol.TypeACK, code: code}:
	default:
	}
}

// Respond sends an ACK (ok=true) or NACK (ok=false, with code) for the
// given received sequence number — the receiver's half of stop-and-wait.
func (e *Engine) Respond(seq byte, ok bool, code protocol.ErrorCode) error {
	typ := protocol.TypeACK
	var payload []byte
	if !ok {
		typ = protocol.TypeNACK
		payload = []byte{byte(code)}
	}
	return e.tr.Send(e.peer, typ, seq, payload)
}
