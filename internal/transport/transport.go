package transport

import (
	"net"
	"sync"

	"ethertreasure-go/internal/protocol"
)

// Transport is the narrow surface internal/reliability and internal/endpoint
// depend on, satisfied by *Ethernet in production and by *Fake in tests.
type Transport interface {
	Send(dst net.HardwareAddr, typ protocol.FrameType, seq byte, payload []byte) error
	Recv() (Received, bool, error)
	LocalMAC() net.HardwareAddr
	Close() error
}

var (
	_ Transport = (*Ethernet)(nil)
	_ Transport = (*Fake)(nil)
)

// Fake is an in-memory Transport used by tests that would otherwise need a
// real interface and root privileges. Two Fakes wired together with Pipe
// behave like a lossless point-to-point Ethernet segment; LoseNext and
// CorruptNext let tests exercise the retry and checksum-rejection paths.
type Fake struct {
	mu       sync.Mutex
	mac      net.HardwareAddr
	peer     *Fake
	inbox    chan Received
	loseNext int
	corrupt  bool
}

// NewFake creates an unconnected Fake transport with the given MAC.
func NewFake(mac net.HardwareAddr) *Fake {
	return &Fake{mac: mac, inbox: make(chan Received, 64)}
}

// Pipe connects a and b so frames sent on one arrive on the other.
func Pipe(a, b *Fake) {
	a.peer = b
	b.peer = a
}

// LoseNext causes the next n sends from this transport to vanish silently,
// simulating the packet loss scenario1 in spec §8's testable properties.
func (f *Fake) LoseNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loseNext = n
}

// CorruptNext causes the next send to arrive with a flipped checksum byte,
// so the receiver's Decode rejects it exactly as it would a wire-corrupted
// frame.
func (f *Fake) CorruptNext() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrupt = true
}

func (f *Fake) LocalMAC() net.HardwareAddr { return f.mac }

func (f *Fake) Send(dst net.HardwareAddr, typ protocol.FrameType, seq byte, payload []byte) error {
	f.mu.Lock()
	if f.loseNext > 0 {
		f.loseNext--
		f.mu.Unlock()
		return nil
	}
	corrupt := f.corrupt
	f.corrupt = false
	peer := f.peer
	f.mu.Unlock()

	if peer == nil {
		return nil
	}

	encoded, err := protocol.Encode(protocol.Frame{Type: typ, Seq: seq, Payload: payload})
	if err != nil {
		return err
	}
	if corrupt {
		encoded[4] ^= 0xFF
	}
	frame, ok := protocol.Decode(encoded)
	if !ok {
		return nil
	}
	peer.inbox <- Received{Frame: frame, Src: f.mac}
	return nil
}

func (f *Fake) Recv() (Received, bool, error) {
	select {
	case r := <-f.inbox:
		return r, true, nil
	default:
		return Received{}, false, nil
	}
}

func (f *Fake) Close() error { return nil }
