package reliability

import (
	"errors"
	"net"
	"testing"
	"time"

	"ethertreasure-go/internal/protocol"
	"ethertreasure-go/internal/transport"
)

// pump drains fake's inbox and feeds ACK/NACK frames to engine; anything
// else is handed to onData, mirroring how internal/endpoint's receive pump
// dispatches by frame type.
func pump(t *testing.T, stop <-chan struct{}, fake *transport.Fake, engine *Engine, onData func(protocol.Frame)) {
	t.Helper()
	for {
		select {
		case <-stop:
			return
		default:
		}
		r, ok, err := fake.Recv()
		if err != nil {
			t.Errorf("Recv: %v", err)
			return
		}
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		if r.Frame.Type == protocol.TypeACK || r.Frame.Type == protocol.TypeNACK {
			engine.OnACKOrNACK(r.Frame)
		} else if onData != nil {
			onData(r.Frame)
		}
	}
}

func TestSendReliableSucceedsOnFirstACK(t *testing.T) {
	a := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 1})
	b := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 2})
	transport.Pipe(a, b)

	clientEngine := New(a, b.LocalMAC())
	serverEngine := New(b, a.LocalMAC())

	stop := make(chan struct{})
	defer close(stop)
	go pump(t, stop, a, clientEngine, nil)
	go pump(t, stop, b, serverEngine, func(f protocol.Frame) {
		_ = serverEngine.Respond(f.Seq, true, 0)
	})

	seq, err := clientEngine.SendReliable(protocol.TypeMoveUp, nil)
	if err != nil {
		t.Fatalf("SendReliable: %v", err)
	}
	if seq != 0 {
		t.Errorf("first send should use seq 0, got %d", seq)
	}
}

func TestSendReliableRetriesThenGivesUp(t *testing.T) {
	a := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 1})
	b := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 2})
	transport.Pipe(a, b)
	// No responder on b: every send vanishes into an unread inbox, so the
	// client must make MaxRetries attempts and then give up.

	engine := New(a, b.LocalMAC())
	start := time.Now()
	_, err := engine.SendReliable(protocol.TypeMoveUp, nil)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrGiveUp) {
		t.Fatalf("expected ErrGiveUp, got %v", err)
	}
	if elapsed < MaxRetries*Timeout {
		t.Errorf("gave up too early: elapsed %v, want at least %v", elapsed, MaxRetries*Timeout)
	}
}

func TestSendReliableSurvivesLostFramesThenSucceeds(t *testing.T) {
	a := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 1})
	b := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 2})
	transport.Pipe(a, b)
	a.LoseNext(2) // first two attempts vanish; the third must get through

	clientEngine := New(a, b.LocalMAC())
	serverEngine := New(b, a.LocalMAC())

	stop := make(chan struct{})
	defer close(stop)
	go pump(t, stop, a, clientEngine, nil)
	go pump(t, stop, b, serverEngine, func(f protocol.Frame) {
		_ = serverEngine.Respond(f.Seq, true, 0)
	})

	if _, err := clientEngine.SendReliable(protocol.TypeMoveUp, nil); err != nil {
		t.Fatalf("SendReliable: %v", err)
	}
}

func TestSendReliablePropagatesNACK(t *testing.T) {
	a := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 1})
	b := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 2})
	transport.Pipe(a, b)

	clientEngine := New(a, b.LocalMAC())
	serverEngine := New(b, a.LocalMAC())

	stop := make(chan struct{})
	defer close(stop)
	go pump(t, stop, a, clientEngine, nil)
	go pump(t, stop, b, serverEngine, func(f protocol.Frame) {
		_ = serverEngine.Respond(f.Seq, false, protocol.ErrNoPermission)
	})

	_, err := clientEngine.SendReliable(protocol.TypeMoveUp, nil)
	var nacked *ErrNacked
	if !errors.As(err, &nacked) {
		t.Fatalf("expected *ErrNacked, got %v", err)
	}
	if nacked.Code != protocol.ErrNoPermission {
		t.Errorf("NACK code = %d, want %d", nacked.Code, protocol.ErrNoPermission)
	}
}

func TestOnACKOrNACKIgnoresStaleSequence(t *testing.T) {
	a := transport.NewFake(net.HardwareAddr{0, 0, 0, 0, 0, 1})
	engine := New(a, net.HardwareAddr{0, 0, 0, 0, 0, 2})

	// No SendReliable in flight, so engine.waiting is false; a stray ACK
	// must be dropped without panicking or blocking.
	engine.OnACKOrNACK(protocol.Frame{Type: protocol.TypeACK, Seq: 3})
}
