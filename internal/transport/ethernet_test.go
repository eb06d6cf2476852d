package transport

import "testing"

func TestHtonsKnownValues(t *testing.T) {
	// 0x88B5 on the wire is swapped to 0xB588 in a little-endian uint16.
	if got := htons(0x88B5); got != 0xB588 {
		t.Errorf("htons(0x88B5) = 0x%04X, want 0xB588", got)
	}
	if got := htons(0x0000); got != 0x0000 {
		t.Errorf("htons(0x0000) = 0x%04X, want 0x0000", got)
	}
}

// Opening a real AF_PACKET socket requires root and a live interface, so
// Ethernet's Open/Send/Recv have no test here. The integration tests under
// internal/endpoint run the protocol over the in-memory Fake transport
// (transport.go in this package) instead.
