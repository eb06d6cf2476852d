package protocol

// SeqModulus is the size of the sequence-number ring, ℤ/32ℤ.
const SeqModulus = 32

// NextSeq advances a sender's sequence counter modulo 32.
func NextSeq(seq byte) byte {
	return (seq + 1) % SeqModulus
}

// SeqCounter is the sender-side "next_seq_out" counter from spec §4.3: a
// single 5-bit value that advances by one on every completed (ACKed or
// NACKed) send and wraps back to its starting value every 32 completed
// exchanges.
type SeqCounter struct {
	next byte
}

// Current returns the sequence number the next frame will be sent with.
func (c *SeqCounter) Current() byte {
	return c.next % SeqModulus
}

// Advance moves the counter forward by one, wrapping modulo 32.
func (c *SeqCounter) Advance() {
	c.next = NextSeq(c.next)
}
