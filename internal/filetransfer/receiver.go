package filetransfer

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	"ethertreasure-go/internal/protocol"
)

// phase tracks where a Receiver is in the four-phase handoff, rejecting
// any frame that arrives out of order.
type phase int

const (
	phaseAwaitingSize phase = iota
	phaseAwaitingName
	phaseAwaitingData
	phaseDone
)

// Receiver drives the client-side half of a file transfer: it reacts to
// inbound SIZE/TEXT.../DATA/END_OF_FILE frames one at a time and reports
// whether each should be ACKed or NACKed, mirroring
// iniciar_recebimento_arquivo / finalizar_recebimento_arquivo.
//
// Every Handle* method is keyed by the frame's sequence number so a
// retransmit of an already-applied frame (the sender's ACK was lost, not
// the frame itself) re-answers from the cached result instead of
// re-running the side effect — without this, a duplicate DATA frame would
// double-append its chunk to the destination file.
type Receiver struct {
	destDir string
	phase   phase
	size    uint64
	name    string
	path    string
	file    *os.File

	haveLast bool
	lastSeq  byte
	lastOK   bool
	lastCode protocol.ErrorCode
	lastPath string
}

// NewReceiver builds a Receiver that writes completed files under destDir.
func NewReceiver(destDir string) *Receiver {
	return &Receiver{destDir: destDir, phase: phaseAwaitingSize}
}

// duplicate reports whether seq is a repeat of the last frame this
// Receiver actually applied.
func (r *Receiver) duplicate(seq byte) bool {
	return r.haveLast && seq == r.lastSeq
}

func (r *Receiver) remember(seq byte, ok bool, code protocol.ErrorCode, path string) {
	r.haveLast = true
	r.lastSeq = seq
	r.lastOK = ok
	r.lastCode = code
	r.lastPath = path
}

// HandleSize processes a SIZE frame's 8-byte little-endian payload,
// checking destDir's free space (×1.1 margin) before admitting the
// transfer. ok=false means NACK with the returned code: ErrInsufficientSpace
// when free space is short (or cannot be read), ErrNoPermission for a SIZE
// frame outside the SIZE phase or shorter than 8 bytes.
func (r *Receiver) HandleSize(seq byte, payload []byte) (ok bool, code protocol.ErrorCode) {
	if r.duplicate(seq) {
		return r.lastOK, r.lastCode
	}
	ok, code = r.applySize(payload)
	r.remember(seq, ok, code, "")
	return ok, code
}

func (r *Receiver) applySize(payload []byte) (ok bool, code protocol.ErrorCode) {
	if r.phase != phaseAwaitingSize || len(payload) < 8 {
		return false, protocol.ErrNoPermission
	}
	size := binary.LittleEndian.Uint64(payload)

	enough, err := HasSpace(r.destDir, size)
	if err != nil || !enough {
		return false, protocol.ErrInsufficientSpace
	}

	r.size = size
	r.phase = phaseAwaitingName
	return true, 0
}

// HandleName processes a TEXT/VIDEO/IMAGE frame carrying a NUL-terminated
// filename, creating the destination file for writing.
func (r *Receiver) HandleName(seq byte, payload []byte) (ok bool) {
	if r.duplicate(seq) {
		return r.lastOK
	}
	ok = r.applyName(payload)
	r.remember(seq, ok, protocol.ErrNoPermission, "")
	return ok
}

func (r *Receiver) applyName(payload []byte) (ok bool) {
	if r.phase != phaseAwaitingName {
		return false
	}
	name := string(bytes.TrimRight(payload, "\x00"))
	if name == "" {
		return false
	}

	if err := os.MkdirAll(r.destDir, 0o777); err != nil {
		return false
	}
	path := filepath.Join(r.destDir, name)
	f, err := os.Create(path)
	if err != nil {
		return false
	}

	r.name = name
	r.path = path
	r.file = f
	r.phase = phaseAwaitingData
	return true
}

// HandleData writes one DATA chunk to the open file.
func (r *Receiver) HandleData(seq byte, payload []byte) (ok bool) {
	if r.duplicate(seq) {
		return r.lastOK
	}
	ok = r.applyData(payload)
	r.remember(seq, ok, protocol.ErrNoPermission, "")
	return ok
}

func (r *Receiver) applyData(payload []byte) (ok bool) {
	if r.phase != phaseAwaitingData || r.file == nil {
		return false
	}
	n, err := r.file.Write(payload)
	if err != nil || n != len(payload) {
		r.abort()
		return false
	}
	return true
}

// HandleEndOfFile closes and finalizes the transfer, returning the
// completed file's path. A retransmitted END_OF_FILE (the sender's final
// ACK was lost) answers from the cached path instead of closing an
// already-closed file a second time.
func (r *Receiver) HandleEndOfFile(seq byte) (path string, ok bool) {
	if r.duplicate(seq) {
		return r.lastPath, r.lastOK
	}
	path, ok = r.applyEndOfFile()
	r.remember(seq, ok, protocol.ErrNoPermission, path)
	return path, ok
}

func (r *Receiver) applyEndOfFile() (path string, ok bool) {
	if r.phase != phaseAwaitingData || r.file == nil {
		return "", false
	}
	r.file.Close()
	r.file = nil
	r.phase = phaseDone
	return r.path, true
}

// abort closes and removes a partially-written file, matching
// finalizar_recebimento_arquivo(false)'s cleanup-on-failure.
func (r *Receiver) abort() {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
	if r.path != "" {
		os.Remove(r.path)
	}
	r.phase = phaseDone
}
