// Package filetransfer implements the four-phase treasure payload handoff:
// SIZE, then TEXT/VIDEO/IMAGE (the filename), then one or more DATA chunks,
// then END_OF_FILE — each phase individually acknowledged over a
// stop-and-wait reliability.Engine, per spec §4.6.
package filetransfer

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"ethertreasure-go/internal/protocol"
	"ethertreasure-go/internal/reliability"
)

// Sender drives the server-side half of a file transfer over one
// reliability.Engine. A Sender is single-use: call SendFile once per
// treasure handoff.
type Sender struct {
	engine *reliability.Engine
}

// NewSender builds a Sender that transmits over engine.
func NewSender(engine *reliability.Engine) *Sender {
	return &Sender{engine: engine}
}

// SendFile transmits the file at path as nameTyp (one of TypeText,
// TypeVideo, TypeImage) using name as the announced filename. It blocks
// until all phases are ACKed or one of them fails — a NACK, a give-up, or
// a local I/O error — in which case it returns that error immediately
// without sending later phases.
func (s *Sender) SendFile(path, name string, nameTyp protocol.FrameType) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("filetransfer: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("filetransfer: stat %s: %w", path, err)
	}

	sizePayload := make([]byte, 8)
	binary.LittleEndian.PutUint64(sizePayload, uint64(info.Size()))
	if _, err := s.engine.SendReliable(protocol.TypeSize, sizePayload); err != nil {
		return fmt.Errorf("filetransfer: SIZE phase: %w", err)
	}

	namePayload := append([]byte(name), 0) // NUL-terminated, matching the C wire format
	if _, err := s.engine.SendReliable(nameTyp, namePayload); err != nil {
		return fmt.Errorf("filetransfer: name phase: %w", err)
	}

	chunk := make([]byte, protocol.MaxPayload)
	for {
		n, readErr := f.Read(chunk)
		if n > 0 {
			if _, err := s.engine.SendReliable(protocol.TypeData, chunk[:n]); err != nil {
				return fmt.Errorf("filetransfer: DATA phase: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("filetransfer: read %s: %w", path, readErr)
		}
	}

	if _, err := s.engine.SendReliable(protocol.TypeEndOfFile, nil); err != nil {
		return fmt.Errorf("filetransfer: END_OF_FILE phase: %w", err)
	}
	return nil
}
