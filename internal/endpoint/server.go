// Package endpoint wires reliability, game, and filetransfer together into
// the two roles that actually speak the wire protocol: Server and Client.
// It is where the "dual activity" coordination lives — a receive pump
// goroutine that never blocks, and foreground work (move processing,
// treasure hand-off) that may block on the network but never the pump.
package endpoint

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"time"

	"ethertreasure-go/internal/filetransfer"
	"ethertreasure-go/internal/game"
	"ethertreasure-go/internal/protocol"
	"ethertreasure-go/internal/reliability"
	"ethertreasure-go/internal/render"
	"ethertreasure-go/internal/transport"
	"ethertreasure-go/internal/xlog"
)

// redrawPollInterval matches the original main loop's 500ms usleep between
// checks of atualizacao_pendente.
const redrawPollInterval = 500 * time.Millisecond

// Server is the authoritative half of the protocol: it owns the game
// state, places treasures, accepts movement requests, and hands treasure
// files to the client. It serves exactly one client at a time, same as the
// original (a single mac_cliente global).
type Server struct {
	tr         transport.Transport
	state      *game.State
	objectsDir string
	redraw     RedrawFlag

	mu        sync.Mutex // serializes move-processing + any follow-on file send, like mutex_jogo
	engine    *reliability.Engine
	clientMAC net.HardwareAddr

	// haveLastMove/lastMoveSeq/lastMoveOK/lastMoveCode cache the outcome
	// of the most recently applied move, keyed by its wire sequence
	// number. A retransmitted move frame (the client's ACK/NACK was
	// lost, not the move itself) re-answers from this cache instead of
	// calling state.Move again, which would otherwise move the player
	// a second time for one client-side request.
	haveLastMove bool
	lastMoveSeq  byte
	lastMoveOK   bool
	lastMoveCode protocol.ErrorCode
}

// NewServer builds a Server bound to tr, serving treasures out of
// objectsDir, with its grid seeded by state.
func NewServer(tr transport.Transport, objectsDir string, state *game.State) *Server {
	return &Server{tr: tr, state: state, objectsDir: objectsDir}
}

// Run drives the receive pump until ctx is canceled. It never returns nil
// early; callers select on ctx.Done() themselves if they need to stop.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r, ok, err := s.tr.Recv()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		s.dispatch(r)
	}
}

func (s *Server) dispatch(r transport.Received) {
	if s.clientMAC == nil {
		s.clientMAC = r.Src
		s.engine = reliability.New(s.tr, s.clientMAC)
		xlog.Info("client connected: %s", r.Src)
	} else if r.Src.String() != s.clientMAC.String() {
		return // only one client served at a time, per the original
	}

	switch {
	case r.Frame.Type.IsMove():
		go s.handleMove(r.Frame)
	case r.Frame.Type == protocol.TypeACK, r.Frame.Type == protocol.TypeNACK:
		s.engine.OnACKOrNACK(r.Frame)
	}
}

// handleMove applies one movement request and, if it lands the player on
// an unclaimed treasure, sends that treasure's file. Both steps run under
// mu so a second move can't interleave with an in-flight file send — the
// same serialization mutex_jogo gave the original, just scoped to a
// goroutine instead of the packet-dispatch thread itself.
//
// A retransmitted move (the client's own ACK/NACK for this move was lost,
// so its reliability engine resent the identical frame) is answered from
// lastMove* without touching state.Move or re-sending a treasure a second
// time — otherwise the player would be moved twice for one request.
func (s *Server) handleMove(f protocol.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.haveLastMove && f.Seq == s.lastMoveSeq {
		_ = s.engine.Respond(f.Seq, s.lastMoveOK, s.lastMoveCode)
		return
	}

	_, err := s.state.Move(f.Type)
	if err != nil {
		s.haveLastMove, s.lastMoveSeq, s.lastMoveOK, s.lastMoveCode = true, f.Seq, false, protocol.ErrNoPermission
		_ = s.engine.Respond(f.Seq, false, protocol.ErrNoPermission)
		return
	}
	s.haveLastMove, s.lastMoveSeq, s.lastMoveOK, s.lastMoveCode = true, f.Seq, true, 0
	if err := s.engine.Respond(f.Seq, true, 0); err != nil {
		xlog.Error("ACK for move: %v", err)
		return
	}
	s.redraw.Mark()

	idx, found := s.state.CheckTreasure()
	if !found {
		return
	}
	s.sendTreasure(idx)
}

func (s *Server) sendTreasure(idx int) {
	tr, ok := s.state.Treasure(idx)
	if !ok {
		return
	}
	typ, ok := game.FileTypeOf(tr.FileName)
	if !ok {
		typ = protocol.TypeText
	}
	path := filepath.Join(s.objectsDir, tr.FileName)

	sender := filetransfer.NewSender(s.engine)
	if err := sender.SendFile(path, tr.FileName, typ); err != nil {
		xlog.Error("sending treasure %d (%s): %v", idx, tr.FileName, err)
		return
	}
	xlog.Success("treasure %d delivered: %s", idx, tr.FileName)
	s.redraw.Mark()
}

// RenderLoop redraws the server's grid view whenever a redraw is pending,
// until ctx is canceled. Run it in its own goroutine alongside Run.
func (s *Server) RenderLoop(ctx context.Context, print func(string)) {
	ticker := time.NewTicker(redrawPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.redraw.TakeIfPending() {
				print(render.Grid(s.state, "TREASURE HUNT SERVER", true))
			}
		}
	}
}
