package endpoint

import (
	"context"
	"net"
	"time"

	"ethertreasure-go/internal/filetransfer"
	"ethertreasure-go/internal/game"
	"ethertreasure-go/internal/protocol"
	"ethertreasure-go/internal/reliability"
	"ethertreasure-go/internal/render"
	"ethertreasure-go/internal/transport"
	"ethertreasure-go/internal/xlog"
)

// moveDeltas maps a movement frame type to its (dx, dy), applied to the
// client's local state only after the server ACKs the request.
var moveDeltas = map[protocol.FrameType][2]int{
	protocol.TypeMoveRight: {1, 0},
	protocol.TypeMoveLeft:  {-1, 0},
	protocol.TypeMoveUp:    {0, 1},
	protocol.TypeMoveDown:  {0, -1},
}

// Client is the treasure hunter's half of the protocol: it issues one
// movement at a time, blocking until the server's ACK or NACK resolves it
// — the Go-native stand-in for the original's mutex_movimento /
// cond_movimento pair, here just the channel inside reliability.Engine —
// and reacts to whatever file transfer the server initiates as a result.
type Client struct {
	tr       transport.Transport
	engine   *reliability.Engine
	state    *game.ClientState
	recvDir  string
	transfer *filetransfer.Receiver // non-nil only while a transfer is in progress
	redraw   RedrawFlag

	// haveLastDiscovery/lastDiscoverySeq guard RecordDiscovery against a
	// retransmitted END_OF_FILE (the server's ACK was lost, not the
	// frame), so a duplicate doesn't add the same treasure twice.
	haveLastDiscovery bool
	lastDiscoverySeq  byte
}

// NewClient builds a Client that talks to serverMAC over tr, writing
// received treasure files into recvDir.
func NewClient(tr transport.Transport, serverMAC net.HardwareAddr, recvDir string) *Client {
	return &Client{
		tr:      tr,
		engine:  reliability.New(tr, serverMAC),
		state:   game.NewClientState(),
		recvDir: recvDir,
	}
}

// Move sends one movement request and blocks until the server resolves it.
// On success the client's local position/visited state is updated; on
// NACK or give-up it is left unchanged and the error is returned.
func (c *Client) Move(dir protocol.FrameType) error {
	if _, err := c.engine.SendReliable(dir, nil); err != nil {
		return err
	}
	delta := moveDeltas[dir]
	c.state.Move(delta[0], delta[1])
	c.redraw.Mark()
	return nil
}

// State returns the client's local game view, for rendering.
func (c *Client) State() *game.ClientState {
	return c.state
}

// Run drives the receive pump — ACK/NACK routing for Move, and the
// file-transfer phases the server initiates — until ctx is canceled.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r, ok, err := c.tr.Recv()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		c.dispatch(r.Frame)
	}
}

// dispatch routes one inbound frame to its handler. Every transfer-phase
// frame carries its wire sequence number down to the Receiver so a
// retransmit of an already-applied frame (the server's ACK was lost, not
// the frame itself) is re-answered from the Receiver's cache instead of
// being re-applied — this is what keeps a lost DATA-frame ACK from
// double-appending that chunk on the server's retry.
func (c *Client) dispatch(f protocol.Frame) {
	switch f.Type {
	case protocol.TypeACK, protocol.TypeNACK:
		c.engine.OnACKOrNACK(f)
	case protocol.TypeSize:
		c.transfer = filetransfer.NewReceiver(c.recvDir)
		ok, code := c.transfer.HandleSize(f.Seq, f.Payload)
		_ = c.engine.Respond(f.Seq, ok, code)
		if !ok {
			c.transfer = nil
		}
	case protocol.TypeText, protocol.TypeVideo, protocol.TypeImage:
		if c.transfer == nil {
			return
		}
		ok := c.transfer.HandleName(f.Seq, f.Payload)
		_ = c.engine.Respond(f.Seq, ok, protocol.ErrNoPermission)
		if !ok {
			c.transfer = nil
		}
	case protocol.TypeData:
		if c.transfer == nil {
			return
		}
		ok := c.transfer.HandleData(f.Seq, f.Payload)
		_ = c.engine.Respond(f.Seq, ok, protocol.ErrNoPermission)
		if !ok {
			c.transfer = nil
		}
	case protocol.TypeEndOfFile:
		if c.transfer == nil {
			return
		}
		path, ok := c.transfer.HandleEndOfFile(f.Seq)
		_ = c.engine.Respond(f.Seq, ok, 0)
		if !ok {
			c.transfer = nil
			return
		}
		// Keep transfer (now in its terminal phase) alive rather than
		// nilling it: a retransmitted END_OF_FILE caused by a lost final
		// ACK must still be answerable from the Receiver's own duplicate
		// cache above, and the next TypeSize unconditionally replaces
		// this Receiver with a fresh one anyway. Guard RecordDiscovery
		// itself against that same retransmit by seq, since the Receiver
		// cache only governs the ACK/NACK reply, not this side effect.
		if !c.haveLastDiscovery || c.lastDiscoverySeq != f.Seq {
			c.haveLastDiscovery = true
			c.lastDiscoverySeq = f.Seq
			c.state.RecordDiscovery(path)
			c.redraw.Mark()
			xlog.Success("received treasure file: %s", path)
		}
	}
}

// RenderLoop redraws the client's grid view whenever a redraw is pending,
// until ctx is canceled. Run it in its own goroutine alongside Run.
func (c *Client) RenderLoop(ctx context.Context, print func(string)) {
	ticker := time.NewTicker(redrawPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.redraw.TakeIfPending() {
				print(render.ClientGrid(c.state, "TREASURE HUNT CLIENT"))
			}
		}
	}
}
