// Package protocol implements the link-layer frame format shared by the
// treasure-hunt server and client: marker, length/seq/type header,
// checksum, and sequence-number algebra. It has no notion of sockets or
// game state — see internal/transport and internal/game for those.
package protocol

// FrameType is the 4-bit type field of a frame header.
type FrameType byte

// Frame type taxonomy, fixed by the wire format — do not renumber.
const (
	TypeACK       FrameType = 0
	TypeNACK      FrameType = 1
	TypeOKAck     FrameType = 2
	TypeSize      FrameType = 4
	TypeData      FrameType = 5
	TypeText      FrameType = 6
	TypeVideo     FrameType = 7
	TypeImage     FrameType = 8
	TypeEndOfFile FrameType = 9
	TypeMoveRight FrameType = 10
	TypeMoveUp    FrameType = 11
	TypeMoveDown  FrameType = 12
	TypeMoveLeft  FrameType = 13
	TypeError     FrameType = 15
)

// ErrorCode is the 1-byte payload carried by NACK/ERROR frames.
type ErrorCode byte

const (
	ErrNoPermission      ErrorCode = 0
	ErrInsufficientSpace ErrorCode = 1
)

// IsMove reports whether t is one of the four movement request types.
func (t FrameType) IsMove() bool {
	switch t {
	case TypeMoveUp, TypeMoveDown, TypeMoveLeft, TypeMoveRight:
		return true
	}
	return false
}

func (t FrameType) String() string {
	switch t {
	case TypeACK:
		return "ACK"
	case TypeNACK:
		return "NACK"
	case TypeOKAck:
		return "OK_ACK"
	case TypeSize:
		return "SIZE"
	case TypeData:
		return "DATA"
	case TypeText:
		return "TEXT"
	case TypeVideo:
		return "VIDEO"
	case TypeImage:
		return "IMAGE"
	case TypeEndOfFile:
		return "END_OF_FILE"
	case TypeMoveRight:
		return "MOVE_RIGHT"
	case TypeMoveUp:
		return "MOVE_UP"
	case TypeMoveDown:
		return "MOVE_DOWN"
	case TypeMoveLeft:
		return "MOVE_LEFT"
	case TypeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// EtherType is the custom EtherType carried in the Ethernet header; frames
// with any other value are ignored by the transport layer.
const EtherType = 0x88B5

// Marker is the fixed first byte of every frame payload.
const Marker = 0x7E

// MaxPayload is the largest payload a single frame may carry (7-bit length).
const MaxPayload = 127

// HeaderSize is marker(1) + length(1) + seq(1) + type(1) + checksum(1).
const HeaderSize = 5
