// Package transport implements the raw L2 Ethernet transport: opening and
// binding a promiscuous AF_PACKET socket to a named interface, and
// sending/receiving this module's custom-EtherType frames over it.
//
// The wire format above the Ethernet header is internal/protocol's; this
// package only knows how to get bytes in and out of the interface and how
// to tell our EtherType apart from everything else flowing over the wire.
package transport

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/sys/unix"

	"ethertreasure-go/internal/protocol"
)

// pollInterval bounds how long a single Recv call blocks before returning
// a would-block result, matching the ~10ms receive-pump tick in spec §5.
const pollInterval = 10 * time.Millisecond

// maxFrameSize is generous enough for a full Ethernet frame (header +
// protocol header + MaxPayload), matching TAM_MAX_PACOTE in the original.
const maxFrameSize = 1500

// Ethernet is a raw L2 transport bound to one network interface.
type Ethernet struct {
	fd      int
	ifIndex int
	srcMAC  net.HardwareAddr
}

// htons converts a host-order uint16 to network byte order, the same
// conversion the kernel expects for the protocol field of sockaddr_ll.
func htons(v uint16) uint16 {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return binary.LittleEndian.Uint16(b)
}

// Open creates a promiscuous AF_PACKET/SOCK_RAW socket bound to ifaceName,
// filtering nothing at the kernel level (EtherType + marker filtering
// happens in software, per spec §4.2). Returns a fatal error if the
// interface cannot be resolved or the socket cannot be opened/bound —
// callers should treat this as the "Fatal" error class from spec §7.
func Open(ifaceName string) (*Ethernet, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("transport: interface %q not found: %w", ifaceName, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("transport: open raw socket (are you root?): %w", err)
	}

	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: bind to %q: %w", ifaceName, err)
	}

	mreq := unix.PacketMreq{
		Ifindex: int32(iface.Index),
		Type:    unix.PACKET_MR_PROMISC,
	}
	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, &mreq); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: enable promiscuous mode on %q: %w", ifaceName, err)
	}

	timeout := unix.NsecToTimeval(pollInterval.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &timeout); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: set receive timeout: %w", err)
	}

	return &Ethernet{fd: fd, ifIndex: iface.Index, srcMAC: iface.HardwareAddr}, nil
}

// Close releases the underlying socket.
func (e *Ethernet) Close() error {
	return unix.Close(e.fd)
}

// LocalMAC returns the hardware address of the bound interface.
func (e *Ethernet) LocalMAC() net.HardwareAddr {
	return e.srcMAC
}

// Send encodes (typ, seq, payload) as a protocol frame, wraps it in an
// Ethernet header addressed to dst with this module's custom EtherType,
// and writes it to the wire.
func (e *Ethernet) Send(dst net.HardwareAddr, typ protocol.FrameType, seq byte, payload []byte) error {
	body, err := protocol.Encode(protocol.Frame{Type: typ, Seq: seq, Payload: payload})
	if err != nil {
		return err
	}

	eth := &layers.Ethernet{
		SrcMAC:       e.srcMAC,
		DstMAC:       dst,
		EthernetType: layers.EthernetType(protocol.EtherType),
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: false, ComputeChecksums: false}
	if err := gopacket.SerializeLayers(buf, opts, eth, gopacket.Payload(body)); err != nil {
		return fmt.Errorf("transport: serialize ethernet frame: %w", err)
	}

	addr := unix.SockaddrLinklayer{
		Protocol: htons(protocol.EtherType),
		Ifindex:  e.ifIndex,
		Halen:    6,
	}
	copy(addr.Addr[:6], dst)

	if err := unix.Sendto(e.fd, buf.Bytes(), 0, &addr); err != nil {
		return fmt.Errorf("transport: sendto: %w", err)
	}
	return nil
}

// Received is one inbound, already-validated protocol frame plus the
// source MAC it arrived from.
type Received struct {
	Frame protocol.Frame
	Src   net.HardwareAddr
}

// Recv blocks for up to pollInterval waiting for one frame. ok is false
// (with a nil error) on a would-block timeout or on any frame this
// protocol silently drops (wrong EtherType, missing marker, bad checksum,
// short read) — per spec §4.1, these are not surfaced as errors.
func (e *Ethernet) Recv() (r Received, ok bool, err error) {
	buf := make([]byte, maxFrameSize)
	n, _, rerr := unix.Recvfrom(e.fd, buf, 0)
	if rerr != nil {
		if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
			return Received{}, false, nil
		}
		return Received{}, false, fmt.Errorf("transport: recvfrom: %w", rerr)
	}

	pkt := gopacket.NewPacket(buf[:n], layers.LayerTypeEthernet, gopacket.NoCopy)
	ethLayer := pkt.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return Received{}, false, nil
	}
	eth, ok := ethLayer.(*layers.Ethernet)
	if !ok || eth.EthernetType != layers.EthernetType(protocol.EtherType) {
		return Received{}, false, nil
	}

	frame, decoded := protocol.Decode(eth.LayerPayload())
	if !decoded {
		return Received{}, false, nil
	}

	return Received{Frame: frame, Src: append(net.HardwareAddr{}, eth.SrcMAC...)}, true, nil
}
