// Package transport provides the bounded-datagram primitive the
// packetization core sends through: a typed packet framing and a
// Transport interface with a UDP implementation.
//
// Delivery is best effort. Packets may be lost; the layers above are
// built to tolerate that.
package transport

import "errors"

// PacketType identifies the kind of payload a packet carries.
type PacketType byte

const (
	// PacketVideoFrame carries one RTP packet of AV1 video payload.
	PacketVideoFrame PacketType = 0x16
)

// Packet is one transport datagram: a 1-byte type tag followed by the
// payload.
type Packet struct {
	Type PacketType
	Data []byte
}

// Serialize converts a packet to its wire bytes.
func (p *Packet) Serialize() ([]byte, error) {
	if p.Data == nil {
		return nil, errors.New("packet data is nil")
	}

	buf := make([]byte, 1+len(p.Data))
	buf[0] = byte(p.Type)
	copy(buf[1:], p.Data)
	return buf, nil
}

// ParsePacket converts wire bytes back into a Packet.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) < 1 {
		return nil, errors.New("packet too short")
	}

	packet := &Packet{
		Type: PacketType(data[0]),
		Data: make([]byte, len(data)-1),
	}
	copy(packet.Data, data[1:])
	return packet, nil
}
