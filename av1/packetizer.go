package av1

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/av1rtp/obu"
)

// Packet is one bounded outbound packet produced by the Packetizer: a
// marshalled aggregation header followed by payload bytes. Packets are
// ephemeral; they are built, handed to the transport, and discarded.
type Packet struct {
	// Data is the wire bytes: aggregation header plus payload.
	Data []byte

	// LastOfAccessUnit marks the final packet produced for an access
	// unit, for transports that flag frame boundaries (the RTP marker
	// bit).
	LastOfAccessUnit bool
}

// Packetizer splits access units into bounded packets using
// single-OBU-per-packet framing. OBUs that fit alongside the header go
// out as one packet each; larger OBUs are fragmented across consecutive
// packets.
//
// A Packetizer carries per-stream state (the sequence-start latch) and
// is not safe for concurrent use. Independent streams need independent
// instances.
type Packetizer struct {
	maxPayloadSize int

	// sequenceStarted latches after the first packet of the stream so
	// the N flag is set exactly once per stream, not once per process.
	sequenceStarted bool
}

// fragmentElementCount is the W encoding carried by the opening packet
// of a fragmented OBU, signalling pending elements to the receiver.
const fragmentElementCount = 1

// NewPacketizer creates a packetizer that keeps every emitted packet at
// or under maxPayloadSize bytes, aggregation header included.
//
// Returns ErrPayloadSizeTooSmall when maxPayloadSize cannot hold the
// header plus at least one payload byte.
func NewPacketizer(maxPayloadSize int) (*Packetizer, error) {
	if maxPayloadSize < minPacketSize {
		logrus.WithFields(logrus.Fields{
			"function":         "NewPacketizer",
			"max_payload_size": maxPayloadSize,
		}).Error("Maximum payload size cannot hold header and payload")
		return nil, fmt.Errorf("max payload size %d below minimum %d: %w",
			maxPayloadSize, minPacketSize, ErrPayloadSizeTooSmall)
	}

	logrus.WithFields(logrus.Fields{
		"function":         "NewPacketizer",
		"max_payload_size": maxPayloadSize,
	}).Debug("Created AV1 packetizer")

	return &Packetizer{maxPayloadSize: maxPayloadSize}, nil
}

// PacketizeAccessUnit splits one access unit into bounded packets.
//
// The access unit is walked OBU by OBU; temporal delimiters are dropped
// since they carry no payload of interest. An access unit that is empty
// after delimiter removal yields zero packets and no error. The last
// packet returned has LastOfAccessUnit set.
//
// Packet payloads are copied out of au; the caller may reuse the access
// unit buffer immediately.
func (p *Packetizer) PacketizeAccessUnit(au []byte) ([]Packet, error) {
	var packets []Packet

	rest := au
	for len(rest) > 0 {
		unit, err := obu.ParseNext(rest)
		if err != nil {
			return nil, fmt.Errorf("failed to locate next OBU: %w", err)
		}
		if unit.IsTemporalDelimiter() {
			rest = rest[unit.Size:]
			continue
		}

		logrus.WithFields(logrus.Fields{
			"function": "Packetizer.PacketizeAccessUnit",
			"obu_type": unit.Type.String(),
			"obu_size": unit.Size,
		}).Debug("Packetizing OBU")

		packets, err = p.appendOBU(packets, rest[:unit.Size])
		if err != nil {
			return nil, err
		}
		rest = rest[unit.Size:]
	}

	if len(packets) > 0 {
		packets[len(packets)-1].LastOfAccessUnit = true
	}
	return packets, nil
}

// appendOBU emits the packets for one OBU: a single packet when it
// fits, otherwise an opening fragment, zero or more interior fragments
// at exactly the size limit, and a closing fragment with the remainder.
func (p *Packetizer) appendOBU(packets []Packet, data []byte) ([]Packet, error) {
	maxFragment := p.maxPayloadSize - aggregationHeaderSize

	if len(data) <= maxFragment {
		header := AggregationHeader{NewCodedSequence: p.takeSequenceStart()}
		return p.appendPacket(packets, header, data)
	}

	header := AggregationHeader{
		EndsWithFragment: true,
		ElementCount:     fragmentElementCount,
		NewCodedSequence: p.takeSequenceStart(),
	}
	packets, err := p.appendPacket(packets, header, data[:maxFragment])
	if err != nil {
		return nil, err
	}
	data = data[maxFragment:]

	for len(data) > maxFragment {
		header = AggregationHeader{ContinuesFragment: true, EndsWithFragment: true}
		packets, err = p.appendPacket(packets, header, data[:maxFragment])
		if err != nil {
			return nil, err
		}
		data = data[maxFragment:]
	}

	header = AggregationHeader{ContinuesFragment: true}
	return p.appendPacket(packets, header, data)
}

// appendPacket marshals the header and copies the payload into a fresh
// wire buffer.
func (p *Packetizer) appendPacket(packets []Packet, header AggregationHeader, payload []byte) ([]Packet, error) {
	headerByte, err := header.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal aggregation header: %w", err)
	}

	data := make([]byte, aggregationHeaderSize+len(payload))
	data[0] = headerByte
	copy(data[aggregationHeaderSize:], payload)
	return append(packets, Packet{Data: data}), nil
}

// takeSequenceStart consumes the one-shot sequence-start latch. The
// first call per Packetizer returns true; every later call returns
// false.
func (p *Packetizer) takeSequenceStart() bool {
	if p.sequenceStarted {
		return false
	}
	p.sequenceStarted = true
	return true
}
