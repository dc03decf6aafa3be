package rtp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/av1rtp/av1"
	"github.com/opd-ai/av1rtp/transport"
)

const (
	// rtpHeaderSize is the fixed RTP header length without extensions.
	rtpHeaderSize = 12

	// payloadTypeAV1 is the dynamic RTP payload type used for AV1.
	payloadTypeAV1 = 98

	// ClockRate is the RTP clock rate for video streams in Hz.
	ClockRate = 90000
)

// VideoSender packetizes AV1 access units and transmits them as RTP
// packets over a datagram transport.
//
// Each access unit occupies one RTP timestamp; the marker bit is set on
// its final packet.
type VideoSender struct {
	mu             sync.Mutex
	packetizer     *av1.Packetizer
	ssrc           uint32
	sequenceNumber uint16
	timestamp      uint32
	transport      transport.Transport
	remoteAddr     net.Addr
}

// NewVideoSender creates a video sender whose transmitted packets stay
// at or under maxPacketSize bytes, RTP header included.
//
// Parameters:
//   - maxPacketSize: MTU-derived bound on the full RTP packet size
//   - tr: transport for packet transmission
//   - remoteAddr: remote peer address
//
// Returns:
//   - *VideoSender: new sender instance
//   - error: any error that occurred during setup
func NewVideoSender(maxPacketSize int, tr transport.Transport, remoteAddr net.Addr) (*VideoSender, error) {
	if tr == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}
	if remoteAddr == nil {
		return nil, fmt.Errorf("remote address cannot be nil")
	}

	packetizer, err := av1.NewPacketizer(maxPacketSize - rtpHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create packetizer: %w", err)
	}

	// Random SSRC for this stream.
	ssrcBytes := make([]byte, 4)
	if _, err := rand.Read(ssrcBytes); err != nil {
		return nil, fmt.Errorf("failed to generate SSRC: %w", err)
	}
	ssrc := binary.BigEndian.Uint32(ssrcBytes)

	logrus.WithFields(logrus.Fields{
		"function":        "NewVideoSender",
		"ssrc":            ssrc,
		"max_packet_size": maxPacketSize,
		"remote_addr":     remoteAddr.String(),
	}).Info("Created video sender")

	return &VideoSender{
		packetizer: packetizer,
		ssrc:       ssrc,
		transport:  tr,
		remoteAddr: remoteAddr,
	}, nil
}

// SSRC returns the synchronization source identifier of this stream.
func (vs *VideoSender) SSRC() uint32 {
	return vs.ssrc
}

// SendAccessUnit packetizes one access unit and transmits every
// resulting packet. durationTicks advances the 90 kHz RTP clock after
// the access unit, typically ClockRate/framerate.
func (vs *VideoSender) SendAccessUnit(au []byte, durationTicks uint32) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	packets, err := vs.packetizer.PacketizeAccessUnit(au)
	if err != nil {
		return fmt.Errorf("failed to packetize access unit: %w", err)
	}

	for _, pkt := range packets {
		rtpPacket := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         pkt.LastOfAccessUnit,
				PayloadType:    payloadTypeAV1,
				SequenceNumber: vs.sequenceNumber,
				Timestamp:      vs.timestamp,
				SSRC:           vs.ssrc,
			},
			Payload: pkt.Data,
		}

		data, err := rtpPacket.Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal RTP packet: %w", err)
		}

		err = vs.transport.Send(&transport.Packet{
			Type: transport.PacketVideoFrame,
			Data: data,
		}, vs.remoteAddr)
		if err != nil {
			return fmt.Errorf("failed to send video packet: %w", err)
		}

		vs.sequenceNumber++
	}

	logrus.WithFields(logrus.Fields{
		"function":  "VideoSender.SendAccessUnit",
		"au_size":   len(au),
		"packets":   len(packets),
		"timestamp": vs.timestamp,
	}).Debug("Access unit sent")

	vs.timestamp += durationTicks
	return nil
}
