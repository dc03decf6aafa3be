package rtp

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/av1rtp/av1"
	"github.com/opd-ai/av1rtp/transport"
)

// FrameHandler is invoked once per completely reassembled access unit,
// with the RTP timestamp that identifies it. Ownership of the access
// unit bytes passes to the handler.
type FrameHandler func(accessUnit []byte, timestamp uint32)

// VideoReceiver reassembles AV1 access units from incoming RTP packets
// for one stream.
//
// The receiver locks onto the first SSRC it sees and rejects packets
// from any other source. Sequence numbers are tracked so that a gap in
// delivery discards the access unit being assembled instead of letting
// a missing fragment corrupt it.
type VideoReceiver struct {
	mu           sync.Mutex
	depacketizer *av1.Depacketizer
	handler      FrameHandler
	expectedSSRC uint32
	hasSSRC      bool
	lastSeq      uint16
	hasLastSeq   bool

	packetsReceived uint64
	framesDelivered uint64
	framesDropped   uint64
}

// NewVideoReceiver creates a receiver that delivers complete access
// units to handler.
func NewVideoReceiver(handler FrameHandler) (*VideoReceiver, error) {
	if handler == nil {
		return nil, fmt.Errorf("frame handler cannot be nil")
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewVideoReceiver",
	}).Info("Created video receiver")

	return &VideoReceiver{
		depacketizer: av1.NewDepacketizer(),
		handler:      handler,
	}, nil
}

// Attach registers the receiver for video packets on the transport.
func (vr *VideoReceiver) Attach(tr transport.Transport) {
	tr.RegisterHandler(transport.PacketVideoFrame, func(packet *transport.Packet, addr net.Addr) error {
		return vr.ProcessPacket(packet.Data)
	})
}

// ProcessPacket consumes one raw RTP packet in arrival order.
//
// Complete access units are handed to the frame handler. Intermediate
// states (more fragments needed, orphaned continuations after loss) are
// silent; malformed packets and foreign SSRCs return an error and are
// dropped without disturbing the stream.
func (vr *VideoReceiver) ProcessPacket(data []byte) error {
	packet := &rtp.Packet{}
	if err := packet.Unmarshal(data); err != nil {
		return fmt.Errorf("failed to unmarshal RTP packet: %w", err)
	}

	vr.mu.Lock()
	defer vr.mu.Unlock()

	vr.packetsReceived++

	// Lock onto the first SSRC seen.
	if !vr.hasSSRC {
		vr.expectedSSRC = packet.SSRC
		vr.hasSSRC = true
		logrus.WithFields(logrus.Fields{
			"function": "VideoReceiver.ProcessPacket",
			"ssrc":     packet.SSRC,
		}).Info("Accepted SSRC for stream")
	} else if packet.SSRC != vr.expectedSSRC {
		return fmt.Errorf("unexpected SSRC: expected %d, got %d", vr.expectedSSRC, packet.SSRC)
	}

	// A sequence gap means at least one packet was lost; whatever is
	// being assembled is missing a fragment and must not be delivered.
	if vr.hasLastSeq && packet.SequenceNumber != vr.lastSeq+1 {
		logrus.WithFields(logrus.Fields{
			"function":          "VideoReceiver.ProcessPacket",
			"expected_sequence": vr.lastSeq + 1,
			"received_sequence": packet.SequenceNumber,
		}).Warn("Sequence gap detected in video stream")
		if vr.depacketizer.Buffered() > 0 {
			vr.framesDropped++
		}
		vr.depacketizer.SignalLoss()
	}
	vr.lastSeq = packet.SequenceNumber
	vr.hasLastSeq = true

	frame, err := vr.depacketizer.HandlePacket(packet.Payload, packet.Timestamp)
	if err != nil {
		if errors.Is(err, av1.ErrNeedMoreFragments) {
			return nil
		}
		return fmt.Errorf("failed to reassemble access unit: %w", err)
	}

	vr.framesDelivered++
	vr.handler(frame, packet.Timestamp)
	return nil
}

// Stats reports packet and frame counters for the stream.
func (vr *VideoReceiver) Stats() (packetsReceived, framesDelivered, framesDropped uint64) {
	vr.mu.Lock()
	defer vr.mu.Unlock()

	return vr.packetsReceived, vr.framesDelivered, vr.framesDropped
}
