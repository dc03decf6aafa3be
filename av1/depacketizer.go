package av1

import (
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Depacketizer reassembles access units from packets arriving on one
// logical stream. At most one access unit is in flight at a time; its
// timestamp must match every fragment merged into it.
//
// The depacketizer never waits on sequence numbers. A lost interior
// fragment leaves the current access unit open until a packet with a
// different timestamp arrives, at which point the partial data is
// discarded. An incomplete access unit is dropped, never delivered
// corrupt.
//
// A Depacketizer is not safe for concurrent use. Streams multiplexed
// over one transport each need their own instance.
type Depacketizer struct {
	buf       bytes.Buffer
	open      bool
	timestamp uint32
}

// NewDepacketizer creates a depacketizer with no access unit open.
func NewDepacketizer() *Depacketizer {
	return &Depacketizer{}
}

// HandlePacket consumes one arriving packet: the aggregation header
// byte followed by payload, plus the timestamp of the access unit the
// packet belongs to.
//
// Returns:
//   - (frame, nil) when the packet completes an access unit; ownership
//     of the returned bytes transfers to the caller
//   - (nil, ErrNeedMoreFragments) when the packet was consumed but the
//     access unit is still incomplete, or the packet was an orphaned
//     continuation dropped after loss
//   - (nil, ErrMalformedPacket) when the packet cannot hold the header
//     plus one payload byte; the packet is dropped and the stream
//     continues
func (d *Depacketizer) HandlePacket(data []byte, timestamp uint32) ([]byte, error) {
	if len(data) < minPacketSize {
		logrus.WithFields(logrus.Fields{
			"function": "Depacketizer.HandlePacket",
			"length":   len(data),
		}).Warn("Dropping packet below minimum size")
		return nil, fmt.Errorf("packet of %d bytes below minimum %d: %w",
			len(data), minPacketSize, ErrMalformedPacket)
	}

	// A timestamp change while an access unit is open means its tail
	// was lost; drop the partial data before touching the new packet.
	if d.open && d.timestamp != timestamp {
		logrus.WithFields(logrus.Fields{
			"function":        "Depacketizer.HandlePacket",
			"open_timestamp":  d.timestamp,
			"new_timestamp":   timestamp,
			"discarded_bytes": d.buf.Len(),
		}).Debug("Timestamp discontinuity, discarding partial access unit")
		d.discard()
	}

	header := ParseAggregationHeader(data[0])
	payload := data[aggregationHeaderSize:]

	if !header.IsFragmented() {
		// A complete OBU in a single packet bypasses the buffer.
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}

	if !d.open {
		if !header.IsFirstFragment() {
			// Continuation with no opening fragment: the start of this
			// access unit was lost. Loss is expected; drop silently.
			logrus.WithFields(logrus.Fields{
				"function":  "Depacketizer.HandlePacket",
				"timestamp": timestamp,
			}).Debug("Dropping continuation fragment with no open access unit")
			return nil, ErrNeedMoreFragments
		}
		d.open = true
		d.timestamp = timestamp
	}

	d.buf.Write(payload)

	if !header.IsLastFragment() {
		return nil, ErrNeedMoreFragments
	}

	// Hand the backing array to the caller and start fresh rather than
	// copying the assembled access unit out.
	frame := d.buf.Bytes()
	d.buf = bytes.Buffer{}
	d.open = false

	logrus.WithFields(logrus.Fields{
		"function":  "Depacketizer.HandlePacket",
		"timestamp": timestamp,
		"frame_len": len(frame),
	}).Debug("Access unit reassembled")

	return frame, nil
}

// SignalLoss tells the depacketizer that the transport observed a gap
// in its packet ordering annotations. Any partially assembled access
// unit is discarded: a fragment is now missing from it, and delivering
// it would corrupt the stream. Later fragments of the damaged unit are
// then dropped as orphans until a fresh first fragment arrives.
func (d *Depacketizer) SignalLoss() {
	if !d.open {
		return
	}
	logrus.WithFields(logrus.Fields{
		"function":        "Depacketizer.SignalLoss",
		"timestamp":       d.timestamp,
		"discarded_bytes": d.buf.Len(),
	}).Debug("Packet loss reported, discarding partial access unit")
	d.discard()
}

// Reset drops any partially assembled access unit, returning the
// depacketizer to its initial state.
func (d *Depacketizer) Reset() {
	d.discard()
}

// Buffered reports the number of payload bytes held for the access unit
// currently being assembled.
func (d *Depacketizer) Buffered() int {
	return d.buf.Len()
}

func (d *Depacketizer) discard() {
	d.buf.Reset()
	d.open = false
}
