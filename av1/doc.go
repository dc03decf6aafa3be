// Package av1 implements the AV1 RTP payload framing: splitting access
// units into bounded packets on the sending side and reassembling them
// on the receiving side.
//
// # Wire Format
//
// Every packet starts with a 1-byte aggregation header followed by OBU
// payload bytes:
//
//	 0 1 2 3 4 5 6 7
//	+-+-+-+-+-+-+-+-+
//	|Z|Y| W |N|-|-|-|
//	+-+-+-+-+-+-+-+-+
//
// Z marks the payload as the continuation of an OBU fragment begun in
// the previous packet, Y marks it as continuing into the next packet,
// W counts the OBU elements in the packet, and N marks the first packet
// of a new coded video sequence. A header with N=1 never carries Z=1.
//
// # Packetization
//
// The Packetizer walks an access unit's OBU sequence, drops temporal
// delimiters, and emits one packet per OBU. OBUs that do not fit in a
// single packet are fragmented:
//
//	packetizer, err := av1.NewPacketizer(1188)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	packets, err := packetizer.PacketizeAccessUnit(accessUnit)
//
// Each returned packet carries its wire bytes plus a LastOfAccessUnit
// flag for transports that signal frame boundaries (the RTP marker bit).
//
// # Reassembly
//
// The Depacketizer is the inverse state machine. It is purely reactive:
// it consumes packets in arrival order and either returns a complete
// access unit, reports ErrNeedMoreFragments, or rejects the packet:
//
//	depacketizer := av1.NewDepacketizer()
//	frame, err := depacketizer.HandlePacket(payload, timestamp)
//	if errors.Is(err, av1.ErrNeedMoreFragments) {
//	    return // keep feeding packets
//	}
//
// Delivery is best effort. A lost interior fragment leaves the current
// access unit open until a packet with a different timestamp arrives, at
// which point the partial data is discarded rather than delivered
// corrupt.
//
// # Thread Safety
//
// Packetizer and Depacketizer hold per-stream state and are not safe
// for concurrent use. Streams multiplexed over one transport each need
// their own instances.
package av1
