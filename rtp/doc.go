// Package rtp carries AV1 access units over RTP. It uses the pion/rtp
// library for standards-compliant RTP packet handling and bridges the
// av1 packetization core to a datagram transport.
//
// # Sending
//
// The VideoSender packetizes each access unit with the av1 core and
// wraps every resulting bounded packet in an RTP packet. The RTP
// timestamp identifies the access unit; the marker bit flags its last
// packet:
//
//	sender, err := rtp.NewVideoSender(1200, transport, remoteAddr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = sender.SendAccessUnit(accessUnit, 3000)
//
// # Receiving
//
// The VideoReceiver is the inverse: it unmarshals incoming RTP packets,
// watches the sequence numbers for gaps, and feeds payloads to an av1
// depacketizer. Complete access units are delivered to a callback:
//
//	receiver, err := rtp.NewVideoReceiver(func(au []byte, ts uint32) {
//	    decode(au, ts)
//	})
//	receiver.Attach(transport)
//
// A detected sequence gap discards the access unit being assembled
// rather than risking corrupt delivery; the stream resumes at the next
// first fragment.
//
// # Stream Isolation
//
// One VideoSender and one VideoReceiver serve exactly one stream. The
// receiver locks onto the first SSRC it sees and rejects others.
// Multiplexed streams need independent instances.
package rtp
