package av1

import "errors"

// Sentinel errors for packetization and reassembly. They enable
// reliable error classification using errors.Is().
var (
	// ErrPayloadSizeTooSmall indicates a configured maximum payload
	// size that cannot hold the aggregation header plus one payload
	// byte. Surfaced before any packet is produced.
	ErrPayloadSizeTooSmall = errors.New("maximum payload size too small")

	// ErrInvalidHeader indicates an aggregation header that violates
	// the wire format, such as N=1 combined with Z=1.
	ErrInvalidHeader = errors.New("invalid aggregation header")

	// ErrMalformedPacket indicates an incoming packet shorter than the
	// aggregation header plus one payload byte. The packet is dropped;
	// the stream continues.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrNeedMoreFragments signals that the depacketizer consumed the
	// packet but the access unit is not yet complete. It is a normal
	// intermediate state, not a failure.
	ErrNeedMoreFragments = errors.New("need more fragments")
)
