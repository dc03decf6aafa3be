package av1

import "fmt"

const (
	// aggregationHeaderSize is the fixed per-packet header overhead.
	aggregationHeaderSize = 1

	// minPacketSize is the smallest valid wire packet: the aggregation
	// header plus one payload byte.
	minPacketSize = aggregationHeaderSize + 1
)

// Aggregation header flag bits, MSB first. The N bit sits at 0x04; the
// low two bits are reserved and must be zero on the wire.
const (
	flagZ = 0x80
	flagY = 0x40
	flagN = 0x04

	elementCountMask  = 0x30
	elementCountShift = 4
)

// AggregationHeader is the 1-byte control field that precedes every
// packet payload.
type AggregationHeader struct {
	// ContinuesFragment (Z) marks the first OBU element as the
	// continuation of a fragment begun in the previous packet.
	ContinuesFragment bool

	// EndsWithFragment (Y) marks the last OBU element as a fragment
	// that continues in the next packet.
	EndsWithFragment bool

	// ElementCount (W) is the two-bit OBU element count. Zero means a
	// single implicit element with no per-element size prefix.
	ElementCount uint8

	// NewCodedSequence (N) marks the first packet of a new coded video
	// sequence. Requires ContinuesFragment to be false.
	NewCodedSequence bool
}

// Marshal packs the header into its wire byte. It fails if the header
// combines N=1 with Z=1 or if ElementCount does not fit the two-bit W
// field.
func (h AggregationHeader) Marshal() (byte, error) {
	if h.NewCodedSequence && h.ContinuesFragment {
		return 0, fmt.Errorf("sequence start cannot continue a fragment: %w", ErrInvalidHeader)
	}
	if h.ElementCount > 3 {
		return 0, fmt.Errorf("element count %d does not fit W field: %w", h.ElementCount, ErrInvalidHeader)
	}

	var b byte
	if h.ContinuesFragment {
		b |= flagZ
	}
	if h.EndsWithFragment {
		b |= flagY
	}
	b |= h.ElementCount << elementCountShift
	if h.NewCodedSequence {
		b |= flagN
	}
	return b, nil
}

// ParseAggregationHeader unpacks a wire header byte. Reserved bits are
// ignored.
func ParseAggregationHeader(b byte) AggregationHeader {
	return AggregationHeader{
		ContinuesFragment: b&flagZ != 0,
		EndsWithFragment:  b&flagY != 0,
		ElementCount:      (b & elementCountMask) >> elementCountShift,
		NewCodedSequence:  b&flagN != 0,
	}
}

// IsFragmented reports whether the packet payload is part of a
// fragmented OBU on either end.
func (h AggregationHeader) IsFragmented() bool {
	return h.ContinuesFragment || h.EndsWithFragment
}

// IsFirstFragment reports whether the packet opens a fragmented OBU
// (Z=0, Y=1).
func (h AggregationHeader) IsFirstFragment() bool {
	return !h.ContinuesFragment && h.EndsWithFragment
}

// IsLastFragment reports whether the packet concludes a fragmented OBU
// (Z=1, Y=0).
func (h AggregationHeader) IsLastFragment() bool {
	return h.ContinuesFragment && !h.EndsWithFragment
}
