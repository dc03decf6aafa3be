// Package obu locates AV1 Open Bitstream Unit boundaries inside an
// access unit. It parses only the OBU header and optional size field;
// the coded payload is never inspected.
package obu

import (
	"errors"
	"fmt"

	"github.com/opd-ai/av1rtp/leb128"
)

// Type identifies an OBU per the AV1 bitstream specification.
type Type uint8

const (
	TypeSequenceHeader       Type = 1
	TypeTemporalDelimiter    Type = 2
	TypeFrameHeader          Type = 3
	TypeTileGroup            Type = 4
	TypeMetadata             Type = 5
	TypeFrame                Type = 6
	TypeRedundantFrameHeader Type = 7
	TypeTileList             Type = 8
	TypePadding              Type = 15
)

// String returns a human-readable name for the OBU type.
func (t Type) String() string {
	switch t {
	case TypeSequenceHeader:
		return "SequenceHeader"
	case TypeTemporalDelimiter:
		return "TemporalDelimiter"
	case TypeFrameHeader:
		return "FrameHeader"
	case TypeTileGroup:
		return "TileGroup"
	case TypeMetadata:
		return "Metadata"
	case TypeFrame:
		return "Frame"
	case TypeRedundantFrameHeader:
		return "RedundantFrameHeader"
	case TypeTileList:
		return "TileList"
	case TypePadding:
		return "Padding"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// OBU header bit layout: forbidden bit, 4-bit type, extension flag,
// has_size_field flag, reserved bit.
const (
	forbiddenBitMask = 0x80
	typeMask         = 0x78
	typeShift        = 3
	extensionMask    = 0x04
	hasSizeMask      = 0x02
)

var (
	// ErrShortBuffer indicates the buffer ends before the OBU does.
	ErrShortBuffer = errors.New("obu: buffer too short")

	// ErrForbiddenBit indicates an OBU header with the forbidden bit
	// set, which marks the stream as corrupt.
	ErrForbiddenBit = errors.New("obu: forbidden bit set in OBU header")
)

// Unit describes one OBU located inside a larger buffer. It is a view:
// no payload bytes are copied.
type Unit struct {
	// Type is the OBU type from the header byte.
	Type Type

	// Size is the total extent of the OBU in bytes, header and size
	// field included.
	Size int

	// PayloadOffset is the offset of the first payload byte from the
	// start of the OBU.
	PayloadOffset int
}

// IsTemporalDelimiter reports whether the unit is a temporal delimiter.
// Delimiters carry no payload and are dropped during packetization.
func (u Unit) IsTemporalDelimiter() bool {
	return u.Type == TypeTemporalDelimiter
}

// ParseNext parses the OBU starting at buf[0] and reports its type and
// extent. The buffer may contain further OBUs past the reported size;
// callers advance by Size to walk an access unit.
//
// OBUs without a size field extend to the end of the buffer, per the
// AV1 low-overhead bitstream rules.
func ParseNext(buf []byte) (Unit, error) {
	if len(buf) == 0 {
		return Unit{}, ErrShortBuffer
	}

	header := buf[0]
	if header&forbiddenBitMask != 0 {
		return Unit{}, ErrForbiddenBit
	}

	u := Unit{
		Type:          Type((header & typeMask) >> typeShift),
		PayloadOffset: 1,
	}
	if header&extensionMask != 0 {
		u.PayloadOffset++
	}
	if len(buf) < u.PayloadOffset {
		return Unit{}, ErrShortBuffer
	}

	if header&hasSizeMask == 0 {
		u.Size = len(buf)
		return u, nil
	}

	size, n, err := leb128.Decode(buf[u.PayloadOffset:])
	if err != nil {
		return Unit{}, fmt.Errorf("obu: invalid size field: %w", err)
	}
	u.PayloadOffset += n

	total := uint64(u.PayloadOffset) + size
	if total > uint64(len(buf)) {
		return Unit{}, fmt.Errorf("obu: size field %d overruns %d-byte buffer: %w",
			size, len(buf), ErrShortBuffer)
	}
	u.Size = int(total)
	return u, nil
}
