package obu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/av1rtp/leb128"
)

// buildOBU constructs an OBU with a size field and the given payload.
func buildOBU(t *testing.T, obuType Type, payload []byte) []byte {
	t.Helper()

	header := byte(obuType)<<typeShift | hasSizeMask
	buf, err := leb128.AppendEncode([]byte{header}, uint64(len(payload)))
	require.NoError(t, err)
	return append(buf, payload...)
}

func TestParseNext_WithSizeField(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	buf := buildOBU(t, TypeFrame, payload)

	unit, err := ParseNext(buf)
	require.NoError(t, err)
	assert.Equal(t, TypeFrame, unit.Type)
	assert.Equal(t, len(buf), unit.Size)
	assert.Equal(t, 2, unit.PayloadOffset)
	assert.Equal(t, payload, buf[unit.PayloadOffset:unit.Size])
}

func TestParseNext_MultiByteSizeField(t *testing.T) {
	payload := make([]byte, 300)
	buf := buildOBU(t, TypeTileGroup, payload)

	unit, err := ParseNext(buf)
	require.NoError(t, err)
	assert.Equal(t, TypeTileGroup, unit.Type)
	assert.Equal(t, 3, unit.PayloadOffset) // header + 2-byte size
	assert.Equal(t, len(buf), unit.Size)
}

func TestParseNext_WalksConcatenatedOBUs(t *testing.T) {
	first := buildOBU(t, TypeSequenceHeader, []byte{0x01, 0x02})
	second := buildOBU(t, TypeFrame, []byte{0x03, 0x04, 0x05})
	buf := append(append([]byte{}, first...), second...)

	unit, err := ParseNext(buf)
	require.NoError(t, err)
	assert.Equal(t, TypeSequenceHeader, unit.Type)
	assert.Equal(t, len(first), unit.Size)

	unit, err = ParseNext(buf[unit.Size:])
	require.NoError(t, err)
	assert.Equal(t, TypeFrame, unit.Type)
	assert.Equal(t, len(second), unit.Size)
}

func TestParseNext_WithoutSizeField(t *testing.T) {
	// No has_size_field: the OBU extends to the end of the buffer.
	buf := []byte{byte(TypeFrame) << typeShift, 0xaa, 0xbb, 0xcc}

	unit, err := ParseNext(buf)
	require.NoError(t, err)
	assert.Equal(t, TypeFrame, unit.Type)
	assert.Equal(t, len(buf), unit.Size)
	assert.Equal(t, 1, unit.PayloadOffset)
}

func TestParseNext_ExtensionHeader(t *testing.T) {
	header := byte(TypeFrame)<<typeShift | extensionMask | hasSizeMask
	extension := byte(0x28) // temporal_id 1, spatial_id 1
	buf := []byte{header, extension, 0x02, 0x11, 0x22}

	unit, err := ParseNext(buf)
	require.NoError(t, err)
	assert.Equal(t, TypeFrame, unit.Type)
	assert.Equal(t, 3, unit.PayloadOffset)
	assert.Equal(t, 5, unit.Size)
}

func TestParseNext_TemporalDelimiter(t *testing.T) {
	buf := buildOBU(t, TypeTemporalDelimiter, nil)

	unit, err := ParseNext(buf)
	require.NoError(t, err)
	assert.True(t, unit.IsTemporalDelimiter())
	assert.Equal(t, 2, unit.Size)
}

func TestParseNext_ErrorCases(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{name: "empty buffer", buf: nil, want: ErrShortBuffer},
		{name: "forbidden bit", buf: []byte{0x80, 0x00}, want: ErrForbiddenBit},
		{
			name: "size overruns buffer",
			buf:  []byte{byte(TypeFrame)<<typeShift | hasSizeMask, 0x0a, 0x01},
			want: ErrShortBuffer,
		},
		{
			name: "truncated size field",
			buf:  []byte{byte(TypeFrame)<<typeShift | hasSizeMask, 0x80},
			want: leb128.ErrShortBuffer,
		},
		{
			name: "extension header missing",
			buf:  []byte{byte(TypeFrame)<<typeShift | extensionMask},
			want: ErrShortBuffer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNext(tt.buf)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "TemporalDelimiter", TypeTemporalDelimiter.String())
	assert.Equal(t, "Frame", TypeFrame.String())
	assert.Equal(t, "Type(12)", Type(12).String())
}
