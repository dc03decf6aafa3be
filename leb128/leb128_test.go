package leb128

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeInBytes(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		expected int
	}{
		{name: "zero", value: 0, expected: 1},
		{name: "one byte max", value: 127, expected: 1},
		{name: "two bytes min", value: 128, expected: 2},
		{name: "two bytes max", value: 1<<14 - 1, expected: 2},
		{name: "three bytes min", value: 1 << 14, expected: 3},
		{name: "max value", value: MaxValue, expected: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SizeInBytes(tt.value))
		})
	}
}

func TestEncode_KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		expected []byte
	}{
		{name: "zero", value: 0, expected: []byte{0x00}},
		{name: "single byte", value: 0x7f, expected: []byte{0x7f}},
		{name: "two bytes", value: 0x80, expected: []byte{0x80, 0x01}},
		{name: "obu sized", value: 602, expected: []byte{0xda, 0x04}},
		{name: "max value", value: MaxValue, expected: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, encoded)
		})
	}
}

func TestEncode_ValueTooLarge(t *testing.T) {
	_, err := Encode(MaxValue + 1)
	assert.ErrorIs(t, err, ErrValueTooLarge)

	_, err = Encode(^uint64(0))
	assert.ErrorIs(t, err, ErrValueTooLarge)
}

func TestEncodeTo(t *testing.T) {
	dst := make([]byte, 8)

	n, err := EncodeTo(dst, 300)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xac, 0x02}, dst[:n])
}

func TestEncodeTo_ShortBuffer(t *testing.T) {
	dst := make([]byte, 1)

	_, err := EncodeTo(dst, 300)
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = EncodeTo(nil, 0)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestEncodeTo_ValueTooLarge(t *testing.T) {
	dst := make([]byte, 16)

	_, err := EncodeTo(dst, MaxValue+1)
	assert.ErrorIs(t, err, ErrValueTooLarge)
}

func TestDecode_RoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 255, 256, 602, 3000,
		1<<14 - 1, 1 << 14, 1<<21 - 1, 1 << 21,
		1<<28 - 1, 1 << 28, 1<<35 - 1, 1 << 42,
		1<<49 - 1, MaxValue - 1, MaxValue,
	}

	for _, v := range values {
		encoded, err := Encode(v)
		require.NoError(t, err)
		require.LessOrEqual(t, len(encoded), MaxEncodedSize)

		decoded, n, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
		assert.Equal(t, len(encoded), n)
	}
}

func TestDecode_TrailingBytes(t *testing.T) {
	// Decoding stops at the first byte without a continuation bit.
	v, n, err := Decode([]byte{0xac, 0x02, 0xde, 0xad})
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)
	assert.Equal(t, 2, n)
}

func TestDecode_ShortBuffer(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrShortBuffer)

	// Continuation bit set on the final available byte.
	_, _, err = Decode([]byte{0x80})
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestDecode_Malformed(t *testing.T) {
	// Nine continuation bytes never terminate a valid encoding.
	malformed := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}
	_, _, err := Decode(malformed)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_NonCanonicalZero(t *testing.T) {
	// 0x80 0x00 is a two-byte encoding of zero; the decoder accepts it.
	v, n, err := Decode([]byte{0x80, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
	assert.Equal(t, 2, n)
}
