// Package leb128 implements the little-endian base-128 variable-length
// integer encoding used by the AV1 bitstream and its RTP payload format.
//
// Each encoded byte carries seven value bits in its low bits; the high
// bit signals that more bytes follow. The format caps encodings at eight
// bytes, which bounds representable values at 2^56 - 1.
package leb128

import "errors"

const (
	// MaxEncodedSize is the maximum number of bytes one encoded value
	// may occupy.
	MaxEncodedSize = 8

	// MaxValue is the largest value representable within MaxEncodedSize
	// bytes (2^56 - 1).
	MaxValue uint64 = 1<<56 - 1
)

// Sentinel errors for codec operations. They enable reliable error
// classification using errors.Is().
var (
	// ErrValueTooLarge indicates the value exceeds MaxValue.
	ErrValueTooLarge = errors.New("leb128: value exceeds maximum encodable value")

	// ErrShortBuffer indicates the destination cannot hold the full
	// encoding, or the source ends before the encoding terminates.
	ErrShortBuffer = errors.New("leb128: buffer too small")

	// ErrMalformed indicates an encoding that does not terminate within
	// MaxEncodedSize bytes.
	ErrMalformed = errors.New("leb128: malformed encoding")
)

// SizeInBytes returns the number of bytes needed to encode v. A zero
// value still occupies one byte.
func SizeInBytes(v uint64) int {
	size := 0
	for {
		size++
		v >>= 7
		if v == 0 {
			return size
		}
	}
}

// Encode returns the LEB128 encoding of v.
func Encode(v uint64) ([]byte, error) {
	return AppendEncode(nil, v)
}

// AppendEncode appends the LEB128 encoding of v to dst and returns the
// extended slice.
func AppendEncode(dst []byte, v uint64) ([]byte, error) {
	if v > MaxValue {
		return dst, ErrValueTooLarge
	}
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80 // more bytes follow
		}
		dst = append(dst, b)
		if v == 0 {
			return dst, nil
		}
	}
}

// EncodeTo writes the LEB128 encoding of v into dst and returns the
// number of bytes written. It fails with ErrShortBuffer when dst cannot
// hold the full encoding.
func EncodeTo(dst []byte, v uint64) (int, error) {
	if v > MaxValue {
		return 0, ErrValueTooLarge
	}
	size := SizeInBytes(v)
	if len(dst) < size {
		return 0, ErrShortBuffer
	}
	for i := 0; i < size; i++ {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst[i] = b
	}
	return size, nil
}

// Decode reads one LEB128-encoded value from the start of buf. It
// returns the decoded value and the number of bytes consumed. Decoding
// fails with ErrMalformed when the encoding does not terminate within
// MaxEncodedSize bytes, and with ErrShortBuffer when buf is exhausted
// before the final byte.
func Decode(buf []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(buf); i++ {
		if i == MaxEncodedSize {
			return 0, 0, ErrMalformed
		}
		b := buf[i]
		v |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrShortBuffer
}
