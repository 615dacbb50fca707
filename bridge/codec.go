package bridge

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Boundary-safe encodings. Layouts are fixed little-endian so both
// sides decode identically regardless of their native representations:
// float64 is 8 bytes IEEE 754; strings and error payloads are a u32
// length prefix followed by UTF-8 bytes.

// F64Size is the encoded size of a float64 payload.
const F64Size = 8

// StringSize returns the encoded size of a string payload.
func StringSize(s string) int { return 4 + len(s) }

// EncodeF64 writes v into dst and returns the bytes written. Panics
// when dst is too small: buffer sizing is part of the poll contract.
func EncodeF64(dst []byte, v float64) int {
	if len(dst) < F64Size {
		panic("bridge: result buffer too small for f64")
	}
	binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	return F64Size
}

// DecodeF64 reads a float64 payload from src.
func DecodeF64(src []byte) (float64, error) {
	if len(src) < F64Size {
		return 0, errors.Errorf("bridge: short f64 payload: %d bytes", len(src))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(src)), nil
}

// EncodeString writes s into dst and returns the bytes written.
func EncodeString(dst []byte, s string) int {
	n := StringSize(s)
	if len(dst) < n {
		panic("bridge: result buffer too small for string")
	}
	binary.LittleEndian.PutUint32(dst, uint32(len(s)))
	copy(dst[4:], s)
	return n
}

// DecodeString reads a string payload from src. The bytes are copied;
// the returned string does not alias src.
func DecodeString(src []byte) (string, error) {
	if len(src) < 4 {
		return "", errors.Errorf("bridge: short string payload: %d bytes", len(src))
	}
	n := binary.LittleEndian.Uint32(src)
	if uint32(len(src)-4) < n {
		return "", errors.Errorf("bridge: truncated string payload: want %d have %d", n, len(src)-4)
	}
	return string(src[4 : 4+n]), nil
}

func encodeErrorPayload(dst []byte, msg string) int {
	return EncodeString(dst, msg)
}

func decodeErrorPayload(src []byte) (string, error) {
	return DecodeString(src)
}
