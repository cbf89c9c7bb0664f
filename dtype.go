package symmem

import (
	"github.com/x448/float16"
)

// DType identifies an element type the multicast ops can carry. The set is
// closed: capability entries exist only for the (DType, width) pairs the
// interconnect supports, and anything else aborts at the point of use.
type DType int

const (
	// F32 is IEEE 754 binary32.
	F32 DType = iota
	// BF16 is bfloat16, packed two lanes per 32-bit word.
	BF16
	// F16 is IEEE 754 binary16. Registered for completeness; the multimem
	// capability table carries no entries for it.
	F16
)

// Size returns the element size in bytes.
func (d DType) Size() int {
	switch d {
	case F32:
		return 4
	case BF16, F16:
		return 2
	default:
		return 0
	}
}

// String returns the dtype in the spelling the hardware qualifiers use.
func (d DType) String() string {
	switch d {
	case F32:
		return "f32"
	case BF16:
		return "bf16"
	case F16:
		return "f16"
	default:
		return "unknown"
	}
}

// DTypes lists every known element type.
func DTypes() []DType {
	return []DType{F32, BF16, F16}
}

// Float16Slice wraps a byte slice as IEEE binary16 values.
type Float16Slice struct {
	data []byte
}

// NewFloat16Slice creates a Float16 slice over data.
func NewFloat16Slice(data []byte) Float16Slice {
	return Float16Slice{data: data}
}

// Len returns the number of Float16 elements
func (s Float16Slice) Len() int {
	return len(s.data) / 2
}

// Get returns the Float16 at index i
func (s Float16Slice) Get(i int) float16.Float16 {
	return float16.Float16(uint16(s.data[i*2]) | (uint16(s.data[i*2+1]) << 8))
}

// Set sets the Float16 at index i
func (s Float16Slice) Set(i int, val float16.Float16) {
	s.data[i*2] = byte(val)
	s.data[i*2+1] = byte(val >> 8)
}

// GetFloat32 returns the value at index i as float32
func (s Float16Slice) GetFloat32(i int) float32 {
	return s.Get(i).Float32()
}

// SetFloat32 sets the value at index i from float32
func (s Float16Slice) SetFloat32(i int, val float32) {
	s.Set(i, float16.Fromfloat32(val))
}
