package symmem

import (
	"math"
)

// BFloat16 represents a 16-bit brain floating point number
// Format: 1 sign bit, 8 exponent bits, 7 mantissa bits
type BFloat16 uint16

// ToBFloat16 converts float32 to BFloat16 with round-to-nearest-even
func ToBFloat16(f float32) BFloat16 {
	// BFloat16 is the top 16 bits of float32
	bits := math.Float32bits(f)

	// Inf and NaN truncate: rounding must not carry into the exponent.
	// A NaN payload living only in the discarded bits is forced quiet so
	// it cannot truncate to Inf.
	if bits&0x7F800000 == 0x7F800000 {
		if bits&0x007FFFFF != 0 {
			return BFloat16(bits>>16 | 0x0040)
		}
		return BFloat16(bits >> 16)
	}

	// Round to nearest even on the discarded low half
	rounding := (bits >> 16) & 1
	rem := bits & 0xFFFF
	if rem > 0x8000 || (rem == 0x8000 && rounding == 1) {
		bits += 0x10000
	}

	return BFloat16(bits >> 16)
}

// ToFloat32 converts BFloat16 to float32
func (b BFloat16) ToFloat32() float32 {
	// Just shift back to float32 position
	return math.Float32frombits(uint32(b) << 16)
}

// BFloat16Slice wraps a byte slice as BFloat16 values
type BFloat16Slice struct {
	data []byte
}

// NewBFloat16Slice creates a BFloat16 slice from a byte slice
func NewBFloat16Slice(data []byte) BFloat16Slice {
	return BFloat16Slice{data: data}
}

// Len returns the number of BFloat16 elements
func (s BFloat16Slice) Len() int {
	return len(s.data) / 2
}

// Get returns the BFloat16 at index i
func (s BFloat16Slice) Get(i int) BFloat16 {
	return BFloat16(uint16(s.data[i*2]) | (uint16(s.data[i*2+1]) << 8))
}

// Set sets the BFloat16 at index i
func (s BFloat16Slice) Set(i int, val BFloat16) {
	s.data[i*2] = byte(val)
	s.data[i*2+1] = byte(val >> 8)
}

// GetFloat32 returns the value at index i as float32
func (s BFloat16Slice) GetFloat32(i int) float32 {
	return s.Get(i).ToFloat32()
}

// SetFloat32 sets the value at index i from float32
func (s BFloat16Slice) SetFloat32(i int, val float32) {
	s.Set(i, ToBFloat16(val))
}
