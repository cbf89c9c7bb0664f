package symmem

import (
	"unsafe"

	"github.com/gomlx/exceptions"
)

// Vec is a register-sized container moved by the multicast ops. It is a
// transient view over at most MaxVectorWidth bytes: the lane accessors all
// alias the same storage, so writing through one view is immediately
// visible through the others. Vecs carry no ownership; they are copied by
// value and never persisted.
type Vec interface {
	// Width returns the size of the container in bytes.
	Width() int
	// Bytes aliases the storage as raw bytes.
	Bytes() []byte
	// U16s aliases the storage as 16-bit lanes.
	U16s() []uint16
	// U32s aliases the storage as 32-bit lanes.
	U32s() []uint32
}

// Vec64 is the subset of widths whose storage carries 64-bit lanes
// (Vec8 and Vec16).
type Vec64 interface {
	Vec
	U64s() []uint64
}

// Vec4 is a 4-byte vector: 2 x 16-bit or 1 x 32-bit lanes.
type Vec4 struct {
	u32 uint32
}

// Vec8 is an 8-byte vector: 4 x 16-bit, 2 x 32-bit or 1 x 64-bit lanes.
type Vec8 struct {
	u64 uint64
}

// Vec16 is a 16-byte vector: 8 x 16-bit, 4 x 32-bit or 2 x 64-bit lanes.
// The 64-bit backing keeps the lane views aligned for every access width.
type Vec16 struct {
	u64 [2]uint64
}

func (v *Vec4) Width() int { return 4 }
func (v *Vec4) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v.u32)), 4)
}
func (v *Vec4) U16s() []uint16 {
	return unsafe.Slice((*uint16)(unsafe.Pointer(&v.u32)), 2)
}
func (v *Vec4) U32s() []uint32 {
	return unsafe.Slice(&v.u32, 1)
}

func (v *Vec8) Width() int { return 8 }
func (v *Vec8) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v.u64)), 8)
}
func (v *Vec8) U16s() []uint16 {
	return unsafe.Slice((*uint16)(unsafe.Pointer(&v.u64)), 4)
}
func (v *Vec8) U32s() []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&v.u64)), 2)
}

// U64s aliases the storage as 64-bit lanes.
func (v *Vec8) U64s() []uint64 {
	return unsafe.Slice(&v.u64, 1)
}

func (v *Vec16) Width() int { return 16 }
func (v *Vec16) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v.u64[0])), 16)
}
func (v *Vec16) U16s() []uint16 {
	return unsafe.Slice((*uint16)(unsafe.Pointer(&v.u64[0])), 8)
}
func (v *Vec16) U32s() []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&v.u64[0])), 4)
}

// U64s aliases the storage as 64-bit lanes.
func (v *Vec16) U64s() []uint64 {
	return v.u64[:]
}

// VecForWidth returns a zeroed vector of the requested width. Widths other
// than 4, 8 and 16 are a contract violation and abort.
func VecForWidth(width int) Vec {
	switch width {
	case 4:
		return &Vec4{}
	case 8:
		return &Vec8{}
	case 16:
		return &Vec16{}
	default:
		exceptions.Panicf("symmem: no vector container for width %d (supported: 4, 8, 16)", width)
		return nil
	}
}
