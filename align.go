package symmem

import (
	"unsafe"
)

// AlignmentOf returns the largest power-of-two alignment, up to
// MaxVectorWidth, that the pointer satisfies. Callers use the result to
// pick the widest vector width that is safe to issue on the address;
// requesting a wider op than the probed alignment is undefined.
func AlignmentOf(p unsafe.Pointer) int {
	return AlignmentOfSize(uintptr(p))
}

// AlignmentOfSize is AlignmentOf for an integral size or offset. A size
// bounds the alignment of every element boundary within a buffer, so the
// usable width for a strided walk is the minimum of the pointer's and the
// stride's alignment.
func AlignmentOfSize(v uintptr) int {
	switch {
	case v%16 == 0:
		return 16
	case v%8 == 0:
		return 8
	case v%4 == 0:
		return 4
	case v%2 == 0:
		return 2
	default:
		return 1
	}
}

// AlignedBytes allocates a zeroed byte slice whose backing array starts at
// an address aligned to align bytes. It over-allocates and slices at the
// first aligned offset; the returned slice keeps the backing array alive.
func AlignedBytes(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	buf := make([]byte, size+align-1)
	ptr := uintptr(unsafe.Pointer(&buf[0]))
	offset := uintptr(0)
	if mod := ptr % uintptr(align); mod != 0 {
		offset = uintptr(align) - mod
	}
	return buf[offset : offset+uintptr(size)]
}
