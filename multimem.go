package symmem

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/gomlx/exceptions"
)

// MulticastPtr is one logical address that resolves to the corresponding
// physical location on every participating rank. The multicast ops below
// read-modify-combine or write through it in one call; the memory behind
// it is owned by the symmetric allocation layer, never by this package.
type MulticastPtr struct {
	bases []unsafe.Pointer
}

// NewMulticastPtr builds a multicast address from per-rank base pointers.
// bases[r] must point at rank r's copy of the same logical offset.
func NewMulticastPtr(bases []unsafe.Pointer) MulticastPtr {
	return MulticastPtr{bases: bases}
}

// NumRanks returns the number of physical copies the address resolves to.
func (p MulticastPtr) NumRanks() int {
	return len(p.bases)
}

// Offset returns the multicast address advanced by n bytes on every rank.
func (p MulticastPtr) Offset(n int) MulticastPtr {
	shifted := make([]unsafe.Pointer, len(p.bases))
	for i, b := range p.bases {
		shifted[i] = unsafe.Add(b, n)
	}
	return MulticastPtr{bases: shifted}
}

// Alignment probes the alignment of the address: the widest vector op that
// is safe on every rank's copy.
func (p MulticastPtr) Alignment() int {
	align := MaxVectorWidth
	for _, b := range p.bases {
		if a := AlignmentOf(b); a < align {
			align = a
		}
	}
	return align
}

func (p MulticastPtr) word(rank, i int) *uint32 {
	return (*uint32)(unsafe.Add(p.bases[rank], i*4))
}

func (p MulticastPtr) word64(rank, i int) *uint64 {
	return (*uint64)(unsafe.Add(p.bases[rank], i*8))
}

// capKey identifies one supported (element type, vector width) pair.
type capKey struct {
	dtype DType
	width int
}

func (k capKey) String() string {
	return fmt.Sprintf("%s/%d", k.dtype, k.width)
}

// multimemCap is one entry of the capability table: the concrete reduce
// and store implementations for a (dtype, width) pair. The table is closed
// and built once by the selected backend; a missing entry means the
// operation is unsupported and must abort, never silently degrade.
type multimemCap struct {
	ldReduceAdd func(p MulticastPtr, width int) Vec
	st          func(p MulticastPtr, width int, v Vec)
}

// MultimemLdReduceAdd atomically loads the value at p from every rank's
// copy and sum-reduces them lane-wise, returning one vector of the
// requested width. Relaxed ordering: no program-order guarantee relative
// to unrelated operations unless a barrier bridges them.
//
// width must not exceed the alignment probed for the address; violating
// that is a caller contract violation, not checked here. Unsupported
// (dtype, width) pairs abort.
func MultimemLdReduceAdd(p MulticastPtr, dt DType, width int) Vec {
	return multimemBackend.LdReduceAdd(p, dt, width)
}

// MultimemSt atomically writes v to every rank's copy of p with Relaxed
// ordering. Same support matrix, alignment contract and abort policy as
// MultimemLdReduceAdd.
func MultimemSt(p MulticastPtr, dt DType, width int, v Vec) {
	multimemBackend.St(p, dt, width, v)
}

// ldReduceAddF32 sums one float32 lane per 32-bit word across ranks.
func ldReduceAddF32(p MulticastPtr, width int) Vec {
	out := VecForWidth(width)
	dst := out.U32s()
	for w := range dst {
		var sum float32
		for r := 0; r < p.NumRanks(); r++ {
			sum += math.Float32frombits(atomic.LoadUint32(p.word(r, w)))
		}
		dst[w] = math.Float32bits(sum)
	}
	return out
}

// ldReduceAddBF16x2 sums two packed bfloat16 lanes per 32-bit word across
// ranks. Lanes accumulate in float32 and round once at the end, the widest
// accumulation the packed format allows.
func ldReduceAddBF16x2(p MulticastPtr, width int) Vec {
	out := VecForWidth(width)
	dst := out.U32s()
	for w := range dst {
		var lo, hi float32
		for r := 0; r < p.NumRanks(); r++ {
			word := atomic.LoadUint32(p.word(r, w))
			lo += BFloat16(word).ToFloat32()
			hi += BFloat16(word >> 16).ToFloat32()
		}
		dst[w] = uint32(ToBFloat16(lo)) | uint32(ToBFloat16(hi))<<16
	}
	return out
}

// ldReduceAddF32Wide is ldReduceAddF32 moving two lanes per atomic 64-bit
// word. Width 4 stays on the 32-bit path; wider requests are at least
// 8-aligned by the alignment contract, so the 64-bit access is legal.
func ldReduceAddF32Wide(p MulticastPtr, width int) Vec {
	if width == 4 {
		return ldReduceAddF32(p, width)
	}
	out := VecForWidth(width)
	dst := out.U32s()
	for w := 0; w < width/8; w++ {
		var lo, hi float32
		for r := 0; r < p.NumRanks(); r++ {
			word := atomic.LoadUint64(p.word64(r, w))
			lo += math.Float32frombits(uint32(word))
			hi += math.Float32frombits(uint32(word >> 32))
		}
		dst[2*w] = math.Float32bits(lo)
		dst[2*w+1] = math.Float32bits(hi)
	}
	return out
}

// stWords writes the vector to every rank's copy, one atomic 32-bit word
// at a time. The store is bit-pattern moving and therefore shared by every
// dtype in the table.
func stWords(p MulticastPtr, width int, v Vec) {
	if v.Width() != width {
		exceptions.Panicf("symmem: multimem.st width %d does not match vector width %d", width, v.Width())
	}
	src := v.U32s()
	for r := 0; r < p.NumRanks(); r++ {
		for w := range src {
			atomic.StoreUint32(p.word(r, w), src[w])
		}
	}
}

// stWords64 is stWords moving atomic 64-bit words, used when the host's
// feature baseline enables the wide path.
func stWords64(p MulticastPtr, width int, v Vec) {
	if width == 4 {
		stWords(p, width, v)
		return
	}
	if v.Width() != width {
		exceptions.Panicf("symmem: multimem.st width %d does not match vector width %d", width, v.Width())
	}
	src := v.(Vec64).U64s()
	for r := 0; r < p.NumRanks(); r++ {
		for w := range src {
			atomic.StoreUint64(p.word64(r, w), src[w])
		}
	}
}

// supportedCaps builds the closed capability set of the loopback
// interconnect: 32-bit float and packed bfloat16, at every vector width.
// wide selects the 64-bit-word transfer paths; it is fixed when the
// backend is constructed, so the table entries never branch on it.
func supportedCaps(wide bool) map[capKey]multimemCap {
	ldF32, st := ldReduceAddF32, stWords
	if wide {
		ldF32, st = ldReduceAddF32Wide, stWords64
	}
	caps := make(map[capKey]multimemCap)
	for _, width := range []int{4, 8, 16} {
		caps[capKey{F32, width}] = multimemCap{ldReduceAdd: ldF32, st: st}
		caps[capKey{BF16, width}] = multimemCap{ldReduceAdd: ldReduceAddBF16x2, st: st}
	}
	return caps
}

// Capability describes one supported (dtype, width) pair, as reported to
// callers that want to pick a code path before launching.
type Capability struct {
	DType string `json:"dtype" yaml:"dtype"`
	Width int    `json:"width" yaml:"width"`
}

// CapabilityMatrix returns the supported (dtype, width) pairs of the
// selected backend, ordered by dtype then width.
func CapabilityMatrix() []Capability {
	var out []Capability
	for _, dt := range DTypes() {
		for _, width := range []int{4, 8, 16} {
			if multimemBackend.Supports(dt, width) {
				out = append(out, Capability{DType: dt.String(), Width: width})
			}
		}
	}
	return out
}
