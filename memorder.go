package symmem

// MemOrder is the memory ordering semantic attached to a synchronization
// primitive. It mirrors the hardware qualifiers the primitives were
// designed around; Go's sync/atomic operations are sequentially consistent,
// which is strictly stronger than every value here, so the parameter
// documents the contract each call site relies on and selects the
// put/wait strengths of the barrier variants.
type MemOrder int

const (
	// Relaxed imposes no visibility ordering beyond the atomicity of the
	// operation itself.
	Relaxed MemOrder = iota
	// Acquire makes writes released by the matching peer visible to reads
	// after the operation.
	Acquire
	// Release makes writes before the operation visible to a matching
	// acquire on the peer.
	Release
	// AcqRel combines Release on signal with Acquire on wait.
	AcqRel
)

// String returns the memory order as a string
func (o MemOrder) String() string {
	switch o {
	case Relaxed:
		return "relaxed"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case AcqRel:
		return "acq_rel"
	default:
		return "unknown"
	}
}
