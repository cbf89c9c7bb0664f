package symmem

import (
	"strings"

	"github.com/gomlx/exceptions"
	"golang.org/x/sys/cpu"
	"k8s.io/klog/v2"
)

// Multimem is the multicast instruction backend: one implementation of
// {load-reduce-add, store} per platform. The backend is selected once at
// package init and never re-examined per call; per-call branching on
// capability flags is exactly what this indirection exists to avoid.
type Multimem interface {
	// Name identifies the backend.
	Name() string
	// Supports reports whether the (dtype, width) pair has a capability
	// entry.
	Supports(dt DType, width int) bool
	// LdReduceAdd implements MultimemLdReduceAdd.
	LdReduceAdd(p MulticastPtr, dt DType, width int) Vec
	// St implements MultimemSt.
	St(p MulticastPtr, dt DType, width int, v Vec)
}

var multimemBackend Multimem

func init() {
	multimemBackend = selectMultimemBackend()
}

// selectMultimemBackend picks the backend for this process. On CPU the
// loopback interconnect is always available: every rank's copy lives in
// host memory and word-granular atomics provide the multicast atomicity
// the hardware instruction would. The host's feature baseline decides the
// transfer word width once, here; the capability entries it builds never
// re-examine it. The unsupported backend remains as the stub for builds
// targeting platforms without an interconnect.
func selectMultimemBackend() Multimem {
	wide := hasWideWordBaseline()
	b := &loopbackMultimem{caps: supportedCaps(wide), wide: wide}
	klog.V(1).Infof("symmem: selected multimem backend %q (wide words: %v, CPU features: %s)",
		b.Name(), wide, strings.Join(CPUFeatures(), ", "))
	return b
}

// hasWideWordBaseline reports whether the host's SIMD baseline supports
// the 64-bit-word transfer paths of the loopback interconnect. Without it
// the backend moves data in 32-bit words.
func hasWideWordBaseline() bool {
	return cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD
}

// MultimemBackendName returns the name of the selected backend.
func MultimemBackendName() string {
	return multimemBackend.Name()
}

// MultimemWideWords reports whether the selected backend moves data in
// 64-bit words.
func MultimemWideWords() bool {
	if b, ok := multimemBackend.(*loopbackMultimem); ok {
		return b.wide
	}
	return false
}

// loopbackMultimem is the simulated interconnect: multicast loads and
// stores resolve to word-atomic accesses on every rank's host-memory copy.
type loopbackMultimem struct {
	caps map[capKey]multimemCap
	wide bool
}

func (b *loopbackMultimem) Name() string { return "loopback" }

func (b *loopbackMultimem) Supports(dt DType, width int) bool {
	_, ok := b.caps[capKey{dt, width}]
	return ok
}

func (b *loopbackMultimem) LdReduceAdd(p MulticastPtr, dt DType, width int) Vec {
	c, ok := b.caps[capKey{dt, width}]
	if !ok {
		exceptions.Panicf("symmem: multimem.ld_reduce.add unsupported for %s on backend %q", capKey{dt, width}, b.Name())
	}
	return c.ldReduceAdd(p, width)
}

func (b *loopbackMultimem) St(p MulticastPtr, dt DType, width int, v Vec) {
	c, ok := b.caps[capKey{dt, width}]
	if !ok {
		exceptions.Panicf("symmem: multimem.st unsupported for %s on backend %q", capKey{dt, width}, b.Name())
	}
	c.st(p, width, v)
}

// unsupportedMultimem is the stub backend for platforms without multicast
// support. Every operation aborts with identifying context so a caller can
// pick a different code path when rebuilding for other hardware; there is
// no software fallback, because a silent fallback would break the
// cross-device atomicity other lanes rely on.
type unsupportedMultimem struct {
	reason string
}

func (b *unsupportedMultimem) Name() string { return "unsupported" }

func (b *unsupportedMultimem) Supports(DType, int) bool { return false }

func (b *unsupportedMultimem) LdReduceAdd(p MulticastPtr, dt DType, width int) Vec {
	exceptions.Panicf("symmem: multimem.ld_reduce.add for %s unavailable: %s", capKey{dt, width}, b.reason)
	return nil
}

func (b *unsupportedMultimem) St(p MulticastPtr, dt DType, width int, v Vec) {
	exceptions.Panicf("symmem: multimem.st for %s unavailable: %s", capKey{dt, width}, b.reason)
}

// CPUFeatures returns the host SIMD extensions the backend selection looks
// at, for diagnostics.
func CPUFeatures() []string {
	var features []string
	if cpu.X86.HasSSE2 {
		features = append(features, "SSE2")
	}
	if cpu.X86.HasSSE41 || cpu.X86.HasSSE42 {
		features = append(features, "SSE4")
	}
	if cpu.X86.HasAVX {
		features = append(features, "AVX")
	}
	if cpu.X86.HasAVX2 {
		features = append(features, "AVX2")
	}
	if cpu.X86.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if cpu.ARM64.HasASIMD {
		features = append(features, "ASIMD")
	}
	if len(features) == 0 {
		return []string{"none"}
	}
	return features
}
