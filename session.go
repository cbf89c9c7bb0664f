package symmem

import (
	"fmt"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// World models one symmetric-memory session: a fixed set of simulated
// ranks that address each other's buffers through multicast pointers and
// rendezvous through per-rank signal pads. Rank identity is immutable for
// the lifetime of the world; membership changes mean a new world.
type World struct {
	id       uuid.UUID
	numRanks int
	pads     []SignalPad
}

// NewWorld creates a world of numRanks simulated ranks with zeroed signal
// pads. The world size is capped by MaxNumThreadsPerBlock because the
// remote block barrier dedicates one lane per peer.
func NewWorld(numRanks int) (*World, error) {
	if numRanks < 1 {
		return nil, NewConfigError("NewWorld", fmt.Sprintf("world size %d must be at least 1", numRanks))
	}
	if numRanks > MaxNumThreadsPerBlock {
		return nil, NewConfigError("NewWorld",
			fmt.Sprintf("world size %d exceeds %d, the most peers one block can handshake", numRanks, MaxNumThreadsPerBlock))
	}
	w := &World{
		id:       uuid.New(),
		numRanks: numRanks,
		pads:     make([]SignalPad, numRanks),
	}
	for r := range w.pads {
		w.pads[r] = NewSignalPad(numRanks)
	}
	klog.V(1).Infof("symmem: world %s created: %d ranks, %s signal pad per rank",
		w.id, numRanks, humanize.IBytes(uint64(SignalPadWords(numRanks)*SignalWordBytes)))
	return w, nil
}

// ID returns the world's session identity.
func (w *World) ID() uuid.UUID {
	return w.id
}

// NumRanks returns the number of participants.
func (w *World) NumRanks() int {
	return w.numRanks
}

// SignalPads returns the per-rank signal pads, indexed by rank. The slice
// is shared, not copied: it is the live rendezvous medium.
func (w *World) SignalPads() []SignalPad {
	return w.pads
}

// PadsDrained reports whether every slot of every rank's pad is 0, the
// steady-state invariant between barrier rounds.
func (w *World) PadsDrained() bool {
	for _, p := range w.pads {
		if !p.Drained() {
			return false
		}
	}
	return true
}

// SymmBuffer is a symmetric allocation: one physical copy per rank, all of
// the same size and alignment, plus the multicast address resolving to all
// of them. The copies live in host memory; "device" reads and writes go
// through the rank-indexed views or the multicast ops.
type SymmBuffer struct {
	world  *World
	copies [][]byte
	size   int
}

// AllocSymmetric allocates size bytes on every rank, zeroed and aligned to
// SymmetricAlignment so the widest vector op is issuable at offset zero.
func (w *World) AllocSymmetric(size int) (*SymmBuffer, error) {
	if size <= 0 {
		return nil, NewMemoryError("AllocSymmetric", fmt.Sprintf("size %d must be positive", size), nil)
	}
	b := &SymmBuffer{
		world:  w,
		copies: make([][]byte, w.numRanks),
		size:   size,
	}
	for r := range b.copies {
		b.copies[r] = AlignedBytes(size, SymmetricAlignment)
	}
	klog.V(1).Infof("symmem: world %s allocated symmetric buffer: %s per rank x %d ranks",
		w.id, humanize.IBytes(uint64(size)), w.numRanks)
	return b, nil
}

// Size returns the per-rank size in bytes.
func (b *SymmBuffer) Size() int {
	return b.size
}

// Multicast returns the multicast address of the buffer's first byte.
func (b *SymmBuffer) Multicast() MulticastPtr {
	bases := make([]unsafe.Pointer, len(b.copies))
	for r := range b.copies {
		bases[r] = unsafe.Pointer(&b.copies[r][0])
	}
	return NewMulticastPtr(bases)
}

// Bytes returns rank's physical copy.
func (b *SymmBuffer) Bytes(rank int) []byte {
	return b.copies[rank]
}

// Float32 returns rank's copy viewed as float32 elements.
func (b *SymmBuffer) Float32(rank int) []float32 {
	c := b.copies[rank]
	return unsafe.Slice((*float32)(unsafe.Pointer(&c[0])), len(c)/4)
}

// BFloat16 returns rank's copy viewed as BFloat16 elements.
func (b *SymmBuffer) BFloat16(rank int) BFloat16Slice {
	return NewBFloat16Slice(b.copies[rank])
}

// Float16 returns rank's copy viewed as Float16 elements.
func (b *SymmBuffer) Float16(rank int) Float16Slice {
	return NewFloat16Slice(b.copies[rank])
}
