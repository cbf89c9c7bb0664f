package symmem

import (
	"sync/atomic"
)

// SignalPad is one rank's array of signal flags, the rendezvous medium for
// cross-device barriers. Rank r's pad is written by every rank but only
// rank r ever waits on it: slot (blockIdx, peer) is written exclusively by
// peer and consumed exclusively by the owner. Every slot is 0 except in
// the window between a put and its matching wait.
//
// Pads are allocated once per world, zeroed at creation, and reused across
// barrier calls for the lifetime of the world.
type SignalPad []uint32

// NewSignalPad returns a zeroed pad sized for worldSize peers across
// MaxNumBlocks execution groups.
func NewSignalPad(worldSize int) SignalPad {
	return make(SignalPad, SignalPadWords(worldSize))
}

// Slot returns the flag for the (blockIdx, peer) pair. worldSize is the
// row stride; it must be the value the pad was sized with.
func (p SignalPad) Slot(blockIdx, worldSize, peer int) *uint32 {
	return &p[blockIdx*worldSize+peer]
}

// Drained reports whether every slot is back to 0, i.e. no signal is
// pending anywhere on the pad. Useful as a between-rounds invariant check
// in tests and watchdogs; the primitives themselves never call it.
func (p SignalPad) Drained() bool {
	for i := range p {
		if atomic.LoadUint32(&p[i]) != 0 {
			return false
		}
	}
	return true
}
