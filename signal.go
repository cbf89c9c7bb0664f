package symmem

import (
	"runtime"
	"sync/atomic"

	"github.com/gomlx/exceptions"
)

// The signal primitives are deliberately literal spin loops. The execution
// model they serve has no scheduler to notify, so "suspension" is a tight
// CAS retry; runtime.Gosched between attempts is the goroutine analogue of
// a polite spin and keeps a waiting lane from starving the peer it waits
// on when GOMAXPROCS is small. There is no timeout and no backoff: an
// unmatched put/wait pair spins forever, and correctness depends entirely
// on the caller issuing matched pairs.

// cas performs an atomic compare-and-swap on addr and returns the value
// the location held before the operation.
func cas(addr *uint32, compare, val uint32) uint32 {
	if atomic.CompareAndSwapUint32(addr, compare, val) {
		return compare
	}
	return atomic.LoadUint32(addr)
}

// PutSignal raises the flag at addr, spinning until the location is 0 and
// then setting it to 1. This is the only legal way to set a signal flag:
// spinning while the slot is still raised is what keeps a racing re-put
// from corrupting a signal the consumer has not drained yet.
//
// sem must be Relaxed or Release.
func PutSignal(addr *uint32, sem MemOrder) {
	if sem != Relaxed && sem != Release {
		exceptions.Panicf("symmem: PutSignal called with %s ordering (want relaxed or release)", sem)
	}
	for cas(addr, 0, 1) != 0 {
		runtime.Gosched()
	}
}

// WaitSignal consumes the flag at addr, spinning until the location is 1
// and then resetting it to 0. One PutSignal is consumed by exactly one
// WaitSignal; the pairing is the unit of synchronization.
//
// sem must be Relaxed or Acquire.
func WaitSignal(addr *uint32, sem MemOrder) {
	if sem != Relaxed && sem != Acquire {
		exceptions.Panicf("symmem: WaitSignal called with %s ordering (want relaxed or acquire)", sem)
	}
	for cas(addr, 1, 0) != 1 {
		runtime.Gosched()
	}
}
