package symmem

import (
	"github.com/gomlx/exceptions"
)

// SyncRemoteBlocks synchronizes all execution groups sharing the caller's
// block index across every rank. It is not a barrier across all lanes of
// all ranks: lanes with ThreadIdx.X < worldSize each handshake with one
// peer rank (put into the target's pad, wait on the own pad), giving an
// all-to-all pairwise exchange per block index. The block must therefore
// have at least worldSize lanes, and every rank must issue the call with a
// matching block index or all participants hang.
//
// It can be combined with intra-block synchronization to express the
// established usage patterns:
//
// Pattern 0 — prior visibility: writes to symmetric buffers from previous
// launches, on any rank, are visible to the current launch:
//
//	SyncRemoteBlocks(tid, pads, rank, worldSize, Relaxed)
//	blk.SyncThreads()
//
// Pattern 1 — publish: writes from the current block are visible to all
// remote blocks with the matching block index:
//
//	blk.SyncThreads()
//	SyncRemoteBlocks(tid, pads, rank, worldSize, AcqRel)
//	blk.SyncThreads()
//
// Pattern 2 — drain: symmetric buffers read by the current launch are safe
// for writing by subsequent launches on any rank:
//
//	blk.SyncThreads()
//	SyncRemoteBlocks(tid, pads, rank, worldSize, Relaxed)
//
// sem selects the variant: Relaxed exchanges signals with no visibility
// guarantee (the bracketing synchronization carries it), AcqRel uses a
// Release put and an Acquire wait so writes before the put are visible
// after the matching wait. Any other ordering aborts.
func SyncRemoteBlocks(tid ThreadID, pads []SignalPad, rank, worldSize int, sem MemOrder) {
	var putSem, waitSem MemOrder
	switch sem {
	case Relaxed:
		putSem, waitSem = Relaxed, Relaxed
	case AcqRel:
		putSem, waitSem = Release, Acquire
	default:
		exceptions.Panicf("symmem: SyncRemoteBlocks called with %s ordering (want relaxed or acq_rel)", sem)
	}
	if tid.ThreadIdx.X >= worldSize {
		return
	}
	targetRank := tid.ThreadIdx.X
	PutSignal(pads[targetRank].Slot(tid.BlockIdx.X, worldSize, rank), putSem)
	WaitSignal(pads[rank].Slot(tid.BlockIdx.X, worldSize, targetRank), waitSem)
}
