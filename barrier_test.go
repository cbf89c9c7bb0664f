package symmem

import (
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/require"
)

// The barrier must return on a rank only after every rank has issued the
// call for the matching block index, under any arrival order. Each rank
// announces its arrival before the barrier; after the barrier every lane
// checks that all announcements happened. Per-rank delays skew the arrival
// order across rounds.
func TestSyncRemoteBlocksSymmetry(t *testing.T) {
	const worldSize = 4
	const rounds = 5
	grid := Dim3{X: 2}
	block := Dim3{X: worldSize}

	w, err := NewWorld(worldSize)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for round := 0; round < rounds; round++ {
		var arrived [MaxNumBlocks]int32
		delays := make([]time.Duration, worldSize)
		for r := range delays {
			delays[r] = time.Duration(rng.Intn(5)) * time.Millisecond
		}

		err := w.Launch(grid, block, func(rank int, tid ThreadID, blk *Block) {
			if tid.ThreadIdx.X == 0 {
				time.Sleep(delays[rank])
				atomic.AddInt32(&arrived[tid.BlockIdx.X], 1)
			}
			blk.SyncThreads()
			SyncRemoteBlocks(tid, w.SignalPads(), rank, worldSize, Relaxed)
			blk.SyncThreads()
			if got := atomic.LoadInt32(&arrived[tid.BlockIdx.X]); got != worldSize {
				t.Errorf("round %d: rank %d released from block %d with %d/%d arrivals",
					round, rank, tid.BlockIdx.X, got, worldSize)
			}
		})
		require.NoError(t, err)
		require.True(t, w.PadsDrained(), "round %d left a pending signal", round)
	}
}

// Publish pattern: a write performed by a rank before the AcqRel barrier is
// observed by every rank after it.
func TestSyncRemoteBlocksPublish(t *testing.T) {
	const worldSize = 4
	w, err := NewWorld(worldSize)
	require.NoError(t, err)
	buf, err := w.AllocSymmetric(worldSize * 4)
	require.NoError(t, err)

	err = w.Launch(Dim3{X: 1}, Dim3{X: worldSize}, func(rank int, tid ThreadID, blk *Block) {
		if tid.ThreadIdx.X == 0 {
			buf.Float32(rank)[rank] = float32(rank + 1)
		}
		blk.SyncThreads()
		SyncRemoteBlocks(tid, w.SignalPads(), rank, worldSize, AcqRel)
		blk.SyncThreads()
		for peer := 0; peer < worldSize; peer++ {
			if got := buf.Float32(peer)[peer]; got != float32(peer+1) {
				t.Errorf("rank %d: peer %d's write not visible after publish barrier (got %v)", rank, peer, got)
			}
		}
	})
	require.NoError(t, err)
	require.True(t, w.PadsDrained())
}

// Blocks synchronize independently per block index: a one-block rendezvous
// must not release a different block index.
func TestSyncRemoteBlocksPerBlockIndex(t *testing.T) {
	const worldSize = 2
	w, err := NewWorld(worldSize)
	require.NoError(t, err)

	var perBlock [2]int32
	err = w.Launch(Dim3{X: 2}, Dim3{X: worldSize}, func(rank int, tid ThreadID, blk *Block) {
		// Stagger block 1 so any cross-block release would be visible.
		if tid.BlockIdx.X == 1 {
			time.Sleep(5 * time.Millisecond)
		}
		if tid.ThreadIdx.X == 0 {
			atomic.AddInt32(&perBlock[tid.BlockIdx.X], 1)
		}
		blk.SyncThreads()
		SyncRemoteBlocks(tid, w.SignalPads(), rank, worldSize, Relaxed)
		blk.SyncThreads()
		if got := atomic.LoadInt32(&perBlock[tid.BlockIdx.X]); got != worldSize {
			t.Errorf("block %d released with %d/%d arrivals", tid.BlockIdx.X, got, worldSize)
		}
	})
	require.NoError(t, err)
	require.True(t, w.PadsDrained())
}

// Lanes beyond worldSize take no part in the exchange.
func TestSyncRemoteBlocksExtraLanes(t *testing.T) {
	const worldSize = 2
	w, err := NewWorld(worldSize)
	require.NoError(t, err)

	err = w.Launch(Dim3{X: 1}, Dim3{X: 8}, func(rank int, tid ThreadID, blk *Block) {
		SyncRemoteBlocks(tid, w.SignalPads(), rank, worldSize, AcqRel)
	})
	require.NoError(t, err)
	require.True(t, w.PadsDrained())
}

func TestSyncRemoteBlocksOrderingValidation(t *testing.T) {
	w, err := NewWorld(2)
	require.NoError(t, err)
	tid := ThreadID{BlockDim: Dim3{X: 2}, GridDim: Dim3{X: 1}}
	for _, sem := range []MemOrder{Acquire, Release} {
		err := exceptions.TryCatch[error](func() {
			SyncRemoteBlocks(tid, w.SignalPads(), 0, 2, sem)
		})
		require.Error(t, err, "%s must be rejected", sem)
	}
	require.True(t, w.PadsDrained())
}
