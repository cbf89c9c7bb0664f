package symmem

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Dim3 represents 3D dimensions for grid and block configurations.
// Unset axes count as 1, so Dim3{X: 8} is an 8-wide one-dimensional shape.
type Dim3 struct {
	X, Y, Z int
}

func (d Dim3) normalized() Dim3 {
	if d.X == 0 {
		d.X = 1
	}
	if d.Y == 0 {
		d.Y = 1
	}
	if d.Z == 0 {
		d.Z = 1
	}
	return d
}

// Size returns the total number of elements in the shape.
func (d Dim3) Size() int {
	n := d.normalized()
	return n.X * n.Y * n.Z
}

// ThreadID identifies a lane's position within the execution hierarchy,
// with the same indexing semantics as CUDA's built-in variables.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Lane index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// Global returns the lane's linearized global index on its rank.
func (t ThreadID) Global() int {
	blockID := t.BlockIdx.Z*t.GridDim.Y*t.GridDim.X + t.BlockIdx.Y*t.GridDim.X + t.BlockIdx.X
	threadID := t.ThreadIdx.Z*t.BlockDim.Y*t.BlockDim.X + t.ThreadIdx.Y*t.BlockDim.X + t.ThreadIdx.X
	return blockID*t.BlockDim.Size() + threadID
}

// KernelFunc is the body run by every lane of every rank. rank identifies
// the simulated device; blk provides intra-block synchronization.
//
// Kernels close over their data (symmetric buffers, signal pads) rather
// than receiving variadic args.
type KernelFunc func(rank int, tid ThreadID, blk *Block)

// Block is the execution group a lane belongs to. Lanes of one block on
// one rank share a Block value; its only shared behavior is SyncThreads.
type Block struct {
	bar *laneBarrier
}

// SyncThreads blocks until every lane of the block has reached the call.
// It is the full intra-group synchronization point the SyncRemoteBlocks
// usage patterns require, since only a subset of lanes execute the
// put/wait exchange.
func (b *Block) SyncThreads() {
	b.bar.wait()
}

// laneBarrier is a reusable generation-counted barrier for the lanes of
// one block. Unlike the cross-device signal primitives this may block on
// the scheduler: lanes are goroutines here, and __syncthreads has no
// spin-only requirement.
type laneBarrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	count   int
	gen     uint64
}

func newLaneBarrier(parties int) *laneBarrier {
	b := &laneBarrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *laneBarrier) wait() {
	b.mu.Lock()
	gen := b.gen
	b.count++
	if b.count == b.parties {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// ValidateLaunchConfig checks grid and block dimensions against the
// platform ceilings. Ceilings are enforced here, at setup, so the
// primitives themselves stay check-free.
func ValidateLaunchConfig(grid, block Dim3) error {
	if grid.Size() < 1 || grid.Size() > MaxNumBlocks {
		return NewLaunchError("Launch",
			fmt.Sprintf("grid size %d outside [1, %d]", grid.Size(), MaxNumBlocks))
	}
	if block.Size() < 1 || block.Size() > MaxNumThreadsPerBlock {
		return NewLaunchError("Launch",
			fmt.Sprintf("block size %d outside [1, %d]", block.Size(), MaxNumThreadsPerBlock))
	}
	return nil
}

// Launch runs kernel on every rank of the world with the given launch
// configuration: grid.Size() blocks of block.Size() lanes per rank, one
// goroutine per lane so a spinning lane can never deadlock the lane it
// waits on. Launch returns after every lane on every rank has finished.
//
// A kernel that calls SyncRemoteBlocks needs block.Size() >= NumRanks();
// kernels that never use the remote barrier are free to launch smaller
// blocks, so the configuration only draws a warning here.
func (w *World) Launch(grid, block Dim3, kernel KernelFunc) error {
	if err := ValidateLaunchConfig(grid, block); err != nil {
		return errors.Wrapf(err, "world %s", w.id)
	}
	grid = grid.normalized()
	block = block.normalized()
	if block.Size() < w.numRanks {
		klog.Warningf("symmem: world %s launching blocks of %d lanes with %d ranks; SyncRemoteBlocks would hang in this configuration",
			w.id, block.Size(), w.numRanks)
	}

	var wg sync.WaitGroup
	for rank := 0; rank < w.numRanks; rank++ {
		for bz := 0; bz < grid.Z; bz++ {
			for by := 0; by < grid.Y; by++ {
				for bx := 0; bx < grid.X; bx++ {
					blk := &Block{bar: newLaneBarrier(block.Size())}
					blockIdx := Dim3{X: bx, Y: by, Z: bz}
					for tz := 0; tz < block.Z; tz++ {
						for ty := 0; ty < block.Y; ty++ {
							for tx := 0; tx < block.X; tx++ {
								tid := ThreadID{
									BlockIdx:  blockIdx,
									ThreadIdx: Dim3{X: tx, Y: ty, Z: tz},
									BlockDim:  block,
									GridDim:   grid,
								}
								wg.Add(1)
								go func(rank int, tid ThreadID, blk *Block) {
									defer wg.Done()
									kernel(rank, tid, blk)
								}(rank, tid, blk)
							}
						}
					}
				}
			}
		}
	}
	wg.Wait()
	return nil
}
