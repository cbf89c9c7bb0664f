// Package symmem configuration constants
package symmem

// Platform ceilings. These mirror the documented limits of the target
// hardware and are validated once at world/launch setup, never inline at
// call sites.
const (
	// MaxNumBlocks is the maximum number of execution groups that may
	// synchronize concurrently through one signal pad.
	MaxNumBlocks = 8

	// MaxNumThreadsPerBlock is the maximum number of lanes per execution
	// group.
	MaxNumThreadsPerBlock = 1024
)

// Vector and alignment parameters
const (
	// MaxVectorWidth is the widest multicast transfer unit in bytes.
	MaxVectorWidth = 16

	// SymmetricAlignment is the guaranteed alignment of symmetric buffer
	// allocations, chosen so the widest vector op is always issuable at
	// offset zero.
	SymmetricAlignment = 16

	// SignalWordBytes is the size of one signal pad slot.
	SignalWordBytes = 4
)

// SignalPadWords returns the number of uint32 slots one rank's signal pad
// needs for a given world size: one slot per (block index, peer rank) pair.
func SignalPadWords(worldSize int) int {
	return MaxNumBlocks * worldSize
}
