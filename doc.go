// Copyright ©2025 The symmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symmem provides device-side synchronization and multicast
// data-movement primitives for symmetric memory, executed on CPU.
//
// Symmetric memory lets a group of ranks (simulated devices) address each
// other's corresponding buffers through a uniform scheme. This package
// implements the two primitives everything else is built on:
//
//   - Cross-device block synchronization over signal pads
//     (PutSignal, WaitSignal, SyncRemoteBlocks), and
//   - Vectorized multicast loads and stores over every rank's copy of a
//     buffer (MultimemLdReduceAdd, MultimemSt).
//
// Collective algorithms (all-reduce, broadcast, ...) are callers of these
// primitives, not part of this package. A typical caller probes alignment
// to pick the widest safe vector, brackets its data movement with
// SyncRemoteBlocks, and issues multicast ops in between:
//
//	w, _ := symmem.NewWorld(4)
//	buf, _ := w.AllocSymmetric(1024)
//	w.Launch(symmem.Dim3{X: 1}, symmem.Dim3{X: 128},
//		func(rank int, tid symmem.ThreadID, blk *symmem.Block) {
//			symmem.SyncRemoteBlocks(tid, w.SignalPads(), rank, w.NumRanks(), symmem.Relaxed)
//			blk.SyncThreads()
//			// ... multimem loads/stores ...
//			blk.SyncThreads()
//			symmem.SyncRemoteBlocks(tid, w.SignalPads(), rank, w.NumRanks(), symmem.AcqRel)
//			blk.SyncThreads()
//		})
package symmem
