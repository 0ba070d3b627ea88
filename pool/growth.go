// File: pool/growth.go
// Package pool ships the stock growth strategies for BlockPool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

// NopGrower adds nothing. It is the default strategy, matching a pool whose
// capacity is managed entirely by whoever constructed it.
type NopGrower struct{}

// Grow implements api.GrowthStrategy.
func (NopGrower) Grow(int) []byte { return nil }

// SliceGrower carves heap-backed chunks of BlocksPerGrow blocks each.
// When MaxBlocks is positive the grower stops handing out memory once that
// many blocks have been produced in total, which makes pool exhaustion
// reproducible in tests and bounded deployments.
//
// Grow always runs under the owning pool's lock, so the grown counter needs
// no synchronization of its own.
type SliceGrower struct {
	BlocksPerGrow int // blocks per chunk; 0 means 1
	MaxBlocks     int // total cap; 0 means unbounded

	grown int
}

// Grow implements api.GrowthStrategy.
func (g *SliceGrower) Grow(blockSize int) []byte {
	n := g.BlocksPerGrow
	if n <= 0 {
		n = 1
	}
	if g.MaxBlocks > 0 {
		if left := g.MaxBlocks - g.grown; left < n {
			n = left
		}
	}
	if n <= 0 {
		return nil
	}
	g.grown += n
	return make([]byte, n*blockSize)
}

// Grown reports how many blocks this grower has produced so far.
func (g *SliceGrower) Grown() int { return g.grown }
