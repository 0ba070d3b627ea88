// File: pool/growth_stub.go
// Package pool: heap fallback for platforms without the mmap-backed grower.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build !linux

package pool

// MmapGrower falls back to heap-backed chunks on platforms without the
// anonymous-mmap path. Behavior is otherwise identical to the Linux build.
type MmapGrower struct {
	BlocksPerGrow int // blocks per chunk; 0 means 1
}

// Grow implements api.GrowthStrategy.
func (g *MmapGrower) Grow(blockSize int) []byte {
	n := g.BlocksPerGrow
	if n <= 0 {
		n = 1
	}
	return make([]byte, n*blockSize)
}

// Close is a no-op on the heap fallback; the GC reclaims chunks once the
// destroyed pool drops its references.
func (g *MmapGrower) Close() error { return nil }
