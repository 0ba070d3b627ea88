// File: pool/growth_linux.go
// Package pool: off-heap growth strategy backed by anonymous mmap regions.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package pool

import (
	"sync"

	"golang.org/x/sys/unix"
)

// MmapGrower obtains raw chunks from anonymous private mappings, keeping
// pool memory off the Go heap. Regions stay mapped for the life of the
// pool — the pool never hands memory back while alive — and are unmapped
// in Close, which the pool invokes during self-destruction.
type MmapGrower struct {
	BlocksPerGrow int // blocks per mapping; 0 means 1

	mu      sync.Mutex
	regions [][]byte
}

// Grow implements api.GrowthStrategy. Mapping failure is reported as "added
// zero blocks": the pool surfaces exhaustion and no error escapes here.
func (g *MmapGrower) Grow(blockSize int) []byte {
	n := g.BlocksPerGrow
	if n <= 0 {
		n = 1
	}
	mem, err := unix.Mmap(-1, 0, n*blockSize,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil
	}
	g.mu.Lock()
	g.regions = append(g.regions, mem)
	g.mu.Unlock()
	return mem
}

// Close unmaps every region this grower ever produced. After Close no
// buffer carved from those regions may be touched.
func (g *MmapGrower) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var first error
	for _, r := range g.regions {
		if err := unix.Munmap(r); err != nil && first == nil {
			first = err
		}
	}
	g.regions = nil
	return first
}
