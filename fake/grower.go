// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the core interfaces.

package fake

import (
	"github.com/momentics/hioload-core/api"
)

// Grower is a scripted api.GrowthStrategy for tests. Each Grow call
// consumes the next entry of the script: the number of blocks to produce,
// where zero (or a consumed script) yields no memory. Close is recorded so
// tests can assert the pool tore the strategy down during destruction.
type Grower struct {
	Script []int

	calls  int
	closed bool
}

// Grow implements api.GrowthStrategy. Runs under the pool lock; no
// synchronization of its own.
func (g *Grower) Grow(blockSize int) []byte {
	g.calls++
	if len(g.Script) == 0 {
		return nil
	}
	n := g.Script[0]
	g.Script = g.Script[1:]
	if n <= 0 {
		return nil
	}
	return make([]byte, n*blockSize)
}

// Close records teardown.
func (g *Grower) Close() error {
	g.closed = true
	return nil
}

// Calls reports how many times Grow ran.
func (g *Grower) Calls() int { return g.calls }

// Closed reports whether the pool closed this strategy.
func (g *Grower) Closed() bool { return g.closed }

var _ api.GrowthStrategy = (*Grower)(nil)
