// File: api/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the block pool contract: a non-blocking fixed-size payload
// allocator with a deferred self-destruction protocol.

package api

// PoolState enumerates the lifecycle states of a block pool.
type PoolState int

const (
	// PoolActive: the pool lends and reclaims blocks normally.
	PoolActive PoolState = iota
	// PoolDraining: shutdown was requested while blocks were still lent;
	// the release returning the last block destroys the pool.
	PoolDraining
	// PoolDestroyed: terminal. No further operations are valid.
	PoolDestroyed
)

func (s PoolState) String() string {
	switch s {
	case PoolActive:
		return "active"
	case PoolDraining:
		return "draining"
	case PoolDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// BlockPool lends fixed-size payload buffers and reclaims them on release.
//
// All methods are safe for concurrent use on one instance. Acquire never
// blocks waiting for capacity: exhaustion surfaces as ErrNoCapacity and the
// caller applies its own backpressure. After Shutdown returns, callers must
// not Acquire on the instance again; the pool does not police this.
type BlockPool interface {
	// Acquire returns a payload buffer of the pool's fixed payload size,
	// or ErrNoCapacity when the free list is empty and growth added nothing.
	Acquire() ([]byte, error)

	// Release returns a payload previously obtained from Acquire on this
	// exact instance. Releasing anything else is a contract violation.
	Release(payload []byte)

	// Shutdown latches the pool into draining. Idempotent. The pool
	// destroys itself once no block is lent, either immediately or inside
	// the release call that returns the last outstanding block.
	Shutdown()

	// Stats exposes free-list and allocation counters for observability.
	Stats() BlockPoolStats
}

// GrowthStrategy supplies raw memory when a pool's free list is exhausted.
//
// Grow runs under the pool's lock. It must be fast, must not block
// indefinitely, and must not call back into the owning pool (Acquire,
// Release or Shutdown would deadlock). A failure to obtain memory is
// reported by returning nil, never by panicking.
type GrowthStrategy interface {
	// Grow returns one raw chunk holding a whole number of blocks of
	// blockSize bytes each, or nil when no memory could be obtained.
	Grow(blockSize int) []byte
}

// BlockPoolStats aggregates block pool accounting counters.
//
// AllocatedBlocks only ever grows: the pool never returns raw memory while
// alive, it only stops lending.
type BlockPoolStats struct {
	FreeBlocks      int
	AllocatedBlocks int
	InUse           int
	PayloadSize     int
	State           PoolState
}
