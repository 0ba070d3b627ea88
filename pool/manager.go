// File: pool/manager.go
// Package pool implements size-classed block pool management.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync"

	"github.com/momentics/hioload-core/api"
)

// Predefined (power-of-two) payload size classes (bytes).
// This table can be tuned for deployment needs.
var payloadClasses = [...]int{
	256,
	1 * 1024,
	4 * 1024,
	16 * 1024,
	64 * 1024,
	256 * 1024,
}

// classUpperBound returns the smallest class >= requested payload size.
func classUpperBound(size int) int {
	for _, c := range payloadClasses {
		if size <= c {
			return c
		}
	}
	return payloadClasses[len(payloadClasses)-1] // fallback: biggest class
}

// defaultPayloadOffset keeps the payload 16 bytes into every block: room
// for the 8-byte free-list header plus 8 spare bytes, 4-byte aligned.
const defaultPayloadOffset = 16

// Manager groups one BlockPool per payload size class, creating each pool
// lazily on first use. Shutdown fans out to every pool ever created.
type Manager struct {
	mu            sync.RWMutex
	pools         map[int]*BlockPool
	payloadOffset int
	newGrower     func(class int) api.GrowthStrategy
	down          bool
}

// ManagerOption customizes manager construction.
type ManagerOption func(*Manager)

// WithPayloadOffset overrides the default block geometry for all pools.
func WithPayloadOffset(off int) ManagerOption {
	return func(m *Manager) { m.payloadOffset = off }
}

// WithGrowerFactory supplies the growth strategy for each class pool.
// The factory runs once per class, at pool creation.
func WithGrowerFactory(fn func(class int) api.GrowthStrategy) ManagerOption {
	return func(m *Manager) { m.newGrower = fn }
}

// NewManager creates an empty manager. Without a grower factory every class
// pool uses a SliceGrower producing 16 blocks per grow.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		pools:         make(map[int]*BlockPool),
		payloadOffset: defaultPayloadOffset,
		newGrower: func(int) api.GrowthStrategy {
			return &SliceGrower{BlocksPerGrow: 16}
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetPool returns the pool serving payload sizes up to the class bound of
// size, lazily creating it on first request.
func (m *Manager) GetPool(size int) *BlockPool {
	class := classUpperBound(size)
	m.mu.RLock()
	p, ok := m.pools[class]
	m.mu.RUnlock()
	if ok {
		return p
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok = m.pools[class]; ok {
		return p
	}
	p = New(class, m.payloadOffset, WithGrowth(m.newGrower(class)))
	m.pools[class] = p
	return p
}

// Shutdown latches every class pool. Pools with outstanding buffers drain
// and destroy themselves as those buffers come back. Implements
// api.GracefulShutdown; always returns nil.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.down {
		m.mu.Unlock()
		return nil
	}
	m.down = true
	pools := make([]*BlockPool, 0, len(m.pools))
	for _, p := range m.pools {
		pools = append(pools, p)
	}
	m.mu.Unlock()
	for _, p := range pools {
		p.Shutdown()
	}
	return nil
}

// Stats snapshots counters of every class pool, keyed by class size.
func (m *Manager) Stats() map[int]api.BlockPoolStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]api.BlockPoolStats, len(m.pools))
	for class, p := range m.pools {
		out[class] = p.Stats()
	}
	return out
}

var _ api.GracefulShutdown = (*Manager)(nil)
