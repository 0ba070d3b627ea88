// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for system-level monitoring.
// Exposes counters in a thread-safe map with dynamic registration.

package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hioload-core/api"
)

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// PublishPoolStats records one pool's counters under the given prefix, e.g.
// "pool.256.free". Typically called from a debug probe or a sampling loop.
func (mr *MetricsRegistry) PublishPoolStats(prefix string, st api.BlockPoolStats) {
	mr.mu.Lock()
	mr.metrics[fmt.Sprintf("%s.free", prefix)] = st.FreeBlocks
	mr.metrics[fmt.Sprintf("%s.allocated", prefix)] = st.AllocatedBlocks
	mr.metrics[fmt.Sprintf("%s.in_use", prefix)] = st.InUse
	mr.metrics[fmt.Sprintf("%s.state", prefix)] = st.State.String()
	mr.updated = time.Now()
	mr.mu.Unlock()
}
