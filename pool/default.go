// File: pool/default.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
)

// DefaultManager returns a process-wide Manager so all components reuse the
// same class pools instead of fragmenting allocations.
func DefaultManager() *Manager {
	defaultOnce.Do(func() {
		defaultMgr = NewManager()
	})
	return defaultMgr
}

// DefaultPool is a shortcut to fetch a class pool from the default manager.
func DefaultPool(payloadSize int) *BlockPool {
	return DefaultManager().GetPool(payloadSize)
}
