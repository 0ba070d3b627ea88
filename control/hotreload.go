// control/hotreload.go
// Manages global hot-reload hooks for config changes.
// Adds a TriggerHotReloadSync for deterministic test notification.

package control

import "sync"

var (
	reloadMu    sync.Mutex
	reloadHooks []func()
)

// RegisterReloadHook adds a new component reload listener.
func RegisterReloadHook(fn func()) {
	reloadMu.Lock()
	reloadHooks = append(reloadHooks, fn)
	reloadMu.Unlock()
}

// TriggerHotReload dispatches all reload hooks asynchronously. ConfigStore
// triggers it on every merge, so process-wide listeners see local changes.
func TriggerHotReload() {
	for _, fn := range snapshotHooks() {
		go fn()
	}
}

// TriggerHotReloadSync invokes all reload hooks synchronously (for test determinism).
func TriggerHotReloadSync() {
	for _, fn := range snapshotHooks() {
		fn()
	}
}

func snapshotHooks() []func() {
	reloadMu.Lock()
	defer reloadMu.Unlock()
	return append(([]func())(nil), reloadHooks...)
}
