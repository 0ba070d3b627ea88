// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with dynamic update and hot-reload propagation.

package control

import (
	"sync"
)

// ConfigStore is a dynamic key/value map with atomic snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config:    make(map[string]any),
		listeners: make([]func(), 0),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// Get returns one config value and whether it is present.
func (cs *ConfigStore) Get(key string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.config[key]
	return v, ok
}

// SetConfig merges new values, then notifies store listeners and the global
// hot-reload hooks.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	cs.dispatchReload()
	cs.mu.Unlock()
	TriggerHotReload()
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// dispatchReload invokes all listeners.
func (cs *ConfigStore) dispatchReload() {
	for _, fn := range cs.listeners {
		go fn()
	}
}
