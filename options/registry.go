// File: options/registry.go
// Package options implements the option registry and its bindings.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package options

import (
	"flag"
	"sort"
	"sync"

	"github.com/momentics/hioload-core/api"
	"github.com/momentics/hioload-core/control"
)

// Registry indexes options by name and drives flag binding and config
// publication for a whole tool or service.
type Registry struct {
	mu   sync.RWMutex
	opts map[string]Option
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{opts: make(map[string]Option)}
}

// Register adds options, rejecting duplicate names.
func (r *Registry) Register(opts ...Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range opts {
		if _, exists := r.opts[o.Name()]; exists {
			return api.NewError(api.ErrCodeInvalidArgument, "duplicate option").
				WithContext("name", o.Name())
		}
		r.opts[o.Name()] = o
	}
	return nil
}

// Lookup returns the named option.
func (r *Registry) Lookup(name string) (Option, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.opts[name]
	return o, ok
}

// Names returns all registered option names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.opts))
	for name := range r.opts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// BindFlags attaches every registered option to the flag set.
func (r *Registry) BindFlags(fs *flag.FlagSet) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.opts {
		o.Bind(fs)
	}
}

// Snapshot returns the current value of every option keyed by name.
func (r *Registry) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]any, len(r.opts))
	for name, o := range r.opts {
		out[name] = o.Current()
	}
	return out
}

// PublishTo merges the registry snapshot into a config store, notifying its
// reload listeners.
func (r *Registry) PublishTo(cs *control.ConfigStore) {
	cs.SetConfig(r.Snapshot())
}

// ResetAll restores every option to its default.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.opts {
		o.Reset()
	}
}
