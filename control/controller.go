// control/controller.go
// Author: momentics <momentics@gmail.com>
//
// Binds the config store, metrics registry, and debug probes behind the
// api.Control contract, and samples block pool gauges on demand.

package control

import (
	"github.com/momentics/hioload-core/api"
)

// Controller is the canonical api.Control implementation.
type Controller struct {
	cfg     *ConfigStore
	metrics *MetricsRegistry
	probes  *DebugProbes
}

// NewController wires fresh store, registry, and probe instances.
func NewController() *Controller {
	return &Controller{
		cfg:     NewConfigStore(),
		metrics: NewMetricsRegistry(),
		probes:  NewDebugProbes(),
	}
}

// GetConfig implements api.Control.
func (c *Controller) GetConfig() map[string]any {
	return c.cfg.GetSnapshot()
}

// SetConfig implements api.Control.
func (c *Controller) SetConfig(cfg map[string]any) error {
	c.cfg.SetConfig(cfg)
	return nil
}

// Stats implements api.Control: merged metrics and probe output.
func (c *Controller) Stats() map[string]any {
	out := c.metrics.GetSnapshot()
	for k, v := range c.probes.DumpState() {
		out[k] = v
	}
	return out
}

// OnReload implements api.Control.
func (c *Controller) OnReload(fn func()) {
	c.cfg.OnReload(fn)
}

// RegisterDebugProbe implements api.Control.
func (c *Controller) RegisterDebugProbe(name string, fn func() any) {
	c.probes.RegisterProbe(name, fn)
}

// Config exposes the underlying store for components that publish into it.
func (c *Controller) Config() *ConfigStore { return c.cfg }

// Metrics exposes the underlying registry.
func (c *Controller) Metrics() *MetricsRegistry { return c.metrics }

// TrackPool registers a debug probe that samples the pool's counters and
// mirrors them into the metrics registry on every dump.
func (c *Controller) TrackPool(name string, p api.BlockPool) {
	c.probes.RegisterProbe("pool."+name, func() any {
		st := p.Stats()
		c.metrics.PublishPoolStats("pool."+name, st)
		return st
	})
}

var _ api.Control = (*Controller)(nil)
