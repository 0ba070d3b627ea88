package control_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-core/control"
	"github.com/momentics/hioload-core/pool"
)

func TestConfigStoreSnapshotAndReload(t *testing.T) {
	cs := control.NewConfigStore()
	var fired atomic.Int32
	cs.OnReload(func() { fired.Add(1) })
	cs.SetConfig(map[string]any{"pool.payload_offset": 16})
	snap := cs.GetSnapshot()
	if snap["pool.payload_offset"] != 16 {
		t.Fatalf("snapshot missing merged key: %v", snap)
	}
	// Listener dispatch is asynchronous.
	deadline := time.After(time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("reload listener never fired")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if _, ok := cs.Get("absent"); ok {
		t.Fatal("Get reported a missing key as present")
	}
}

func TestHotReloadHooksSync(t *testing.T) {
	var fired atomic.Int32
	control.RegisterReloadHook(func() { fired.Add(1) })
	control.TriggerHotReloadSync()
	if fired.Load() == 0 {
		t.Fatal("synchronous trigger skipped registered hook")
	}
}

func TestSetConfigFiresGlobalHooks(t *testing.T) {
	var fired atomic.Int32
	control.RegisterReloadHook(func() { fired.Add(1) })
	cs := control.NewConfigStore()
	cs.SetConfig(map[string]any{"wslog.level": "debug"})
	deadline := time.After(time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("global reload hook never fired after SetConfig")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestControllerTrackPool(t *testing.T) {
	c := control.NewController()
	p := pool.New(32, 8, pool.WithGrowth(&pool.SliceGrower{BlocksPerGrow: 2}))
	c.TrackPool("payload32", p)

	buf, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	stats := c.Stats()
	if _, ok := stats["pool.payload32"]; !ok {
		t.Fatalf("probe output missing: %v", stats)
	}
	// The probe mirrors gauges into the metrics registry.
	m := c.Metrics().GetSnapshot()
	if m["pool.payload32.in_use"] != 1 {
		t.Fatalf("in_use gauge = %v, want 1", m["pool.payload32.in_use"])
	}
	p.Release(buf)
	p.Shutdown()
}
