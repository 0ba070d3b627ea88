// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// integration_test.go — Exercises the library layers together: options feed
// the control plane, pools back the frame logger, and the growth strategy
// is torn down by pool self-destruction.
package tests

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/momentics/hioload-core/api"
	"github.com/momentics/hioload-core/control"
	"github.com/momentics/hioload-core/fake"
	"github.com/momentics/hioload-core/options"
	"github.com/momentics/hioload-core/pool"
	"github.com/momentics/hioload-core/transport"
	"github.com/momentics/hioload-core/wslog"
)

func TestPoolClosesGrowerOnDestruction(t *testing.T) {
	g := &fake.Grower{Script: []int{2, 0, 3}}
	p := pool.New(64, 8, pool.WithGrowth(g))

	a, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	// Script entry 0 exhausts this grow call.
	if _, err := p.Acquire(); !errors.Is(err, api.ErrNoCapacity) {
		t.Fatalf("expected ErrNoCapacity, got %v", err)
	}
	c, err := p.Acquire() // entry 3 succeeds
	if err != nil {
		t.Fatal(err)
	}
	if g.Calls() != 3 {
		t.Fatalf("grower ran %d times, want 3", g.Calls())
	}

	p.Shutdown()
	if g.Closed() {
		t.Fatal("grower closed while blocks were outstanding")
	}
	for _, buf := range [][]byte{a, b, c} {
		p.Release(buf)
	}
	if !g.Closed() {
		t.Fatal("pool destruction did not close the growth strategy")
	}
}

func TestOptionsFeedControlPlane(t *testing.T) {
	reg := options.NewRegistry()
	if err := reg.Register(
		options.NewString("wslog.level", "info", "frame log level"),
		options.NewSet("wslog.capture", []string{"inbound"}, "captured directions"),
	); err != nil {
		t.Fatal(err)
	}

	ctl := control.NewController()
	reloaded := make(chan struct{}, 1)
	ctl.OnReload(func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	reg.PublishTo(ctl.Config())
	<-reloaded

	cfg := ctl.GetConfig()
	if cfg["wslog.level"] != "info" {
		t.Fatalf("config missing option snapshot: %v", cfg)
	}
}

func TestFrameLoggerOverManagedPool(t *testing.T) {
	mgr := pool.NewManager()
	ctl := control.NewController()
	preview := mgr.GetPool(64)
	ctl.TrackPool("preview", preview)

	var sink bytes.Buffer
	fl := wslog.NewFrameLogger(
		wslog.WithOutput(slog.New(slog.NewTextHandler(&sink, nil))),
		wslog.WithBufferPool(preview),
		wslog.WithPreview(16),
	)

	raw, err := wslog.EncodeFrame(&wslog.Frame{Final: true, Opcode: wslog.OpText, Payload: []byte("integration")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wslog.CaptureStream(raw, wslog.DirInbound, fl); err != nil {
		t.Fatal(err)
	}
	if fl.Logged() != 1 {
		t.Fatalf("logged %d, want 1", fl.Logged())
	}
	if err := fl.Shutdown(); err != nil {
		t.Fatal(err)
	}

	stats := ctl.Stats()
	if _, ok := stats["pool.preview"]; !ok {
		t.Fatalf("control plane lost track of the pool: %v", stats)
	}
	if err := mgr.Shutdown(); err != nil {
		t.Fatal(err)
	}
}

func TestTransportShimReportsDrainLikePool(t *testing.T) {
	// The shim and the pool share the drain vocabulary: open → draining →
	// closed mirrors active → draining → destroyed.
	tr := transport.NewTranslator()
	for _, n := range []int{transport.NativeConnecting, transport.NativeEstablished, transport.NativeHalfClosed, transport.NativeClosed} {
		if _, err := tr.Apply(n, ""); err != nil {
			t.Fatal(err)
		}
	}
	hist := tr.History()
	if len(hist) != 4 || hist[2].To != api.TransportDraining {
		t.Fatalf("unexpected history: %+v", hist)
	}
}
