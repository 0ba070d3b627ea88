package pool_test

import (
	"testing"

	"github.com/momentics/hioload-core/pool"
)

func TestSliceGrowerCap(t *testing.T) {
	g := &pool.SliceGrower{BlocksPerGrow: 3, MaxBlocks: 5}
	if chunk := g.Grow(10); len(chunk) != 30 {
		t.Fatalf("first grow: %d bytes, want 30", len(chunk))
	}
	if chunk := g.Grow(10); len(chunk) != 20 {
		t.Fatalf("capped grow: %d bytes, want 20", len(chunk))
	}
	if chunk := g.Grow(10); chunk != nil {
		t.Fatalf("grow past cap returned %d bytes, want nil", len(chunk))
	}
	if g.Grown() != 5 {
		t.Fatalf("grown %d, want 5", g.Grown())
	}
}

func TestNopGrowerAddsNothing(t *testing.T) {
	if chunk := (pool.NopGrower{}).Grow(64); chunk != nil {
		t.Fatal("NopGrower returned memory")
	}
}

func TestMmapGrowerLifecycle(t *testing.T) {
	g := &pool.MmapGrower{BlocksPerGrow: 4}
	p := pool.New(128, 16, pool.WithGrowth(g))
	buf, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		buf[i] = byte(i)
	}
	p.Release(buf)
	// Shutdown destroys the idle pool and closes the grower, which unmaps
	// the regions on platforms that mapped them.
	p.Shutdown()
}
