package pool_test

import (
	"testing"

	"github.com/momentics/hioload-core/api"
	"github.com/momentics/hioload-core/pool"
)

func TestManagerClassRouting(t *testing.T) {
	m := pool.NewManager()
	p1 := m.GetPool(100)
	p2 := m.GetPool(200)
	if p1 != p2 {
		t.Fatal("sizes within one class must share a pool")
	}
	if p1.PayloadSize() != 256 {
		t.Fatalf("class payload size %d, want 256", p1.PayloadSize())
	}
	if m.GetPool(300) == p1 {
		t.Fatal("distinct classes must not share a pool")
	}
}

func TestManagerShutdownFansOut(t *testing.T) {
	m := pool.NewManager(pool.WithGrowerFactory(func(int) api.GrowthStrategy {
		return &pool.SliceGrower{BlocksPerGrow: 2}
	}))
	small := m.GetPool(64)
	large := m.GetPool(8 * 1024)
	buf, err := small.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := m.Shutdown(); err != nil { // idempotent
		t.Fatal(err)
	}
	if st := large.Stats(); st.State != api.PoolDestroyed {
		t.Fatalf("idle pool state %v, want destroyed", st.State)
	}
	if st := small.Stats(); st.State != api.PoolDraining {
		t.Fatalf("busy pool state %v, want draining", st.State)
	}
	small.Release(buf)
	if st := small.Stats(); st.State != api.PoolDestroyed {
		t.Fatalf("drained pool state %v, want destroyed", st.State)
	}
}

func TestManagerStats(t *testing.T) {
	m := pool.NewManager()
	p := m.GetPool(1000)
	if _, err := p.Acquire(); err != nil {
		t.Fatal(err)
	}
	stats := m.Stats()
	st, ok := stats[1024]
	if !ok {
		t.Fatalf("missing stats for class 1024: %v", stats)
	}
	if st.InUse != 1 {
		t.Fatalf("in-use %d, want 1", st.InUse)
	}
}
