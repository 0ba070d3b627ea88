package wslog_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/momentics/hioload-core/pool"
	"github.com/momentics/hioload-core/wslog"
)

func encode(t *testing.T, op byte, payload []byte) []byte {
	t.Helper()
	raw, err := wslog.EncodeFrame(&wslog.Frame{Final: true, Opcode: op, Payload: payload})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestDecodeFrameRoundTrip(t *testing.T) {
	payload := []byte("payload bytes")
	raw := encode(t, wslog.OpText, payload)
	f, n, err := wslog.DecodeFrame(raw)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(raw) {
		t.Fatalf("consumed %d of %d bytes", n, len(raw))
	}
	if !f.Final || f.Opcode != wslog.OpText || f.Masked {
		t.Fatalf("frame header mismatch: %+v", f)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload mismatch: %q", f.Payload)
	}
	if f.OpcodeName() != "text" {
		t.Fatalf("opcode name %q", f.OpcodeName())
	}
}

func TestDecodeFrameIncomplete(t *testing.T) {
	raw := encode(t, wslog.OpBinary, []byte("0123456789"))
	for cut := 0; cut < len(raw); cut++ {
		f, n, err := wslog.DecodeFrame(raw[:cut])
		if err != nil {
			t.Fatalf("cut %d: %v", cut, err)
		}
		if f != nil || n != 0 {
			t.Fatalf("cut %d: expected incomplete, got frame %+v consumed %d", cut, f, n)
		}
	}
}

func TestDecodeFrameUnmasks(t *testing.T) {
	// 5-byte masked text frame, key 0x01020304.
	payload := []byte("hello")
	raw := []byte{0x81, 0x80 | 5, 0x01, 0x02, 0x03, 0x04}
	for i, b := range payload {
		raw = append(raw, b^raw[2+i%4])
	}
	f, n, err := wslog.DecodeFrame(raw)
	if err != nil || f == nil || n != len(raw) {
		t.Fatalf("decode: f=%v n=%d err=%v", f, n, err)
	}
	if !f.Masked || !bytes.Equal(f.Payload, payload) {
		t.Fatalf("unmask failed: %+v", f)
	}
}

func newTestLogger(opts ...wslog.LoggerOption) (*wslog.FrameLogger, *bytes.Buffer) {
	var sink bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&sink, nil))
	opts = append(opts, wslog.WithOutput(logger))
	return wslog.NewFrameLogger(opts...), &sink
}

func TestFrameLoggerSync(t *testing.T) {
	fl, sink := newTestLogger(wslog.WithPreview(8))
	raw := append(encode(t, wslog.OpText, []byte("first frame")),
		encode(t, wslog.OpPing, nil)...)
	consumed, err := wslog.CaptureStream(raw, wslog.DirInbound, fl)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != len(raw) {
		t.Fatalf("consumed %d of %d", consumed, len(raw))
	}
	if fl.Logged() != 2 {
		t.Fatalf("logged %d frames, want 2", fl.Logged())
	}
	out := sink.String()
	for _, want := range []string{"ws frame", "opcode=text", "opcode=ping", "dir=in"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
	if err := fl.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := fl.Shutdown(); err != nil { // idempotent
		t.Fatal(err)
	}
}

func TestFrameLoggerAsyncDrains(t *testing.T) {
	fl, sink := newTestLogger(wslog.WithAsync(64), wslog.WithPreview(4))
	const frames = 50
	raw := encode(t, wslog.OpBinary, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00})
	for i := 0; i < frames; i++ {
		if _, err := wslog.CaptureStream(raw, wslog.DirOutbound, fl); err != nil {
			t.Fatal(err)
		}
	}
	deadline := time.After(2 * time.Second)
	for fl.Logged()+fl.Dropped() < frames {
		select {
		case <-deadline:
			t.Fatalf("drained %d+%d of %d", fl.Logged(), fl.Dropped(), frames)
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if err := fl.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if fl.Logged() == 0 || !bytes.Contains(sink.Bytes(), []byte("preview=deadbe")) {
		t.Fatalf("async output missing preview: %s", sink.String())
	}
}

func TestPreviewCappedBySetting(t *testing.T) {
	// The injected pool's payload class is far larger than the preview
	// setting; the logged preview must still honor the setting.
	p := pool.New(64, 8, pool.WithGrowth(&pool.SliceGrower{BlocksPerGrow: 4}))
	fl, sink := newTestLogger(wslog.WithBufferPool(p), wslog.WithPreview(4))
	raw := encode(t, wslog.OpText, bytes.Repeat([]byte{'a'}, 32))
	if _, err := wslog.CaptureStream(raw, wslog.DirInbound, fl); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(sink.Bytes(), []byte("preview=61616161\n")) {
		t.Fatalf("preview not capped at 4 bytes:\n%s", sink.String())
	}
	if err := fl.Shutdown(); err != nil {
		t.Fatal(err)
	}
	p.Shutdown()
}

func TestAsyncCapacityNotPowerOfTwo(t *testing.T) {
	fl, _ := newTestLogger(wslog.WithAsync(100), wslog.WithPreview(0))
	raw := encode(t, wslog.OpText, []byte("ring sizing"))
	if _, err := wslog.CaptureStream(raw, wslog.DirInbound, fl); err != nil {
		t.Fatal(err)
	}
	if err := fl.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if fl.Logged() != 1 {
		t.Fatalf("logged %d frames, want 1", fl.Logged())
	}
}

func TestShutdownFlushesPendingRecords(t *testing.T) {
	// Shutdown must account for every frame that made it into the ring,
	// even ones the drain goroutine never got to.
	fl, _ := newTestLogger(wslog.WithAsync(64), wslog.WithPreview(4))
	const frames = 40
	raw := encode(t, wslog.OpBinary, []byte{1, 2, 3, 4})
	for i := 0; i < frames; i++ {
		if _, err := wslog.CaptureStream(raw, wslog.DirOutbound, fl); err != nil {
			t.Fatal(err)
		}
	}
	if err := fl.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if got := fl.Logged() + fl.Dropped(); got != frames {
		t.Fatalf("accounted for %d of %d frames after shutdown", got, frames)
	}
}

func TestFrameLoggerSharedPool(t *testing.T) {
	p := pool.New(16, 8, pool.WithGrowth(&pool.SliceGrower{BlocksPerGrow: 4}))
	fl, _ := newTestLogger(wslog.WithBufferPool(p), wslog.WithPreview(16))
	raw := encode(t, wslog.OpText, []byte("shared pool preview"))
	if _, err := wslog.CaptureStream(raw, wslog.DirInbound, fl); err != nil {
		t.Fatal(err)
	}
	if err := fl.Shutdown(); err != nil {
		t.Fatal(err)
	}
	// The logger must not shut down an injected pool.
	if _, err := p.Acquire(); err != nil {
		t.Fatalf("injected pool unusable after logger shutdown: %v", err)
	}
}
