// File: wslog/logger.go
// Package wslog implements the pass-through frame logger.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wslog

import (
	"encoding/hex"
	"log/slog"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-core/api"
	"github.com/momentics/hioload-core/pool"
)

// Direction tells which way a logged frame traveled.
type Direction int

const (
	DirInbound Direction = iota
	DirOutbound
)

func (d Direction) String() string {
	if d == DirOutbound {
		return "out"
	}
	return "in"
}

// Record is one logged frame observation. Records are pooled; Preview, when
// present, is a block pool payload returned to its pool after emission.
type Record struct {
	Time       time.Time
	Direction  Direction
	Opcode     byte
	OpName     string
	Final      bool
	Masked     bool
	PayloadLen int64
	Preview    []byte
	previewLen int
}

const defaultPreviewLen = 32

// FrameLogger logs WebSocket frames passing through a connection without
// altering them. In synchronous mode LogFrame emits inline; in asynchronous
// mode records cross a lock-free ring to a drain goroutine and frames are
// counted as dropped when the ring is full — the logger never blocks the
// I/O path it observes.
type FrameLogger struct {
	log        *slog.Logger
	previewLen int
	bufs       *pool.BlockPool
	ownBufs    bool
	records    *pool.SyncPool[*Record]

	ring    *pool.RingBuffer[*Record]
	wake    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	sweepMu sync.Mutex

	logged  atomic.Uint64
	dropped atomic.Uint64
	closed  atomic.Bool
}

// LoggerOption customizes frame logger construction.
type LoggerOption func(*FrameLogger)

// WithOutput overrides the default slog logger.
func WithOutput(l *slog.Logger) LoggerOption {
	return func(fl *FrameLogger) { fl.log = l }
}

// WithPreview sets how many payload bytes are copied into each record.
// Zero disables previews entirely.
func WithPreview(n int) LoggerOption {
	return func(fl *FrameLogger) { fl.previewLen = n }
}

// WithBufferPool injects the block pool backing payload previews. The
// caller keeps ownership; the logger will not shut it down.
func WithBufferPool(p *pool.BlockPool) LoggerOption {
	return func(fl *FrameLogger) { fl.bufs, fl.ownBufs = p, false }
}

// WithAsync switches to ring-buffered emission with the given capacity,
// rounded up to the next power of two as the ring requires.
func WithAsync(capacity uint64) LoggerOption {
	return func(fl *FrameLogger) { fl.ring = pool.NewRingBuffer[*Record](ceilPow2(capacity)) }
}

func ceilPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	return 1 << uint(bits.Len64(n-1))
}

// NewFrameLogger constructs a logger. Without WithBufferPool it creates its
// own preview pool (grown 32 blocks at a time) and destroys it on Shutdown.
func NewFrameLogger(opts ...LoggerOption) *FrameLogger {
	fl := &FrameLogger{
		previewLen: defaultPreviewLen,
		records:    pool.NewSyncPool(func() *Record { return &Record{} }),
		done:       make(chan struct{}),
		wake:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(fl)
	}
	if fl.log == nil {
		fl.log = slog.Default()
	}
	if fl.bufs == nil && fl.previewLen > 0 {
		fl.bufs = pool.New(fl.previewLen, 8,
			pool.WithGrowth(&pool.SliceGrower{BlocksPerGrow: 32}))
		fl.ownBufs = true
	}
	if fl.ring != nil {
		fl.wg.Add(1)
		go fl.drain()
	}
	return fl
}

// LogFrame records one frame observation. Safe for concurrent use.
func (fl *FrameLogger) LogFrame(dir Direction, f *Frame) {
	if fl.closed.Load() {
		return
	}
	rec := fl.records.Get()
	rec.Time = time.Now()
	rec.Direction = dir
	rec.Opcode = f.Opcode
	rec.OpName = f.OpcodeName()
	rec.Final = f.Final
	rec.Masked = f.Masked
	rec.PayloadLen = f.PayloadLen
	rec.Preview, rec.previewLen = fl.preview(f)

	if fl.ring == nil {
		fl.emit(rec)
		return
	}
	if !fl.ring.Enqueue(rec) {
		// Ring full: drop the observation, never stall the data path.
		fl.dropped.Add(1)
		fl.recycle(rec)
		return
	}
	select {
	case fl.wake <- struct{}{}:
	default:
	}
	// Shutdown may have raced past the closed check above and already run
	// its final sweep; a record enqueued after that sweep is ours to flush.
	if fl.closed.Load() {
		fl.sweep()
	}
}

// preview copies the leading payload bytes into a pool buffer. Exhaustion
// of the preview pool degrades to "no preview" backpressure handling.
func (fl *FrameLogger) preview(f *Frame) ([]byte, int) {
	n := fl.previewLen
	if n <= 0 || fl.bufs == nil || len(f.Payload) == 0 {
		return nil, 0
	}
	buf, err := fl.bufs.Acquire()
	if err != nil {
		return nil, 0
	}
	// The pool's payload class may exceed the configured preview length.
	if n > len(buf) {
		n = len(buf)
	}
	return buf, copy(buf[:n], f.Payload)
}

func (fl *FrameLogger) emit(rec *Record) {
	attrs := []any{
		"dir", rec.Direction.String(),
		"opcode", rec.OpName,
		"fin", rec.Final,
		"masked", rec.Masked,
		"len", rec.PayloadLen,
	}
	if rec.previewLen > 0 {
		attrs = append(attrs, "preview", hex.EncodeToString(rec.Preview[:rec.previewLen]))
	}
	fl.log.Info("ws frame", attrs...)
	fl.logged.Add(1)
	fl.recycle(rec)
}

// sweep drains and emits everything left in the ring. Serialized so the
// drain goroutine, Shutdown, and a late LogFrame never dequeue concurrently.
func (fl *FrameLogger) sweep() {
	fl.sweepMu.Lock()
	defer fl.sweepMu.Unlock()
	for {
		rec, ok := fl.ring.Dequeue()
		if !ok {
			return
		}
		fl.emit(rec)
	}
}

func (fl *FrameLogger) recycle(rec *Record) {
	if rec.Preview != nil {
		fl.bufs.Release(rec.Preview)
		rec.Preview = nil
	}
	rec.previewLen = 0
	fl.records.Put(rec)
}

func (fl *FrameLogger) drain() {
	defer fl.wg.Done()
	for {
		fl.sweep()
		select {
		case <-fl.wake:
		case <-fl.done:
			fl.sweep()
			return
		}
	}
}

// Logged returns how many frames were emitted so far.
func (fl *FrameLogger) Logged() uint64 { return fl.logged.Load() }

// Dropped returns how many frames were discarded due to a full ring.
func (fl *FrameLogger) Dropped() uint64 { return fl.dropped.Load() }

// Shutdown stops accepting frames, flushes the async ring, and destroys the
// preview pool when the logger owns it. Implements api.GracefulShutdown.
func (fl *FrameLogger) Shutdown() error {
	if !fl.closed.CompareAndSwap(false, true) {
		return nil
	}
	if fl.ring != nil {
		close(fl.done)
		fl.wg.Wait()
		// Catch records enqueued between the closed check in LogFrame and
		// the drain goroutine's exit.
		fl.sweep()
	}
	if fl.ownBufs && fl.bufs != nil {
		fl.bufs.Shutdown()
	}
	return nil
}

var _ api.GracefulShutdown = (*FrameLogger)(nil)
