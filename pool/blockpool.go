// File: pool/blockpool.go
// Package pool implements the fixed-size block pool with deferred self-destruction.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/momentics/hioload-core/api"
)

// headerSize is the per-block header region reserved ahead of the payload.
// While a block is idle the header stores the intrusive free-list link
// (chunk index + block index of the next free block); while the block is
// lent the header is dead space the caller must not touch.
const headerSize = 8

// linkNil terminates the intrusive free list.
const linkNil = ^uint32(0)

// BlockPool lends fixed-size payload buffers with minimal per-acquire cost.
//
// Geometry is fixed at construction: every block spans
// payloadOffset+payloadSize bytes inside a raw chunk, with the payload
// starting exactly payloadOffset bytes in. Blocks are never returned to the
// allocator while the pool is alive; the pool only grows, via the injected
// growth strategy, and only stops lending.
//
// Shutdown is a one-way latch. Once latched, the pool destroys itself the
// moment no block is lent: synchronously inside Shutdown when already idle,
// otherwise inside whichever Release brings the last block home. The single
// mutex serializes every free-list and counter mutation, so exactly one
// caller ever observes the terminal condition.
type BlockPool struct {
	payloadSize   int
	payloadOffset int
	blockSize     int

	mu        sync.Mutex
	chunks    [][]byte // every chunk the growth strategy ever returned
	headChunk uint32
	headBlock uint32
	free      int
	allocated int

	shuttingDown bool
	destroyed    bool

	grow      api.GrowthStrategy
	onDestroy func()
	log       *slog.Logger
}

// PoolOption customizes block pool construction.
type PoolOption func(*BlockPool)

// WithGrowth injects the growth strategy invoked on exhaustion.
func WithGrowth(g api.GrowthStrategy) PoolOption {
	return func(p *BlockPool) { p.grow = g }
}

// WithDestroyHook registers a hook invoked exactly once, after the pool has
// transitioned to destroyed and its growth strategy has been closed.
func WithDestroyHook(fn func()) PoolOption {
	return func(p *BlockPool) { p.onDestroy = fn }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) PoolOption {
	return func(p *BlockPool) { p.log = l }
}

// New constructs an empty block pool with the given geometry.
//
// payloadSize must be positive; payloadOffset must be at least the 8-byte
// block header and a multiple of 4. Both are deployment constants, so a
// violation is a programming error and panics rather than returning an
// error. The pool preallocates nothing: the first Acquire triggers growth.
func New(payloadSize, payloadOffset int, opts ...PoolOption) *BlockPool {
	if payloadSize <= 0 {
		panic(fmt.Sprintf("pool: payload size must be positive, got %d", payloadSize))
	}
	if payloadOffset < headerSize {
		panic(fmt.Sprintf("pool: payload offset %d smaller than block header %d", payloadOffset, headerSize))
	}
	if payloadOffset%4 != 0 {
		panic(fmt.Sprintf("pool: payload offset %d not 4-byte aligned", payloadOffset))
	}
	p := &BlockPool{
		payloadSize:   payloadSize,
		payloadOffset: payloadOffset,
		blockSize:     payloadOffset + payloadSize,
		headChunk:     linkNil,
		headBlock:     linkNil,
		grow:          NopGrower{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	return p
}

// PayloadSize returns the usable bytes of every lent buffer.
func (p *BlockPool) PayloadSize() int { return p.payloadSize }

// PayloadOffset returns the distance from block start to payload start.
func (p *BlockPool) PayloadOffset() int { return p.payloadOffset }

// BlockSize returns the full per-block footprint, header region included.
func (p *BlockPool) BlockSize() int { return p.blockSize }

// Acquire pops an idle block and returns its payload region.
//
// When the free list is empty the growth strategy runs under the pool lock;
// if it adds nothing, Acquire returns api.ErrNoCapacity immediately. It
// never waits for a Release.
func (p *BlockPool) Acquire() ([]byte, error) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil, api.ErrPoolDestroyed
	}
	if p.free == 0 {
		p.growLocked()
	}
	if p.free == 0 {
		p.mu.Unlock()
		return nil, api.ErrNoCapacity
	}
	ci, bi := p.popLocked()
	payload := p.payloadAt(ci, bi)
	p.mu.Unlock()
	return payload, nil
}

// Release returns a lent payload to the free list.
//
// payload must originate from Acquire on this exact pool and must not have
// been released already. Foreign slices are detected and panic; that check
// is a debug assertion, not part of the contract.
//
// When the pool is draining and this release brings the last lent block
// back, the pool destroys itself before Release returns.
func (p *BlockPool) Release(payload []byte) {
	last := func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.destroyed {
			panic("pool: release on destroyed pool")
		}
		ci, bi := p.locateLocked(payload)
		p.pushLocked(ci, bi)
		return p.shuttingDown && p.free == p.allocated
	}()
	if last {
		p.destroy()
	}
}

// Shutdown latches the pool into draining. Safe to call more than once;
// every call after the first is a no-op. When no block is lent at latch
// time the pool is destroyed before Shutdown returns, and callers must not
// Acquire on the instance afterwards in either case.
func (p *BlockPool) Shutdown() {
	p.mu.Lock()
	if p.shuttingDown {
		p.mu.Unlock()
		return
	}
	p.shuttingDown = true
	idle := p.free == p.allocated
	p.mu.Unlock()
	if idle {
		p.destroy()
	}
}

// Stats snapshots the accounting counters under the pool lock.
func (p *BlockPool) Stats() api.BlockPoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	state := api.PoolActive
	switch {
	case p.destroyed:
		state = api.PoolDestroyed
	case p.shuttingDown:
		state = api.PoolDraining
	}
	return api.BlockPoolStats{
		FreeBlocks:      p.free,
		AllocatedBlocks: p.allocated,
		InUse:           p.allocated - p.free,
		PayloadSize:     p.payloadSize,
		State:           state,
	}
}

// growLocked asks the strategy for one raw chunk and carves it into blocks.
// Caller holds p.mu. A short or nil chunk adds zero blocks and exhaustion
// persists.
func (p *BlockPool) growLocked() {
	chunk := p.grow.Grow(p.blockSize)
	if len(chunk) < p.blockSize {
		return
	}
	n := len(chunk) / p.blockSize
	ci := uint32(len(p.chunks))
	p.chunks = append(p.chunks, chunk)
	p.allocated += n
	// Link in reverse so the chunk's first block pops first.
	for bi := n - 1; bi >= 0; bi-- {
		p.pushLocked(ci, uint32(bi))
	}
	p.log.Debug("pool: grew", "blocks", n, "allocated", p.allocated, "block_size", p.blockSize)
}

// destroy performs the terminal transition. Reached by exactly one caller:
// either Shutdown on an idle pool or the Release returning the last block.
func (p *BlockPool) destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	p.chunks = nil
	p.headChunk, p.headBlock = linkNil, linkNil
	// free stays equal to allocated: the pool was idle when it died, and
	// Stats must keep reporting that nothing is lent.
	p.mu.Unlock()

	if c, ok := p.grow.(io.Closer); ok {
		_ = c.Close()
	}
	p.log.Debug("pool: destroyed", "allocated", p.allocated, "payload_size", p.payloadSize)
	if p.onDestroy != nil {
		p.onDestroy()
	}
}

// pushLocked prepends block (ci,bi) to the free list, writing the previous
// head into the block's header bytes. Caller holds p.mu.
func (p *BlockPool) pushLocked(ci, bi uint32) {
	hdr := p.headerAt(ci, bi)
	binary.LittleEndian.PutUint32(hdr[0:4], p.headChunk)
	binary.LittleEndian.PutUint32(hdr[4:8], p.headBlock)
	p.headChunk, p.headBlock = ci, bi
	p.free++
}

// popLocked removes and returns the free-list head. Caller holds p.mu and
// guarantees the list is non-empty.
func (p *BlockPool) popLocked() (ci, bi uint32) {
	ci, bi = p.headChunk, p.headBlock
	hdr := p.headerAt(ci, bi)
	p.headChunk = binary.LittleEndian.Uint32(hdr[0:4])
	p.headBlock = binary.LittleEndian.Uint32(hdr[4:8])
	p.free--
	return ci, bi
}

// headerAt returns the header bytes of block bi inside chunk ci.
func (p *BlockPool) headerAt(ci, bi uint32) []byte {
	off := int(bi) * p.blockSize
	return p.chunks[ci][off : off+headerSize]
}

// payloadAt returns the payload region of block bi inside chunk ci, capped
// so callers cannot reslice into a neighboring block.
func (p *BlockPool) payloadAt(ci, bi uint32) []byte {
	start := int(bi)*p.blockSize + p.payloadOffset
	return p.chunks[ci][start : start+p.payloadSize : start+p.payloadSize]
}

// locateLocked maps a lent payload back to its (chunk, block) coordinates
// by subtracting payloadOffset from the payload's base address and scanning
// the owned chunks. Caller holds p.mu.
func (p *BlockPool) locateLocked(payload []byte) (uint32, uint32) {
	if len(payload) == 0 {
		panic("pool: release of empty payload")
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(payload)))
	for ci, chunk := range p.chunks {
		base := uintptr(unsafe.Pointer(unsafe.SliceData(chunk)))
		if addr < base || addr >= base+uintptr(len(chunk)) {
			continue
		}
		off := int(addr-base) - p.payloadOffset
		if off < 0 || off%p.blockSize != 0 {
			panic("pool: release of pointer not at a payload boundary")
		}
		return uint32(ci), uint32(off / p.blockSize)
	}
	panic("pool: release of payload not owned by this pool")
}

var _ api.BlockPool = (*BlockPool)(nil)
