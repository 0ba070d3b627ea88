// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-size block memory pooling for hioload-core.
//
// The central type is BlockPool: a thread-safe, non-blocking allocator that
// lends fixed-size payload buffers carved out of raw chunks supplied by a
// pluggable growth strategy, and destroys itself once shutdown has been
// requested and the last lent buffer has come back. Manager groups pools by
// payload size class; RingBuffer and SyncPool are the supporting reuse
// primitives shared with the rest of the library.
package pool
