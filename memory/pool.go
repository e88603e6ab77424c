package memory

import (
	"fmt"
	"log/slog"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/internal/resource"
)

// DefaultMaxRetainedBytes is the idle byte budget used when Config leaves it unset.
const DefaultMaxRetainedBytes = 256 << 20

// Observer receives pool events. Implementations must be safe for concurrent use.
type Observer interface {
	OnAcquire(kind dtype.Kind, bytes int64, reused bool)
	OnRelease(kind dtype.Kind, bytes int64, retained bool)
}

// Config configures a Pool. The zero value is usable.
type Config struct {
	// MaxRetainedBytes bounds the bytes held by idle buffers.
	// If 0, DefaultMaxRetainedBytes is used. A negative value disables retention.
	MaxRetainedBytes int64

	// Logger receives debug events. Nil disables logging.
	Logger *slog.Logger

	// Observer receives acquire and release events. Nil disables them.
	Observer Observer
}

// Stats is a snapshot of pool usage.
type Stats struct {
	FreeBuffers     int    // Current: buffers on the free lists
	IdleBytes       int64  // Current: bytes held by free buffers
	LiveBuffers     int64  // Current: buffers handed out
	LiveBytes       int64  // Current: bytes handed out
	Allocations     uint64 // Historical: fresh allocations
	Reuses          uint64 // Historical: acquisitions served from a free list
	Discards        uint64 // Historical: releases dropped under budget pressure
	LayerDepth      int    // Current: pushed lifetime layers
	TrackedSegments int    // Current: values registered with a layer
}

type atomicStats struct {
	LiveBuffers atomic.Int64
	LiveBytes   atomic.Int64
	Allocations atomic.Uint64
	Reuses      atomic.Uint64
	Discards    atomic.Uint64
}

type bucketKey struct {
	kind   dtype.Kind
	bucket uint8
}

// Pool recycles numeric buffers. It is safe for concurrent use.
type Pool struct {
	mu        sync.Mutex
	free      map[bucketKey][]*Buffer
	freeCount int
	closed    bool

	// layers and tracked are guarded by mu.
	layers  []*roaring.Bitmap
	tracked map[uint32]trackedEntry
	nextID  uint32

	budget   *resource.Controller
	retain   bool
	stats    atomicStats
	logger   *slog.Logger
	observer Observer
}

// NewPool creates a pool.
func NewPool(cfg Config) *Pool {
	limit := cfg.MaxRetainedBytes
	if limit == 0 {
		limit = DefaultMaxRetainedBytes
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Pool{
		free:     make(map[bucketKey][]*Buffer),
		tracked:  make(map[uint32]trackedEntry),
		retain:   limit > 0,
		logger:   logger,
		observer: cfg.Observer,
	}
	if p.retain {
		p.budget = resource.NewController(resource.Config{MemoryLimitBytes: limit})
	}

	p.logger.Debug("buffer pool created", "max_retained_bytes", limit)
	return p
}

// bucketOf returns the exponent of the smallest power of two >= n.
func bucketOf(n int) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(bits.Len(uint(n - 1))) //nolint:gosec // n > 1
}

// Acquire returns a zeroed buffer of kind with capacity >= length.
func (p *Pool) Acquire(kind dtype.Kind, length int) (*Buffer, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if length < 0 {
		return nil, &InvalidLengthError{Length: length}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	b := p.takeLocked(kind, length)
	p.mu.Unlock()

	reused := b != nil
	if reused {
		b.zero()
		p.stats.Reuses.Add(1)
	} else {
		b = newBuffer(p, kind, length)
		p.stats.Allocations.Add(1)
	}

	b.leased.Store(true)
	p.stats.LiveBuffers.Add(1)
	p.stats.LiveBytes.Add(b.Bytes())

	if p.observer != nil {
		p.observer.OnAcquire(kind, b.Bytes(), reused)
	}
	return b, nil
}

// takeLocked removes the best free buffer for the request, preferring an exact
// capacity match and the most recently released buffer. The buffer's bytes
// leave the idle budget before mu is released.
func (p *Pool) takeLocked(kind dtype.Kind, length int) *Buffer {
	key := bucketKey{kind: kind, bucket: bucketOf(length)}
	list := p.free[key]

	best := -1
	for i := len(list) - 1; i >= 0; i-- {
		c := list[i].capacity
		if c == length {
			best = i
			break
		}
		if c > length && best < 0 {
			best = i
		}
	}
	if best < 0 {
		return nil
	}

	b := list[best]
	last := len(list) - 1
	list[best] = list[last]
	list[last] = nil
	p.free[key] = list[:last]
	p.freeCount--
	p.budget.ReleaseMemory(b.Bytes())
	return b
}

// Release returns b to the pool. Releasing a buffer twice panics with
// ErrUseAfterRelease.
func (p *Pool) Release(b *Buffer) {
	if b == nil {
		return
	}
	if b.pool != p {
		panic(ErrForeignBuffer)
	}
	if !b.leased.CompareAndSwap(true, false) {
		panic(ErrUseAfterRelease)
	}

	b.generation.Add(1)
	bytes := b.Bytes()
	p.stats.LiveBuffers.Add(-1)
	p.stats.LiveBytes.Add(-bytes)

	p.mu.Lock()
	retained := p.retain && !p.closed && p.budget.TryAcquireMemory(bytes)
	if retained {
		key := bucketKey{kind: b.kind, bucket: bucketOf(b.capacity)}
		p.free[key] = append(p.free[key], b)
		p.freeCount++
	}
	p.mu.Unlock()

	if !retained {
		p.stats.Discards.Add(1)
		p.logger.Debug("buffer discarded", "kind", b.kind.String(), "bytes", bytes)
	}
	if p.observer != nil {
		p.observer.OnRelease(b.kind, bytes, retained)
	}
}

// Trim drops every idle buffer and returns the number of bytes released.
func (p *Pool) Trim() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trimLocked()
}

func (p *Pool) trimLocked() int64 {
	idle := p.budget.MemoryUsage()
	p.budget.ReleaseMemory(idle)
	clear(p.free)
	p.freeCount = 0
	return idle
}

// Stats returns a snapshot of pool usage.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	free := p.freeCount
	depth := len(p.layers)
	tracked := len(p.tracked)
	p.mu.Unlock()

	return Stats{
		FreeBuffers:     free,
		IdleBytes:       p.budget.MemoryUsage(),
		LiveBuffers:     p.stats.LiveBuffers.Load(),
		LiveBytes:       p.stats.LiveBytes.Load(),
		Allocations:     p.stats.Allocations.Load(),
		Reuses:          p.stats.Reuses.Load(),
		Discards:        p.stats.Discards.Load(),
		LayerDepth:      depth,
		TrackedSegments: tracked,
	}
}

// Close drops all idle buffers. Later acquisitions fail with ErrPoolClosed and
// later releases are discarded. Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	idle := p.trimLocked()

	p.logger.Debug("buffer pool closed", "dropped_bytes", idle, "live_buffers", p.stats.LiveBuffers.Load())
	return nil
}
