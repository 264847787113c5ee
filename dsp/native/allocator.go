package native

import (
	"log/slog"
	"sync/atomic"

	"github.com/cwbudde/algo-ipp/dsp/engine"
)

// Allocator acquires and releases engine memory.
//
// Release must never panic and must accept nil and already released
// buffers, so it can run on any teardown path.
type Allocator interface {
	Acquire(size int) (*Buffer, error)
	Release(b *Buffer)
}

// Option configures an EngineAllocator.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report allocation failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// EngineAllocator hands out memory from the engine's own allocator, which
// carries the alignment guarantees the engine relies on.
type EngineAllocator struct {
	mem    engine.Memory
	logger *slog.Logger
	nextID atomic.Uint64
}

// New returns an allocator backed by mem.
func New(mem engine.Memory, opts ...Option) *EngineAllocator {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &EngineAllocator{mem: mem, logger: cfg.logger}
}

// Acquire returns a buffer of exactly size bytes. The content is unspecified.
func (a *EngineAllocator) Acquire(size int) (*Buffer, error) {
	if size < 0 {
		return nil, engine.Errorf(engine.KindSize, "native: acquire", "negative size %d", size)
	}
	mem := a.mem.Malloc(size)
	if mem == nil {
		a.logger.Warn("native allocation failed", slog.Int("size", size))
		return nil, engine.StatusMemAlloc.Err("native: acquire")
	}
	return &Buffer{mem: mem[:size], size: size, id: a.nextID.Add(1)}, nil
}

// Release returns b to the engine. It is a no-op for nil or released buffers.
func (a *EngineAllocator) Release(b *Buffer) {
	if b == nil || b.released {
		return
	}
	b.released = true
	mem := b.mem
	b.mem = nil
	a.mem.Free(mem)
}
