package goengine

import (
	"log/slog"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/internal/cpu"
)

// Name and Version identify this engine in Info.
const (
	Name    = "goengine"
	Version = "0.3.0"
)

var _ engine.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*config)

type config struct {
	limit  int
	logger *slog.Logger
}

// WithMemoryLimit caps the number of bytes that may be live at once.
// Malloc returns nil once the cap would be exceeded. Zero means unlimited.
func WithMemoryLimit(bytes int) Option {
	return func(c *config) {
		if bytes >= 0 {
			c.limit = bytes
		}
	}
}

// WithLogger sets the logger for engine diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Engine is a pure Go implementation of the engine contract. All state lives
// in the memory blocks handed to each entry point, so one Engine may serve
// any number of contexts concurrently.
type Engine struct {
	mem    *arena
	logger *slog.Logger
}

// New returns a ready engine.
func New(opts ...Option) *Engine {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Engine{mem: newArena(cfg.limit, cfg.logger), logger: cfg.logger}
}

// Malloc returns a zeroed, Alignment-aligned region of size bytes, or nil.
func (e *Engine) Malloc(size int) []byte { return e.mem.malloc(size) }

// Free hands a region back. Unknown or already freed regions are ignored.
func (e *Engine) Free(mem []byte) { e.mem.free(mem) }

// Live reports the number of regions and bytes currently allocated.
func (e *Engine) Live() (regions, bytes int) { return e.mem.stats() }

// Info describes the engine and the CPU features it detected.
func (e *Engine) Info() engine.Info {
	f := cpu.Detect()
	return engine.Info{
		Name:     Name,
		Version:  Version + " (" + f.Architecture + ")",
		Features: f.Names(),
	}
}
