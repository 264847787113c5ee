// Package denoise runs the engine's adaptive noise reduction filter on
// fixed-size blocks of audio.
package denoise

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/native"
)

// ErrUnsupportedRate is returned for rates above the highest supported one.
var ErrUnsupportedRate = errors.New("denoise: unsupported sample rate")

// BlockLen is the number of samples Process accepts per call.
const BlockLen = engine.NoiseFrameLen

// SnapRate returns the smallest supported rate that is at least rate.
// Non-positive rates are rejected.
func SnapRate(rate int) (int, error) {
	if rate <= 0 {
		return 0, fmt.Errorf("%w: %d Hz", ErrUnsupportedRate, rate)
	}
	for _, r := range engine.NoiseRates {
		if r >= rate {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %d Hz", ErrUnsupportedRate, rate)
}

// Option configures a Processor.
type Option func(*config)

type config struct {
	logger *slog.Logger
	level  engine.NRLevel
	mode   engine.NRMode
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLevel sets the initial reduction level. The default is LevelNormal.
func WithLevel(level engine.NRLevel) Option {
	return func(c *config) { c.level = level }
}

// WithMode sets the initial noise update mode. The default is ModeUpdate.
func WithMode(mode engine.NRMode) Option {
	return func(c *config) { c.mode = mode }
}

// Processor owns one noise filter state. It is not safe for concurrent use.
type Processor struct {
	eng    engine.NoiseFilter
	alloc  native.Allocator
	logger *slog.Logger

	rate  int
	level engine.NRLevel
	mode  engine.NRMode
	state *native.Buffer
}

// New snaps rate to a supported value and prepares a filter state for it.
// No engine memory is held when New fails.
func New(eng engine.NoiseFilter, alloc native.Allocator, rate int, opts ...Option) (*Processor, error) {
	const op = "denoise: new"
	cfg := config{
		logger: slog.New(slog.DiscardHandler),
		level:  engine.LevelNormal,
		mode:   engine.ModeUpdate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	snapped, err := SnapRate(rate)
	if err != nil {
		return nil, err
	}
	size, st := eng.NoiseFilterGetStateSize(snapped)
	if err := st.Err(op); err != nil {
		cfg.logger.Warn("noise filter size query failed", engine.Attrs(err)...)
		return nil, err
	}

	scope := native.NewScope(alloc)
	defer scope.Close()

	state, err := scope.Acquire(size)
	if err != nil {
		return nil, err
	}
	if err := eng.NoiseFilterInit(snapped, state.Bytes()).Err(op); err != nil {
		cfg.logger.Warn("noise filter init failed", engine.Attrs(err)...)
		return nil, err
	}
	if err := eng.NoiseFilterLevel(cfg.level, state.Bytes()).Err(op); err != nil {
		return nil, err
	}
	if err := eng.NoiseFilterMode(cfg.mode, state.Bytes()).Err(op); err != nil {
		return nil, err
	}
	scope.Keep()

	cfg.logger.Debug("noise filter initialized",
		slog.Int("rate", snapped), slog.Int("requested_rate", rate),
		slog.String("level", cfg.level.String()), slog.String("mode", cfg.mode.String()))
	return &Processor{
		eng:    eng,
		alloc:  alloc,
		logger: cfg.logger,
		rate:   snapped,
		level:  cfg.level,
		mode:   cfg.mode,
		state:  state,
	}, nil
}

// Process filters one BlockLen block in place.
func (p *Processor) Process(block []float32) error {
	const op = "denoise: process"
	if p.state == nil {
		return engine.Errorf(engine.KindContextMismatch, op, "processor is closed")
	}
	if len(block) != BlockLen {
		return engine.Errorf(engine.KindContextMismatch, op, "block has %d samples, want %d", len(block), BlockLen)
	}
	return p.eng.NoiseFilter(block, p.state.Bytes()).Err(op)
}

// ProcessAll filters every complete block of x in place and returns the
// number of samples processed. A trailing partial block is left untouched.
func (p *Processor) ProcessAll(x []float32) (int, error) {
	n := 0
	for ; n+BlockLen <= len(x); n += BlockLen {
		if err := p.Process(x[n : n+BlockLen]); err != nil {
			return n, err
		}
	}
	return n, nil
}

// SetLevel changes the reduction level.
func (p *Processor) SetLevel(level engine.NRLevel) error {
	const op = "denoise: set level"
	if p.state == nil {
		return engine.Errorf(engine.KindContextMismatch, op, "processor is closed")
	}
	if err := p.eng.NoiseFilterLevel(level, p.state.Bytes()).Err(op); err != nil {
		return err
	}
	p.level = level
	return nil
}

// SetMode changes how the noise estimate adapts.
func (p *Processor) SetMode(mode engine.NRMode) error {
	const op = "denoise: set mode"
	if p.state == nil {
		return engine.Errorf(engine.KindContextMismatch, op, "processor is closed")
	}
	if err := p.eng.NoiseFilterMode(mode, p.state.Bytes()).Err(op); err != nil {
		return err
	}
	p.mode = mode
	return nil
}

// Rate returns the snapped sampling rate.
func (p *Processor) Rate() int { return p.rate }

// Level returns the current reduction level.
func (p *Processor) Level() engine.NRLevel { return p.level }

// Mode returns the current update mode.
func (p *Processor) Mode() engine.NRMode { return p.mode }

// Close releases the filter state. It is idempotent and always returns nil.
func (p *Processor) Close() error {
	if p.state != nil {
		p.logger.Debug("noise filter released", slog.Int("rate", p.rate))
	}
	native.ReleaseAll(p.alloc, &p.state)
	return nil
}
