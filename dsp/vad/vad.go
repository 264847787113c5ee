// Package vad classifies blocks of 16-bit speech as voice and tone with the
// engine's voice activity detector.
package vad

import (
	"log/slog"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/native"
)

// FrameLen is the number of samples Classify accepts per call.
const FrameLen = engine.VADFrameLen

// Result is the classification of one frame.
type Result struct {
	Tone  bool
	Voice bool
}

// Option configures a Detector.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Detector owns one detector state. It is not safe for concurrent use.
type Detector struct {
	eng    engine.VoiceActivity
	alloc  native.Allocator
	logger *slog.Logger
	state  *native.Buffer
}

// New prepares a detector state. No engine memory is held when New fails.
func New(eng engine.VoiceActivity, alloc native.Allocator, opts ...Option) (*Detector, error) {
	const op = "vad: new"
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	size, st := eng.VADGetSize()
	if err := st.Err(op); err != nil {
		cfg.logger.Warn("vad size query failed", engine.Attrs(err)...)
		return nil, err
	}

	scope := native.NewScope(alloc)
	defer scope.Close()

	state, err := scope.Acquire(size)
	if err != nil {
		return nil, err
	}
	if err := eng.VADInit(state.Bytes()).Err(op); err != nil {
		cfg.logger.Warn("vad init failed", engine.Attrs(err)...)
		return nil, err
	}
	scope.Keep()

	cfg.logger.Debug("vad initialized", slog.Int("state_bytes", size))
	return &Detector{eng: eng, alloc: alloc, logger: cfg.logger, state: state}, nil
}

// Classify analyzes one FrameLen frame.
func (d *Detector) Classify(frame []int16) (Result, error) {
	const op = "vad: classify"
	if d.state == nil {
		return Result{}, engine.Errorf(engine.KindContextMismatch, op, "detector is closed")
	}
	if len(frame) != FrameLen {
		return Result{}, engine.Errorf(engine.KindContextMismatch, op, "frame has %d samples, want %d", len(frame), FrameLen)
	}
	tone, voice, st := d.eng.VAD(frame, d.state.Bytes())
	if err := st.Err(op); err != nil {
		return Result{}, err
	}
	return Result{Tone: tone, Voice: voice}, nil
}

// Reset clears the detector history in place.
func (d *Detector) Reset() error {
	const op = "vad: reset"
	if d.state == nil {
		return engine.Errorf(engine.KindContextMismatch, op, "detector is closed")
	}
	return d.eng.VADInit(d.state.Bytes()).Err(op)
}

// Close releases the detector state. It is idempotent and always returns nil.
func (d *Detector) Close() error {
	native.ReleaseAll(d.alloc, &d.state)
	return nil
}
