package firgen

import (
	"log/slog"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/native"
	"github.com/cwbudde/algo-ipp/internal/memo"
)

// Shape is the frequency response a Designer produces.
type Shape int

const (
	Lowpass Shape = iota
	Highpass
	Bandpass
	Bandstop
)

func (s Shape) String() string {
	switch s {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Bandstop:
		return "bandstop"
	default:
		return "unknown"
	}
}

// Banded reports whether the shape takes two edge frequencies.
func (s Shape) Banded() bool { return s == Bandpass || s == Bandstop }

// Cutoff holds the edge frequencies of a design, relative to the sampling
// rate. Single-edge shapes read Low only.
type Cutoff struct {
	Low  float64
	High float64
}

// Edge returns the cutoff of a lowpass or highpass design.
func Edge(f float64) Cutoff { return Cutoff{Low: f} }

// Band returns the cutoff of a bandpass or bandstop design.
func Band(low, high float64) Cutoff { return Cutoff{Low: low, High: high} }

// Signature identifies one design.
type Signature struct {
	Shape     Shape
	Low       float64
	High      float64
	Taps      int
	Window    engine.WinType
	Normalize bool
}

// Sample is the coefficient precision a Designer hands out.
type Sample interface {
	~float32 | ~float64
}

// Option configures a Designer.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger for design events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Designer generates windowed-sinc FIR coefficients of one shape and
// remembers the last design. Repeating a successful design with the same
// signature copies the remembered coefficients without calling the engine.
//
// Coefficients are always designed in float64 and converted to T. A
// Designer is not safe for concurrent use.
type Designer[T Sample] struct {
	eng    engine.FIRGen
	alloc  native.Allocator
	shape  Shape
	logger *slog.Logger

	cache   memo.Cache[Signature]
	scratch *native.Buffer
}

func newDesigner[T Sample](eng engine.FIRGen, alloc native.Allocator, shape Shape, opts []Option) *Designer[T] {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Designer[T]{eng: eng, alloc: alloc, shape: shape, logger: cfg.logger}
}

// NewLowpass returns a lowpass designer.
func NewLowpass[T Sample](eng engine.FIRGen, alloc native.Allocator, opts ...Option) *Designer[T] {
	return newDesigner[T](eng, alloc, Lowpass, opts)
}

// NewHighpass returns a highpass designer.
func NewHighpass[T Sample](eng engine.FIRGen, alloc native.Allocator, opts ...Option) *Designer[T] {
	return newDesigner[T](eng, alloc, Highpass, opts)
}

// NewBandpass returns a bandpass designer.
func NewBandpass[T Sample](eng engine.FIRGen, alloc native.Allocator, opts ...Option) *Designer[T] {
	return newDesigner[T](eng, alloc, Bandpass, opts)
}

// NewBandstop returns a bandstop designer.
func NewBandstop[T Sample](eng engine.FIRGen, alloc native.Allocator, opts ...Option) *Designer[T] {
	return newDesigner[T](eng, alloc, Bandstop, opts)
}

// Shape returns the response the designer produces.
func (d *Designer[T]) Shape() Shape { return d.shape }

// Design fills taps with len(taps) coefficients.
func (d *Designer[T]) Design(taps []T, f Cutoff, win engine.WinType, normalize bool) error {
	return d.DesignAt(taps, 0, len(taps), f, win, normalize)
}

// DesignAt fills taps[from:from+n] with n coefficients.
func (d *Designer[T]) DesignAt(taps []T, from, n int, f Cutoff, win engine.WinType, normalize bool) error {
	const op = "firgen: design"
	if from < 0 || n < 0 || from+n > len(taps) {
		return engine.Errorf(engine.KindContextMismatch, op,
			"range [%d, %d) outside %d taps", from, from+n, len(taps))
	}
	sig := Signature{Shape: d.shape, Low: f.Low, Taps: n, Window: win, Normalize: normalize}
	if d.shape.Banded() {
		sig.High = f.High
	}

	ran, err := d.cache.Do(sig, func() error { return d.compute(op, sig) })
	if err != nil {
		d.logger.Warn("filter design failed", append(engine.Attrs(err), slog.String("shape", d.shape.String()))...)
		return err
	}
	if ran {
		d.logger.Debug("filter designed",
			slog.String("shape", d.shape.String()), slog.Int("taps", n),
			slog.Float64("low", sig.Low), slog.Float64("high", sig.High),
			slog.String("window", win.String()))
	}

	coeffs := native.View[float64](d.scratch)[:n]
	out := taps[from : from+n]
	for i, c := range coeffs {
		out[i] = T(c)
	}
	return nil
}

// compute runs the engine generator into the scratch buffer. The scratch
// holds the float64 coefficients followed by the engine's work area.
func (d *Designer[T]) compute(op string, sig Signature) error {
	bufSize, st := d.eng.FIRGenGetBufferSize(sig.Taps)
	if err := st.Err(op); err != nil {
		return err
	}
	coeffSize := engine.SizeOf[float64](sig.Taps)
	if err := d.grow(coeffSize + bufSize); err != nil {
		return err
	}

	mem := d.scratch.Bytes()
	coeffs := engine.View[float64](mem[:coeffSize])
	buf := mem[coeffSize : coeffSize+bufSize]

	switch d.shape {
	case Lowpass:
		st = d.eng.FIRGenLowpass(sig.Low, coeffs, sig.Window, sig.Normalize, buf)
	case Highpass:
		st = d.eng.FIRGenHighpass(sig.Low, coeffs, sig.Window, sig.Normalize, buf)
	case Bandpass:
		st = d.eng.FIRGenBandpass(sig.Low, sig.High, coeffs, sig.Window, sig.Normalize, buf)
	case Bandstop:
		st = d.eng.FIRGenBandstop(sig.Low, sig.High, coeffs, sig.Window, sig.Normalize, buf)
	default:
		return engine.Errorf(engine.KindNotSupported, op, "unknown shape %d", int(d.shape))
	}
	return st.Err(op)
}

// grow makes the scratch hold at least size bytes. It never shrinks.
func (d *Designer[T]) grow(size int) error {
	if d.scratch != nil && d.scratch.Len() >= size {
		return nil
	}
	// The old contents are not carried over.
	native.ReleaseAll(d.alloc, &d.scratch)
	b, err := d.alloc.Acquire(size)
	if err != nil {
		return err
	}
	d.scratch = b
	return nil
}

// ForceRecompute makes the next design call the engine even when its
// signature matches the last successful one.
func (d *Designer[T]) ForceRecompute() { d.cache.Force() }

// ScratchLen returns the current scratch capacity in bytes.
func (d *Designer[T]) ScratchLen() int { return d.scratch.Len() }

// Close releases the scratch buffer. The designer may be reused afterwards.
// It is idempotent and always returns nil.
func (d *Designer[T]) Close() error {
	native.ReleaseAll(d.alloc, &d.scratch)
	d.cache.Invalidate()
	return nil
}
