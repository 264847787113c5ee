package transform

import (
	"log/slog"
	"math/bits"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/native"
)

// Kind selects the engine transform family.
type Kind int

const (
	// KindFFT is the power-of-two transform.
	KindFFT Kind = iota
	// KindDFT is the arbitrary-length transform.
	KindDFT
)

func (k Kind) String() string {
	switch k {
	case KindFFT:
		return "fft"
	case KindDFT:
		return "dft"
	default:
		return "unknown"
	}
}

// Signature is the parameter set a context is bound to.
type Signature struct {
	Size int
	Flag engine.Flag
	Hint engine.Hint
}

// Option configures a Context.
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

// Context is a transform bound to one signature. It is not safe for
// concurrent use.
type Context struct {
	eng    engine.Spectral
	alloc  native.Allocator
	kind   Kind
	logger *slog.Logger

	state engine.State
	sig   Signature
	spec  engine.Spec
	specB *native.Buffer
	work  *native.Buffer
}

// New returns an uninitialized context of the given kind.
func New(eng engine.Spectral, alloc native.Allocator, kind Kind, opts ...Option) *Context {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Context{eng: eng, alloc: alloc, kind: kind, logger: cfg.logger}
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Initialize binds the context to (size, flag, hint).
func (c *Context) Initialize(size int, flag engine.Flag, hint engine.Hint) error {
	const op = "transform: initialize"
	sig := Signature{Size: size, Flag: flag, Hint: hint}
	if c.state == engine.StateReady && c.sig == sig {
		return nil
	}
	c.release()

	if c.kind == KindFFT && !IsPowerOfTwo(size) {
		return c.fail(engine.Errorf(engine.KindSize, op, "fft size %d is not a power of two", size))
	}

	var sizes engine.Sizes
	var st engine.Status
	if c.kind == KindFFT {
		sizes, st = c.eng.FFTGetSize(bits.TrailingZeros(uint(size)), flag, hint)
	} else {
		sizes, st = c.eng.DFTGetSize(size, flag, hint)
	}
	if err := st.Err(op); err != nil {
		return c.fail(err)
	}

	scope := native.NewScope(c.alloc)
	defer scope.Close()

	specB, err := scope.Acquire(sizes.Spec)
	if err != nil {
		return c.fail(err)
	}
	var initB, work *native.Buffer
	if sizes.Init > 0 {
		if initB, err = scope.Acquire(sizes.Init); err != nil {
			return c.fail(err)
		}
	}
	if sizes.Work > 0 {
		if work, err = scope.Acquire(sizes.Work); err != nil {
			return c.fail(err)
		}
	}

	var spec engine.Spec
	if c.kind == KindFFT {
		spec, st = c.eng.FFTInit(bits.TrailingZeros(uint(size)), flag, hint, specB.Bytes(), initB.Bytes())
	} else {
		spec, st = c.eng.DFTInit(size, flag, hint, specB.Bytes(), initB.Bytes())
	}
	scope.Release(initB)
	if err := st.Err(op); err != nil {
		return c.fail(err)
	}
	if st.IsWarning() {
		c.logger.Debug("transform init warning", slog.String("status", st.String()))
	}

	scope.Keep()
	c.spec, c.specB, c.work = spec, specB, work
	c.sig = sig
	c.state = engine.StateReady
	c.logger.Debug("transform initialized",
		slog.String("kind", c.kind.String()), slog.Int("size", size),
		slog.String("flag", flag.String()), slog.String("hint", hint.String()),
		slog.Int("spec_bytes", sizes.Spec), slog.Int("work_bytes", sizes.Work))
	return nil
}

func (c *Context) fail(err error) error {
	c.state = engine.StateFailed
	c.logger.Warn("transform initialization failed", engine.Attrs(err)...)
	return err
}

func (c *Context) release() {
	if c.specB != nil || c.work != nil {
		c.logger.Debug("transform released", slog.Int("size", c.sig.Size))
	}
	native.ReleaseAll(c.alloc, &c.specB, &c.work)
	c.spec = nil
	c.sig = Signature{}
	c.state = engine.StateUninitialized
}

// Forward transforms src into dst. Both must hold at least Size samples.
func (c *Context) Forward(dst, src []complex64) error {
	return c.execute("transform: forward", dst, 0, src, 0, c.eng.Forward)
}

// Inverse transforms src into dst. Both must hold at least Size samples.
func (c *Context) Inverse(dst, src []complex64) error {
	return c.execute("transform: inverse", dst, 0, src, 0, c.eng.Inverse)
}

// ForwardAt transforms Size samples of src starting at srcOff into dst
// starting at dstOff.
func (c *Context) ForwardAt(dst []complex64, dstOff int, src []complex64, srcOff int) error {
	return c.execute("transform: forward", dst, dstOff, src, srcOff, c.eng.Forward)
}

// InverseAt is the inverse counterpart of ForwardAt.
func (c *Context) InverseAt(dst []complex64, dstOff int, src []complex64, srcOff int) error {
	return c.execute("transform: inverse", dst, dstOff, src, srcOff, c.eng.Inverse)
}

// ForwardInPlace transforms buf in place.
func (c *Context) ForwardInPlace(buf []complex64) error {
	return c.execute("transform: forward", buf, 0, buf, 0, c.eng.Forward)
}

// InverseInPlace transforms buf in place.
func (c *Context) InverseInPlace(buf []complex64) error {
	return c.execute("transform: inverse", buf, 0, buf, 0, c.eng.Inverse)
}

// ForwardInPlaceAt transforms Size samples of buf starting at off in place.
func (c *Context) ForwardInPlaceAt(buf []complex64, off int) error {
	return c.execute("transform: forward", buf, off, buf, off, c.eng.Forward)
}

// InverseInPlaceAt transforms Size samples of buf starting at off in place.
func (c *Context) InverseInPlaceAt(buf []complex64, off int) error {
	return c.execute("transform: inverse", buf, off, buf, off, c.eng.Inverse)
}

type executeFunc func(spec engine.Spec, dst, src []complex64, work []byte) engine.Status

func (c *Context) execute(op string, dst []complex64, dstOff int, src []complex64, srcOff int, fn executeFunc) error {
	if c.state != engine.StateReady {
		return engine.Errorf(engine.KindContextMismatch, op, "context is %s", c.state)
	}
	n := c.sig.Size
	if srcOff < 0 || dstOff < 0 || len(src) < srcOff+n || len(dst) < dstOff+n {
		return engine.Errorf(engine.KindContextMismatch, op,
			"need %d samples at offsets %d/%d, have %d/%d", n, srcOff, dstOff, len(src), len(dst))
	}
	st := fn(c.spec, dst[dstOff:dstOff+n], src[srcOff:srcOff+n], c.work.Bytes())
	return st.Err(op)
}

// State returns the lifecycle state.
func (c *Context) State() engine.State { return c.state }

// Signature returns the bound signature; it is the zero value unless Ready.
func (c *Context) Signature() Signature { return c.sig }

// Size returns the bound transform size, or 0 unless Ready.
func (c *Context) Size() int { return c.sig.Size }

// Kind returns the transform family.
func (c *Context) Kind() Kind { return c.kind }

// Reset releases all buffers and returns the context to Uninitialized.
func (c *Context) Reset() { c.release() }

// Close releases all buffers. It is idempotent and always returns nil.
func (c *Context) Close() error {
	c.release()
	return nil
}
