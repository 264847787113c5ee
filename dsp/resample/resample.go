package resample

import (
	"errors"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/native"
)

// ErrInvalidRate indicates a non-positive input or output rate.
var ErrInvalidRate = errors.New("resample: invalid sample rate")

// Quality selects a predefined filter profile.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default quality/performance trade-off.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityBalanced:
		return "balanced"
	case QualityBest:
		return "best"
	default:
		return "unknown"
	}
}

// Profile holds the filter parameters of a quality mode.
type Profile struct {
	History           int
	Rolloff           float32
	Alpha             float32
	NominalStopbandDB float64
}

// QualityProfile returns the parameters used by quality mode q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{History: 8, Rolloff: 0.88, Alpha: 5.0, NominalStopbandDB: 55}
	case QualityBest:
		return Profile{History: 32, Rolloff: 0.96, Alpha: 9.0, NominalStopbandDB: 90}
	default:
		return Profile{History: 16, Rolloff: 0.92, Alpha: 7.5, NominalStopbandDB: 75}
	}
}

// Signature is the parameter set a context is bound to.
type Signature struct {
	InRate  int
	OutRate int
	History int
	Rolloff float32
	Alpha   float32
	Hint    engine.Hint
}

// FilterLen returns the filter length handed to the engine for a history of
// h input samples.
func FilterLen(h int) int {
	return max(1, 2*h-1)
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

// Context is a fixed-ratio polyphase resampler bound to engine memory. It is
// not safe for concurrent use.
type Context struct {
	eng    engine.Polyphase
	alloc  native.Allocator
	logger *slog.Logger

	state  engine.State
	sig    Signature
	sizes  engine.PolyphaseSizes
	block  *native.Buffer
	cursor float64
}

// New returns an uninitialized context.
func New(eng engine.Polyphase, alloc native.Allocator, opts ...Option) *Context {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Context{eng: eng, alloc: alloc, logger: cfg.logger}
}

// Initialize binds the context to a rate pair and filter design. history is
// the number of input samples each output depends on at either side; the
// engine filter spans FilterLen(history) taps.
func (c *Context) Initialize(inRate, outRate, history int, rolloff, alpha float32, hint engine.Hint) error {
	const op = "resample: initialize"
	sig := Signature{InRate: inRate, OutRate: outRate, History: history, Rolloff: rolloff, Alpha: alpha, Hint: hint}
	if c.state == engine.StateReady && c.sig == sig {
		return nil
	}
	c.release()

	if inRate <= 0 || outRate <= 0 {
		return c.fail(ErrInvalidRate)
	}

	length := FilterLen(history)
	sizes, st := c.eng.PolyphaseGetSize(inRate, outRate, length, hint)
	if err := st.Err(op); err != nil {
		return c.fail(err)
	}

	scope := native.NewScope(c.alloc)
	defer scope.Close()

	block, err := scope.Acquire(sizes.State)
	if err != nil {
		return c.fail(err)
	}
	st = c.eng.PolyphaseInit(inRate, outRate, length, rolloff, alpha, block.Bytes(), hint)
	if err := st.Err(op); err != nil {
		return c.fail(err)
	}

	scope.Keep()
	c.block = block
	c.sizes = sizes
	c.sig = sig
	c.state = engine.StateReady
	c.logger.Debug("resampler initialized",
		slog.Int("in_rate", inRate), slog.Int("out_rate", outRate),
		slog.Int("filter_len", sizes.Len), slog.Int("phases", sizes.Height),
		slog.Int("state_bytes", sizes.State))
	return nil
}

// InitializeQuality binds the context using the parameters of quality mode q.
func (c *Context) InitializeQuality(inRate, outRate int, q Quality, hint engine.Hint) error {
	p := QualityProfile(q)
	return c.Initialize(inRate, outRate, p.History, p.Rolloff, p.Alpha, hint)
}

func (c *Context) fail(err error) error {
	c.state = engine.StateFailed
	c.logger.Warn("resampler initialization failed", engine.Attrs(err)...)
	return err
}

func (c *Context) release() {
	if c.block != nil {
		c.logger.Debug("resampler released", slog.Int("in_rate", c.sig.InRate), slog.Int("out_rate", c.sig.OutRate))
	}
	native.ReleaseAll(c.alloc, &c.block)
	c.sig = Signature{}
	c.sizes = engine.PolyphaseSizes{}
	c.cursor = 0
	c.state = engine.StateUninitialized
}

// Resample filters src[start:start+length] into dst scaled by norm and
// returns the number of samples produced.
//
// Every call treats its input as a self-contained block: the cursor restarts
// at History, so the first History samples only serve as filter lead-in.
// Callers streaming a signal overlap consecutive blocks by that amount.
func (c *Context) Resample(dst, src []float32, start, length int, norm float32) (int, error) {
	const op = "resample: resample"
	if c.state != engine.StateReady {
		return 0, engine.Errorf(engine.KindContextMismatch, op, "context is %s", c.state)
	}
	if start < 0 || length < 0 || start+length > len(src) {
		return 0, engine.Errorf(engine.KindContextMismatch, op,
			"block [%d, %d) outside source of %d samples", start, start+length, len(src))
	}
	c.cursor = float64(c.sig.History)
	n, st := c.eng.PolyphaseResample(src[start:start+length], dst, norm, &c.cursor, c.block.Bytes())
	if err := st.Err(op); err != nil {
		return 0, err
	}
	return n, nil
}

// MaxOutput bounds the number of samples one Resample call produces from
// length input samples. It is zero unless the context is Ready.
func (c *Context) MaxOutput(length int) int {
	if c.state != engine.StateReady || length <= 0 {
		return 0
	}
	return int(math.Ceil(float64(length)*float64(c.sig.OutRate)/float64(c.sig.InRate))) + 1
}

// Cursor returns the input position reached by the last Resample call.
func (c *Context) Cursor() float64 { return c.cursor }

// State returns the lifecycle state.
func (c *Context) State() engine.State { return c.state }

// Signature returns the bound signature.
func (c *Context) Signature() Signature { return c.sig }

// Geometry returns the engine's filter bank geometry for the bound signature.
func (c *Context) Geometry() engine.PolyphaseSizes { return c.sizes }

// Ratio returns the reduced output/input rate ratio.
func (c *Context) Ratio() (up, down int) {
	if c.state != engine.StateReady {
		return 0, 0
	}
	g := gcd(c.sig.InRate, c.sig.OutRate)
	return c.sig.OutRate / g, c.sig.InRate / g
}

// Close releases the state block. It is idempotent and always returns nil.
func (c *Context) Close() error {
	c.release()
	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
