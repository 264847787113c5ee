package engine

// Hint selects between speed and accuracy where an engine offers both.
type Hint int

const (
	HintNone Hint = iota
	HintFast
	HintAccurate
)

func (h Hint) String() string {
	switch h {
	case HintNone:
		return "none"
	case HintFast:
		return "fast"
	case HintAccurate:
		return "accurate"
	default:
		return "unknown"
	}
}

// Flag selects the normalization convention of a spectral transform.
type Flag int

const (
	// DivFwdByN scales the forward transform by 1/N.
	DivFwdByN Flag = 1
	// DivInvByN scales the inverse transform by 1/N.
	DivInvByN Flag = 2
	// DivBySqrtN scales both directions by 1/sqrt(N).
	DivBySqrtN Flag = 4
	// NoDivByAny leaves both directions unscaled.
	NoDivByAny Flag = 8
)

// Valid reports whether f is exactly one of the defined flags.
func (f Flag) Valid() bool {
	switch f {
	case DivFwdByN, DivInvByN, DivBySqrtN, NoDivByAny:
		return true
	}
	return false
}

func (f Flag) String() string {
	switch f {
	case DivFwdByN:
		return "div-fwd-by-n"
	case DivInvByN:
		return "div-inv-by-n"
	case DivBySqrtN:
		return "div-by-sqrt-n"
	case NoDivByAny:
		return "no-div"
	default:
		return "invalid"
	}
}

// WinType is the window applied by the FIR generators.
type WinType int

const (
	WinBartlett WinType = iota
	WinBlackman
	WinHamming
	WinHann
	WinRect
)

func (w WinType) String() string {
	switch w {
	case WinBartlett:
		return "bartlett"
	case WinBlackman:
		return "blackman"
	case WinHamming:
		return "hamming"
	case WinHann:
		return "hann"
	case WinRect:
		return "rect"
	default:
		return "unknown"
	}
}

// NRLevel is the aggressiveness of the adaptive noise filter.
type NRLevel int

const (
	LevelNone NRLevel = iota
	LevelLow
	LevelMedium
	LevelNormal
	LevelHigh
	LevelAuto
)

func (l NRLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelNormal:
		return "normal"
	case LevelHigh:
		return "high"
	case LevelAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// NRMode controls how the noise estimate is updated.
type NRMode int

const (
	ModeNoUpdate NRMode = iota - 1
	ModeUpdate
	ModeUpdateAll
)

func (m NRMode) String() string {
	switch m {
	case ModeNoUpdate:
		return "no-update"
	case ModeUpdate:
		return "update"
	case ModeUpdateAll:
		return "update-all"
	default:
		return "unknown"
	}
}

// Interpolation is the image resampling kernel.
type Interpolation int

const (
	InterpNearest Interpolation = 1
	InterpLinear  Interpolation = 2
	InterpLanczos Interpolation = 16
)

func (i Interpolation) String() string {
	switch i {
	case InterpNearest:
		return "nearest"
	case InterpLinear:
		return "linear"
	case InterpLanczos:
		return "lanczos"
	default:
		return "unknown"
	}
}

// Border selects how pixels outside the source image are synthesized.
type Border int

const (
	BorderRepl Border = 1
)

// Size is an image geometry in pixels.
type Size struct {
	Width  int
	Height int
}

// Point is a pixel offset.
type Point struct {
	X int
	Y int
}

const (
	// NoiseFrameLen is the exact block length accepted by NoiseFilter.
	NoiseFrameLen = 160
	// VADFrameLen is the exact block length accepted by VAD.
	VADFrameLen = 320
)

// NoiseRates lists the sampling rates supported by the noise filter, in
// ascending order.
var NoiseRates = []int{8000, 11025, 16000, 22050, 32000}

// Sizes is the result of a transform size query.
type Sizes struct {
	Spec int // spec block
	Init int // transient init buffer, released right after init
	Work int // persistent working buffer used by every execute call
}

// PolyphaseSizes is the result of a polyphase resampler size query.
type PolyphaseSizes struct {
	State  int // state block size in bytes
	Len    int // taps per filter phase
	Height int // number of filter phases
}

// Spec is the opaque descriptor an engine binds to one transform signature.
// It is only valid together with the spec block it was built in.
type Spec interface {
	Len() int
}

// Memory is the engine's own allocator. Malloc returns nil when it cannot
// satisfy the request. A zero size yields a non-nil, empty region.
type Memory interface {
	Malloc(size int) []byte
	Free(mem []byte)
}

// Spectral covers complex forward/inverse transforms. The FFT family takes
// the base-2 order of the size; the DFT family takes the size itself.
type Spectral interface {
	FFTGetSize(order int, flag Flag, hint Hint) (Sizes, Status)
	FFTInit(order int, flag Flag, hint Hint, spec, init []byte) (Spec, Status)
	DFTGetSize(length int, flag Flag, hint Hint) (Sizes, Status)
	DFTInit(length int, flag Flag, hint Hint, spec, init []byte) (Spec, Status)
	Forward(spec Spec, dst, src []complex64, work []byte) Status
	Inverse(spec Spec, dst, src []complex64, work []byte) Status
}

// Polyphase is a fixed-ratio polyphase resampler. time is the fractional
// input cursor, advanced by the engine.
type Polyphase interface {
	PolyphaseGetSize(inRate, outRate, length int, hint Hint) (PolyphaseSizes, Status)
	PolyphaseInit(inRate, outRate, length int, rolloff, alpha float32, state []byte, hint Hint) Status
	PolyphaseResample(src, dst []float32, norm float32, time *float64, state []byte) (int, Status)
}

// FIRGen designs windowed-sinc FIR filters in double precision. Frequencies
// are relative to the sampling rate and must lie in (0, 0.5).
type FIRGen interface {
	FIRGenGetBufferSize(taps int) (int, Status)
	FIRGenLowpass(rFreq float64, taps []float64, win WinType, normalize bool, buf []byte) Status
	FIRGenHighpass(rFreq float64, taps []float64, win WinType, normalize bool, buf []byte) Status
	FIRGenBandpass(low, high float64, taps []float64, win WinType, normalize bool, buf []byte) Status
	FIRGenBandstop(low, high float64, taps []float64, win WinType, normalize bool, buf []byte) Status
}

// NoiseFilter is an adaptive noise reduction filter working on NoiseFrameLen
// blocks.
type NoiseFilter interface {
	NoiseFilterGetStateSize(rate int) (int, Status)
	NoiseFilterInit(rate int, state []byte) Status
	NoiseFilterLevel(level NRLevel, state []byte) Status
	NoiseFilterMode(mode NRMode, state []byte) Status
	NoiseFilter(block []float32, state []byte) Status
}

// VoiceActivity classifies VADFrameLen blocks of 16-bit speech.
type VoiceActivity interface {
	VADGetSize() (int, Status)
	VADInit(state []byte) Status
	VAD(src []int16, state []byte) (tone, voice bool, st Status)
}

// Resizer resamples 8-bit interleaved images.
type Resizer interface {
	ResizeGetSize(src, dst Size, interp Interpolation) (spec, init int, st Status)
	ResizeInit(src, dst Size, interp Interpolation, spec, init []byte) Status
	ResizeGetBufferSize(spec []byte, dst Size, channels int) (int, Status)
	Resize8u(src []byte, srcStep int, dst []byte, dstStep int, dstOffset Point, dstSize Size,
		channels int, border Border, spec, work []byte) Status
}

// Compressor is an LZSS codec. Each call encodes or decodes one
// self-contained block and returns the number of bytes written to dst.
type Compressor interface {
	LZSSGetSize() (int, Status)
	EncodeLZSSInit(state []byte) Status
	EncodeLZSS(src, dst, state []byte) (int, Status)
	DecodeLZSSInit(state []byte) Status
	DecodeLZSS(src, dst, state []byte) (int, Status)
}

// Info describes an engine build.
type Info struct {
	Name     string
	Version  string
	Features []string
}

// Engine is the full computation engine consumed by the context layer.
type Engine interface {
	Memory
	Spectral
	Polyphase
	FIRGen
	NoiseFilter
	VoiceActivity
	Resizer
	Compressor
	Info() Info
}

// State is the lifecycle state of a context.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
