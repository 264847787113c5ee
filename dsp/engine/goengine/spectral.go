package goengine

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/algo-ipp/dsp/engine"
)

// maxFFTOrder bounds the FFT size to 2^27 points.
const maxFFTOrder = 27

// spectralSpec binds a transform plan to the spec block it was
// initialized in. The plan itself lives on the Go heap; the block carries the
// header that proves the pairing is still valid.
type spectralSpec struct {
	mem    []byte
	kind   blockKind
	n      int
	flag   engine.Flag
	hint   engine.Hint
	plan32 *algofft.Plan[complex64]
	plan64 *algofft.Plan[complex128]
	dft    *fourier.CmplxFFT
}

func (s *spectralSpec) Len() int { return s.n }

// precise reports whether the transform runs in double precision.
func (s *spectralSpec) precise() bool { return s.plan64 != nil || s.dft != nil }

func (s *spectralSpec) workSize() int { return workSize(s.n, s.precise()) }

func workSize(n int, precise bool) int {
	if precise {
		return engine.SizeOf[complex128](2 * n)
	}
	return engine.SizeOf[complex64](n)
}

func (s *spectralSpec) scales() (fwd, inv float64) {
	fwd, inv = 1, 1
	switch s.flag {
	case engine.DivFwdByN:
		fwd = 1 / float64(s.n)
	case engine.DivInvByN:
		inv = 1 / float64(s.n)
	case engine.DivBySqrtN:
		fwd = 1 / math.Sqrt(float64(s.n))
		inv = fwd
	}
	return fwd, inv
}

// FFTGetSize reports the buffer sizes of a 2^order point transform.
func (e *Engine) FFTGetSize(order int, flag engine.Flag, hint engine.Hint) (engine.Sizes, engine.Status) {
	if order < 0 || order > maxFFTOrder {
		return engine.Sizes{}, engine.StatusFFTOrder
	}
	if !flag.Valid() {
		return engine.Sizes{}, engine.StatusFFTFlag
	}
	n := 1 << order
	precise := hint == engine.HintAccurate
	return engine.Sizes{
		Spec: headerSize,
		Init: workSize(n, precise),
		Work: workSize(n, precise),
	}, engine.StatusOK
}

// FFTInit builds a 2^order point transform. The init block is used to verify
// the plan on an impulse before the spec is handed out.
func (e *Engine) FFTInit(order int, flag engine.Flag, hint engine.Hint, spec, init []byte) (engine.Spec, engine.Status) {
	sizes, st := e.FFTGetSize(order, flag, hint)
	if st != engine.StatusOK {
		return nil, st
	}
	if len(spec) < sizes.Spec || len(init) < sizes.Init {
		return nil, engine.StatusSize
	}

	s := &spectralSpec{mem: spec, kind: kindFFT, n: 1 << order, flag: flag, hint: hint}
	if s.n > 1 {
		var err error
		if hint == engine.HintAccurate {
			s.plan64, err = algofft.NewPlanT[complex128](s.n)
		} else {
			s.plan32, err = algofft.NewPlanT[complex64](s.n)
		}
		if err != nil {
			e.logger.Debug("fft plan failed", "order", order, "error", err)
			return nil, engine.StatusNoMem
		}
	}
	if st := e.selfTest(s, init); st != engine.StatusOK {
		return nil, st
	}

	writeHeader(spec, kindFFT, uint32(s.n), uint32(flag), uint32(hint))
	return s, engine.StatusOK
}

// DFTGetSize reports the buffer sizes of a length point transform.
func (e *Engine) DFTGetSize(length int, flag engine.Flag, hint engine.Hint) (engine.Sizes, engine.Status) {
	if length < 1 {
		return engine.Sizes{}, engine.StatusSize
	}
	if !flag.Valid() {
		return engine.Sizes{}, engine.StatusFFTFlag
	}
	return engine.Sizes{
		Spec: headerSize,
		Init: workSize(length, true),
		Work: workSize(length, true),
	}, engine.StatusOK
}

// DFTInit builds a transform of any positive length.
func (e *Engine) DFTInit(length int, flag engine.Flag, hint engine.Hint, spec, init []byte) (engine.Spec, engine.Status) {
	sizes, st := e.DFTGetSize(length, flag, hint)
	if st != engine.StatusOK {
		return nil, st
	}
	if len(spec) < sizes.Spec || len(init) < sizes.Init {
		return nil, engine.StatusSize
	}

	s := &spectralSpec{mem: spec, kind: kindDFT, n: length, flag: flag, hint: hint}
	s.dft = fourier.NewCmplxFFT(length)
	if st := e.selfTest(s, init); st != engine.StatusOK {
		return nil, st
	}

	writeHeader(spec, kindDFT, uint32(length), uint32(flag), uint32(hint))
	return s, engine.StatusOK
}

// statusSelfTest is returned when a freshly built plan fails to transform an
// impulse into a flat spectrum.
const statusSelfTest engine.Status = -1001

func (e *Engine) selfTest(s *spectralSpec, init []byte) engine.Status {
	var peak float64
	if s.precise() {
		buf := engine.View[complex128](init)[:s.n]
		clear(buf)
		buf[0] = 1
		out, err := s.transform128(buf, engine.View[complex128](init)[s.n:2*s.n], false)
		if err != nil {
			e.logger.Warn("transform self test failed", "n", s.n, "error", err)
			return engine.StatusSize
		}
		for _, v := range out {
			peak = max(peak, math.Abs(real(v)-1)+math.Abs(imag(v)))
		}
	} else {
		buf := engine.View[complex64](init)[:s.n]
		clear(buf)
		buf[0] = 1
		if err := s.transform64(buf, false); err != nil {
			e.logger.Warn("transform self test failed", "n", s.n, "error", err)
			return engine.StatusSize
		}
		for _, v := range buf {
			peak = max(peak, math.Abs(float64(real(v))-1)+math.Abs(float64(imag(v))))
		}
	}
	if peak > 1e-4 {
		e.logger.Warn("transform self test failed", "n", s.n, "error", peak)
		return statusSelfTest
	}
	return engine.StatusOK
}

// transform64 runs an unnormalized transform in place.
func (s *spectralSpec) transform64(buf []complex64, inverse bool) error {
	if s.plan32 == nil {
		return nil
	}
	if !inverse {
		return s.plan32.Forward(buf, buf)
	}
	// The plan's inverse divides by n.
	if err := s.plan32.Inverse(buf, buf); err != nil {
		return err
	}
	n := float32(s.n)
	for i := range buf {
		buf[i] *= complex(n, 0)
	}
	return nil
}

// transform128 runs an unnormalized transform of in and returns the result,
// which may alias in or out.
func (s *spectralSpec) transform128(in, out []complex128, inverse bool) ([]complex128, error) {
	switch {
	case s.dft != nil:
		if inverse {
			for i := range in {
				in[i] = complex(real(in[i]), -imag(in[i]))
			}
		}
		out = s.dft.Coefficients(out, in)
		if inverse {
			for i := range out {
				out[i] = complex(real(out[i]), -imag(out[i]))
			}
		}
		return out, nil
	case s.plan64 != nil:
		if !inverse {
			return out, s.plan64.Forward(out, in)
		}
		if err := s.plan64.Inverse(out, in); err != nil {
			return nil, err
		}
		n := float64(s.n)
		for i := range out {
			out[i] *= complex(n, 0)
		}
		return out, nil
	default:
		return in, nil
	}
}

func (e *Engine) checkSpectral(spec engine.Spec, dst, src []complex64, work []byte) (*spectralSpec, engine.Status) {
	s, ok := spec.(*spectralSpec)
	if !ok || s == nil {
		return nil, engine.StatusContextMatch
	}
	h, ok := readHeader(s.mem, s.kind)
	if !ok || int(h[0]) != s.n || engine.Flag(h[1]) != s.flag {
		return nil, engine.StatusContextMatch
	}
	if len(src) < s.n || len(dst) < s.n || len(work) < s.workSize() {
		return nil, engine.StatusSize
	}
	return s, engine.StatusOK
}

// Forward computes dst = scale * DFT(src). dst and src may alias.
func (e *Engine) Forward(spec engine.Spec, dst, src []complex64, work []byte) engine.Status {
	return e.execute(spec, dst, src, work, false)
}

// Inverse computes dst = scale * IDFT(src). dst and src may alias.
func (e *Engine) Inverse(spec engine.Spec, dst, src []complex64, work []byte) engine.Status {
	return e.execute(spec, dst, src, work, true)
}

func (e *Engine) execute(spec engine.Spec, dst, src []complex64, work []byte, inverse bool) engine.Status {
	s, st := e.checkSpectral(spec, dst, src, work)
	if st != engine.StatusOK {
		return st
	}
	fwd, inv := s.scales()
	scale := fwd
	if inverse {
		scale = inv
	}

	if s.precise() {
		w := engine.View[complex128](work)
		in, out := w[:s.n], w[s.n:2*s.n]
		for i, v := range src[:s.n] {
			in[i] = complex128(v)
		}
		res, err := s.transform128(in, out, inverse)
		if err != nil {
			e.logger.Warn("transform failed", "n", s.n, "error", err)
			return engine.StatusSize
		}
		for i, v := range res {
			dst[i] = complex64(v * complex(scale, 0))
		}
		return engine.StatusOK
	}

	buf := engine.View[complex64](work)[:s.n]
	copy(buf, src[:s.n])
	if err := s.transform64(buf, inverse); err != nil {
		e.logger.Warn("transform failed", "n", s.n, "error", err)
		return engine.StatusSize
	}
	sc := complex(float32(scale), 0)
	for i, v := range buf {
		dst[i] = v * sc
	}
	return engine.StatusOK
}
