package fir

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-vecmath"
)

// Filter is a direct-form FIR filter. The delay line is stored twice in a
// row so the most recent len(coeffs) inputs are always one contiguous window
// and each output is a single dot product.
type Filter struct {
	coeffs   []float64
	reversed []float64
	delay    []float64
	pos      int
}

// New creates a FIR filter from the given coefficient slice.
// The coefficients are copied. The filter order is len(coeffs)-1.
func New(coeffs []float64) *Filter {
	n := len(coeffs)
	c := make([]float64, n)
	copy(c, coeffs)
	r := make([]float64, n)
	for i, v := range c {
		r[n-1-i] = v
	}
	return &Filter{
		coeffs:   c,
		reversed: r,
		delay:    make([]float64, 2*n),
	}
}

// FromTaps creates a filter from coefficients of either precision, such as
// the output of a single-precision designer.
func FromTaps[T ~float32 | ~float64](taps []T) *Filter {
	c := make([]float64, len(taps))
	for i, v := range taps {
		c[i] = float64(v)
	}
	return New(c)
}

// ProcessSample filters one input sample.
//
//	y[n] = sum_{k=0}^{N-1} h[k] * x[n-k]
func (f *Filter) ProcessSample(x float64) float64 {
	n := len(f.coeffs)
	if n == 0 {
		return 0
	}
	f.delay[f.pos] = x
	f.delay[f.pos+n] = x
	y := vecmath.DotProduct(f.reversed, f.delay[f.pos+1:f.pos+1+n])
	f.pos++
	if f.pos >= n {
		f.pos = 0
	}
	return y
}

// ProcessBlock filters a block of samples in-place.
func (f *Filter) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// ProcessBlockTo filters src into dst. Both slices must have the same length.
func (f *Filter) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}
	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

// ProcessBlock32 filters a single-precision block in place. The delay line
// and accumulation stay in double precision.
func (f *Filter) ProcessBlock32(buf []float32) {
	for i, x := range buf {
		buf[i] = float32(f.ProcessSample(float64(x)))
	}
}

// Reset clears the delay line to zero.
func (f *Filter) Reset() {
	clear(f.delay)
	f.pos = 0
}

// Order returns the filter order (len(coeffs) - 1).
func (f *Filter) Order() int {
	return len(f.coeffs) - 1
}

// Latency returns the group delay in samples of a linear-phase filter with
// these coefficients.
func (f *Filter) Latency() int {
	return max(0, f.Order()/2)
}

// Coefficients returns a copy of the filter coefficients.
func (f *Filter) Coefficients() []float64 {
	c := make([]float64, len(f.coeffs))
	copy(c, f.coeffs)
	return c
}

// Response computes the complex frequency response H(e^{-jw}) at the given
// frequency (Hz) and sample rate (Hz).
func (f *Filter) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	var h complex128
	for k, c := range f.coeffs {
		h += complex(c, 0) * cmplx.Exp(complex(0, -w*float64(k)))
	}
	return h
}

// MagnitudeDB returns the magnitude response in dB at the given frequency.
func (f *Filter) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(f.Response(freqHz, sampleRate)))
}
