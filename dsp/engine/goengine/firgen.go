package goengine

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/window"
)

// minFIRTaps is the shortest filter the generators accept.
const minFIRTaps = 5

var windowTypes = map[engine.WinType]window.Type{
	engine.WinBartlett: window.TypeBartlett,
	engine.WinBlackman: window.TypeBlackman,
	engine.WinHamming:  window.TypeHamming,
	engine.WinHann:     window.TypeHann,
	engine.WinRect:     window.TypeRectangular,
}

// FIRGenGetBufferSize reports the scratch size needed to design taps
// coefficients; the scratch holds the window.
func (e *Engine) FIRGenGetBufferSize(taps int) (int, engine.Status) {
	if taps < minFIRTaps {
		return 0, engine.StatusSize
	}
	return engine.SizeOf[float64](taps), engine.StatusOK
}

type bandShape int

const (
	shapeLowpass bandShape = iota
	shapeHighpass
	shapeBandpass
	shapeBandstop
)

// FIRGenLowpass designs a windowed-sinc lowpass filter.
func (e *Engine) FIRGenLowpass(rFreq float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	return e.firGen(shapeLowpass, rFreq, rFreq, taps, win, normalize, buf)
}

// FIRGenHighpass designs a windowed-sinc highpass filter. An even tap count
// cannot place a zero at DC, so it is rejected.
func (e *Engine) FIRGenHighpass(rFreq float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	if len(taps)%2 == 0 && len(taps) >= minFIRTaps {
		return engine.StatusFIRLen
	}
	return e.firGen(shapeHighpass, rFreq, rFreq, taps, win, normalize, buf)
}

// FIRGenBandpass designs a windowed-sinc bandpass filter between low and high.
func (e *Engine) FIRGenBandpass(low, high float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	return e.firGen(shapeBandpass, low, high, taps, win, normalize, buf)
}

// FIRGenBandstop designs a windowed-sinc bandstop filter between low and high.
func (e *Engine) FIRGenBandstop(low, high float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	if len(taps)%2 == 0 && len(taps) >= minFIRTaps {
		return engine.StatusFIRLen
	}
	return e.firGen(shapeBandstop, low, high, taps, win, normalize, buf)
}

func validRelFreq(f float64) bool { return f > 0 && f < 0.5 }

func (e *Engine) firGen(shape bandShape, low, high float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	n := len(taps)
	if n < minFIRTaps {
		return engine.StatusFIRLen
	}
	if !validRelFreq(low) || !validRelFreq(high) || low > high {
		return engine.StatusRelFreq
	}
	if (shape == shapeBandpass || shape == shapeBandstop) && low == high {
		return engine.StatusRelFreq
	}
	wt, ok := windowTypes[win]
	if !ok {
		return engine.StatusBadArg
	}
	if len(buf) < engine.SizeOf[float64](n) {
		return engine.StatusSize
	}

	center := float64(n-1) / 2
	for i := range taps {
		m := float64(i) - center
		switch shape {
		case shapeLowpass:
			taps[i] = ideal(low, m)
		case shapeHighpass:
			taps[i] = sinc(m) - ideal(low, m)
		case shapeBandpass:
			taps[i] = ideal(high, m) - ideal(low, m)
		case shapeBandstop:
			taps[i] = sinc(m) - ideal(high, m) + ideal(low, m)
		}
	}

	w := engine.View[float64](buf)[:n]
	window.Fill(w, wt)
	vecmath.MulBlockInPlace(taps, w)

	if normalize {
		var ref float64
		switch shape {
		case shapeLowpass, shapeBandstop:
			ref = gainAt(taps, 0)
		case shapeHighpass:
			ref = gainAt(taps, 0.5)
		case shapeBandpass:
			ref = gainAt(taps, (low+high)/2)
		}
		if ref == 0 || math.IsNaN(ref) {
			return engine.StatusRelFreq
		}
		vecmath.ScaleBlockInPlace(taps, 1/ref)
	}
	return engine.StatusOK
}

// ideal is the impulse response of an ideal lowpass with cutoff fc at
// offset m from the filter center.
func ideal(fc, m float64) float64 {
	return 2 * fc * sinc(2*fc*m)
}

// gainAt is the magnitude response of a linear-phase filter at the relative
// frequency f.
func gainAt(taps []float64, f float64) float64 {
	var re, im float64
	for i, c := range taps {
		phi := 2 * math.Pi * f * float64(i)
		re += c * math.Cos(phi)
		im -= c * math.Sin(phi)
	}
	return math.Hypot(re, im)
}
