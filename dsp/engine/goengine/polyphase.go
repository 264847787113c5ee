package goengine

import (
	"math"

	"github.com/cwbudde/algo-ipp/dsp/engine"
)

// Upper bounds on the number of filter phases. Ratios needing more phases
// are approximated by rounding the fractional cursor to the nearest phase.
const (
	maxPhasesFast     = 256
	maxPhasesAccurate = 2048
	maxPhases         = 1024
)

type polyphaseGeometry struct {
	inRate, outRate int
	length, height  int
}

func polyphaseLayout(inRate, outRate, length int, hint engine.Hint) (polyphaseGeometry, engine.Status) {
	if inRate <= 0 || outRate <= 0 {
		return polyphaseGeometry{}, engine.StatusBadArg
	}
	if length < 1 {
		return polyphaseGeometry{}, engine.StatusSize
	}

	g := gcd(inRate, outRate)
	up := outRate / g

	limit := maxPhases
	switch hint {
	case engine.HintFast:
		limit = maxPhasesFast
	case engine.HintAccurate:
		limit = maxPhasesAccurate
	}

	taps := length
	if outRate < inRate {
		// Widen the kernel so the lowered cutoff keeps the same number of lobes.
		taps = int(math.Ceil(float64(length) * float64(inRate) / float64(outRate)))
	}
	return polyphaseGeometry{inRate: inRate, outRate: outRate, length: taps, height: min(up, limit)}, engine.StatusOK
}

func (g polyphaseGeometry) stateSize() int {
	return headerSize + engine.SizeOf[float32](g.length*g.height)
}

// PolyphaseGetSize reports the state size and filter bank geometry.
func (e *Engine) PolyphaseGetSize(inRate, outRate, length int, hint engine.Hint) (engine.PolyphaseSizes, engine.Status) {
	g, st := polyphaseLayout(inRate, outRate, length, hint)
	if st != engine.StatusOK {
		return engine.PolyphaseSizes{}, st
	}
	return engine.PolyphaseSizes{State: g.stateSize(), Len: g.length, Height: g.height}, engine.StatusOK
}

// PolyphaseInit designs a Kaiser-windowed sinc filter bank into state.
// rolloff scales the cutoff relative to the lower Nyquist frequency and alpha
// is the Kaiser beta.
func (e *Engine) PolyphaseInit(inRate, outRate, length int, rolloff, alpha float32, state []byte, hint engine.Hint) engine.Status {
	g, st := polyphaseLayout(inRate, outRate, length, hint)
	if st != engine.StatusOK {
		return st
	}
	if !(rolloff > 0 && rolloff <= 1) || !(alpha >= 0) {
		return engine.StatusBadArg
	}
	if len(state) < g.stateSize() {
		return engine.StatusSize
	}

	bank := engine.View[float32](payload(state))[:g.length*g.height]
	fc := 0.5 * float64(rolloff) * min(1, float64(outRate)/float64(inRate))
	half := (g.length - 1) / 2
	reach := float64(g.length+1) / 2

	for p := range g.height {
		phase := bank[p*g.length : (p+1)*g.length]
		frac := float64(p) / float64(g.height)
		var sum float64
		for k := range phase {
			d := float64(k-half) - frac
			h := 2 * fc * sinc(2*fc*d) * kaiserAt(d/reach, float64(alpha))
			phase[k] = float32(h)
			sum += h
		}
		if sum == 0 {
			return engine.StatusBadArg
		}
		for k := range phase {
			phase[k] = float32(float64(phase[k]) / sum)
		}
	}

	writeHeader(state, kindPolyphase,
		uint32(inRate), uint32(outRate), uint32(g.length), uint32(g.height),
		math.Float32bits(rolloff), math.Float32bits(alpha), uint32(hint))
	return engine.StatusOK
}

// PolyphaseResample filters src into dst starting at the input position
// *time, advancing it by inRate/outRate per output sample. Output stops when
// the kernel would read past the end of src or dst is full. Samples before
// the start of src are taken as zero.
func (e *Engine) PolyphaseResample(src, dst []float32, norm float32, time *float64, state []byte) (int, engine.Status) {
	if time == nil {
		return 0, engine.StatusNullPtr
	}
	h, ok := readHeader(state, kindPolyphase)
	if !ok {
		return 0, engine.StatusContextMatch
	}
	g := polyphaseGeometry{inRate: int(h[0]), outRate: int(h[1]), length: int(h[2]), height: int(h[3])}
	if g.length < 1 || g.height < 1 || len(state) < g.stateSize() {
		return 0, engine.StatusContextMatch
	}
	if *time < 0 || math.IsNaN(*time) {
		return 0, engine.StatusBadArg
	}

	bank := engine.View[float32](payload(state))[:g.length*g.height]
	step := float64(g.inRate) / float64(g.outRate)
	half := (g.length - 1) / 2
	right := g.length - 1 - half

	t := *time
	n := 0
	for n < len(dst) {
		idx := int(t)
		p := int(math.Round((t - float64(idx)) * float64(g.height)))
		if p == g.height {
			p = 0
			idx++
		}
		if idx+right >= len(src) {
			break
		}

		phase := bank[p*g.length : (p+1)*g.length]
		base := idx - half
		var acc float32
		for k, c := range phase {
			if j := base + k; j >= 0 {
				acc += c * src[j]
			}
		}
		dst[n] = acc * norm
		n++
		t += step
	}
	*time = t
	return n, engine.StatusOK
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	pix := math.Pi * x
	return math.Sin(pix) / pix
}

// kaiserAt evaluates a Kaiser window at r in [-1, 1]; it is zero outside.
func kaiserAt(r, beta float64) float64 {
	if r <= -1 || r >= 1 {
		return 0
	}
	if beta == 0 {
		return 1
	}
	return i0(beta*math.Sqrt(1-r*r)) / i0(beta)
}

func i0(x float64) float64 {
	// Power series approximation.
	sum := 1.0
	term := 1.0

	x2 := (x * x) / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}
