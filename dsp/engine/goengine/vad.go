package goengine

import (
	"math"

	"github.com/cwbudde/algo-ipp/dsp/engine"
)

// Header fields of a VAD state.
const (
	vadFrames = iota
	vadHang
	vadTonal // consecutive tonal frames
)

// Payload slots of a VAD state.
const (
	vadNoise = iota // tracked noise power
	vadSlots
)

const (
	vadThresholdDB   = 6.0
	vadAbsoluteDB    = -55.0
	vadHangover      = 6
	vadToneCorr      = 0.95
	vadToneFrames    = 2
	vadMaxLag        = 200
	vadNoiseDownRate = 0.2
	vadNoiseUpRate   = 0.01
)

// VADGetSize reports the state size of the detector.
func (e *Engine) VADGetSize() (int, engine.Status) {
	return headerSize + engine.SizeOf[float32](vadSlots), engine.StatusOK
}

// VADInit resets the detector state.
func (e *Engine) VADInit(state []byte) engine.Status {
	size, _ := e.VADGetSize()
	if len(state) < size {
		return engine.StatusSize
	}
	engine.View[float32](payload(state))[vadNoise] = 0
	writeHeader(state, kindVAD, 0, 0, 0)
	return engine.StatusOK
}

// VAD classifies one VADFrameLen block. voice is set for frames whose power
// rises above the tracked noise floor, held for a short hangover. tone is set
// once consecutive frames show a strong periodic autocorrelation peak.
func (e *Engine) VAD(src []int16, state []byte) (tone, voice bool, st engine.Status) {
	size, _ := e.VADGetSize()
	h, ok := readHeader(state, kindVAD)
	if !ok || len(state) < size {
		return false, false, engine.StatusContextMatch
	}
	if len(src) != engine.VADFrameLen {
		return false, false, engine.StatusSize
	}

	x := make([]float64, len(src))
	var sum float64
	for i, v := range src {
		x[i] = float64(v) / 32768
		sum += x[i] * x[i]
	}
	power := sum/float64(len(x)) + minPower

	slots := engine.View[float32](payload(state))[:vadSlots]
	noise := float64(slots[vadNoise])
	frames, hang, tonal := h[vadFrames], h[vadHang], h[vadTonal]

	if frames == 0 || noise <= 0 {
		noise = power
	}
	db := 10 * math.Log10(power)
	noiseDB := 10 * math.Log10(noise)

	active := db > noiseDB+vadThresholdDB && db > vadAbsoluteDB
	switch {
	case active:
		hang = vadHangover
		voice = true
	case hang > 0:
		hang--
		voice = true
	}

	if power < noise {
		noise += vadNoiseDownRate * (power - noise)
	} else if !active {
		noise += vadNoiseUpRate * (power - noise)
	}

	if db > vadAbsoluteDB && periodicity(x) > vadToneCorr {
		tonal++
	} else {
		tonal = 0
	}
	tone = tonal >= vadToneFrames

	slots[vadNoise] = float32(noise)
	writeHeader(state, kindVAD, frames+1, hang, tonal)
	return tone, voice, engine.StatusOK
}

// periodicity returns the highest normalized autocorrelation past the first
// zero crossing of the autocorrelation function.
func periodicity(x []float64) float64 {
	maxLag := min(vadMaxLag, len(x)/2)
	crossed := false
	best := 0.0
	for lag := 1; lag <= maxLag; lag++ {
		var r, e0, e1 float64
		for i := lag; i < len(x); i++ {
			r += x[i] * x[i-lag]
			e0 += x[i-lag] * x[i-lag]
			e1 += x[i] * x[i]
		}
		if e0 == 0 || e1 == 0 {
			return 0
		}
		c := r / math.Sqrt(e0*e1)
		if !crossed {
			crossed = c < 0
			continue
		}
		best = max(best, c)
	}
	return best
}
