package goengine

import (
	"slices"

	"github.com/meko-christian/algo-approx"

	"github.com/cwbudde/algo-ipp/dsp/engine"
)

// Header fields of a noise filter state.
const (
	nfRate = iota
	nfLevel
	nfMode
	nfFrames
)

// Payload slots of a noise filter state.
const (
	nfNoise = iota // tracked noise power
	nfGain         // amplitude gain applied at the end of the previous block
	nfSlots
)

const (
	noiseTimeConstant = 0.4 // seconds
	noiseRise         = 1.02
	noiseGate         = 2.0 // blocks below gate*noise count as noise
	minPower          = 1e-12
)

type levelParams struct {
	overSubtract float64
	floor        float64 // minimum power gain
}

var noiseLevels = map[engine.NRLevel]levelParams{
	engine.LevelLow:    {overSubtract: 1, floor: 0.3},
	engine.LevelMedium: {overSubtract: 1.5, floor: 0.18},
	engine.LevelNormal: {overSubtract: 2, floor: 0.1},
	engine.LevelHigh:   {overSubtract: 3, floor: 0.05},
}

// NoiseFilterGetStateSize reports the state size for rate, which must be one
// of engine.NoiseRates.
func (e *Engine) NoiseFilterGetStateSize(rate int) (int, engine.Status) {
	if !slices.Contains(engine.NoiseRates, rate) {
		return 0, engine.StatusBadArg
	}
	return headerSize + engine.SizeOf[float32](nfSlots), engine.StatusOK
}

// NoiseFilterInit prepares state for rate with level LevelNone and mode
// ModeUpdate.
func (e *Engine) NoiseFilterInit(rate int, state []byte) engine.Status {
	size, st := e.NoiseFilterGetStateSize(rate)
	if st != engine.StatusOK {
		return st
	}
	if len(state) < size {
		return engine.StatusSize
	}
	slots := engine.View[float32](payload(state))[:nfSlots]
	slots[nfNoise] = 0
	slots[nfGain] = 1
	writeHeader(state, kindNoise, uint32(rate), uint32(engine.LevelNone), uint32(int32(engine.ModeUpdate)), 0)
	return engine.StatusOK
}

// NoiseFilterLevel sets the reduction level.
func (e *Engine) NoiseFilterLevel(level engine.NRLevel, state []byte) engine.Status {
	if level < engine.LevelNone || level > engine.LevelAuto {
		return engine.StatusBadArg
	}
	if _, ok := readHeader(state, kindNoise); !ok {
		return engine.StatusContextMatch
	}
	setField(state, nfLevel, uint32(level))
	return engine.StatusOK
}

// NoiseFilterMode sets how the noise estimate adapts.
func (e *Engine) NoiseFilterMode(mode engine.NRMode, state []byte) engine.Status {
	if mode < engine.ModeNoUpdate || mode > engine.ModeUpdateAll {
		return engine.StatusBadArg
	}
	if _, ok := readHeader(state, kindNoise); !ok {
		return engine.StatusContextMatch
	}
	setField(state, nfMode, uint32(int32(mode)))
	return engine.StatusOK
}

// NoiseFilter attenuates one NoiseFrameLen block in place with a
// Wiener-style gain derived from the block power and the tracked noise power.
// The gain is ramped across the block to avoid steps at block boundaries.
func (e *Engine) NoiseFilter(block []float32, state []byte) engine.Status {
	h, ok := readHeader(state, kindNoise)
	if !ok || len(state) < headerSize+engine.SizeOf[float32](nfSlots) {
		return engine.StatusContextMatch
	}
	if len(block) != engine.NoiseFrameLen {
		return engine.StatusSize
	}
	rate := float64(h[nfRate])
	level := engine.NRLevel(h[nfLevel])
	mode := engine.NRMode(int32(h[nfMode]))
	frames := h[nfFrames]
	slots := engine.View[float32](payload(state))[:nfSlots]

	var sum float64
	for _, v := range block {
		sum += float64(v) * float64(v)
	}
	power := sum/float64(len(block)) + minPower
	noise := float64(slots[nfNoise])

	smooth := approx.FastExp(-float64(engine.NoiseFrameLen) / (rate * noiseTimeConstant))
	switch {
	case frames == 0 || noise <= 0:
		noise = power
	case mode == engine.ModeUpdateAll:
		noise = smooth*noise + (1-smooth)*power
	case mode == engine.ModeUpdate:
		if power < noiseGate*noise {
			noise = smooth*noise + (1-smooth)*power
		} else {
			noise *= noiseRise
		}
	}

	gain := 1.0
	if level != engine.LevelNone {
		p, ok := noiseLevels[level]
		if level == engine.LevelAuto {
			p = autoLevel(power, noise)
			ok = true
		}
		if ok {
			snr := max(power/noise-1, 0)
			g := max(snr/(snr+p.overSubtract), p.floor)
			gain = approx.FastSqrt(g)
		}
	}

	prev := float64(slots[nfGain])
	step := (gain - prev) / float64(len(block))
	for i := range block {
		block[i] *= float32(prev + step*float64(i+1))
	}

	slots[nfNoise] = float32(noise)
	slots[nfGain] = float32(gain)
	setField(state, nfFrames, frames+1)
	return engine.StatusOK
}

// autoLevel picks stronger reduction for noisier input.
func autoLevel(power, noise float64) levelParams {
	snrDB := 10 * approx.FastLog(power/noise) / ln10
	switch {
	case snrDB < 6:
		return noiseLevels[engine.LevelHigh]
	case snrDB < 15:
		return noiseLevels[engine.LevelNormal]
	default:
		return noiseLevels[engine.LevelLow]
	}
}

const ln10 = 2.302585092994045684017991454684364208
