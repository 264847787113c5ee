package goengine

import (
	"testing"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/internal/testutil"
)

func newNoiseState(t *testing.T, e *Engine, rate int, level engine.NRLevel) []byte {
	t.Helper()
	size, st := e.NoiseFilterGetStateSize(rate)
	requireOK(t, "NoiseFilterGetStateSize", st)
	state := mustMalloc(t, e, size)
	requireOK(t, "NoiseFilterInit", e.NoiseFilterInit(rate, state))
	requireOK(t, "NoiseFilterLevel", e.NoiseFilterLevel(level, state))
	return state
}

func TestNoiseFilterAttenuatesStationaryNoise(t *testing.T) {
	e := New()
	state := newNoiseState(t, e, 8000, engine.LevelNormal)
	noise := testutil.Noise[float32](7, 0.01, 60*engine.NoiseFrameLen)

	var in, out float64
	for f := range 60 {
		block := append([]float32(nil), noise[f*engine.NoiseFrameLen:(f+1)*engine.NoiseFrameLen]...)
		before := testutil.RMS(block)
		requireOK(t, "NoiseFilter", e.NoiseFilter(block, state))
		if f >= 40 {
			in += before
			out += testutil.RMS(block)
		}
	}
	if out > 0.6*in {
		t.Fatalf("noise RMS reduced to %.3f of input, want < 0.6", out/in)
	}
}

func TestNoiseFilterKeepsLoudSignal(t *testing.T) {
	e := New()
	state := newNoiseState(t, e, 16000, engine.LevelNormal)
	noise := testutil.Noise[float32](8, 0.001, 30*engine.NoiseFrameLen)
	for f := range 30 {
		requireOK(t, "NoiseFilter", e.NoiseFilter(noise[f*engine.NoiseFrameLen:(f+1)*engine.NoiseFrameLen], state))
	}

	tone := testutil.Sine[float32](440, 16000, 0.5, 4*engine.NoiseFrameLen)
	var last float64
	for f := range 4 {
		block := tone[f*engine.NoiseFrameLen : (f+1)*engine.NoiseFrameLen]
		before := testutil.RMS(block)
		requireOK(t, "NoiseFilter", e.NoiseFilter(block, state))
		last = testutil.RMS(block) / before
	}
	if last < 0.9 {
		t.Fatalf("loud tone kept %.3f of its level, want > 0.9", last)
	}
}

func TestNoiseFilterLevelNoneIsTransparent(t *testing.T) {
	e := New()
	state := newNoiseState(t, e, 11025, engine.LevelNone)
	block := testutil.Noise[float32](9, 0.2, engine.NoiseFrameLen)
	want := append([]float32(nil), block...)
	requireOK(t, "NoiseFilter", e.NoiseFilter(block, state))
	testutil.RequireSliceNearlyEqual(t, block, want, 0)
}

func TestNoiseFilterModes(t *testing.T) {
	e := New()
	state := newNoiseState(t, e, 8000, engine.LevelHigh)
	for _, mode := range []engine.NRMode{engine.ModeNoUpdate, engine.ModeUpdate, engine.ModeUpdateAll} {
		requireOK(t, "NoiseFilterMode", e.NoiseFilterMode(mode, state))
		block := testutil.Noise[float32](10, 0.1, engine.NoiseFrameLen)
		requireOK(t, "NoiseFilter", e.NoiseFilter(block, state))
		testutil.RequireFinite(t, block)
	}
	if st := e.NoiseFilterMode(engine.NRMode(5), state); st != engine.StatusBadArg {
		t.Fatalf("invalid mode status = %v", st)
	}
	if st := e.NoiseFilterLevel(engine.NRLevel(9), state); st != engine.StatusBadArg {
		t.Fatalf("invalid level status = %v", st)
	}
}

func TestNoiseFilterErrors(t *testing.T) {
	e := New()
	if _, st := e.NoiseFilterGetStateSize(9000); st != engine.StatusBadArg {
		t.Fatalf("rate 9000 status = %v", st)
	}
	state := newNoiseState(t, e, 8000, engine.LevelNormal)
	if st := e.NoiseFilter(make([]float32, 100), state); st != engine.StatusSize {
		t.Fatalf("short block status = %v", st)
	}
	if st := e.NoiseFilter(make([]float32, engine.NoiseFrameLen), make([]byte, 128)); st != engine.StatusContextMatch {
		t.Fatalf("foreign state status = %v", st)
	}
}
