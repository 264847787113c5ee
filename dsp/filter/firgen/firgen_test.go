package firgen

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/engine/goengine"
	"github.com/cwbudde/algo-ipp/dsp/native"
	"github.com/cwbudde/algo-ipp/internal/enginetest"
)

func gain[T Sample](taps []T, f float64) float64 {
	var re, im float64
	for k, c := range taps {
		re += float64(c) * math.Cos(2*math.Pi*f*float64(k))
		im -= float64(c) * math.Sin(2*math.Pi*f*float64(k))
	}
	return math.Hypot(re, im)
}

func TestDesignShapes(t *testing.T) {
	rig := enginetest.NewRig()
	tests := []struct {
		d     *Designer[float64]
		f     Cutoff
		unity float64
		stop  float64
	}{
		{NewLowpass[float64](rig.Engine, rig.Alloc), Edge(0.1), 0, 0.3},
		{NewHighpass[float64](rig.Engine, rig.Alloc), Edge(0.2), 0.5, 0.02},
		{NewBandpass[float64](rig.Engine, rig.Alloc), Band(0.1, 0.3), 0.2, 0.45},
		{NewBandstop[float64](rig.Engine, rig.Alloc), Band(0.1, 0.3), 0, 0.2},
	}
	for _, tc := range tests {
		t.Run(tc.d.Shape().String(), func(t *testing.T) {
			defer tc.d.Close()
			taps := make([]float64, 61)
			if err := tc.d.Design(taps, tc.f, engine.WinBlackman, true); err != nil {
				t.Fatalf("Design: %v", err)
			}
			if g := gain(taps, tc.unity); math.Abs(g-1) > 1e-9 {
				t.Fatalf("gain at %v = %v, want 1", tc.unity, g)
			}
			if g := gain(taps, tc.stop); g > 0.01 {
				t.Fatalf("gain at %v = %v, want < 0.01", tc.stop, g)
			}
		})
	}
	if !rig.Alloc.Balanced() {
		t.Fatalf("outstanding buffers: %d", rig.Alloc.Outstanding())
	}
}

func TestDesignMemoizes(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewLowpass[float64](rig.Engine, rig.Alloc)
	defer d.Close()

	first := make([]float64, 31)
	if err := d.Design(first, Edge(0.15), engine.WinHann, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	second := make([]float64, 31)
	if err := d.Design(second, Edge(0.15), engine.WinHann, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	if n := rig.Engine.Calls(enginetest.FIRGenLowpass); n != 1 {
		t.Fatalf("FIRGenLowpass calls = %d, want 1", n)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("memoized tap %d = %v, want %v", i, second[i], first[i])
		}
	}

	for _, change := range []func() error{
		func() error { return d.Design(second, Edge(0.16), engine.WinHann, true) },
		func() error { return d.Design(second, Edge(0.16), engine.WinHamming, true) },
		func() error { return d.Design(second, Edge(0.16), engine.WinHamming, false) },
		func() error { return d.Design(second[:29], Edge(0.16), engine.WinHamming, false) },
	} {
		before := rig.Engine.Calls(enginetest.FIRGenLowpass)
		if err := change(); err != nil {
			t.Fatalf("Design: %v", err)
		}
		if rig.Engine.Calls(enginetest.FIRGenLowpass) != before+1 {
			t.Fatal("changed signature did not recompute")
		}
	}
}

func TestBandHighEdgeRecomputes(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewBandpass[float64](rig.Engine, rig.Alloc)
	defer d.Close()

	narrow := make([]float64, 41)
	wide := make([]float64, 41)
	if err := d.Design(narrow, Band(0.1, 0.2), engine.WinHamming, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	if err := d.Design(wide, Band(0.1, 0.35), engine.WinHamming, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	if n := rig.Engine.Calls(enginetest.FIRGenBandpass); n != 2 {
		t.Fatalf("FIRGenBandpass calls = %d, want 2", n)
	}
	if gain(wide, 0.3) < 0.5 || gain(narrow, 0.3) > 0.1 {
		t.Fatalf("high edge ignored: narrow %.3f wide %.3f at 0.3", gain(narrow, 0.3), gain(wide, 0.3))
	}
}

func TestSingleEdgeIgnoresHigh(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewHighpass[float64](rig.Engine, rig.Alloc)
	defer d.Close()
	taps := make([]float64, 21)
	_ = d.Design(taps, Cutoff{Low: 0.2, High: 0.3}, engine.WinHann, true)
	_ = d.Design(taps, Cutoff{Low: 0.2, High: 0.4}, engine.WinHann, true)
	if n := rig.Engine.Calls(enginetest.FIRGenHighpass); n != 1 {
		t.Fatalf("FIRGenHighpass calls = %d, want 1", n)
	}
}

func TestForceRecompute(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewBandstop[float32](rig.Engine, rig.Alloc)
	defer d.Close()
	taps := make([]float32, 33)
	for range 2 {
		d.ForceRecompute()
		if err := d.Design(taps, Band(0.1, 0.2), engine.WinRect, false); err != nil {
			t.Fatalf("Design: %v", err)
		}
	}
	if n := rig.Engine.Calls(enginetest.FIRGenBandstop); n != 2 {
		t.Fatalf("FIRGenBandstop calls = %d, want 2", n)
	}
}

func TestFailureIsNotMemoized(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewHighpass[float64](rig.Engine, rig.Alloc)
	defer d.Close()
	taps := make([]float64, 20)
	for range 2 {
		err := d.Design(taps, Edge(0.2), engine.WinHann, true)
		if !errors.Is(err, engine.ErrUnsupportedSize) {
			t.Fatalf("even highpass err = %v, want ErrUnsupportedSize", err)
		}
		if st, _ := engine.StatusOf(err); st != engine.StatusFIRLen {
			t.Fatalf("status = %v, want FIR length error", st)
		}
	}
	if n := rig.Engine.Calls(enginetest.FIRGenHighpass); n != 2 {
		t.Fatalf("FIRGenHighpass calls = %d, want 2", n)
	}
}

func TestSinglePrecisionMatchesDouble(t *testing.T) {
	rig := enginetest.NewRig()
	d64 := NewLowpass[float64](rig.Engine, rig.Alloc)
	d32 := NewLowpass[float32](rig.Engine, rig.Alloc)
	defer d64.Close()
	defer d32.Close()

	ref := make([]float64, 45)
	got := make([]float32, 45)
	if err := d64.Design(ref, Edge(0.2), engine.WinBartlett, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	if err := d32.Design(got, Edge(0.2), engine.WinBartlett, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	for i := range ref {
		if got[i] != float32(ref[i]) {
			t.Fatalf("tap %d = %v, want %v", i, got[i], float32(ref[i]))
		}
	}
}

func TestDesignAt(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewLowpass[float64](rig.Engine, rig.Alloc)
	defer d.Close()

	ref := make([]float64, 15)
	if err := d.Design(ref, Edge(0.25), engine.WinHamming, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	buf := make([]float64, 25)
	for i := range buf {
		buf[i] = -1
	}
	if err := d.DesignAt(buf, 5, 15, Edge(0.25), engine.WinHamming, true); err != nil {
		t.Fatalf("DesignAt: %v", err)
	}
	for i, v := range buf {
		switch {
		case i < 5 || i >= 20:
			if v != -1 {
				t.Fatalf("buf[%d] = %v, want untouched", i, v)
			}
		case v != ref[i-5]:
			t.Fatalf("buf[%d] = %v, want %v", i, v, ref[i-5])
		}
	}
	if err := d.DesignAt(buf, 20, 15, Edge(0.25), engine.WinHamming, true); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("out of range err = %v", err)
	}
}

func TestScratchGrowsOnly(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewLowpass[float64](rig.Engine, rig.Alloc)

	if err := d.Design(make([]float64, 101), Edge(0.1), engine.WinHann, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	big := d.ScratchLen()
	if err := d.Design(make([]float64, 21), Edge(0.1), engine.WinHann, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	if d.ScratchLen() != big || rig.Alloc.Acquired() != 1 {
		t.Fatalf("scratch shrank or was reacquired: len %d (was %d), acquisitions %d",
			d.ScratchLen(), big, rig.Alloc.Acquired())
	}
	if err := d.Design(make([]float64, 201), Edge(0.1), engine.WinHann, true); err != nil {
		t.Fatalf("Design: %v", err)
	}
	if d.ScratchLen() <= big || rig.Alloc.Outstanding() != 1 {
		t.Fatalf("scratch len %d outstanding %d", d.ScratchLen(), rig.Alloc.Outstanding())
	}

	_ = d.Close()
	_ = d.Close()
	if !rig.Alloc.Balanced() || d.ScratchLen() != 0 {
		t.Fatal("Close left scratch allocated")
	}
}

func TestScratchAllocationFailure(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewLowpass[float64](rig.Engine, rig.Alloc)
	defer d.Close()
	rig.Engine.FailMallocAfter(0)
	if err := d.Design(make([]float64, 11), Edge(0.1), engine.WinHann, true); !errors.Is(err, engine.ErrAllocation) {
		t.Fatalf("err = %v, want ErrAllocation", err)
	}
	if rig.Engine.Calls(enginetest.FIRGenLowpass) != 0 {
		t.Fatal("engine generator ran without scratch")
	}
	rig.Engine.FailMallocAfter(-1)
	if err := d.Design(make([]float64, 11), Edge(0.1), engine.WinHann, true); err != nil {
		t.Fatalf("Design after recovery: %v", err)
	}
}

func TestScratchGrowsUnderMemoryLimit(t *testing.T) {
	// Room for the 201 tap scratch (3216 bytes) but not for it and the
	// 101 tap scratch (1616 bytes) together.
	eng := goengine.New(goengine.WithMemoryLimit(4000))
	d := NewLowpass[float64](eng, native.New(eng))

	if err := d.Design(make([]float64, 101), Edge(0.1), engine.WinHann, true); err != nil {
		t.Fatalf("Design(101): %v", err)
	}
	taps := make([]float64, 201)
	if err := d.Design(taps, Edge(0.1), engine.WinHann, true); err != nil {
		t.Fatalf("Design(201): %v", err)
	}
	if d.ScratchLen() < 3216 {
		t.Fatalf("ScratchLen = %d, want >= 3216", d.ScratchLen())
	}
	if regions, _ := eng.Live(); regions != 1 {
		t.Fatalf("live regions = %d, want 1", regions)
	}
	if g := gain(taps, 0); math.Abs(g-1) > 1e-9 {
		t.Fatalf("DC gain = %v, want 1", g)
	}

	_ = d.Close()
	if regions, bytes := eng.Live(); regions != 0 || bytes != 0 {
		t.Fatalf("after Close: %d regions, %d bytes live", regions, bytes)
	}
}

func TestScratchGrowFailureLeavesNoStaleDesign(t *testing.T) {
	rig := enginetest.NewRig()
	d := NewLowpass[float64](rig.Engine, rig.Alloc)
	defer d.Close()

	if err := d.Design(make([]float64, 11), Edge(0.1), engine.WinHann, true); err != nil {
		t.Fatalf("Design(11): %v", err)
	}
	rig.Engine.FailMallocAfter(0)
	if err := d.Design(make([]float64, 51), Edge(0.1), engine.WinHann, true); !errors.Is(err, engine.ErrAllocation) {
		t.Fatalf("Design(51) err = %v, want ErrAllocation", err)
	}
	if d.ScratchLen() != 0 || rig.Alloc.Outstanding() != 0 {
		t.Fatalf("failed grow kept scratch: len %d outstanding %d", d.ScratchLen(), rig.Alloc.Outstanding())
	}

	rig.Engine.FailMallocAfter(-1)
	before := rig.Engine.Calls(enginetest.FIRGenLowpass)
	if err := d.Design(make([]float64, 11), Edge(0.1), engine.WinHann, true); err != nil {
		t.Fatalf("Design(11) after recovery: %v", err)
	}
	if rig.Engine.Calls(enginetest.FIRGenLowpass) != before+1 {
		t.Fatal("design after failed grow was served from the released scratch")
	}
}
