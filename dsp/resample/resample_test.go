package resample

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/internal/enginetest"
	"github.com/cwbudde/algo-ipp/internal/testutil"
)

func newContext(t *testing.T) (*Context, *enginetest.Rig) {
	t.Helper()
	rig := enginetest.NewRig()
	ctx := New(rig.Engine, rig.Alloc)
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx, rig
}

func TestFilterLen(t *testing.T) {
	for h, want := range map[int]int{-3: 1, 0: 1, 1: 1, 2: 3, 16: 31} {
		if got := FilterLen(h); got != want {
			t.Errorf("FilterLen(%d) = %d, want %d", h, got, want)
		}
	}
}

func TestInitializeGeometry(t *testing.T) {
	ctx, rig := newContext(t)
	if err := ctx.Initialize(44100, 48000, 16, 0.92, 7.5, engine.HintNone); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	g := ctx.Geometry()
	if g.Len != 31 || g.Height != 160 {
		t.Fatalf("geometry = %+v, want len 31 height 160", g)
	}
	if rig.Alloc.Outstanding() != 1 {
		t.Fatalf("outstanding = %d, want 1", rig.Alloc.Outstanding())
	}
	if up, down := ctx.Ratio(); up != 160 || down != 147 {
		t.Fatalf("ratio = %d/%d, want 160/147", up, down)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	ctx, rig := newContext(t)
	if err := ctx.Initialize(8000, 16000, 8, 0.9, 6, engine.HintFast); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	rig.Engine.ResetCalls()
	acquired := rig.Alloc.Acquired()
	if err := ctx.Initialize(8000, 16000, 8, 0.9, 6, engine.HintFast); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if rig.Engine.TotalCalls() != 0 || rig.Alloc.Acquired() != acquired {
		t.Fatalf("unchanged signature touched the engine: calls %d, acquisitions %d",
			rig.Engine.TotalCalls(), rig.Alloc.Acquired()-acquired)
	}

	if err := ctx.Initialize(8000, 16000, 8, 0.95, 6, engine.HintFast); err != nil {
		t.Fatalf("Initialize with new rolloff: %v", err)
	}
	if rig.Engine.Calls(enginetest.PolyphaseInit) != 1 {
		t.Fatalf("PolyphaseInit calls = %d, want 1", rig.Engine.Calls(enginetest.PolyphaseInit))
	}
	if rig.Alloc.Outstanding() != 1 {
		t.Fatalf("outstanding = %d, want 1", rig.Alloc.Outstanding())
	}
}

func TestInitializeFailures(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(*enginetest.FaultEngine)
		rolloff float32
		kind    engine.ErrorKind
	}{
		{"get size", func(f *enginetest.FaultEngine) { f.FailWith(enginetest.PolyphaseGetSize, engine.StatusSize) }, 0.9, engine.KindSize},
		{"alloc", func(f *enginetest.FaultEngine) { f.FailMallocAfter(0) }, 0.9, engine.KindAllocation},
		{"init", func(*enginetest.FaultEngine) {}, 0, engine.KindSize},
		{"injected init", func(f *enginetest.FaultEngine) { f.FailWith(enginetest.PolyphaseInit, -3000) }, 0.9, engine.KindEngine},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, rig := newContext(t)
			tc.setup(rig.Engine)
			err := ctx.Initialize(16000, 8000, 8, tc.rolloff, 5, engine.HintNone)
			if got := engine.KindOf(err); got != tc.kind {
				t.Fatalf("kind = %v (%v), want %v", got, err, tc.kind)
			}
			if ctx.State() != engine.StateFailed {
				t.Fatalf("state = %v, want failed", ctx.State())
			}
			if rig.Alloc.Outstanding() != 0 {
				t.Fatalf("outstanding = %d after failed init", rig.Alloc.Outstanding())
			}
		})
	}
}

func TestInitializeInvalidRate(t *testing.T) {
	ctx, rig := newContext(t)
	if err := ctx.Initialize(0, 8000, 8, 0.9, 5, engine.HintNone); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("err = %v, want ErrInvalidRate", err)
	}
	if rig.Engine.TotalCalls() != 0 {
		t.Fatalf("engine calls = %d, want 0", rig.Engine.TotalCalls())
	}
}

func TestResampleLengthAndBound(t *testing.T) {
	tests := []struct{ in, out int }{
		{44100, 48000},
		{48000, 44100},
		{8000, 16000},
		{16000, 8000},
	}
	for _, tc := range tests {
		ctx, _ := newContext(t)
		if err := ctx.InitializeQuality(tc.in, tc.out, QualityBalanced, engine.HintNone); err != nil {
			t.Fatalf("%d->%d: Initialize: %v", tc.in, tc.out, err)
		}
		src := testutil.Sine[float32](440, float64(tc.in), 0.5, 4096)
		dst := make([]float32, ctx.MaxOutput(len(src)))
		n, err := ctx.Resample(dst, src, 0, len(src), 1)
		if err != nil {
			t.Fatalf("%d->%d: Resample: %v", tc.in, tc.out, err)
		}
		reach := ctx.Signature().History + ctx.Geometry().Len
		lower := int(float64(len(src)-reach)*float64(tc.out)/float64(tc.in)) - 1
		if n < lower || n > ctx.MaxOutput(len(src)) {
			t.Fatalf("%d->%d: produced %d, want within [%d, %d]", tc.in, tc.out, n, lower, ctx.MaxOutput(len(src)))
		}
	}
}

func TestResamplePreservesSine(t *testing.T) {
	ctx, _ := newContext(t)
	const in, out = 44100.0, 48000.0
	if err := ctx.InitializeQuality(in, out, QualityBest, engine.HintNone); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	src := testutil.Sine[float32](1000, in, 1, 2048)
	dst := make([]float32, ctx.MaxOutput(len(src)))
	n, err := ctx.Resample(dst, src, 0, len(src), 1)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	h := float64(ctx.Signature().History)
	for k := range n {
		pos := h + float64(k)*in/out
		want := math.Sin(2 * math.Pi * 1000 * pos / in)
		if d := math.Abs(float64(dst[k]) - want); d > 0.02 {
			t.Fatalf("sample %d = %.4f, want %.4f", k, dst[k], want)
		}
	}
}

func TestResampleResetsCursorPerBlock(t *testing.T) {
	ctx, _ := newContext(t)
	if err := ctx.Initialize(8000, 16000, 8, 0.9, 5, engine.HintNone); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	src := testutil.Noise[float32](5, 0.5, 512)
	first := make([]float32, ctx.MaxOutput(len(src)))
	second := make([]float32, len(first))

	n1, err := ctx.Resample(first, src, 0, len(src), 1)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	cursor := ctx.Cursor()
	n2, err := ctx.Resample(second, src, 0, len(src), 1)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if n1 != n2 || ctx.Cursor() != cursor {
		t.Fatalf("repeat call differs: %d/%d samples, cursor %.2f/%.2f", n1, n2, cursor, ctx.Cursor())
	}
	testutil.RequireSliceNearlyEqual(t, second[:n2], first[:n1], 0)
	if cursor <= 8 {
		t.Fatalf("cursor = %.2f, want past the history", cursor)
	}
}

func TestResampleOffsetAndNorm(t *testing.T) {
	ctx, _ := newContext(t)
	if err := ctx.Initialize(16000, 8000, 8, 0.9, 5, engine.HintNone); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	block := testutil.Noise[float32](9, 0.5, 256)
	padded := append(make([]float32, 100), block...)

	ref := make([]float32, ctx.MaxOutput(len(block)))
	n, err := ctx.Resample(ref, block, 0, len(block), 1)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	got := make([]float32, len(ref))
	m, err := ctx.Resample(got, padded, 100, len(block), 2)
	if err != nil {
		t.Fatalf("Resample at offset: %v", err)
	}
	if m != n {
		t.Fatalf("offset block produced %d, want %d", m, n)
	}
	for i := range n {
		ref[i] *= 2
	}
	testutil.RequireSliceNearlyEqual(t, got[:m], ref[:n], 1e-6)
}

func TestResampleMismatch(t *testing.T) {
	ctx, _ := newContext(t)
	buf := make([]float32, 64)
	if _, err := ctx.Resample(buf, buf, 0, 64, 1); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("uninitialized err = %v", err)
	}
	if ctx.MaxOutput(64) != 0 {
		t.Fatal("MaxOutput must be 0 before initialization")
	}
	if err := ctx.Initialize(8000, 8000, 4, 0.9, 5, engine.HintNone); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := ctx.Resample(buf, buf, 10, 60, 1); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("out of range err = %v", err)
	}
	if _, err := ctx.Resample(buf, buf, -1, 10, 1); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("negative start err = %v", err)
	}
}

func TestCloseBalances(t *testing.T) {
	ctx, rig := newContext(t)
	for _, q := range []Quality{QualityFast, QualityBalanced, QualityBest} {
		if err := ctx.InitializeQuality(22050, 44100, q, engine.HintAccurate); err != nil {
			t.Fatalf("%v: %v", q, err)
		}
	}
	_ = ctx.Close()
	_ = ctx.Close()
	if !rig.Alloc.Balanced() || ctx.State() != engine.StateUninitialized {
		t.Fatalf("balanced=%v state=%v", rig.Alloc.Balanced(), ctx.State())
	}
}

func TestQualityProfile(t *testing.T) {
	fast, balanced, best := QualityProfile(QualityFast), QualityProfile(QualityBalanced), QualityProfile(QualityBest)
	if !(fast.History < balanced.History && balanced.History < best.History) {
		t.Fatalf("history not increasing: %d %d %d", fast.History, balanced.History, best.History)
	}
	if QualityProfile(Quality(42)) != balanced {
		t.Fatal("unknown quality must fall back to balanced")
	}
}
