package goengine

import (
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-ipp/dsp/engine"
)

// resize runs the full protocol for one destination tile.
func resize(t *testing.T, e *Engine, src []byte, srcSize engine.Size, full engine.Size, off engine.Point,
	tile engine.Size, channels int, interp engine.Interpolation,
) []byte {
	t.Helper()
	specSize, initSize, st := e.ResizeGetSize(srcSize, full, interp)
	requireOK(t, "ResizeGetSize", st)
	spec := mustMalloc(t, e, specSize)
	requireOK(t, "ResizeInit", e.ResizeInit(srcSize, full, interp, spec, mustMalloc(t, e, initSize)))
	workSize, st := e.ResizeGetBufferSize(spec, tile, channels)
	requireOK(t, "ResizeGetBufferSize", st)
	dst := make([]byte, tile.Width*tile.Height*channels)
	requireOK(t, "Resize8u", e.Resize8u(src, srcSize.Width*channels, dst, tile.Width*channels, off, tile,
		channels, engine.BorderRepl, spec, mustMalloc(t, e, workSize)))
	return dst
}

func randomImage(seed int64, n int) []byte {
	rng := rand.New(rand.NewSource(seed))
	img := make([]byte, n)
	for i := range img {
		img[i] = byte(rng.Intn(256))
	}
	return img
}

func TestResizeIdentity(t *testing.T) {
	e := New()
	size := engine.Size{Width: 8, Height: 6}
	src := randomImage(1, 8*6*3)
	for _, interp := range []engine.Interpolation{engine.InterpNearest, engine.InterpLinear, engine.InterpLanczos} {
		dst := resize(t, e, src, size, size, engine.Point{}, size, 3, interp)
		for i := range src {
			if dst[i] != src[i] {
				t.Fatalf("%v: byte %d = %d, want %d", interp, i, dst[i], src[i])
			}
		}
	}
}

func TestResizeConstantImage(t *testing.T) {
	e := New()
	src := make([]byte, 16*16*4)
	for i := range src {
		src[i] = 200
	}
	for _, interp := range []engine.Interpolation{engine.InterpNearest, engine.InterpLinear, engine.InterpLanczos} {
		for _, dst := range []engine.Size{{Width: 5, Height: 7}, {Width: 40, Height: 33}} {
			out := resize(t, e, src, engine.Size{Width: 16, Height: 16}, dst, engine.Point{}, dst, 4, interp)
			for i, v := range out {
				if v != 200 {
					t.Fatalf("%v to %+v: byte %d = %d, want 200", interp, dst, i, v)
				}
			}
		}
	}
}

func TestResizeNearestUpscale(t *testing.T) {
	e := New()
	src := []byte{10, 20, 30, 40}
	out := resize(t, e, src, engine.Size{Width: 2, Height: 2}, engine.Size{Width: 4, Height: 4}, engine.Point{},
		engine.Size{Width: 4, Height: 4}, 1, engine.InterpNearest)
	want := []byte{
		10, 10, 20, 20,
		10, 10, 20, 20,
		30, 30, 40, 40,
		30, 30, 40, 40,
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("pixel %d = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestResizeTileMatchesFullImage(t *testing.T) {
	e := New()
	srcSize := engine.Size{Width: 12, Height: 10}
	full := engine.Size{Width: 7, Height: 9}
	src := randomImage(2, 12*10*3)
	whole := resize(t, e, src, srcSize, full, engine.Point{}, full, 3, engine.InterpLanczos)

	tile := engine.Size{Width: 3, Height: 4}
	off := engine.Point{X: 2, Y: 5}
	part := resize(t, e, src, srcSize, full, off, tile, 3, engine.InterpLanczos)
	for y := range tile.Height {
		for i := range tile.Width * 3 {
			got := part[y*tile.Width*3+i]
			want := whole[(off.Y+y)*full.Width*3+off.X*3+i]
			if got != want {
				t.Fatalf("tile row %d byte %d = %d, want %d", y, i, got, want)
			}
		}
	}
}

func TestResizeErrors(t *testing.T) {
	e := New()
	if _, _, st := e.ResizeGetSize(engine.Size{}, engine.Size{Width: 1, Height: 1}, engine.InterpLinear); st != engine.StatusSize {
		t.Fatalf("empty source status = %v", st)
	}
	size := engine.Size{Width: 4, Height: 4}
	if _, _, st := e.ResizeGetSize(size, size, engine.Interpolation(7)); st != engine.StatusNotSupportedMode {
		t.Fatalf("unknown interpolation status = %v", st)
	}

	specSize, initSize, _ := e.ResizeGetSize(size, size, engine.InterpLinear)
	if initSize != 0 {
		t.Fatalf("linear init size = %d, want 0", initSize)
	}
	spec := mustMalloc(t, e, specSize)
	requireOK(t, "ResizeInit", e.ResizeInit(size, size, engine.InterpLinear, spec, nil))
	if _, st := e.ResizeGetBufferSize(spec, size, 5); st != engine.StatusNumChannels {
		t.Fatalf("5 channels status = %v", st)
	}
	work := mustMalloc(t, e, 4*4*4*4)
	img := make([]byte, 16)
	if st := e.Resize8u(img, 4, img, 4, engine.Point{X: 1}, size, 1, engine.BorderRepl, spec, work); st != engine.StatusSize {
		t.Fatalf("tile outside destination status = %v", st)
	}
	if st := e.Resize8u(img, 4, img, 4, engine.Point{}, size, 1, engine.Border(0), spec, work); st != engine.StatusNotSupportedMode {
		t.Fatalf("unsupported border status = %v", st)
	}
}
