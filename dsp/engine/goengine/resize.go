package goengine

import (
	"math"

	"github.com/cwbudde/algo-ipp/dsp/engine"
)

// Header fields of a resize spec.
const (
	rsSrcW = iota
	rsSrcH
	rsDstW
	rsDstH
	rsInterp
	rsTapsX
	rsTapsY
)

const lanczosLobes = 3

// A resize spec stores, per destination column and row, the source indices
// and weights of the separable kernel. Borders are replicated by clamping the
// indices when the tables are built.
type tap struct {
	index  int32
	weight float32
}

const tapSize = 8

func kernelTaps(interp engine.Interpolation, src, dst int) (int, bool) {
	switch interp {
	case engine.InterpNearest:
		return 1, true
	case engine.InterpLinear:
		return 2, true
	case engine.InterpLanczos:
		scale := max(1, float64(src)/float64(dst))
		return int(math.Ceil(2*lanczosLobes*scale)) + 1, true
	default:
		return 0, false
	}
}

// ResizeGetSize reports the spec and init sizes for a src to dst resize.
// Only Lanczos needs an init buffer.
func (e *Engine) ResizeGetSize(src, dst engine.Size, interp engine.Interpolation) (spec, init int, st engine.Status) {
	if src.Width < 1 || src.Height < 1 || dst.Width < 1 || dst.Height < 1 {
		return 0, 0, engine.StatusSize
	}
	tx, ok := kernelTaps(interp, src.Width, dst.Width)
	if !ok {
		return 0, 0, engine.StatusNotSupportedMode
	}
	ty, _ := kernelTaps(interp, src.Height, dst.Height)
	spec = headerSize + tapSize*(tx*dst.Width+ty*dst.Height)
	if interp == engine.InterpLanczos {
		init = engine.SizeOf[float64](max(tx, ty))
	}
	return spec, init, engine.StatusOK
}

// ResizeInit builds the kernel tables into spec.
func (e *Engine) ResizeInit(src, dst engine.Size, interp engine.Interpolation, spec, init []byte) engine.Status {
	specSize, initSize, st := e.ResizeGetSize(src, dst, interp)
	if st != engine.StatusOK {
		return st
	}
	if len(spec) < specSize || len(init) < initSize {
		return engine.StatusSize
	}
	tx, _ := kernelTaps(interp, src.Width, dst.Width)
	ty, _ := kernelTaps(interp, src.Height, dst.Height)

	scratch := engine.View[float64](init)
	tables := engine.View[int32](payload(spec))
	xs := tables[:2*tx*dst.Width]
	ys := tables[2*tx*dst.Width : 2*(tx*dst.Width+ty*dst.Height)]
	buildAxis(xs, tx, src.Width, dst.Width, interp, scratch)
	buildAxis(ys, ty, src.Height, dst.Height, interp, scratch)

	writeHeader(spec, kindResize,
		uint32(src.Width), uint32(src.Height), uint32(dst.Width), uint32(dst.Height),
		uint32(interp), uint32(tx), uint32(ty))
	return engine.StatusOK
}

// buildAxis fills taps (index, weight bits) pairs for every output position.
func buildAxis(table []int32, taps, src, dst int, interp engine.Interpolation, scratch []float64) {
	ratio := float64(src) / float64(dst)
	put := func(o, k, idx int, w float64) {
		idx = min(max(idx, 0), src-1)
		table[2*(o*taps+k)] = int32(idx)
		table[2*(o*taps+k)+1] = int32(math.Float32bits(float32(w)))
	}

	for o := range dst {
		center := (float64(o)+0.5)*ratio - 0.5
		switch interp {
		case engine.InterpNearest:
			put(o, 0, int(math.Floor(center+0.5)), 1)
		case engine.InterpLinear:
			i := int(math.Floor(center))
			f := center - float64(i)
			put(o, 0, i, 1-f)
			put(o, 1, i+1, f)
		case engine.InterpLanczos:
			scale := max(1, ratio)
			first := int(math.Floor(center-lanczosLobes*scale)) + 1
			w := scratch[:taps]
			var sum float64
			for k := range w {
				w[k] = lanczos((float64(first+k) - center) / scale)
				sum += w[k]
			}
			for k := range w {
				put(o, k, first+k, w[k]/sum)
			}
		}
	}
}

func lanczos(x float64) float64 {
	if x <= -lanczosLobes || x >= lanczosLobes {
		return 0
	}
	return sinc(x) * sinc(x/lanczosLobes)
}

// ResizeGetBufferSize reports the work buffer size for a dst tile: one
// horizontally filtered float32 plane covering every source row.
func (e *Engine) ResizeGetBufferSize(spec []byte, dst engine.Size, channels int) (int, engine.Status) {
	h, ok := readHeader(spec, kindResize)
	if !ok {
		return 0, engine.StatusContextMatch
	}
	if channels < 1 || channels > 4 {
		return 0, engine.StatusNumChannels
	}
	if dst.Width < 1 || dst.Height < 1 {
		return 0, engine.StatusSize
	}
	return engine.SizeOf[float32](int(h[rsSrcH]) * dst.Width * channels), engine.StatusOK
}

// Resize8u resamples the dst tile at dstOffset of the full destination image
// described by spec. src and dst are interleaved 8-bit rows of srcStep and
// dstStep bytes.
func (e *Engine) Resize8u(src []byte, srcStep int, dst []byte, dstStep int, dstOffset engine.Point, dstSize engine.Size,
	channels int, border engine.Border, spec, work []byte,
) engine.Status {
	h, ok := readHeader(spec, kindResize)
	if !ok {
		return engine.StatusContextMatch
	}
	if border != engine.BorderRepl {
		return engine.StatusNotSupportedMode
	}
	if channels < 1 || channels > 4 {
		return engine.StatusNumChannels
	}
	srcW, srcH := int(h[rsSrcW]), int(h[rsSrcH])
	fullW, fullH := int(h[rsDstW]), int(h[rsDstH])
	tx, ty := int(h[rsTapsX]), int(h[rsTapsY])
	if dstSize.Width < 1 || dstSize.Height < 1 || dstOffset.X < 0 || dstOffset.Y < 0 ||
		dstOffset.X+dstSize.Width > fullW || dstOffset.Y+dstSize.Height > fullH {
		return engine.StatusSize
	}
	if srcStep < srcW*channels || dstStep < dstSize.Width*channels ||
		len(src) < (srcH-1)*srcStep+srcW*channels ||
		len(dst) < (dstSize.Height-1)*dstStep+dstSize.Width*channels {
		return engine.StatusSize
	}
	need, _ := e.ResizeGetBufferSize(spec, dstSize, channels)
	if len(work) < need {
		return engine.StatusSize
	}

	tables := engine.View[int32](payload(spec))
	xs := tables[:2*tx*fullW]
	ys := tables[2*tx*fullW : 2*(tx*fullW+ty*fullH)]
	plane := engine.View[float32](work)[:srcH*dstSize.Width*channels]

	rowLen := dstSize.Width * channels
	for y := range srcH {
		row := src[y*srcStep:]
		out := plane[y*rowLen : (y+1)*rowLen]
		for x := range dstSize.Width {
			ox := dstOffset.X + x
			for c := range channels {
				var acc float32
				for k := range tx {
					t := tapAt(xs, ox*tx+k)
					acc += t.weight * float32(row[int(t.index)*channels+c])
				}
				out[x*channels+c] = acc
			}
		}
	}

	for y := range dstSize.Height {
		oy := dstOffset.Y + y
		out := dst[y*dstStep:]
		for i := range rowLen {
			var acc float32
			for k := range ty {
				t := tapAt(ys, oy*ty+k)
				acc += t.weight * plane[int(t.index)*rowLen+i]
			}
			out[i] = clampByte(acc)
		}
	}
	return engine.StatusOK
}

func tapAt(table []int32, i int) tap {
	return tap{index: table[2*i], weight: math.Float32frombits(uint32(table[2*i+1]))}
}

func clampByte(v float32) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v + 0.5)
	}
}
