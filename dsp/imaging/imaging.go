// Package imaging resizes 8-bit interleaved images with the engine's
// separable resampling kernels.
package imaging

import (
	"image"
	"image/draw"
	"log/slog"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/native"
)

// Interpolation kernels.
const (
	Nearest = engine.InterpNearest
	Linear  = engine.InterpLinear
	Lanczos = engine.InterpLanczos
)

// Image is an 8-bit image with Channels interleaved samples per pixel and
// rows Stride bytes apart.
type Image struct {
	Pix      []byte
	Width    int
	Height   int
	Stride   int
	Channels int
}

// NewImage allocates a tightly packed image.
func NewImage(width, height, channels int) Image {
	return Image{
		Pix:      make([]byte, width*height*channels),
		Width:    width,
		Height:   height,
		Stride:   width * channels,
		Channels: channels,
	}
}

// Size returns the image geometry.
func (m Image) Size() engine.Size { return engine.Size{Width: m.Width, Height: m.Height} }

func (m Image) valid() bool {
	return m.Width > 0 && m.Height > 0 && m.Channels >= 1 && m.Channels <= 4 &&
		m.Stride >= m.Width*m.Channels &&
		len(m.Pix) >= (m.Height-1)*m.Stride+m.Width*m.Channels
}

// FromImage copies img into a 4-channel RGBA Image.
func FromImage(img image.Image) Image {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}
	return Image{Pix: rgba.Pix, Width: b.Dx(), Height: b.Dy(), Stride: rgba.Stride, Channels: 4}
}

// RGBA wraps a 4-channel Image as an *image.RGBA without copying.
func (m Image) RGBA() (*image.RGBA, bool) {
	if m.Channels != 4 {
		return nil, false
	}
	return &image.RGBA{Pix: m.Pix, Stride: m.Stride, Rect: image.Rect(0, 0, m.Width, m.Height)}, true
}

// Option configures a resize call.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger for the resize call.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Resize scales src to the geometry of dst. Both must have the same number
// of channels. Pixels outside src replicate its border. No engine memory is
// held when Resize returns.
func Resize(eng engine.Resizer, alloc native.Allocator, src, dst Image, interp engine.Interpolation, opts ...Option) error {
	return ResizeTile(eng, alloc, src, dst.Size(), dst, engine.Point{}, interp, opts...)
}

// ResizeTile computes the part of a full-size resize of src that starts at
// offset and covers tile. Tiles of one full geometry can be computed
// independently and match the corresponding region of Resize.
func ResizeTile(eng engine.Resizer, alloc native.Allocator, src Image, full engine.Size, tile Image, offset engine.Point,
	interp engine.Interpolation, opts ...Option,
) error {
	const op = "imaging: resize"
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	fail := func(err error) error {
		cfg.logger.Warn("resize failed", engine.Attrs(err)...)
		return err
	}

	if !src.valid() || !tile.valid() {
		return fail(engine.Errorf(engine.KindSize, op, "invalid image geometry"))
	}
	if src.Channels != tile.Channels {
		return fail(engine.Errorf(engine.KindSize, op, "channel mismatch: %d vs %d", src.Channels, tile.Channels))
	}

	specSize, initSize, st := eng.ResizeGetSize(src.Size(), full, interp)
	if err := st.Err(op); err != nil {
		return fail(err)
	}

	scope := native.NewScope(alloc)
	defer scope.Close()

	spec, err := scope.Acquire(specSize)
	if err != nil {
		return fail(err)
	}
	var initB *native.Buffer
	if initSize > 0 {
		if initB, err = scope.Acquire(initSize); err != nil {
			return fail(err)
		}
	}
	st = eng.ResizeInit(src.Size(), full, interp, spec.Bytes(), initB.Bytes())
	scope.Release(initB)
	if err := st.Err(op); err != nil {
		return fail(err)
	}

	workSize, st := eng.ResizeGetBufferSize(spec.Bytes(), tile.Size(), tile.Channels)
	if err := st.Err(op); err != nil {
		return fail(err)
	}
	work, err := scope.Acquire(workSize)
	if err != nil {
		return fail(err)
	}

	st = eng.Resize8u(src.Pix, src.Stride, tile.Pix, tile.Stride, offset, tile.Size(),
		tile.Channels, engine.BorderRepl, spec.Bytes(), work.Bytes())
	if err := st.Err(op); err != nil {
		return fail(err)
	}
	cfg.logger.Debug("image resized",
		slog.Int("src_width", src.Width), slog.Int("src_height", src.Height),
		slog.Int("dst_width", full.Width), slog.Int("dst_height", full.Height),
		slog.String("interp", interp.String()), slog.Int("work_bytes", workSize))
	return nil
}
