// Package lzss compresses byte blocks with the engine's LZSS codec.
//
// Every Encode call produces one self-contained block. EncodeFrames and
// DecodeFrames chain blocks into a length-prefixed stream for inputs larger
// than one block.
package lzss

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/native"
)

// DefaultFrameSize is the raw block size EncodeFrames uses when given zero.
const DefaultFrameSize = 64 << 10

// ErrCorrupt is returned when a framed stream cannot be parsed.
var ErrCorrupt = errors.New("lzss: corrupt stream")

// MaxEncodedLen returns the worst-case encoded size of n bytes: one flag
// byte per eight literals.
func MaxEncodedLen(n int) int {
	return n + (n+7)/8
}

// Option configures a Codec.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Codec owns an encoder and a decoder state. It is not safe for concurrent
// use.
type Codec struct {
	eng    engine.Compressor
	alloc  native.Allocator
	logger *slog.Logger

	enc *native.Buffer
	dec *native.Buffer
}

// New prepares encoder and decoder states. No engine memory is held when New
// fails.
func New(eng engine.Compressor, alloc native.Allocator, opts ...Option) (*Codec, error) {
	const op = "lzss: new"
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	size, st := eng.LZSSGetSize()
	if err := st.Err(op); err != nil {
		cfg.logger.Warn("lzss size query failed", engine.Attrs(err)...)
		return nil, err
	}

	scope := native.NewScope(alloc)
	defer scope.Close()

	enc, err := scope.Acquire(size)
	if err != nil {
		return nil, err
	}
	dec, err := scope.Acquire(size)
	if err != nil {
		return nil, err
	}
	if err := eng.EncodeLZSSInit(enc.Bytes()).Err(op); err != nil {
		cfg.logger.Warn("lzss encoder init failed", engine.Attrs(err)...)
		return nil, err
	}
	if err := eng.DecodeLZSSInit(dec.Bytes()).Err(op); err != nil {
		cfg.logger.Warn("lzss decoder init failed", engine.Attrs(err)...)
		return nil, err
	}
	scope.Keep()

	cfg.logger.Debug("lzss initialized", slog.Int("state_bytes", size))
	return &Codec{eng: eng, alloc: alloc, logger: cfg.logger, enc: enc, dec: dec}, nil
}

// Encode compresses src into dst and returns the encoded length. dst must
// hold MaxEncodedLen(len(src)) bytes.
func (c *Codec) Encode(dst, src []byte) (int, error) {
	const op = "lzss: encode"
	if c.enc == nil {
		return 0, engine.Errorf(engine.KindContextMismatch, op, "codec is closed")
	}
	if len(dst) < MaxEncodedLen(len(src)) {
		return 0, engine.Errorf(engine.KindSize, op, "dst holds %d bytes, need %d", len(dst), MaxEncodedLen(len(src)))
	}
	n, st := c.eng.EncodeLZSS(src, dst, c.enc.Bytes())
	if err := st.Err(op); err != nil {
		return 0, err
	}
	return n, nil
}

// Decode expands one block from src into dst and returns the decoded
// length. It fails with a size error when dst is too small.
func (c *Codec) Decode(dst, src []byte) (int, error) {
	const op = "lzss: decode"
	if c.dec == nil {
		return 0, engine.Errorf(engine.KindContextMismatch, op, "codec is closed")
	}
	n, st := c.eng.DecodeLZSS(src, dst, c.dec.Bytes())
	if err := st.Err(op); err != nil {
		return n, err
	}
	return n, nil
}

// EncodeFrames splits src into frames of at most frameSize bytes and
// appends each one to dst as uvarint(raw length), uvarint(encoded length)
// and the encoded block.
func (c *Codec) EncodeFrames(dst, src []byte, frameSize int) ([]byte, error) {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	scratch := make([]byte, MaxEncodedLen(min(frameSize, len(src))))
	for len(src) > 0 {
		raw := src[:min(frameSize, len(src))]
		src = src[len(raw):]
		n, err := c.Encode(scratch, raw)
		if err != nil {
			return dst, err
		}
		dst = binary.AppendUvarint(dst, uint64(len(raw)))
		dst = binary.AppendUvarint(dst, uint64(n))
		dst = append(dst, scratch[:n]...)
	}
	return dst, nil
}

// DecodeFrames appends the decoded contents of a stream written by
// EncodeFrames to dst.
func (c *Codec) DecodeFrames(dst, data []byte) ([]byte, error) {
	for len(data) > 0 {
		raw, k := binary.Uvarint(data)
		if k <= 0 {
			return dst, fmt.Errorf("%w: bad frame header", ErrCorrupt)
		}
		data = data[k:]
		enc, k := binary.Uvarint(data)
		if k <= 0 || enc > uint64(len(data)-k) || raw > 9*enc {
			return dst, fmt.Errorf("%w: bad frame header", ErrCorrupt)
		}
		data = data[k:]

		start := len(dst)
		dst = append(dst, make([]byte, raw)...)
		n, err := c.Decode(dst[start:], data[:enc])
		if err != nil {
			return dst[:start], fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(n) != raw {
			return dst[:start], fmt.Errorf("%w: frame decoded to %d bytes, want %d", ErrCorrupt, n, raw)
		}
		data = data[enc:]
	}
	return dst, nil
}

// Close releases both states. It is idempotent and always returns nil.
func (c *Codec) Close() error {
	native.ReleaseAll(c.alloc, &c.enc, &c.dec)
	return nil
}
