package lzss

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/internal/enginetest"
)

func newCodec(t *testing.T) (*Codec, *enginetest.Rig) {
	t.Helper()
	rig := enginetest.NewRig()
	c, err := New(rig.Engine, rig.Alloc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, rig
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	random := make([]byte, 3000)
	rng.Read(random)
	inputs := map[string][]byte{
		"empty":  {},
		"short":  []byte("ab"),
		"text":   bytes.Repeat([]byte("the quick brown fox "), 50),
		"run":    bytes.Repeat([]byte{0}, 5000),
		"random": random,
	}
	c, _ := newCodec(t)
	for name, src := range inputs {
		t.Run(name, func(t *testing.T) {
			enc := make([]byte, MaxEncodedLen(len(src)))
			n, err := c.Encode(enc, src)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			dec := make([]byte, len(src))
			m, err := c.Decode(dec, enc[:n])
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(dec[:m], src) {
				t.Fatalf("round trip mismatch (%d of %d bytes)", m, len(src))
			}
		})
	}
}

func TestEncodeCompressesRepetition(t *testing.T) {
	c, _ := newCodec(t)
	src := bytes.Repeat([]byte("abcdefgh"), 512)
	enc := make([]byte, MaxEncodedLen(len(src)))
	n, err := c.Encode(enc, src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if n > len(src)/4 {
		t.Fatalf("encoded %d bytes to %d, want at most %d", len(src), n, len(src)/4)
	}
}

func TestEncodeDecodeErrors(t *testing.T) {
	c, _ := newCodec(t)
	src := []byte("hello hello hello")
	if _, err := c.Encode(make([]byte, len(src)), src); !errors.Is(err, engine.ErrUnsupportedSize) {
		t.Fatalf("short dst err = %v", err)
	}
	enc := make([]byte, MaxEncodedLen(len(src)))
	n, _ := c.Encode(enc, src)
	if _, err := c.Decode(make([]byte, 4), enc[:n]); !errors.Is(err, engine.ErrUnsupportedSize) {
		t.Fatalf("short decode dst err = %v", err)
	}
	// A match referencing data before the block start.
	bad := []byte{0x00, 0x10, 0x00}
	if _, err := c.Decode(make([]byte, 64), bad); engine.KindOf(err) != engine.KindEngine {
		t.Fatalf("corrupt stream err = %v", err)
	}
}

func TestFramesRoundTrip(t *testing.T) {
	c, _ := newCodec(t)
	rng := rand.New(rand.NewSource(9))
	src := make([]byte, 10000)
	for i := range src {
		src[i] = byte('a' + rng.Intn(4))
	}
	stream, err := c.EncodeFrames(nil, src, 3000)
	if err != nil {
		t.Fatalf("EncodeFrames: %v", err)
	}
	got, err := c.DecodeFrames(nil, stream)
	if err != nil {
		t.Fatalf("DecodeFrames: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatal("framed round trip mismatch")
	}

	if _, err := c.DecodeFrames(nil, stream[:len(stream)-1]); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("truncated stream err = %v", err)
	}
	if _, err := c.DecodeFrames(nil, []byte{0x80}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("bad header err = %v", err)
	}
}

func TestNewFailuresHoldNothing(t *testing.T) {
	setups := map[string]func(*enginetest.FaultEngine){
		"size":      func(f *enginetest.FaultEngine) { f.FailWith(enginetest.LZSSGetSize, engine.StatusSize) },
		"enc alloc": func(f *enginetest.FaultEngine) { f.FailMallocAfter(0) },
		"dec alloc": func(f *enginetest.FaultEngine) { f.FailMallocAfter(1) },
		"enc init":  func(f *enginetest.FaultEngine) { f.FailWith(enginetest.EncodeLZSSInit, engine.StatusSize) },
		"dec init":  func(f *enginetest.FaultEngine) { f.FailWith(enginetest.DecodeLZSSInit, engine.StatusSize) },
	}
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			rig := enginetest.NewRig()
			setup(rig.Engine)
			if c, err := New(rig.Engine, rig.Alloc); err == nil || c != nil {
				t.Fatalf("New = %v, %v; want failure", c, err)
			}
			if rig.Alloc.Outstanding() != 0 {
				t.Fatalf("outstanding = %d", rig.Alloc.Outstanding())
			}
		})
	}
}

func TestClose(t *testing.T) {
	c, rig := newCodec(t)
	_ = c.Close()
	_ = c.Close()
	if !rig.Alloc.Balanced() {
		t.Fatal("allocator unbalanced")
	}
	if _, err := c.Encode(make([]byte, 8), nil); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("closed Encode err = %v", err)
	}
	if _, err := c.Decode(make([]byte, 8), nil); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("closed Decode err = %v", err)
	}
}
