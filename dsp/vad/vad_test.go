package vad

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/internal/enginetest"
	"github.com/cwbudde/algo-ipp/internal/testutil"
)

func newDetector(t *testing.T) (*Detector, *enginetest.Rig) {
	t.Helper()
	rig := enginetest.NewRig()
	d, err := New(rig.Engine, rig.Alloc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, rig
}

func TestClassifyVoiceAndTone(t *testing.T) {
	d, _ := newDetector(t)
	silence := make([]int16, FrameLen)
	for range 4 {
		r, err := d.Classify(silence)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if r.Voice || r.Tone {
			t.Fatalf("silence classified as %+v", r)
		}
	}
	burst := testutil.PCM16(testutil.Noise[float64](1, 0.3, FrameLen))
	if r, _ := d.Classify(burst); !r.Voice {
		t.Fatal("burst after silence not classified as voice")
	}

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	tone := testutil.PCM16(testutil.Sine[float64](1000, 8000, 0.5, 4*FrameLen))
	var last Result
	for i := 0; i < len(tone); i += FrameLen {
		r, err := d.Classify(tone[i : i+FrameLen])
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		last = r
	}
	if !last.Tone {
		t.Fatal("steady sine not reported as tone")
	}
}

func TestNewFailuresHoldNothing(t *testing.T) {
	for _, name := range []string{enginetest.VADGetSize, enginetest.VADInit, enginetest.Malloc} {
		t.Run(name, func(t *testing.T) {
			rig := enginetest.NewRig()
			if name == enginetest.Malloc {
				rig.Engine.FailMallocAfter(0)
			} else {
				rig.Engine.FailWith(name, engine.StatusSize)
			}
			if d, err := New(rig.Engine, rig.Alloc); err == nil || d != nil {
				t.Fatalf("New = %v, %v; want failure", d, err)
			}
			if rig.Alloc.Outstanding() != 0 {
				t.Fatalf("outstanding = %d", rig.Alloc.Outstanding())
			}
		})
	}
}

func TestClassifyMismatch(t *testing.T) {
	d, rig := newDetector(t)
	if _, err := d.Classify(make([]int16, 160)); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("short frame err = %v", err)
	}
	if rig.Engine.Calls(enginetest.VAD) != 0 {
		t.Fatal("short frame reached the engine")
	}
	_ = d.Close()
	if !rig.Alloc.Balanced() {
		t.Fatal("allocator unbalanced after Close")
	}
	if _, err := d.Classify(make([]int16, FrameLen)); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("closed detector err = %v", err)
	}
	if err := d.Reset(); !errors.Is(err, engine.ErrContextMismatch) {
		t.Fatalf("closed Reset err = %v", err)
	}
}
