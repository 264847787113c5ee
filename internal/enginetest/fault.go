// Package enginetest provides an engine.Engine wrapper for tests that counts
// calls per entry point and injects failures.
package enginetest

import (
	"sync"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/engine/goengine"
)

// Entry point names accepted by Calls and FailWith.
const (
	Malloc                  = "Malloc"
	Free                    = "Free"
	FFTGetSize              = "FFTGetSize"
	FFTInit                 = "FFTInit"
	DFTGetSize              = "DFTGetSize"
	DFTInit                 = "DFTInit"
	Forward                 = "Forward"
	Inverse                 = "Inverse"
	PolyphaseGetSize        = "PolyphaseGetSize"
	PolyphaseInit           = "PolyphaseInit"
	PolyphaseResample       = "PolyphaseResample"
	FIRGenGetBufferSize     = "FIRGenGetBufferSize"
	FIRGenLowpass           = "FIRGenLowpass"
	FIRGenHighpass          = "FIRGenHighpass"
	FIRGenBandpass          = "FIRGenBandpass"
	FIRGenBandstop          = "FIRGenBandstop"
	NoiseFilterGetStateSize = "NoiseFilterGetStateSize"
	NoiseFilterInit         = "NoiseFilterInit"
	NoiseFilterLevel        = "NoiseFilterLevel"
	NoiseFilterMode         = "NoiseFilterMode"
	NoiseFilter             = "NoiseFilter"
	VADGetSize              = "VADGetSize"
	VADInit                 = "VADInit"
	VAD                     = "VAD"
	ResizeGetSize           = "ResizeGetSize"
	ResizeInit              = "ResizeInit"
	ResizeGetBufferSize     = "ResizeGetBufferSize"
	Resize8u                = "Resize8u"
	LZSSGetSize             = "LZSSGetSize"
	EncodeLZSSInit          = "EncodeLZSSInit"
	EncodeLZSS              = "EncodeLZSS"
	DecodeLZSSInit          = "DecodeLZSSInit"
	DecodeLZSS              = "DecodeLZSS"
)

// FaultEngine forwards to an inner engine.
type FaultEngine struct {
	inner engine.Engine

	mu         sync.Mutex
	calls      map[string]int
	failures   map[string]engine.Status
	mallocLeft int // successful Mallocs remaining before failure; -1 is unlimited
}

var _ engine.Engine = (*FaultEngine)(nil)

// New wraps inner. A nil inner wraps a fresh goengine.
func New(inner engine.Engine) *FaultEngine {
	if inner == nil {
		inner = goengine.New()
	}
	return &FaultEngine{
		inner:      inner,
		calls:      make(map[string]int),
		failures:   make(map[string]engine.Status),
		mallocLeft: -1,
	}
}

// Calls returns how often the named entry point was invoked.
func (f *FaultEngine) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// TotalCalls returns the number of calls to any entry point other than
// Malloc and Free.
func (f *FaultEngine) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for name, n := range f.calls {
		if name != Malloc && name != Free {
			total += n
		}
	}
	return total
}

// ResetCalls zeroes all counters.
func (f *FaultEngine) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.calls)
}

// FailMallocAfter lets n more Mallocs succeed and fails every one after.
// A negative n removes the limit.
func (f *FaultEngine) FailMallocAfter(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mallocLeft = n
}

// FailWith makes the named entry point return st without reaching the inner
// engine. StatusOK removes the fault.
func (f *FaultEngine) FailWith(name string, st engine.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st == engine.StatusOK {
		delete(f.failures, name)
		return
	}
	f.failures[name] = st
}

// enter counts a call and returns the injected status, if any.
func (f *FaultEngine) enter(name string) (engine.Status, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	st, ok := f.failures[name]
	return st, ok
}

func (f *FaultEngine) Malloc(size int) []byte {
	f.mu.Lock()
	f.calls[Malloc]++
	if f.mallocLeft == 0 {
		f.mu.Unlock()
		return nil
	}
	if f.mallocLeft > 0 {
		f.mallocLeft--
	}
	f.mu.Unlock()
	return f.inner.Malloc(size)
}

func (f *FaultEngine) Free(mem []byte) {
	f.mu.Lock()
	f.calls[Free]++
	f.mu.Unlock()
	f.inner.Free(mem)
}

func (f *FaultEngine) FFTGetSize(order int, flag engine.Flag, hint engine.Hint) (engine.Sizes, engine.Status) {
	if st, ok := f.enter(FFTGetSize); ok {
		return engine.Sizes{}, st
	}
	return f.inner.FFTGetSize(order, flag, hint)
}

func (f *FaultEngine) FFTInit(order int, flag engine.Flag, hint engine.Hint, spec, init []byte) (engine.Spec, engine.Status) {
	if st, ok := f.enter(FFTInit); ok {
		return nil, st
	}
	return f.inner.FFTInit(order, flag, hint, spec, init)
}

func (f *FaultEngine) DFTGetSize(length int, flag engine.Flag, hint engine.Hint) (engine.Sizes, engine.Status) {
	if st, ok := f.enter(DFTGetSize); ok {
		return engine.Sizes{}, st
	}
	return f.inner.DFTGetSize(length, flag, hint)
}

func (f *FaultEngine) DFTInit(length int, flag engine.Flag, hint engine.Hint, spec, init []byte) (engine.Spec, engine.Status) {
	if st, ok := f.enter(DFTInit); ok {
		return nil, st
	}
	return f.inner.DFTInit(length, flag, hint, spec, init)
}

func (f *FaultEngine) Forward(spec engine.Spec, dst, src []complex64, work []byte) engine.Status {
	if st, ok := f.enter(Forward); ok {
		return st
	}
	return f.inner.Forward(spec, dst, src, work)
}

func (f *FaultEngine) Inverse(spec engine.Spec, dst, src []complex64, work []byte) engine.Status {
	if st, ok := f.enter(Inverse); ok {
		return st
	}
	return f.inner.Inverse(spec, dst, src, work)
}

func (f *FaultEngine) PolyphaseGetSize(inRate, outRate, length int, hint engine.Hint) (engine.PolyphaseSizes, engine.Status) {
	if st, ok := f.enter(PolyphaseGetSize); ok {
		return engine.PolyphaseSizes{}, st
	}
	return f.inner.PolyphaseGetSize(inRate, outRate, length, hint)
}

func (f *FaultEngine) PolyphaseInit(inRate, outRate, length int, rolloff, alpha float32, state []byte, hint engine.Hint) engine.Status {
	if st, ok := f.enter(PolyphaseInit); ok {
		return st
	}
	return f.inner.PolyphaseInit(inRate, outRate, length, rolloff, alpha, state, hint)
}

func (f *FaultEngine) PolyphaseResample(src, dst []float32, norm float32, time *float64, state []byte) (int, engine.Status) {
	if st, ok := f.enter(PolyphaseResample); ok {
		return 0, st
	}
	return f.inner.PolyphaseResample(src, dst, norm, time, state)
}

func (f *FaultEngine) FIRGenGetBufferSize(taps int) (int, engine.Status) {
	if st, ok := f.enter(FIRGenGetBufferSize); ok {
		return 0, st
	}
	return f.inner.FIRGenGetBufferSize(taps)
}

func (f *FaultEngine) FIRGenLowpass(rFreq float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	if st, ok := f.enter(FIRGenLowpass); ok {
		return st
	}
	return f.inner.FIRGenLowpass(rFreq, taps, win, normalize, buf)
}

func (f *FaultEngine) FIRGenHighpass(rFreq float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	if st, ok := f.enter(FIRGenHighpass); ok {
		return st
	}
	return f.inner.FIRGenHighpass(rFreq, taps, win, normalize, buf)
}

func (f *FaultEngine) FIRGenBandpass(low, high float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	if st, ok := f.enter(FIRGenBandpass); ok {
		return st
	}
	return f.inner.FIRGenBandpass(low, high, taps, win, normalize, buf)
}

func (f *FaultEngine) FIRGenBandstop(low, high float64, taps []float64, win engine.WinType, normalize bool, buf []byte) engine.Status {
	if st, ok := f.enter(FIRGenBandstop); ok {
		return st
	}
	return f.inner.FIRGenBandstop(low, high, taps, win, normalize, buf)
}

func (f *FaultEngine) NoiseFilterGetStateSize(rate int) (int, engine.Status) {
	if st, ok := f.enter(NoiseFilterGetStateSize); ok {
		return 0, st
	}
	return f.inner.NoiseFilterGetStateSize(rate)
}

func (f *FaultEngine) NoiseFilterInit(rate int, state []byte) engine.Status {
	if st, ok := f.enter(NoiseFilterInit); ok {
		return st
	}
	return f.inner.NoiseFilterInit(rate, state)
}

func (f *FaultEngine) NoiseFilterLevel(level engine.NRLevel, state []byte) engine.Status {
	if st, ok := f.enter(NoiseFilterLevel); ok {
		return st
	}
	return f.inner.NoiseFilterLevel(level, state)
}

func (f *FaultEngine) NoiseFilterMode(mode engine.NRMode, state []byte) engine.Status {
	if st, ok := f.enter(NoiseFilterMode); ok {
		return st
	}
	return f.inner.NoiseFilterMode(mode, state)
}

func (f *FaultEngine) NoiseFilter(block []float32, state []byte) engine.Status {
	if st, ok := f.enter(NoiseFilter); ok {
		return st
	}
	return f.inner.NoiseFilter(block, state)
}

func (f *FaultEngine) VADGetSize() (int, engine.Status) {
	if st, ok := f.enter(VADGetSize); ok {
		return 0, st
	}
	return f.inner.VADGetSize()
}

func (f *FaultEngine) VADInit(state []byte) engine.Status {
	if st, ok := f.enter(VADInit); ok {
		return st
	}
	return f.inner.VADInit(state)
}

func (f *FaultEngine) VAD(src []int16, state []byte) (tone, voice bool, st engine.Status) {
	if st, ok := f.enter(VAD); ok {
		return false, false, st
	}
	return f.inner.VAD(src, state)
}

func (f *FaultEngine) ResizeGetSize(src, dst engine.Size, interp engine.Interpolation) (spec, init int, st engine.Status) {
	if st, ok := f.enter(ResizeGetSize); ok {
		return 0, 0, st
	}
	return f.inner.ResizeGetSize(src, dst, interp)
}

func (f *FaultEngine) ResizeInit(src, dst engine.Size, interp engine.Interpolation, spec, init []byte) engine.Status {
	if st, ok := f.enter(ResizeInit); ok {
		return st
	}
	return f.inner.ResizeInit(src, dst, interp, spec, init)
}

func (f *FaultEngine) ResizeGetBufferSize(spec []byte, dst engine.Size, channels int) (int, engine.Status) {
	if st, ok := f.enter(ResizeGetBufferSize); ok {
		return 0, st
	}
	return f.inner.ResizeGetBufferSize(spec, dst, channels)
}

func (f *FaultEngine) Resize8u(src []byte, srcStep int, dst []byte, dstStep int, dstOffset engine.Point, dstSize engine.Size,
	channels int, border engine.Border, spec, work []byte,
) engine.Status {
	if st, ok := f.enter(Resize8u); ok {
		return st
	}
	return f.inner.Resize8u(src, srcStep, dst, dstStep, dstOffset, dstSize, channels, border, spec, work)
}

func (f *FaultEngine) LZSSGetSize() (int, engine.Status) {
	if st, ok := f.enter(LZSSGetSize); ok {
		return 0, st
	}
	return f.inner.LZSSGetSize()
}

func (f *FaultEngine) EncodeLZSSInit(state []byte) engine.Status {
	if st, ok := f.enter(EncodeLZSSInit); ok {
		return st
	}
	return f.inner.EncodeLZSSInit(state)
}

func (f *FaultEngine) EncodeLZSS(src, dst, state []byte) (int, engine.Status) {
	if st, ok := f.enter(EncodeLZSS); ok {
		return 0, st
	}
	return f.inner.EncodeLZSS(src, dst, state)
}

func (f *FaultEngine) DecodeLZSSInit(state []byte) engine.Status {
	if st, ok := f.enter(DecodeLZSSInit); ok {
		return st
	}
	return f.inner.DecodeLZSSInit(state)
}

func (f *FaultEngine) DecodeLZSS(src, dst, state []byte) (int, engine.Status) {
	if st, ok := f.enter(DecodeLZSS); ok {
		return 0, st
	}
	return f.inner.DecodeLZSS(src, dst, state)
}

func (f *FaultEngine) Info() engine.Info {
	info := f.inner.Info()
	info.Name = "fault(" + info.Name + ")"
	return info
}
