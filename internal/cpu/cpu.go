// Package cpu reports the instruction set extensions of the host processor.
//
// Detection runs once and is cached. Tests can pin a feature set with
// Override.
package cpu

import (
	"sync"
	"sync/atomic"
)

// Features describes the vector extensions available to numeric kernels.
type Features struct {
	HasSSE2   bool
	HasSSE41  bool
	HasAVX    bool
	HasAVX2   bool
	HasFMA    bool
	HasAVX512 bool
	HasNEON   bool
	HasSVE    bool

	Architecture string // runtime.GOARCH
}

// Names lists the detected extensions from oldest to newest.
func (f Features) Names() []string {
	var names []string
	for _, ext := range []struct {
		ok   bool
		name string
	}{
		{f.HasSSE2, "SSE2"},
		{f.HasSSE41, "SSE4.1"},
		{f.HasAVX, "AVX"},
		{f.HasAVX2, "AVX2"},
		{f.HasFMA, "FMA"},
		{f.HasAVX512, "AVX-512"},
		{f.HasNEON, "NEON"},
		{f.HasSVE, "SVE"},
	} {
		if ext.ok {
			names = append(names, ext.name)
		}
	}
	return names
}

var (
	detected = sync.OnceValue(detectFeaturesImpl)
	forced   atomic.Pointer[Features]
)

// Detect returns the features of the current processor, or the set pinned by
// Override.
func Detect() Features {
	if f := forced.Load(); f != nil {
		return *f
	}
	return detected()
}

// Override pins the result of Detect to f until the returned function is
// called.
func Override(f Features) (restore func()) {
	prev := forced.Swap(&f)
	return func() { forced.Store(prev) }
}
