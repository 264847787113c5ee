package goengine

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-ipp/dsp/engine"
)

func mustMalloc(t *testing.T, e *Engine, size int) []byte {
	t.Helper()
	mem := e.Malloc(size)
	if mem == nil {
		t.Fatalf("Malloc(%d) = nil", size)
	}
	t.Cleanup(func() { e.Free(mem) })
	return mem
}

func requireOK(t *testing.T, what string, st engine.Status) {
	t.Helper()
	if st != engine.StatusOK {
		t.Fatalf("%s status = %v (%d)", what, st, st)
	}
}

func naiveDFT(x []complex64) []complex64 {
	n := len(x)
	out := make([]complex64, n)
	for k := range n {
		var acc complex128
		for j, v := range x {
			acc += complex128(v) * cmplx.Exp(complex(0, -2*math.Pi*float64(j*k)/float64(n)))
		}
		out[k] = complex64(acc)
	}
	return out
}
