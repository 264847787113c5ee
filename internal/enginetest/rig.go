package enginetest

import "github.com/cwbudde/algo-ipp/dsp/native"

// Rig bundles a FaultEngine with a counting allocator that draws from it.
type Rig struct {
	Engine *FaultEngine
	Alloc  *native.Counting
}

// NewRig returns a rig around a fresh reference engine.
func NewRig() *Rig {
	eng := New(nil)
	return &Rig{Engine: eng, Alloc: native.NewCounting(native.New(eng))}
}
