// Package goengine is a pure Go computation engine implementing
// engine.Engine.
//
// Memory comes from an internal arena that returns 64-byte aligned regions
// and recycles their backing arrays. Spec and state blocks carry a header
// naming the family and parameters they were built for, so a block that was
// freed, or handed to the wrong family, is rejected with
// engine.StatusContextMatch instead of producing garbage.
//
// Power-of-two transforms run on algo-fft plans (single precision, or double
// precision with engine.HintAccurate); arbitrary-length transforms use the
// gonum FFT. All other families keep their complete state inside the blocks
// they are given.
package goengine
