// Package fir applies FIR coefficients to sample streams.
//
// A [Filter] keeps a direct-form delay line and evaluates each output as one
// dot product. It is the runtime counterpart of dsp/filter/firgen, whose
// designers produce the coefficients; [FromTaps] accepts them in either
// precision.
package fir
