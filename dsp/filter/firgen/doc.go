// Package firgen designs windowed-sinc FIR filters through the engine and
// memoizes the last design per Designer.
//
// One Designer exists per response shape. Each keeps a grow-only scratch
// buffer in engine memory that holds the double-precision coefficients and
// the generator's work area, so single-precision designers share the
// double-precision path and only convert on the way out.
package firgen
