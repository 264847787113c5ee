// Package resample converts sample rates with a fixed-ratio polyphase filter
// evaluated by the engine.
//
// A Context owns one engine state block designed for a (rates, history,
// rolloff, alpha, hint) signature. Re-initializing with the same signature
// is free; a new signature releases the old block before acquiring the next.
//
// Quality modes select default filter parameters:
//
//	mode            history   rolloff   alpha   nominal stopband
//	QualityFast     8         0.88      5.0     ~55 dB
//	QualityBalanced 16        0.92      7.5     ~75 dB
//	QualityBest     32        0.96      9.0     ~90 dB
package resample
