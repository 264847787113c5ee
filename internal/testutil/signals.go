package testutil

import (
	"math"
	"math/rand"
)

// Float is the sample type of generated test signals.
type Float interface {
	~float32 | ~float64
}

// Sine generates a deterministic sine wave.
func Sine[T Float](freqHz, sampleRate, amplitude float64, length int) []T {
	out := make([]T, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = T(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// Noise generates white noise with a fixed seed for reproducibility.
func Noise[T Float](seed int64, amplitude float64, length int) []T {
	out := make([]T, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = T((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// ComplexNoise generates complex white noise with a fixed seed.
func ComplexNoise(seed int64, length int) []complex64 {
	out := make([]complex64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = complex(float32(rng.Float64()*2-1), float32(rng.Float64()*2-1))
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse[T Float](length, pos int) []T {
	out := make([]T, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC[T Float](value float64, length int) []T {
	out := make([]T, length)
	for i := range out {
		out[i] = T(value)
	}
	return out
}

// PCM16 converts samples in [-1, 1] to 16-bit PCM, clipping out-of-range
// values.
func PCM16[T Float](x []T) []int16 {
	out := make([]int16, len(x))
	for i, v := range x {
		s := math.Round(float64(v) * 32767)
		out[i] = int16(min(max(s, -32768), 32767))
	}
	return out
}
