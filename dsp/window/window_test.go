package window

import (
	"math"
	"testing"
)

func TestGenerateSymmetric(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeBartlett, TypeHann, TypeHamming, TypeBlackman, TypeKaiser} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 33)
			if len(w) != 33 {
				t.Fatalf("len=%d, want 33", len(w))
			}
			for i := range w {
				if math.IsNaN(w[i]) || math.IsInf(w[i], 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, w[i])
				}
				if d := math.Abs(w[i] - w[len(w)-1-i]); d > 1e-12 {
					t.Fatalf("coefficient[%d] not symmetric: diff %v", i, d)
				}
			}
			if math.Abs(w[16]-1) > 1e-9 {
				t.Fatalf("center = %v, want 1", w[16])
			}
		})
	}
}

func TestKnownEndpoints(t *testing.T) {
	tests := []struct {
		typ  Type
		edge float64
	}{
		{TypeRectangular, 1},
		{TypeBartlett, 0},
		{TypeHann, 0},
		{TypeHamming, 0.08},
		{TypeBlackman, 0},
	}
	for _, tc := range tests {
		w := Generate(tc.typ, 16)
		if math.Abs(w[0]-tc.edge) > 1e-12 {
			t.Fatalf("%v: w[0] = %v, want %v", tc.typ, w[0], tc.edge)
		}
	}
}

func TestFillMatchesGenerate(t *testing.T) {
	want := Generate(TypeKaiser, 20, WithBeta(5))
	got := make([]float64, 20)
	Fill(got, TypeKaiser, WithBeta(5))
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPeriodicHann(t *testing.T) {
	w := Generate(TypeHann, 4, WithPeriodic())
	want := []float64{0, 0.5, 1, 0.5}
	for i := range want {
		if math.Abs(w[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %v, want %v", i, w[i], want[i])
		}
	}
}

func TestEquivalentNoiseBandwidth(t *testing.T) {
	enbw, err := EquivalentNoiseBandwidth(Generate(TypeRectangular, 64))
	if err != nil {
		t.Fatalf("EquivalentNoiseBandwidth() error = %v", err)
	}
	if math.Abs(enbw-1) > 1e-12 {
		t.Fatalf("rectangular ENBW = %v, want 1", enbw)
	}

	enbw, err = EquivalentNoiseBandwidth(Generate(TypeHann, 4096, WithPeriodic()))
	if err != nil {
		t.Fatalf("EquivalentNoiseBandwidth() error = %v", err)
	}
	if math.Abs(enbw-1.5) > 1e-3 {
		t.Fatalf("hann ENBW = %v, want 1.5", enbw)
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}
}

func TestApplyCoefficientsInPlaceLengthMismatch(t *testing.T) {
	if err := ApplyCoefficientsInPlace(make([]float64, 3), make([]float64, 4)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}
