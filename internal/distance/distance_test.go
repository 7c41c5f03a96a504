package distance

import (
	"math"
	"testing"
)

func TestL2Squared(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"unit-apart", []float32{0, 0}, []float32{1, 0}, 1},
		{"3-4-5", []float32{0, 0}, []float32{3, 4}, 25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := L2Squared(c.a, c.b)
			if got != c.want {
				t.Errorf("L2Squared(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestL2SquaredPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on dimension mismatch")
		}
	}()
	L2Squared([]float32{1, 2}, []float32{1})
}

func TestNegatedDot(t *testing.T) {
	got := NegatedDot([]float32{1, 2, 3}, []float32{1, 2, 3})
	if got != -14 {
		t.Errorf("NegatedDot = %v, want -14", got)
	}
}

func TestCosineDistance(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical-direction", []float32{1, 0}, []float32{2, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CosineDistance(c.a, c.b)
			if math.Abs(float64(got-c.want)) > 1e-6 {
				t.Errorf("CosineDistance(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestCosineDistanceZeroVectorIsNaN(t *testing.T) {
	got := CosineDistance([]float32{0, 0}, []float32{1, 0})
	if !math.IsNaN(float64(got)) {
		t.Errorf("CosineDistance with zero vector = %v, want NaN", got)
	}
}

func TestForUnsupportedMetric(t *testing.T) {
	if _, err := For(Metric(99)); err == nil {
		t.Fatal("expected error for unsupported metric")
	}
}
