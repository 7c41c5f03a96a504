package quant

import (
	"math"
	"testing"

	"github.com/alpvec/annlib/internal/distance"
)

func clusterAround(center []float32, n int) [][]float32 {
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		v := make([]float32, len(center))
		for d := range center {
			v[d] = center[d] + float32(i%5)*0.01
		}
		out[i] = v
	}
	return out
}

func TestScalarQuantizerRoundTripI8(t *testing.T) {
	centroid := []float32{10, 20}
	members := clusterAround(centroid, 20)

	q := NewScalarQuantizer(I8, 2, centroid)
	if err := q.Train(members); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	for _, v := range members {
		code, err := q.Encode(v)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		got, err := q.Decode(code)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		for d := range v {
			if math.Abs(float64(got[d]-v[d])) > 0.5 {
				t.Errorf("Decode(Encode(%v))[%d] = %v, want close to %v", v, d, got[d], v[d])
			}
		}
	}
}

func TestScalarQuantizerRoundTripF32IsNearLossless(t *testing.T) {
	centroid := []float32{0, 0}
	members := clusterAround(centroid, 10)

	q := NewScalarQuantizer(F32, 2, centroid)
	if err := q.Train(members); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	v := members[3]
	code, err := q.Encode(v)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := q.Decode(code)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for d := range v {
		if math.Abs(float64(got[d]-v[d])) > 1e-3 {
			t.Errorf("f32 round trip[%d] = %v, want ~%v", d, got[d], v[d])
		}
	}
}

func TestScalarQuantizerEncodeBeforeTrain(t *testing.T) {
	q := NewScalarQuantizer(I8, 2, []float32{0, 0})
	if _, err := q.Encode([]float32{1, 1}); err == nil {
		t.Fatal("expected error encoding before Train")
	}
}

func TestScalarQuantizerDistanceToQuery(t *testing.T) {
	centroid := []float32{0, 0}
	members := clusterAround(centroid, 10)
	q := NewScalarQuantizer(F32, 2, centroid)
	if err := q.Train(members); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	code, _ := q.Encode(members[0])
	dist, err := q.DistanceToQuery(members[0], code, distance.L2)
	if err != nil {
		t.Fatalf("DistanceToQuery() error = %v", err)
	}
	if dist > 1e-3 {
		t.Errorf("DistanceToQuery(self) = %v, want ~0", dist)
	}
}
