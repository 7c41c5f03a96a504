package quant

import (
	"math"
	"testing"

	"github.com/alpvec/annlib/internal/distance"
)

func syntheticMembers(dim, n int, seed float32) [][]float32 {
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		v := make([]float32, dim)
		for d := 0; d < dim; d++ {
			v[d] = seed + float32(i)*0.1 + float32(d)*0.01
		}
		out[i] = v
	}
	return out
}

func TestProductQuantizerTrainAndRoundTrip(t *testing.T) {
	dim := 8
	centroid := make([]float32, dim)
	members := syntheticMembers(dim, 20, 0)

	q, err := NewProductQuantizer(2, dim, centroid, 16)
	if err != nil {
		t.Fatalf("NewProductQuantizer() error = %v", err)
	}
	if err := q.Train(members, 1); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if !q.IsTrained() {
		t.Fatal("IsTrained() = false after Train")
	}

	code, err := q.Encode(members[0])
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(code) != 2 {
		t.Fatalf("len(code) = %d, want 2", len(code))
	}
	vec, err := q.Decode(code)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(vec) != dim {
		t.Fatalf("len(Decode()) = %d, want %d", len(vec), dim)
	}
}

func TestProductQuantizerRejectsSmallClusters(t *testing.T) {
	dim := 8
	centroid := make([]float32, dim)
	q, err := NewProductQuantizer(2, dim, centroid, 16)
	if err != nil {
		t.Fatalf("NewProductQuantizer() error = %v", err)
	}
	if err := q.Train(syntheticMembers(dim, 5, 0), 1); err == nil {
		t.Fatal("expected error training on <= 8 members")
	}
}

func TestProductQuantizerDistanceToQueryMatchesDecode(t *testing.T) {
	dim := 8
	centroid := make([]float32, dim)
	members := syntheticMembers(dim, 20, 0)

	q, err := NewProductQuantizer(2, dim, centroid, 16)
	if err != nil {
		t.Fatalf("NewProductQuantizer() error = %v", err)
	}
	if err := q.Train(members, 1); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	query := members[0]
	code, _ := q.Encode(members[1])
	vec, _ := q.Decode(code)

	want := distance.L2Squared(query, vec)
	got, err := q.DistanceToQuery(query, code, distance.L2)
	if err != nil {
		t.Fatalf("DistanceToQuery() error = %v", err)
	}
	if math.Abs(float64(got-want)) > 1e-3 {
		t.Errorf("DistanceToQuery() = %v, want %v (table vs direct mismatch)", got, want)
	}
}

func TestProductQuantizerEncodeBeforeTrain(t *testing.T) {
	q, _ := NewProductQuantizer(2, 8, make([]float32, 8), 16)
	if _, err := q.Encode(make([]float32, 8)); err == nil {
		t.Fatal("expected error encoding before Train")
	}
}
