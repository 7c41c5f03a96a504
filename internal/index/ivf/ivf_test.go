package ivf

import (
	"errors"
	"testing"

	"github.com/alpvec/annlib/internal/distance"
	"github.com/alpvec/annlib/internal/quant"
)

// twoBlobs returns nPerBlob vectors tightly clustered around each of
// two well-separated centers, along with their ids: 0..nPerBlob-1 for
// the near-origin blob, then nPerBlob..2*nPerBlob-1 for the far one.
func twoBlobs(dim, nPerBlob int) (vectors [][]float32, ids []int64) {
	centers := [][]float32{
		make([]float32, dim),
		make([]float32, dim),
	}
	for d := 0; d < dim; d++ {
		centers[0][d] = 0
		centers[1][d] = 50
	}
	id := int64(0)
	for _, c := range centers {
		for i := 0; i < nPerBlob; i++ {
			v := make([]float32, dim)
			for d := range v {
				v[d] = c[d] + float32(i%3)*0.05
			}
			vectors = append(vectors, v)
			ids = append(ids, id)
			id++
		}
	}
	return vectors, ids
}

func buildIndex(t *testing.T, kind ClusterKind) *Index {
	t.Helper()
	dim := 8
	vectors, ids := twoBlobs(dim, 30)

	cfg := Config{
		Dim:         dim,
		Nlist:       2,
		Nprobe:      2,
		Metric:      distance.L2,
		ClusterKind: kind,
		SQWidth:     quant.F32,
		Seed:        7,
	}
	idx, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i, v := range vectors {
		if err := idx.Add(ids[i], v); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if err := idx.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return idx
}

func TestIVFFlatSearchFindsNearestBlob(t *testing.T) {
	idx := buildIndex(t, ClusterFlat)

	query := make([]float32, idx.Dimension())
	results, err := idx.Search(query, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Search() returned no results")
	}
	// every returned id should come from the near-origin blob (ids 0..29)
	for _, r := range results {
		if r.ID >= 30 {
			t.Errorf("Search() returned id %d from the far blob", r.ID)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Dist < results[i-1].Dist {
			t.Fatalf("Search() results not sorted ascending at index %d", i)
		}
	}
}

func TestIVFSQSearchFindsNearestBlob(t *testing.T) {
	idx := buildIndex(t, ClusterSQ)

	query := make([]float32, idx.Dimension())
	for d := range query {
		query[d] = 50
	}
	results, err := idx.Search(query, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, r := range results {
		if r.ID < 30 {
			t.Errorf("Search() returned id %d from the near-origin blob, want far blob", r.ID)
		}
	}
}

func TestIVFPQSearchFindsNearestBlob(t *testing.T) {
	idx := buildIndex(t, ClusterPQ)

	query := make([]float32, idx.Dimension())
	results, err := idx.Search(query, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Search() returned no results")
	}
}

func TestIVFAddAfterBuildFails(t *testing.T) {
	idx := buildIndex(t, ClusterFlat)
	if err := idx.Add(999, make([]float32, idx.Dimension())); err == nil {
		t.Fatal("expected error adding after build")
	}
}

func TestIVFSearchBeforeBuildFails(t *testing.T) {
	idx, err := New(Config{Dim: 4, Nlist: 2, Nprobe: 1, Metric: distance.L2, Seed: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := idx.Search(make([]float32, 4), 1); err == nil {
		t.Fatal("expected error searching before build")
	}
}

func TestIVFBuildIsIdempotent(t *testing.T) {
	idx := buildIndex(t, ClusterFlat)
	if err := idx.Build(); err != nil {
		t.Fatalf("second Build() error = %v, want nil (no-op)", err)
	}
}

func TestIVFBuildEmptyFails(t *testing.T) {
	idx, err := New(Config{Dim: 4, Nlist: 2, Nprobe: 1, Metric: distance.L2, Seed: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := idx.Build(); err == nil {
		t.Fatal("expected error building with no buffered vectors")
	}
}

func TestIVFRejectsInvalidConfig(t *testing.T) {
	cases := []Config{
		{Dim: 0, Nlist: 1, Nprobe: 1},
		{Dim: 4, Nlist: 0, Nprobe: 1},
		{Dim: 4, Nlist: 2, Nprobe: 0},
		{Dim: 4, Nlist: 2, Nprobe: 3},
	}
	for i, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Errorf("case %d: expected error for config %+v", i, cfg)
		}
	}
}

func TestIVFDimensionMismatch(t *testing.T) {
	idx, err := New(Config{Dim: 4, Nlist: 1, Nprobe: 1, Metric: distance.L2, Seed: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := idx.Add(1, make([]float32, 3)); err == nil {
		t.Fatal("expected error adding vector of wrong dimension")
	}
}

func TestIVFSearchRejectsNonPositiveK(t *testing.T) {
	idx := buildIndex(t, ClusterFlat)
	for _, k := range []int{0, -1} {
		if _, err := idx.Search(make([]float32, idx.Dimension()), k); !errors.Is(err, ErrInvalidK) {
			t.Errorf("Search() with k=%d error = %v, want ErrInvalidK", k, err)
		}
	}
}

func TestIVFSizeTracksBufferThenClusters(t *testing.T) {
	dim := 4
	idx, err := New(Config{Dim: dim, Nlist: 2, Nprobe: 1, Metric: distance.L2, Seed: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	vectors, ids := twoBlobs(dim, 10)
	for i, v := range vectors {
		idx.Add(ids[i], v)
	}
	if idx.Size() != len(vectors) {
		t.Fatalf("Size() before build = %d, want %d", idx.Size(), len(vectors))
	}
	if err := idx.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if idx.Size() != len(vectors) {
		t.Fatalf("Size() after build = %d, want %d", idx.Size(), len(vectors))
	}
}
