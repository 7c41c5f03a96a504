package annlib

import "github.com/alpvec/annlib/internal/distance"

// Metric re-exports the distance kernel selector so callers never need
// to import the internal package directly.
type Metric = distance.Metric

const (
	L2           = distance.L2
	InnerProduct = distance.InnerProduct
	Cosine       = distance.Cosine
)

// ClusterType selects the per-cluster back-end an IVF index trains.
type ClusterType int

const (
	ClusterFlat ClusterType = iota
	ClusterSQ
	ClusterPQ
)

func (c ClusterType) String() string {
	switch c {
	case ClusterFlat:
		return "flat"
	case ClusterSQ:
		return "scalar_quantized"
	case ClusterPQ:
		return "product_quantized"
	default:
		return "unknown"
	}
}

// VectorEntry is a single labeled vector to add to an index.
type VectorEntry struct {
	ID     int64
	Vector []float32
}

// SearchResult is a single ranked neighbor returned from Search, sorted
// ascending by Distance (closest first), regardless of which metric
// produced it.
type SearchResult struct {
	ID       int64
	Distance float32
}

// Index is the shape every concrete index (IVF, HNSW) implements.
type Index interface {
	// Add inserts a labeled vector. It is only valid before Build for
	// indexes that require training (IVF); HNSW accepts Add at any time.
	Add(id int64, vector []float32) error

	// AddAuto inserts vector under an autoassigned, monotonically
	// increasing id and returns it.
	AddAuto(vector []float32) (int64, error)

	// Build finalizes the index (trains IVF centroids/quantizers; for
	// HNSW this is a no-op since it builds incrementally on Add). Build
	// is idempotent: calling it again on an already-built index returns
	// Ok without retraining.
	Build() error

	// Search returns up to k nearest neighbors of query, ascending by
	// distance.
	Search(query []float32, k int) ([]SearchResult, error)

	Dimension() int
	Size() int
	Close() error
}
