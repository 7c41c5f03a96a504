// Package ivf implements an inverted-file index: a flat list of
// centroids, each owning a pluggable cluster back-end that stores and
// searches the members assigned to it.
package ivf

import (
	"github.com/alpvec/annlib/internal/distance"
	"github.com/alpvec/annlib/internal/topk"
)

// Candidate is a single (id, distance) pair carried through bounded
// top-k queues at both the centroid-selection and per-cluster-predict
// stages.
type Candidate struct {
	ID   int64
	Dist float32
}

func lessCandidate(a, b Candidate) bool { return a.Dist < b.Dist }

func newCandidateQueue(cap int) *topk.Queue[Candidate] {
	return topk.New(cap, lessCandidate)
}

// Cluster is the common contract every IVF back-end (Flat, SQ, PQ)
// implements. A cluster is populated by repeated Add calls during
// Index.Build, then Train is called exactly once, after which Predict
// may be called any number of times.
type Cluster interface {
	Centroid() []float32
	Add(id int64, vec []float32)
	Train(seed int64) error
	Predict(k int, query []float32) *topk.Queue[Candidate]
	Size() int
}

// FlatCluster keeps raw member vectors and answers Predict with an
// exact linear scan, pushing every member into a bounded top-k queue.
type FlatCluster struct {
	centroid []float32
	metric   distance.Metric
	distFn   distance.Func
	ids      []int64
	vectors  [][]float32
}

func NewFlatCluster(centroid []float32, metric distance.Metric) (*FlatCluster, error) {
	distFn, err := distance.For(metric)
	if err != nil {
		return nil, err
	}
	return &FlatCluster{centroid: centroid, metric: metric, distFn: distFn}, nil
}

func (c *FlatCluster) Centroid() []float32 { return c.centroid }

func (c *FlatCluster) Add(id int64, vec []float32) {
	c.ids = append(c.ids, id)
	c.vectors = append(c.vectors, vec)
}

// Train is a no-op: a flat cluster needs no fitting step.
func (c *FlatCluster) Train(seed int64) error { return nil }

func (c *FlatCluster) Predict(k int, query []float32) *topk.Queue[Candidate] {
	q := newCandidateQueue(k)
	for i, v := range c.vectors {
		q.PushValue(Candidate{ID: c.ids[i], Dist: c.distFn(query, v)})
	}
	return q
}

func (c *FlatCluster) Size() int { return len(c.ids) }
