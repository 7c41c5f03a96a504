package annlib

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/alpvec/annlib/internal/index/hnsw"
	"github.com/alpvec/annlib/internal/obs"
)

// hnswIndex adapts internal/index/hnsw.Index to the public Index
// interface.
type hnswIndex struct {
	idx     *hnsw.Index
	nextID  int64
	metrics *obs.Metrics
	logger  *zap.Logger
	closed  int32
}

// translateHNSWErr maps internal/index/hnsw's own sentinels onto
// annlib's public sentinel vocabulary, so FromError classifies them
// correctly instead of falling back to CodeBGError.
func translateHNSWErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, hnsw.ErrDimMismatch):
		return fmt.Errorf("%w: %v", ErrInvalidDimension, err)
	case errors.Is(err, hnsw.ErrInvalidK):
		return fmt.Errorf("%w: %v", ErrInvalidK, err)
	case errors.Is(err, hnsw.ErrDuplicateID):
		return fmt.Errorf("%w: %v", ErrDuplicateID, err)
	}
	return err
}

// NewHNSWIndex builds a hierarchical navigable small world graph over
// dim-dimensional vectors with M target neighbors per layer. Unlike
// IVF, the graph is query-ready after every Insert; Build is a no-op
// kept only to satisfy the Index interface.
func NewHNSWIndex(dim, m int, metric Metric, opts ...HNSWOption) (Index, error) {
	cfg := hnsw.Config{
		Dim:            dim,
		M:              m,
		MMax:           2 * m,
		EfConstruction: 200,
		EfSearch:       64,
		Metric:         metric,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = obs.NewLogger()
	}
	idx, err := hnsw.New(cfg)
	if err != nil {
		return nil, err
	}
	return &hnswIndex{idx: idx, metrics: obs.NewMetrics(), logger: cfg.Logger}, nil
}

func (x *hnswIndex) Add(id int64, vector []float32) error {
	if atomic.LoadInt32(&x.closed) != 0 {
		return ErrClosed
	}
	if err := x.idx.Insert(id, vector); err != nil {
		return translateHNSWErr(err)
	}
	x.metrics.VectorInserts.Inc()
	return nil
}

func (x *hnswIndex) AddAuto(vector []float32) (int64, error) {
	id := atomic.AddInt64(&x.nextID, 1) - 1
	if err := x.Add(id, vector); err != nil {
		return 0, err
	}
	return id, nil
}

func (x *hnswIndex) Build() error {
	if atomic.LoadInt32(&x.closed) != 0 {
		return ErrClosed
	}
	start := time.Now()
	err := translateHNSWErr(x.idx.Build())
	x.metrics.BuildTotal.Inc()
	x.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		x.logger.Warn("hnsw: build failed", zap.Error(err))
	}
	return err
}

func (x *hnswIndex) Search(query []float32, k int) ([]SearchResult, error) {
	if atomic.LoadInt32(&x.closed) != 0 {
		return nil, ErrClosed
	}
	start := time.Now()
	defer func() { x.metrics.SearchLatency.Observe(time.Since(start).Seconds()) }()

	results, err := x.idx.Search(query, k)
	if err != nil {
		x.metrics.SearchErrors.Inc()
		return nil, translateHNSWErr(err)
	}
	x.metrics.SearchQueries.Inc()

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{ID: r.ID, Distance: r.Dist}
	}
	return out, nil
}

func (x *hnswIndex) Dimension() int { return x.idx.Dimension() }

func (x *hnswIndex) Size() int { return x.idx.Size() }

func (x *hnswIndex) Close() error {
	atomic.StoreInt32(&x.closed, 1)
	return x.idx.Close()
}
