package annlib

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/alpvec/annlib/internal/index/ivf"
	"github.com/alpvec/annlib/internal/obs"
	"github.com/alpvec/annlib/internal/quant"
)

// ivfIndex adapts internal/index/ivf.Index to the public Index
// interface, translating ivf.Candidate to annlib's own SearchResult.
type ivfIndex struct {
	idx     *ivf.Index
	nextID  int64
	metrics *obs.Metrics
	logger  *zap.Logger
	closed  int32
}

// translateIVFErr maps internal/index/ivf's own sentinels (and the
// *quant.Error a cluster training failure wraps) onto annlib's public
// sentinel vocabulary, so FromError classifies them correctly instead
// of falling back to CodeBGError.
func translateIVFErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ivf.ErrDimMismatch):
		return fmt.Errorf("%w: %v", ErrInvalidDimension, err)
	case errors.Is(err, ivf.ErrInvalidK):
		return fmt.Errorf("%w: %v", ErrInvalidK, err)
	case errors.Is(err, ivf.ErrEmptyIndex):
		return fmt.Errorf("%w: %v", ErrEmptyIndex, err)
	case errors.Is(err, ivf.ErrNotBuilt):
		return fmt.Errorf("%w: %v", ErrNotBuilt, err)
	case errors.Is(err, ivf.ErrAlreadyBuilt):
		return fmt.Errorf("%w: %v", ErrAlreadyBuilt, err)
	}

	var qerr *quant.Error
	if errors.As(err, &qerr) {
		switch qerr.Code {
		case quant.ErrTrainingDataInsufficient:
			// spec: the IVF driver surfaces PQ-too-few-samples as NotSupported.
			return fmt.Errorf("%w: %v", ErrInsufficientTrainingData, err)
		case quant.ErrNotTrained:
			return fmt.Errorf("%w: %v", ErrQuantizerNotTrained, err)
		case quant.ErrNotSupported:
			return fmt.Errorf("%w: %v", ErrQuantizationNotSupported, err)
		case quant.ErrDimensionMismatch:
			return fmt.Errorf("%w: %v", ErrInvalidDimension, err)
		}
	}
	return err
}

// NewIVFIndex builds an inverted-file index over dim-dimensional
// vectors, partitioned into nlist clusters of the given back-end type
// (Flat by default; use WithScalarQuantizer/WithProductQuantizer to
// select SQ/PQ). nprobe defaults to 1; use WithNprobe to widen it.
func NewIVFIndex(dim, nlist int, metric Metric, opts ...IVFOption) (Index, error) {
	cfg := ivf.Config{
		Dim:         dim,
		Nlist:       nlist,
		Nprobe:      1,
		Metric:      metric,
		ClusterKind: ivf.ClusterFlat,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = obs.NewLogger()
	}
	idx, err := ivf.New(cfg)
	if err != nil {
		return nil, err
	}
	return &ivfIndex{idx: idx, metrics: obs.NewMetrics(), logger: cfg.Logger}, nil
}

func (x *ivfIndex) Add(id int64, vector []float32) error {
	if atomic.LoadInt32(&x.closed) != 0 {
		return ErrClosed
	}
	if err := x.idx.Add(id, vector); err != nil {
		return translateIVFErr(err)
	}
	x.metrics.VectorInserts.Inc()
	return nil
}

func (x *ivfIndex) AddAuto(vector []float32) (int64, error) {
	id := atomic.AddInt64(&x.nextID, 1) - 1
	if err := x.Add(id, vector); err != nil {
		return 0, err
	}
	return id, nil
}

func (x *ivfIndex) Build() error {
	if atomic.LoadInt32(&x.closed) != 0 {
		return ErrClosed
	}
	start := time.Now()
	err := translateIVFErr(x.idx.Build())
	x.metrics.BuildTotal.Inc()
	x.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		x.logger.Warn("ivf: build failed", zap.Error(err))
		return err
	}
	x.logger.Info("ivf: build complete", zap.Int("size", x.idx.Size()), zap.Duration("took", time.Since(start)))
	return nil
}

func (x *ivfIndex) Search(query []float32, k int) ([]SearchResult, error) {
	if atomic.LoadInt32(&x.closed) != 0 {
		return nil, ErrClosed
	}
	start := time.Now()
	defer func() { x.metrics.SearchLatency.Observe(time.Since(start).Seconds()) }()

	candidates, err := x.idx.Search(query, k)
	if err != nil {
		x.metrics.SearchErrors.Inc()
		return nil, translateIVFErr(err)
	}
	x.metrics.SearchQueries.Inc()

	out := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		out[i] = SearchResult{ID: c.ID, Distance: c.Dist}
	}
	return out, nil
}

func (x *ivfIndex) Dimension() int { return x.idx.Dimension() }

func (x *ivfIndex) Size() int { return x.idx.Size() }

func (x *ivfIndex) Close() error {
	atomic.StoreInt32(&x.closed, 1)
	return nil
}
