package annlib

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alpvec/annlib/internal/index/hnsw"
	"github.com/alpvec/annlib/internal/index/ivf"
	"github.com/alpvec/annlib/internal/quant"
)

// IVFOption configures an IVF index at construction time.
type IVFOption func(*ivf.Config) error

// WithNprobe sets how many clusters are consulted per query.
func WithNprobe(nprobe int) IVFOption {
	return func(c *ivf.Config) error {
		if nprobe <= 0 {
			return fmt.Errorf("annlib: nprobe must be positive")
		}
		c.Nprobe = nprobe
		return nil
	}
}

// WithScalarQuantizer selects the SQ cluster back-end at the given
// code width.
func WithScalarQuantizer(width quant.CodeWidth) IVFOption {
	return func(c *ivf.Config) error {
		c.ClusterKind = ivf.ClusterSQ
		c.SQWidth = width
		return nil
	}
}

// WithProductQuantizer selects the PQ cluster back-end with m
// sub-quantizers.
func WithProductQuantizer(m int) IVFOption {
	return func(c *ivf.Config) error {
		if m <= 0 {
			return fmt.Errorf("annlib: product quantizer m must be positive")
		}
		c.ClusterKind = ivf.ClusterPQ
		c.PQSubquantizers = m
		return nil
	}
}

// WithKMeansParams overrides the Lloyd iteration budget and
// convergence tolerance used to fit IVF centroids.
func WithKMeansParams(maxIters int, tolerance float32) IVFOption {
	return func(c *ivf.Config) error {
		if maxIters <= 0 {
			return fmt.Errorf("annlib: kmeans max iters must be positive")
		}
		c.KMeansMaxIters = maxIters
		c.KMeansTolerance = tolerance
		return nil
	}
}

// WithSeed pins the RNG seed used for k-means++ initialization,
// making Build deterministic across runs with identical input.
func WithSeed(seed int64) IVFOption {
	return func(c *ivf.Config) error {
		c.Seed = seed
		return nil
	}
}

// WithTrainWorkers sets how many goroutines Build uses to train
// cluster back-ends concurrently; the default is sequential (1).
func WithTrainWorkers(workers int) IVFOption {
	return func(c *ivf.Config) error {
		if workers <= 0 {
			return fmt.Errorf("annlib: train workers must be positive")
		}
		c.TrainWorkers = workers
		return nil
	}
}

// WithLogger overrides the no-op default logger with one that
// receives Build/Train events from the index's internal machinery.
func WithLogger(logger *zap.Logger) IVFOption {
	return func(c *ivf.Config) error {
		c.Logger = logger
		return nil
	}
}

// HNSWOption configures an HNSW index at construction time.
type HNSWOption func(*hnsw.Config) error

// WithEfConstruction sets the candidate-set width used while
// inserting nodes.
func WithEfConstruction(ef int) HNSWOption {
	return func(c *hnsw.Config) error {
		if ef <= 0 {
			return fmt.Errorf("annlib: EfConstruction must be positive")
		}
		c.EfConstruction = ef
		return nil
	}
}

// WithEfSearch sets the candidate-set width used while searching.
func WithEfSearch(ef int) HNSWOption {
	return func(c *hnsw.Config) error {
		if ef <= 0 {
			return fmt.Errorf("annlib: EfSearch must be positive")
		}
		c.EfSearch = ef
		return nil
	}
}

// WithMMax sets the hard per-layer neighbor cap (must be >= M).
func WithMMax(mMax int) HNSWOption {
	return func(c *hnsw.Config) error {
		c.MMax = mMax
		return nil
	}
}

// WithHNSWSeed pins the RNG seed used for level sampling.
func WithHNSWSeed(seed int64) HNSWOption {
	return func(c *hnsw.Config) error {
		c.Seed = seed
		return nil
	}
}

// WithHNSWLogger overrides the no-op default logger with one that
// receives graph-maintenance events from the index's internal machinery.
func WithHNSWLogger(logger *zap.Logger) HNSWOption {
	return func(c *hnsw.Config) error {
		c.Logger = logger
		return nil
	}
}
