package ivf

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alpvec/annlib/internal/distance"
	"github.com/alpvec/annlib/internal/executor"
	"github.com/alpvec/annlib/internal/kmeans"
	"github.com/alpvec/annlib/internal/quant"
)

// ClusterKind selects which cluster back-end Build constructs for
// every centroid.
type ClusterKind int

const (
	ClusterFlat ClusterKind = iota
	ClusterSQ
	ClusterPQ
)

const defaultPQSubquantizers = 8

var (
	ErrNotBuilt      = errors.New("ivf: index not built")
	ErrAlreadyBuilt  = errors.New("ivf: already built")
	ErrDimMismatch   = errors.New("ivf: vector dimension mismatch")
	ErrInvalidConfig = errors.New("ivf: invalid configuration")
	ErrEmptyIndex    = errors.New("ivf: no vectors buffered before build")
	ErrInvalidK      = errors.New("ivf: k must be positive")
)

// Config configures an Index. Nlist is the number of clusters, Nprobe
// the number of clusters consulted per query (1 <= Nprobe <= Nlist).
type Config struct {
	Dim             int
	Nlist           int
	Nprobe          int
	Metric          distance.Metric
	ClusterKind     ClusterKind
	SQWidth         quant.CodeWidth // used when ClusterKind == ClusterSQ
	PQSubquantizers int             // used when ClusterKind == ClusterPQ, default 8
	KMeansMaxIters  int
	KMeansTolerance float32
	Seed            int64

	// TrainWorkers is the number of goroutines Build uses to train
	// cluster back-ends concurrently. Cluster training is independent
	// per cluster, so this fans out well; defaults to 1 (sequential).
	TrainWorkers int

	// Logger receives Build/Train failure events and is
	// handed to the executor pool for background task failure logging.
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c Config) validate() error {
	if c.Dim <= 0 {
		return fmt.Errorf("%w: dim must be positive", ErrInvalidConfig)
	}
	if c.Nlist <= 0 {
		return fmt.Errorf("%w: nlist must be positive", ErrInvalidConfig)
	}
	if c.Nprobe <= 0 || c.Nprobe > c.Nlist {
		return fmt.Errorf("%w: nprobe must be in [1, nlist]", ErrInvalidConfig)
	}
	return nil
}

// Index is an inverted-file approximate nearest-neighbor index:
// vectors are buffered on Add, then partitioned into Nlist clusters
// on Build. The index is single-writer during buffering and read-only
// after Build, matching the package-wide build-then-freeze contract.
type Index struct {
	cfg Config

	mu          sync.RWMutex
	built       bool
	pendingIDs  []int64
	pendingVecs [][]float32

	centroids [][]float32
	clusters  []Cluster
}

func New(cfg Config) (*Index, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.ClusterKind == ClusterPQ && cfg.PQSubquantizers <= 0 {
		cfg.PQSubquantizers = defaultPQSubquantizers
	}
	if cfg.KMeansMaxIters <= 0 {
		cfg.KMeansMaxIters = 100
	}
	if cfg.KMeansTolerance <= 0 {
		cfg.KMeansTolerance = 1e-4
	}
	if cfg.TrainWorkers <= 0 {
		cfg.TrainWorkers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Index{cfg: cfg}, nil
}

// Add buffers (id, vec) into the pending set. It does not touch any
// cluster; clusters are only populated during Build.
func (ix *Index) Add(id int64, vec []float32) error {
	if len(vec) != ix.cfg.Dim {
		return ErrDimMismatch
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.built {
		return ErrAlreadyBuilt
	}
	ix.pendingIDs = append(ix.pendingIDs, id)
	ix.pendingVecs = append(ix.pendingVecs, vec)
	return nil
}

// Build runs k-means++ over the buffered vectors, constructs one
// cluster back-end per centroid, assigns every buffered vector to its
// argmin cluster, and trains SQ/PQ back-ends. A second call after a
// successful build is a no-op.
func (ix *Index) Build() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.built {
		return nil
	}
	if len(ix.pendingVecs) == 0 {
		return ErrEmptyIndex
	}

	km, err := kmeans.New(kmeans.Config{
		K:         ix.cfg.Nlist,
		Dim:       ix.cfg.Dim,
		MaxIters:  ix.cfg.KMeansMaxIters,
		Tolerance: ix.cfg.KMeansTolerance,
		Metric:    ix.cfg.Metric,
		Seed:      ix.cfg.Seed,
	})
	if err != nil {
		return err
	}
	centroids, err := km.TrainPP(ix.pendingVecs)
	if err != nil {
		return err
	}

	clusters := make([]Cluster, len(centroids))
	for i, c := range centroids {
		cl, err := ix.newCluster(c)
		if err != nil {
			return err
		}
		clusters[i] = cl
	}

	distFn, err := distance.For(ix.cfg.Metric)
	if err != nil {
		return err
	}
	for i, v := range ix.pendingVecs {
		best := argminCentroid(v, centroids, distFn)
		clusters[best].Add(ix.pendingIDs[i], v)
	}

	if err := trainClusters(clusters, ix.cfg.Seed, ix.cfg.TrainWorkers, ix.cfg.Logger); err != nil {
		ix.cfg.Logger.Warn("ivf: build aborted, buffered data retained for retry", zap.Error(err))
		return err
	}

	ix.centroids = centroids
	ix.clusters = clusters
	ix.pendingIDs = nil
	ix.pendingVecs = nil
	ix.built = true
	return nil
}

func (ix *Index) newCluster(centroid []float32) (Cluster, error) {
	switch ix.cfg.ClusterKind {
	case ClusterFlat:
		return NewFlatCluster(centroid, ix.cfg.Metric)
	case ClusterSQ:
		return NewSQCluster(centroid, ix.cfg.Metric, ix.cfg.SQWidth), nil
	case ClusterPQ:
		return NewPQCluster(centroid, ix.cfg.Metric, ix.cfg.PQSubquantizers)
	default:
		return nil, fmt.Errorf("%w: unknown cluster kind %d", ErrInvalidConfig, ix.cfg.ClusterKind)
	}
}

// trainClusters runs cl.Train on every cluster, fanning the work out
// across workers goroutines when workers > 1. Each cluster gets a
// distinct seed derived from the base seed so that, e.g., PQ's
// internal k-means runs don't all draw the same sequence.
func trainClusters(clusters []Cluster, seed int64, workers int, logger *zap.Logger) error {
	if workers <= 1 || len(clusters) <= 1 {
		for i, cl := range clusters {
			if err := cl.Train(seed + int64(i)); err != nil {
				return fmt.Errorf("ivf: cluster training failed: %w", err)
			}
		}
		return nil
	}

	exec := executor.New(workers, logger)
	defer exec.Shutdown()

	futures := make([]*executor.Future[struct{}], len(clusters))
	for i, cl := range clusters {
		cl, clSeed := cl, seed+int64(i)
		futures[i] = executor.Submit(exec, func() (struct{}, error) {
			return struct{}{}, cl.Train(clSeed)
		})
	}
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			return fmt.Errorf("ivf: cluster training failed: %w", err)
		}
	}
	return nil
}

func argminCentroid(v []float32, centroids [][]float32, distFn distance.Func) int {
	best, bestDist := 0, float32(0)
	for i, c := range centroids {
		d := distFn(v, c)
		if i == 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Search computes distance from query to every centroid, selects the
// Nprobe nearest, predicts k candidates from each, and merges them
// into a single bounded top-k sorted ascending by distance.
func (ix *Index) Search(query []float32, k int) ([]Candidate, error) {
	if len(query) != ix.cfg.Dim {
		return nil, ErrDimMismatch
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.built {
		return nil, ErrNotBuilt
	}

	distFn, err := distance.For(ix.cfg.Metric)
	if err != nil {
		return nil, err
	}

	probeQueue := newCandidateQueue(ix.cfg.Nprobe)
	for i, c := range ix.centroids {
		probeQueue.PushValue(Candidate{ID: int64(i), Dist: distFn(query, c)})
	}
	probed := probeQueue.Ordered()

	merged := newCandidateQueue(k)
	for _, p := range probed {
		local := ix.clusters[p.ID].Predict(k, query)
		merged.Merge(local)
	}

	return merged.Ordered(), nil
}

func (ix *Index) Dimension() int { return ix.cfg.Dim }

func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.built {
		n := 0
		for _, cl := range ix.clusters {
			n += cl.Size()
		}
		return n
	}
	return len(ix.pendingIDs)
}

func (ix *Index) Built() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.built
}
