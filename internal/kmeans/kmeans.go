// Package kmeans implements Lloyd's algorithm with k-means++ seeding,
// used to train IVF coarse centroids and per-subspace product
// quantizer codebooks.
package kmeans

import (
	"fmt"
	"math/rand"

	"github.com/alpvec/annlib/internal/distance"
)

// Config controls a training run. Seed must be set explicitly by the
// caller (no time-based default): reproducible centroids are required
// so that index builds are deterministic given identical inputs.
type Config struct {
	K         int
	Dim       int
	MaxIters  int
	Tolerance float32
	Metric    distance.Metric
	Seed      int64
}

// KMeans trains a fixed set of centroids over a data set via Lloyd's
// algorithm, relaxing only on convergence (no centroid moved further
// than Tolerance, measured with the configured distance) or MaxIters,
// whichever comes first.
type KMeans struct {
	cfg    Config
	rng    *rand.Rand
	distFn distance.Func
}

func New(cfg Config) (*KMeans, error) {
	if cfg.K <= 0 {
		return nil, fmt.Errorf("kmeans: k must be positive, got %d", cfg.K)
	}
	if cfg.Dim <= 0 {
		return nil, fmt.Errorf("kmeans: dim must be positive, got %d", cfg.Dim)
	}
	if cfg.MaxIters <= 0 {
		cfg.MaxIters = 100
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-4
	}
	distFn, err := distance.For(cfg.Metric)
	if err != nil {
		return nil, err
	}
	return &KMeans{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		distFn: distFn,
	}, nil
}

// Train clusters data into at most cfg.K centroids and returns them.
// If len(data) < cfg.K, one centroid is produced per point.
func (km *KMeans) Train(data [][]float32) ([][]float32, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("kmeans: no data to train on")
	}
	k := km.cfg.K
	if k > len(data) {
		k = len(data)
	}
	centroids := km.initReservoir(data, k)
	return km.lloyd(data, centroids)
}

// TrainPP is identical to Train but seeds centroids with k-means++
// (roulette-wheel selection weighted by squared distance to the
// nearest already-chosen centroid) instead of reservoir sampling.
func (km *KMeans) TrainPP(data [][]float32) ([][]float32, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("kmeans: no data to train on")
	}
	k := km.cfg.K
	if k > len(data) {
		k = len(data)
	}
	centroids := km.initPlusPlus(data, k)
	return km.lloyd(data, centroids)
}

// initReservoir performs reservoir sampling over data to pick k
// distinct starting centroids: the first k points, then for each
// subsequent point m (0-indexed from k), replace a uniformly chosen
// existing slot with probability k/(m+1).
func (km *KMeans) initReservoir(data [][]float32, k int) [][]float32 {
	centroids := make([][]float32, k)
	for i := 0; i < k; i++ {
		centroids[i] = cloneVec(data[i])
	}
	for m := k; m < len(data); m++ {
		j := km.rng.Intn(m + 1)
		if j < k {
			centroids[j] = cloneVec(data[m])
		}
	}
	return centroids
}

func (km *KMeans) initPlusPlus(data [][]float32, k int) [][]float32 {
	centroids := make([][]float32, 0, k)
	first := km.rng.Intn(len(data))
	centroids = append(centroids, cloneVec(data[first]))

	sqDist := make([]float64, len(data))
	for len(centroids) < k {
		total := 0.0
		for j, v := range data {
			minDist := minDistToCentroids(v, centroids, km.distFn)
			// The L2 kernel already returns the squared distance.
			d := float64(minDist)
			if km.cfg.Metric != distance.L2 {
				d *= d
			}
			sqDist[j] = d
			total += d
		}
		threshold := km.rng.Float64() * total
		cumulative := 0.0
		chosen := len(data) - 1
		for j, d := range sqDist {
			cumulative += d
			if cumulative >= threshold {
				chosen = j
				break
			}
		}
		centroids = append(centroids, cloneVec(data[chosen]))
	}
	return centroids
}

func minDistToCentroids(v []float32, centroids [][]float32, distFn distance.Func) float32 {
	best := float32(0)
	for i, c := range centroids {
		d := distFn(v, c)
		if i == 0 || d < best {
			best = d
		}
	}
	return best
}

func (km *KMeans) lloyd(data [][]float32, centroids [][]float32) ([][]float32, error) {
	k := len(centroids)
	dim := km.cfg.Dim
	running := make([]*kahanAverage, k)
	for i := range running {
		running[i] = newKahanAverage(dim)
	}

	for iter := 0; iter < km.cfg.MaxIters; iter++ {
		for _, r := range running {
			r.reset()
		}
		for _, v := range data {
			best := km.nearest(v, centroids)
			running[best].add(v)
		}

		converged := true
		next := make([][]float32, k)
		for j := 0; j < k; j++ {
			if running[j].count == 0 {
				next[j] = centroids[j]
				continue
			}
			mean := cloneVec(running[j].mean)
			if km.distFn(mean, centroids[j]) > km.cfg.Tolerance {
				converged = false
			}
			next[j] = mean
		}
		centroids = next
		if converged {
			break
		}
	}
	return centroids, nil
}

func (km *KMeans) nearest(v []float32, centroids [][]float32) int {
	best := 0
	bestDist := km.distFn(v, centroids[0])
	for j := 1; j < len(centroids); j++ {
		d := km.distFn(v, centroids[j])
		if d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

func cloneVec(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
