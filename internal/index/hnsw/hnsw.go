// Package hnsw implements a hierarchical navigable small world graph
// index: vectors are inserted incrementally, each landing at a
// randomly sampled layer, and search descends from the sparse top
// layer down to a dense beam search at layer 0.
package hnsw

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/alpvec/annlib/internal/distance"
)

var (
	ErrDimMismatch   = errors.New("hnsw: vector dimension mismatch")
	ErrDuplicateID   = errors.New("hnsw: id already present")
	ErrInvalidConfig = errors.New("hnsw: invalid configuration")
	ErrInvalidK      = errors.New("hnsw: k must be positive")
)

// Config holds the tunables of the graph. M is the target neighbor
// count for new nodes, MMax the hard per-layer cap (MMax >= M),
// EfConstruction the candidate-set width used while inserting, and
// EfSearch the width used while searching.
type Config struct {
	Dim            int
	M              int
	MMax           int
	EfConstruction int
	EfSearch       int
	Metric         distance.Metric
	Seed           int64

	// Logger receives graph-maintenance events such as neighbor-list
	// pruning. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *Config) validate() error {
	if c.Dim <= 0 {
		return fmt.Errorf("%w: dim must be positive", ErrInvalidConfig)
	}
	if c.M <= 0 {
		return fmt.Errorf("%w: M must be positive", ErrInvalidConfig)
	}
	if c.MMax < c.M {
		return fmt.Errorf("%w: MMax must be >= M", ErrInvalidConfig)
	}
	if c.EfConstruction <= 0 {
		return fmt.Errorf("%w: EfConstruction must be positive", ErrInvalidConfig)
	}
	if c.EfSearch <= 0 {
		return fmt.Errorf("%w: EfSearch must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result is a single search hit: the externally-assigned id and its
// distance to the query.
type Result struct {
	ID   int64
	Dist float32
}

// Index is a hierarchical navigable small world graph. It builds
// incrementally on every Insert; there is no separate build phase.
type Index struct {
	mu     sync.RWMutex
	cfg    Config
	distFn distance.Func
	rng    *rand.Rand
	mult   float64

	nodes        []*node
	idToInternal map[int64]int32
	entry        int32
	maxLevel     int
}

func New(cfg Config) (*Index, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	distFn, err := distance.For(cfg.Metric)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	// ln(1) = 0, so with M == 1 the scale would be infinite; every node
	// then stays at layer 0.
	mult := 0.0
	if cfg.M > 1 {
		mult = 1 / math.Log(float64(cfg.M))
	}
	return &Index{
		cfg:          cfg,
		distFn:       distFn,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
		mult:         mult,
		idToInternal: make(map[int64]int32),
		entry:        -1,
	}, nil
}

// sampleLevel draws ℓ = floor(-ln(U(0,1)) * mult).
func (ix *Index) sampleLevel() int {
	u := ix.rng.Float64()
	for u == 0 {
		u = ix.rng.Float64()
	}
	return int(math.Floor(-math.Log(u) * ix.mult))
}

// Insert adds id/vec to the graph. Build() is a no-op for HNSW since
// the graph is always query-ready after every insert.
func (ix *Index) Insert(id int64, vec []float32) error {
	if len(vec) != ix.cfg.Dim {
		return ErrDimMismatch
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.idToInternal[id]; exists {
		return ErrDuplicateID
	}

	level := ix.sampleLevel()
	stored := make([]float32, len(vec))
	copy(stored, vec)
	n := &node{id: id, vector: stored, level: level, links: make([][]int32, level+1)}

	idx := int32(len(ix.nodes))
	ix.nodes = append(ix.nodes, n)
	ix.idToInternal[id] = idx

	if ix.entry == -1 {
		ix.entry = idx
		ix.maxLevel = level
		return nil
	}

	entryNode := ix.entry
	for l := ix.maxLevel; l > level; l-- {
		entryNode = ix.greedyDescend(entryNode, stored, l)
	}

	top := level
	if ix.maxLevel < top {
		top = ix.maxLevel
	}
	for l := top; l >= 0; l-- {
		candidates := ix.beamSearch(entryNode, stored, ix.cfg.EfConstruction, l)
		ordered := candidates.Ordered()
		m := ix.cfg.M
		if len(ordered) < m {
			m = len(ordered)
		}
		for _, c := range ordered[:m] {
			ix.connect(idx, c.ID, l)
			ix.pruneOverflow(c.ID, l)
		}
		if len(ordered) > 0 {
			entryNode = ordered[0].ID
		}
	}

	if level > ix.maxLevel {
		ix.maxLevel = level
		ix.entry = idx
	}
	return nil
}

// connect adds the reciprocal edge between a and b at level.
func (ix *Index) connect(a, b int32, level int) {
	ix.nodes[a].links[level] = append(ix.nodes[a].links[level], b)
	if level < len(ix.nodes[b].links) {
		ix.nodes[b].links[level] = append(ix.nodes[b].links[level], a)
	}
}

// pruneOverflow removes the single largest-distance edge (and its
// reciprocal) from node v's level-l neighbor set until it is back
// within MMax, per the spec's "prune by removing the worst edge" rule.
func (ix *Index) pruneOverflow(v int32, level int) {
	n := ix.nodes[v]
	if level >= len(n.links) {
		return
	}
	for len(n.links[level]) > ix.cfg.MMax {
		worstPos := -1
		var worstDist float32
		for i, nb := range n.links[level] {
			d := ix.distFn(n.vector, ix.nodes[nb].vector)
			if worstPos == -1 || d > worstDist || (d == worstDist && nb < n.links[level][worstPos]) {
				worstPos, worstDist = i, d
			}
		}
		victim := n.links[level][worstPos]
		n.links[level] = removeAt(n.links[level], worstPos)
		ix.removeEdge(victim, level, v)
		ix.cfg.Logger.Debug("hnsw: pruned overflowing neighbor",
			zap.Int64("node", n.id), zap.Int64("evicted", ix.nodes[victim].id), zap.Int("level", level))
	}
}

func (ix *Index) removeEdge(from int32, level int, target int32) {
	n := ix.nodes[from]
	if level >= len(n.links) {
		return
	}
	for i, v := range n.links[level] {
		if v == target {
			n.links[level] = removeAt(n.links[level], i)
			return
		}
	}
}

func removeAt(s []int32, i int) []int32 {
	s[i] = s[len(s)-1]
	return s[:len(s)-1]
}

// greedyDescend performs single-best descent at level starting from
// entry: it repeatedly moves to the neighbor strictly closer to query
// than the current node, until no improvement is found.
func (ix *Index) greedyDescend(entry int32, query []float32, level int) int32 {
	best := entry
	bestDist := ix.distFn(query, ix.nodes[best].vector)
	for {
		improved := false
		n := ix.nodes[best]
		if level < len(n.links) {
			for _, nb := range n.links[level] {
				d := ix.distFn(query, ix.nodes[nb].vector)
				if d < bestDist {
					best, bestDist = nb, d
					improved = true
				}
			}
		}
		if !improved {
			return best
		}
	}
}

// Search descends to layer 1 with single-best descent, then runs a
// beam search of width EfSearch at layer 0 and returns the k closest
// ids ascending by distance. An empty index yields an empty, non-error
// result; k is clamped to the index size. k <= 0 is a caller error.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != ix.cfg.Dim {
		return nil, ErrDimMismatch
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.entry == -1 {
		return nil, nil
	}

	entry := ix.entry
	for l := ix.maxLevel; l >= 1; l-- {
		entry = ix.greedyDescend(entry, query, l)
	}

	result := ix.beamSearch(entry, query, ix.cfg.EfSearch, 0)
	ordered := result.Ordered()
	if k > len(ordered) {
		k = len(ordered)
	}
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{ID: ix.nodes[ordered[i].ID].id, Dist: ordered[i].Dist}
	}
	return out, nil
}

// Build is a no-op: the graph is always query-ready after Insert.
func (ix *Index) Build() error { return nil }

func (ix *Index) Dimension() int { return ix.cfg.Dim }

func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.nodes)
}

func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.nodes = nil
	ix.idToInternal = nil
	ix.entry = -1
	return nil
}
