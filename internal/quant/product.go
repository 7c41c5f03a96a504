package quant

import (
	"encoding/binary"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alpvec/annlib/internal/distance"
	"github.com/alpvec/annlib/internal/kmeans"
)

const defaultSubquantizerCentroids = 256

// ProductQuantizer compresses the vectors of a single IVF cluster by
// splitting the dimension into m contiguous chunks ("subspaces") and
// training an independent small k-means codebook (256 centroids, one
// byte per code) over each chunk's residuals against the cluster
// centroid. The last subspace absorbs any dimensional remainder.
//
// Codebook entries are trained in residual space but, because L2
// distance is translation-invariant, nearest-codebook assignment is
// identical whether vectors are compared in residual or absolute
// coordinates as long as both sides receive the same shift — so
// codebooks are shifted back into absolute coordinates immediately
// after training and Encode/Decode/DistanceToQuery operate on absolute
// vectors throughout, with no residual bookkeeping at call time.
type ProductQuantizer struct {
	m             int
	dim           int
	chunkSize     int
	lastChunkSize int
	centroid      []float32
	codebooks     [][][]float32 // [subspace][code][chunkDim], absolute space
	trained       bool

	tableCache *lru.Cache[string, *distanceTable]
}

type distanceTable struct {
	l2 [][]float32 // [subspace][code]
	ip [][]float32
}

func NewProductQuantizer(m, dim int, centroid []float32, cacheSize int) (*ProductQuantizer, error) {
	if m <= 0 {
		return nil, fmt.Errorf("quant: product quantizer m must be positive, got %d", m)
	}
	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, err := lru.New[string, *distanceTable](cacheSize)
	if err != nil {
		return nil, err
	}
	return &ProductQuantizer{
		m:          m,
		dim:        dim,
		chunkSize:  dim / m,
		centroid:   centroid,
		tableCache: cache,
	}, nil
}

func (q *ProductQuantizer) IsTrained() bool { return q.trained }

func (q *ProductQuantizer) chunkBounds(subspace int) (start, size int) {
	start = subspace * q.chunkSize
	if subspace == q.m-1 {
		return start, q.dim - start
	}
	return start, q.chunkSize
}

// Train fits one k-means codebook per subspace. Per spec, a cluster
// needs more than 8 members to train a product quantizer at all;
// callers with fewer members should fall back to a Flat or SQ back-end
// for that cluster instead.
func (q *ProductQuantizer) Train(members [][]float32, seed int64) error {
	if q.chunkSize == 0 {
		return newError(ErrNotSupported, "product", "train", "dimension smaller than subquantizer count")
	}
	if len(members) <= 8 {
		return newError(ErrTrainingDataInsufficient, "product", "train", "product quantization requires more than 8 cluster members")
	}

	q.codebooks = make([][][]float32, q.m)
	for s := 0; s < q.m; s++ {
		start, size := q.chunkBounds(s)
		chunks := make([][]float32, len(members))
		for i, v := range members {
			res := make([]float32, size)
			for d := 0; d < size; d++ {
				res[d] = v[start+d] - q.centroid[start+d]
			}
			chunks[i] = res
		}

		km, err := kmeans.New(kmeans.Config{
			K:      defaultSubquantizerCentroids,
			Dim:    size,
			Metric: distance.L2,
			Seed:   seed + int64(s),
		})
		if err != nil {
			return err
		}
		codebook, err := km.TrainPP(chunks)
		if err != nil {
			return err
		}

		for _, entry := range codebook {
			for d := 0; d < size; d++ {
				entry[d] += q.centroid[start+d]
			}
		}
		q.codebooks[s] = codebook
	}
	q.trained = true
	return nil
}

func (q *ProductQuantizer) Encode(vector []float32) ([]byte, error) {
	if !q.trained {
		return nil, newError(ErrNotTrained, "product", "encode", "quantizer not trained")
	}
	if len(vector) != q.dim {
		return nil, newError(ErrDimensionMismatch, "product", "encode", "vector dimension mismatch")
	}
	code := make([]byte, q.m)
	for s := 0; s < q.m; s++ {
		start, size := q.chunkBounds(s)
		chunk := vector[start : start+size]
		best, bestDist := 0, float32(0)
		for c, entry := range q.codebooks[s] {
			d := distance.L2Squared(chunk, entry)
			if c == 0 || d < bestDist {
				best, bestDist = c, d
			}
		}
		code[s] = byte(best)
	}
	return code, nil
}

func (q *ProductQuantizer) Decode(code []byte) ([]float32, error) {
	if !q.trained {
		return nil, newError(ErrNotTrained, "product", "decode", "quantizer not trained")
	}
	if len(code) != q.m {
		return nil, newError(ErrDimensionMismatch, "product", "decode", "code length mismatch")
	}
	out := make([]float32, 0, q.dim)
	for s := 0; s < q.m; s++ {
		out = append(out, q.codebooks[s][code[s]]...)
	}
	return out, nil
}

// DistanceToQuery computes the distance from the (unquantized) query to
// the vector code encodes. L2 and inner product use a per-query
// distance table, built once per distinct query and cached, then
// summed per subspace in O(m) instead of decoding the full vector;
// cosine decodes the full vector since its normalization isn't
// separable across subspaces.
func (q *ProductQuantizer) DistanceToQuery(query []float32, code []byte, metric distance.Metric) (float32, error) {
	if !q.trained {
		return 0, newError(ErrNotTrained, "product", "distance", "quantizer not trained")
	}
	switch metric {
	case distance.L2:
		table := q.tableFor(query)
		var sum float32
		for s, c := range code {
			sum += table.l2[s][c]
		}
		return sum, nil
	case distance.InnerProduct:
		table := q.tableFor(query)
		var sum float32
		for s, c := range code {
			sum += table.ip[s][c]
		}
		return -sum, nil
	default:
		vec, err := q.Decode(code)
		if err != nil {
			return 0, err
		}
		distFn, err := distance.For(metric)
		if err != nil {
			return 0, err
		}
		return distFn(query, vec), nil
	}
}

func (q *ProductQuantizer) tableFor(query []float32) *distanceTable {
	key := queryKey(query)
	if t, ok := q.tableCache.Get(key); ok {
		return t
	}
	table := &distanceTable{l2: make([][]float32, q.m), ip: make([][]float32, q.m)}
	for s := 0; s < q.m; s++ {
		start, size := q.chunkBounds(s)
		chunk := query[start : start+size]
		table.l2[s] = make([]float32, len(q.codebooks[s]))
		table.ip[s] = make([]float32, len(q.codebooks[s]))
		for c, entry := range q.codebooks[s] {
			table.l2[s][c] = distance.L2Squared(chunk, entry)
			table.ip[s][c] = distance.Dot(chunk, entry)
		}
	}
	q.tableCache.Add(key, table)
	return table
}

func queryKey(query []float32) string {
	buf := make([]byte, len(query)*4)
	for i, v := range query {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return string(buf)
}
