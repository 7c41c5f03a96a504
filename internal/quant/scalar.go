package quant

import (
	"github.com/alpvec/annlib/internal/distance"
)

// ScalarQuantizer compresses the vectors of a single IVF cluster: each
// member is first residualized against the cluster centroid, then each
// dimension is quantized independently against a per-cluster min/max
// range captured at train time (I5). Training and decoding both
// operate in residual space; Encode/Decode and DistanceToQuery take
// care of the centroid shift so callers only ever see absolute
// coordinates.
type ScalarQuantizer struct {
	width    CodeWidth
	dim      int
	centroid []float32
	mm       minmax
	diff     float64
	trained  bool
}

func NewScalarQuantizer(width CodeWidth, dim int, centroid []float32) *ScalarQuantizer {
	return &ScalarQuantizer{width: width, dim: dim, centroid: centroid}
}

func (q *ScalarQuantizer) IsTrained() bool { return q.trained }

// Train computes the per-cluster min/max range over this cluster's
// residual vectors (raw member vectors minus the centroid). The raw
// residuals themselves are not retained by the quantizer.
func (q *ScalarQuantizer) Train(members [][]float32) error {
	if len(members) == 0 {
		return newError(ErrTrainingDataInsufficient, "scalar", "train", "no members to train on")
	}
	residuals := make([][]float32, len(members))
	for i, v := range members {
		residuals[i] = residual(v, q.centroid)
	}
	q.mm = computeMinmax(residuals, q.dim)
	q.diff = q.mm.diff()
	q.trained = true
	return nil
}

// Encode quantizes vector (in absolute coordinates) into a packed byte
// code.
func (q *ScalarQuantizer) Encode(vector []float32) ([]byte, error) {
	if !q.trained {
		return nil, newError(ErrNotTrained, "scalar", "encode", "quantizer not trained")
	}
	if len(vector) != q.dim {
		return nil, newError(ErrDimensionMismatch, "scalar", "encode", "vector dimension mismatch")
	}
	res := residual(vector, q.centroid)
	code := make([]byte, 0, q.dim*q.width.Size())
	for i := 0; i < q.dim; i++ {
		code = packComponent(code, clamp2T(res[i], q.mm, q.diff, q.width), q.width)
	}
	return code, nil
}

// Decode reconstructs an approximate absolute-coordinate vector from a
// packed code.
func (q *ScalarQuantizer) Decode(code []byte) ([]float32, error) {
	if !q.trained {
		return nil, newError(ErrNotTrained, "scalar", "decode", "quantizer not trained")
	}
	step := q.width.Size()
	if len(code) != q.dim*step {
		return nil, newError(ErrDimensionMismatch, "scalar", "decode", "code length mismatch")
	}
	out := make([]float32, q.dim)
	for i := 0; i < q.dim; i++ {
		qv := unpackComponent(code, i*step, q.width)
		out[i] = clampT2(qv, q.mm, q.diff, q.width) + q.centroid[i]
	}
	return out, nil
}

// DistanceToQuery dequantizes code back to absolute coordinates and
// computes its distance to query under metric. The query itself is
// never quantized.
func (q *ScalarQuantizer) DistanceToQuery(query []float32, code []byte, metric distance.Metric) (float32, error) {
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

func residual(v, centroid []float32) []float32 {
	out := make([]float32, len(v))
	for i := range v {
		out[i] = v[i] - centroid[i]
	}
	return out
}
