package ivf

import (
	"github.com/alpvec/annlib/internal/distance"
	"github.com/alpvec/annlib/internal/quant"
	"github.com/alpvec/annlib/internal/topk"
)

const defaultPQCacheSize = 64

// pqCluster buffers raw member vectors until Train, then keeps only
// their product-quantized codes. Training fails with
// quant.ErrTrainingDataInsufficient when the cluster has too few
// members (spec requires more than 8); the IVF index surfaces that as
// a build-time error rather than silently falling back.
type pqCluster struct {
	centroid  []float32
	metric    distance.Metric
	quantizer *quant.ProductQuantizer

	ids     []int64
	pending [][]float32
	codes   [][]byte
}

func NewPQCluster(centroid []float32, metric distance.Metric, m int) (*pqCluster, error) {
	q, err := quant.NewProductQuantizer(m, len(centroid), centroid, defaultPQCacheSize)
	if err != nil {
		return nil, err
	}
	return &pqCluster{centroid: centroid, metric: metric, quantizer: q}, nil
}

func (c *pqCluster) Centroid() []float32 { return c.centroid }

func (c *pqCluster) Add(id int64, vec []float32) {
	c.ids = append(c.ids, id)
	c.pending = append(c.pending, vec)
}

func (c *pqCluster) Train(seed int64) error {
	if err := c.quantizer.Train(c.pending, seed); err != nil {
		return err
	}
	c.codes = make([][]byte, len(c.pending))
	for i, v := range c.pending {
		code, err := c.quantizer.Encode(v)
		if err != nil {
			return err
		}
		c.codes[i] = code
	}
	c.pending = nil
	return nil
}

func (c *pqCluster) Predict(k int, query []float32) *topk.Queue[Candidate] {
	q := newCandidateQueue(k)
	for i, code := range c.codes {
		d, err := c.quantizer.DistanceToQuery(query, code, c.metric)
		if err != nil {
			continue
		}
		q.PushValue(Candidate{ID: c.ids[i], Dist: d})
	}
	return q
}

func (c *pqCluster) Size() int { return len(c.ids) }
