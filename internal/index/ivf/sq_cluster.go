package ivf

import (
	"github.com/alpvec/annlib/internal/distance"
	"github.com/alpvec/annlib/internal/quant"
	"github.com/alpvec/annlib/internal/topk"
)

// sqCluster buffers raw member vectors until Train, then keeps only
// their scalar-quantized codes.
type sqCluster struct {
	centroid  []float32
	metric    distance.Metric
	quantizer *quant.ScalarQuantizer

	ids     []int64
	pending [][]float32 // cleared once trained
	codes   [][]byte
}

func NewSQCluster(centroid []float32, metric distance.Metric, width quant.CodeWidth) *sqCluster {
	return &sqCluster{
		centroid:  centroid,
		metric:    metric,
		quantizer: quant.NewScalarQuantizer(width, len(centroid), centroid),
	}
}

func (c *sqCluster) Centroid() []float32 { return c.centroid }

func (c *sqCluster) Add(id int64, vec []float32) {
	c.ids = append(c.ids, id)
	c.pending = append(c.pending, vec)
}

func (c *sqCluster) Train(seed int64) error {
	if err := c.quantizer.Train(c.pending); err != nil {
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

func (c *sqCluster) Predict(k int, query []float32) *topk.Queue[Candidate] {
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

func (c *sqCluster) Size() int { return len(c.ids) }
