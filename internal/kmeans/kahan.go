package kmeans

// kahanAverage keeps a running per-dimension mean using Kahan
// compensated summation, so training many points into one centroid
// does not accumulate floating-point drift the way a naive
// sum-then-divide would over a large cluster.
type kahanAverage struct {
	dim      int
	count    int
	mean     []float32
	residual []float32
}

func newKahanAverage(dim int) *kahanAverage {
	return &kahanAverage{
		dim:      dim,
		mean:     make([]float32, dim),
		residual: make([]float32, dim),
	}
}

func (k *kahanAverage) add(v []float32) {
	if k.count == 0 {
		copy(k.mean, v)
		k.count = 1
		return
	}
	n := float32(k.count + 1)
	for i := 0; i < k.dim; i++ {
		delta := (v[i] - k.mean[i]) / n
		y := delta - k.residual[i]
		t := k.mean[i] + y
		k.residual[i] = (t - k.mean[i]) - y
		k.mean[i] = t
	}
	k.count++
}

func (k *kahanAverage) reset() {
	for i := range k.mean {
		k.mean[i] = 0
		k.residual[i] = 0
	}
	k.count = 0
}
