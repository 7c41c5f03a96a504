// Package quant implements the per-cluster residual quantizers IVF
// cluster back-ends use to compress vectors once a cluster is closed
// for training: the scalar quantizer (fixed-point codes against a
// cluster-local value range) and the product quantizer (per-subspace
// codebooks trained with k-means).
package quant

import "fmt"

// CodeWidth selects the on-disk representation a scalar quantizer
// packs each quantized component into.
type CodeWidth int

const (
	I8 CodeWidth = iota
	F16
	BF16
	F32
)

// Size returns the number of bytes one quantized component occupies.
func (w CodeWidth) Size() int {
	switch w {
	case I8:
		return 1
	case F16, BF16:
		return 2
	case F32:
		return 4
	default:
		return 0
	}
}

// typeMax mirrors the original's std::numeric_limits<T>::max(): the
// largest magnitude the width's representation can hold, which sets
// the fixed-point scale. For i8 this is the integer max (127); for the
// float widths it is the representation's max finite value, so all
// widths run through the same formula as i8. The round-trip error is
// set by how many significand bits the width keeps: f32 is effectively
// lossless, while f16 (11 bits) and bf16 (8 bits) lose a small fraction
// of the cluster's value range.
func (w CodeWidth) typeMax() float64 {
	switch w {
	case I8:
		return 127
	case F16:
		return 65504
	case BF16:
		return 3.38953139e38
	case F32:
		return 3.4028234663852886e38
	default:
		return 1
	}
}

func (w CodeWidth) String() string {
	switch w {
	case I8:
		return "i8"
	case F16:
		return "f16"
	case BF16:
		return "bf16"
	case F32:
		return "f32"
	default:
		return "unknown"
	}
}

func ParseCodeWidth(s string) (CodeWidth, error) {
	switch s {
	case "i8":
		return I8, nil
	case "f16":
		return F16, nil
	case "bf16":
		return BF16, nil
	case "f32":
		return F32, nil
	default:
		return 0, fmt.Errorf("quant: unknown code width %q", s)
	}
}
