package annlib

import "errors"

// Index construction and shape errors
var (
	ErrInvalidDimension = errors.New("annlib: invalid vector dimension")
	ErrInvalidK         = errors.New("annlib: k must be positive")
	ErrEmptyIndex       = errors.New("annlib: index is empty")
	ErrNotBuilt         = errors.New("annlib: index has not been built")
	ErrAlreadyBuilt     = errors.New("annlib: index has already been built")
	ErrDuplicateID      = errors.New("annlib: duplicate vector id")
	ErrClosed           = errors.New("annlib: index is closed")
)

// Quantization errors
var (
	ErrQuantizerNotTrained      = errors.New("annlib: quantizer not trained")
	ErrQuantizationNotSupported = errors.New("annlib: quantization operation not supported for this metric/config")
	ErrInsufficientTrainingData = errors.New("annlib: insufficient training data for quantizer")
)

// Registry errors
var (
	ErrIndexNotFound  = errors.New("annlib: named index not found")
	ErrIndexNameTaken = errors.New("annlib: index name already registered")
)

// sentinelCode maps annlib's own sentinel errors to a Status code, via
// errors.Is so wrapped errors still classify correctly.
func sentinelCode(err error) (Code, bool) {
	switch {
	case errors.Is(err, ErrIndexNotFound):
		return CodeNotFound, true
	case errors.Is(err, ErrInvalidDimension),
		errors.Is(err, ErrInvalidK),
		errors.Is(err, ErrDuplicateID),
		errors.Is(err, ErrIndexNameTaken),
		errors.Is(err, ErrEmptyIndex),
		errors.Is(err, ErrNotBuilt),
		errors.Is(err, ErrAlreadyBuilt),
		errors.Is(err, ErrClosed),
		errors.Is(err, ErrQuantizerNotTrained):
		return CodeInvalidArgument, true
	// spec.md §7: PQ training with too few samples, and quantization
	// operations unsupported for a metric/config, are both NotSupported
	// rather than InvalidArgument.
	case errors.Is(err, ErrQuantizationNotSupported), errors.Is(err, ErrInsufficientTrainingData):
		return CodeNotSupported, true
	default:
		return CodeOK, false
	}
}
