package model

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// probabilityTolerance absorbs float rounding in model output above 1.0
const probabilityTolerance = 1e-6

// ProbabilityVector holds one probability per class label, in taxonomy order.
// The values do not have to sum to exactly 1.
type ProbabilityVector []float64

// Validate checks the vector against the expected class count. A vector with
// no positive value is degenerate and rejected.
func (p ProbabilityVector) Validate(size int) error {
	if len(p) != size {
		return goerr.Wrap(ErrInvalidInput, "probability vector length does not match class count",
			goerr.V(ExpectedKey, size), goerr.V(ActualKey, len(p)))
	}

	positive := false
	for i, v := range p {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return goerr.Wrap(ErrInvalidInput, "probability is not a finite number", goerr.V(IndexKey, i))
		case v < 0:
			return goerr.Wrap(ErrInvalidInput, "probability is negative", goerr.V(IndexKey, i), goerr.V(ValueKey, v))
		case v > 1+probabilityTolerance:
			return goerr.Wrap(ErrInvalidInput, "probability is greater than 1", goerr.V(IndexKey, i), goerr.V(ValueKey, v))
		case v > 0:
			positive = true
		}
	}

	if !positive {
		return goerr.Wrap(ErrInvalidInput, "probability vector has no positive value")
	}

	return nil
}

// ArgMax returns the index and value of the largest probability. Ties resolve to
// the lowest index. The vector must not be empty.
func (p ProbabilityVector) ArgMax() (int, float64) {
	idx, top := 0, p[0]
	for i := 1; i < len(p); i++ {
		if p[i] > top {
			idx, top = i, p[i]
		}
	}
	return idx, top
}

// SumAt returns the sum of the probabilities at the given indices
func (p ProbabilityVector) SumAt(indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += p[i]
	}
	return sum
}
