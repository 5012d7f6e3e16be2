package perturb

import (
	"errors"
	"fmt"
)

// ErrDegenerateWeights reports a zero weight vector. The projection
// divides by w·w, so there is no hyperplane to project onto.
var ErrDegenerateWeights = errors.New("perturb: degenerate weight vector (w·w = 0)")

// DimensionError reports an input whose length does not match the
// classifier's weight vector.
type DimensionError struct {
	Got  int
	Want int
}

func (e DimensionError) Error() string {
	return fmt.Sprintf("perturb: input has %d features, weight vector has %d", e.Got, e.Want)
}
