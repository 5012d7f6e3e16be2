package attack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"advlin/dataset"
	"advlin/linear"
	"advlin/perturb"
)

// Hyperplane x1 = 2; the point (1,1) sits at signed distance -1.
func fixedModel() *linear.Model {
	return linear.NewWithWeights([]float64{1, 0}, -2)
}

func TestBoundary(t *testing.T) {
	clf := fixedModel()

	ex, err := Boundary(clf, []float64{1, 1})
	require.NoError(t, err)

	require.Equal(t, []float64{1, 1}, ex.Original)
	require.InDelta(t, 2, ex.Adversarial[0], 1e-12)
	require.InDelta(t, 1, ex.Adversarial[1], 1e-12)
	require.InDelta(t, -1, ex.Distance, 1e-12)

	// On the hyperplane the model is maximally uncertain.
	require.InDelta(t, 0.5, ex.AdversarialConfidence, 1e-12)

	z, err := clf.Decision(ex.Adversarial)
	require.NoError(t, err)
	require.InDelta(t, 0, z, 1e-12)
}

func TestFlip(t *testing.T) {
	clf := fixedModel()

	ex, err := Flip(clf, []float64{1, 1})
	require.NoError(t, err)

	require.True(t, ex.Flipped)
	require.Equal(t, -1.0, ex.OriginalLabel)
	require.Equal(t, 1.0, ex.AdversarialLabel)
	require.InDelta(t, 2.3, ex.Adversarial[0], 1e-12)

	// The new side of the boundary is held with confidence above 0.5.
	require.Greater(t, ex.AdversarialConfidence, 0.5)
}

func TestPerturbationParallelToWeights(t *testing.T) {
	clf := linear.NewWithWeights([]float64{3, -1, 2}, 0.7)

	ex, err := Flip(clf, []float64{0.2, -0.4, 1.1})
	require.NoError(t, err)

	w, _ := clf.Weights()
	c := ex.Perturbation[0] / w[0]
	for i := range w {
		require.InDelta(t, c*w[i], ex.Perturbation[i], 1e-12)
	}

	for i := range ex.Original {
		require.InDelta(t, ex.Original[i]+ex.Perturbation[i], ex.Adversarial[i], 1e-12)
	}
}

func TestSweep(t *testing.T) {
	clf := fixedModel()

	examples, err := Sweep(clf, []float64{1, 1}, []float64{0.5, 1.0, 1.3, 2.0})
	require.NoError(t, err)
	require.Len(t, examples, 4)

	// alpha < 1 stays on the original side, alpha > 1 flips.
	require.False(t, examples[0].Flipped)
	require.True(t, examples[2].Flipped)
	require.True(t, examples[3].Flipped)

	// Larger alpha means larger displacement.
	require.Less(t,
		floats.Norm(examples[2].Perturbation, 2),
		floats.Norm(examples[3].Perturbation, 2))
}

func TestCraftDegenerateModel(t *testing.T) {
	clf := linear.NewWithWeights([]float64{0, 0}, 1)
	_, err := Craft(clf, []float64{1, 1}, 1)
	require.ErrorIs(t, err, perturb.ErrDegenerateWeights)
}

func TestCraftDimensionMismatch(t *testing.T) {
	clf := fixedModel()
	_, err := Craft(clf, []float64{1, 2, 3}, 1)
	var dimErr perturb.DimensionError
	require.ErrorAs(t, err, &dimErr)
}

// End to end: train on separable blobs, then flip a test point that the
// model classifies correctly and confidently.
func TestFlipTrainedModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	train := make(dataset.Lines, 0, 200)
	for i := 0; i < 100; i++ {
		train = append(train,
			dataset.Line{Inputs: []float64{1.5 + rng.NormFloat64()*0.3, rng.NormFloat64() * 0.3}, Label: 1},
			dataset.Line{Inputs: []float64{-1.5 + rng.NormFloat64()*0.3, rng.NormFloat64() * 0.3}, Label: -1},
		)
	}

	model := linear.New(2)
	require.NoError(t, model.Fit(train, linear.Config{LearningRate: 0.5, Iterations: 200}))

	x := []float64{1.5, 0}
	label, err := model.Predict(x)
	require.NoError(t, err)
	require.Equal(t, 1.0, label)

	ex, err := Flip(model, x)
	require.NoError(t, err)
	require.True(t, ex.Flipped)
	require.Equal(t, -1.0, ex.AdversarialLabel)

	// Boundary projection of the same point is maximally uncertain.
	bex, err := Boundary(model, x)
	require.NoError(t, err)
	require.InDelta(t, 0.5, bex.AdversarialConfidence, 1e-9)
}
