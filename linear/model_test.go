package linear

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"advlin/dataset"
)

// two well-separated gaussian blobs in 2D
func blobs(n int, rng *rand.Rand) dataset.Lines {
	lines := make(dataset.Lines, 0, 2*n)
	for i := 0; i < n; i++ {
		lines = append(lines, dataset.Line{
			Inputs: []float64{2 + rng.NormFloat64()*0.5, 2 + rng.NormFloat64()*0.5},
			Label:  1,
		})
		lines = append(lines, dataset.Line{
			Inputs: []float64{-2 + rng.NormFloat64()*0.5, -2 + rng.NormFloat64()*0.5},
			Label:  -1,
		})
	}
	return lines
}

func TestFitSeparatesBlobs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	train := blobs(100, rng)
	test := blobs(50, rng)

	model := New(2)
	err := model.Fit(train, Config{LearningRate: 0.5, Iterations: 300})
	require.NoError(t, err)

	acc, err := model.Accuracy(test)
	require.NoError(t, err)
	require.Greater(t, acc, 0.95, "separable blobs should be nearly perfectly classified")

	// Loss should have dropped well below the chance level log(2).
	require.Less(t, model.Loss(train), 0.3)
}

func TestFitRejectsBadInput(t *testing.T) {
	model := New(2)

	err := model.Fit(nil, Config{LearningRate: 0.1, Iterations: 10})
	require.Error(t, err)

	err = model.Fit(dataset.Lines{{Inputs: []float64{1}, Label: 1}},
		Config{LearningRate: 0.1, Iterations: 10})
	require.Error(t, err)

	err = model.Fit(dataset.Lines{{Inputs: []float64{1, 2}, Label: 0.5}},
		Config{LearningRate: 0.1, Iterations: 10})
	require.Error(t, err)

	err = model.Fit(dataset.Lines{{Inputs: []float64{1, 2}, Label: 1}},
		Config{LearningRate: 0, Iterations: 10})
	require.Error(t, err)
}

func TestDecisionAndPredict(t *testing.T) {
	// Hyperplane x1 = 2.
	model := NewWithWeights([]float64{1, 0}, -2)

	z, err := model.Decision([]float64{1, 1})
	require.NoError(t, err)
	require.InDelta(t, -1, z, 1e-12)

	pred, err := model.Predict([]float64{1, 1})
	require.NoError(t, err)
	require.Equal(t, -1.0, pred)

	pred, err = model.Predict([]float64{3, 1})
	require.NoError(t, err)
	require.Equal(t, 1.0, pred)

	pos, neg, err := model.PredictProba([]float64{2, 9})
	require.NoError(t, err)
	require.InDelta(t, 0.5, pos, 1e-12)
	require.InDelta(t, 0.5, neg, 1e-12)

	_, err = model.Decision([]float64{1})
	require.Error(t, err)
}

func TestWeightsAreCopies(t *testing.T) {
	model := NewWithWeights([]float64{1, 2}, 3)
	w, b := model.Weights()
	w[0] = 99

	w2, _ := model.Weights()
	require.Equal(t, 1.0, w2[0])
	require.Equal(t, 3.0, b)
}

func TestInputGradientParallelToWeights(t *testing.T) {
	model := NewWithWeights([]float64{2, -1}, 0.5)
	grad, err := model.InputGradient([]float64{1, 1}, 1)
	require.NoError(t, err)
	require.InDelta(t, grad[0]/2, grad[1]/-1, 1e-12)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	model := NewWithWeights([]float64{0.25, -1.5, 3}, -0.75)
	path := filepath.Join(t.TempDir(), "weights.json")

	require.NoError(t, model.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	w, b := loaded.Weights()
	require.Equal(t, []float64{0.25, -1.5, 3}, w)
	require.Equal(t, -0.75, b)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, writeFile(path, `{"version":"1","dim":3,"weights":[1,2],"bias":0}`))
	_, err := Load(path)
	require.Error(t, err)

	require.NoError(t, writeFile(path, `{"version":"2","dim":1,"weights":[1],"bias":0}`))
	_, err = Load(path)
	require.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
