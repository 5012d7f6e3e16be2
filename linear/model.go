// Package linear trains and evaluates a two-class logistic-regression
// model over gonum vectors. It is the concrete classifier the attack
// package runs against.
package linear

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"advlin/dataset"
)

// Config holds the gradient-descent hyperparameters.
type Config struct {
	LearningRate float64
	Iterations   int
	L2           float64
	// LogEvery logs the training loss every N iterations; 0 disables it.
	LogEvery int
}

// Model is a linear classifier: score(x) = w·x + b, class = sign(score).
// Labels are +1 and -1. Once fitted the parameters are not mutated by
// any of the prediction methods.
type Model struct {
	weights *mat.VecDense
	bias    float64
}

// New returns a model with dim weights drawn uniformly from
// [-1/sqrt(dim), 1/sqrt(dim)] and zero bias.
func New(dim int) *Model {
	dist := distuv.Uniform{
		Min: -1 / math.Sqrt(float64(dim)),
		Max: 1 / math.Sqrt(float64(dim)),
	}
	data := make([]float64, dim)
	for i := range data {
		data[i] = dist.Rand()
	}
	return &Model{weights: mat.NewVecDense(dim, data)}
}

// NewWithWeights returns a model with the given parameters. The weight
// slice is copied.
func NewWithWeights(w []float64, b float64) *Model {
	data := append([]float64(nil), w...)
	return &Model{weights: mat.NewVecDense(len(data), data), bias: b}
}

// Dim returns the number of input features the model expects.
func (m *Model) Dim() int {
	return m.weights.Len()
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// logistic loss for a single sample with label y in {+1,-1}:
// log(1 + exp(-y*z)), computed without overflow for large |z|.
func logisticLoss(y, z float64) float64 {
	yz := y * z
	if yz < -30 {
		return -yz
	}
	return math.Log1p(math.Exp(-yz))
}

// Fit runs batch gradient descent on the logistic loss. Every line must
// have Dim() inputs and a +1 or -1 label.
func (m *Model) Fit(lines dataset.Lines, cfg Config) error {
	if len(lines) == 0 {
		return errors.New("linear: no training samples")
	}
	n := m.Dim()
	for i, line := range lines {
		if len(line.Inputs) != n {
			return fmt.Errorf("linear: sample %d has %d features, model expects %d", i, len(line.Inputs), n)
		}
		if line.Label != 1 && line.Label != -1 {
			return fmt.Errorf("linear: sample %d has label %v, expected +1 or -1", i, line.Label)
		}
	}
	if cfg.Iterations <= 0 {
		return errors.New("linear: iterations must be positive")
	}
	if cfg.LearningRate <= 0 {
		return errors.New("linear: learning rate must be positive")
	}

	count := float64(len(lines))
	grad := mat.NewVecDense(n, nil)
	for iter := 0; iter < cfg.Iterations; iter++ {
		grad.Zero()
		var gradBias float64
		for _, line := range lines {
			xi := mat.NewVecDense(n, line.Inputs)
			z := mat.Dot(xi, m.weights) + m.bias
			// d/dz log(1+exp(-y z)) = -y * sigmoid(-y z)
			g := -line.Label * sigmoid(-line.Label*z)
			grad.AddScaledVec(grad, g, xi)
			gradBias += g
		}
		grad.ScaleVec(1/count, grad)
		gradBias /= count
		if cfg.L2 > 0 {
			grad.AddScaledVec(grad, cfg.L2, m.weights)
		}

		m.weights.AddScaledVec(m.weights, -cfg.LearningRate, grad)
		m.bias -= cfg.LearningRate * gradBias

		if cfg.LogEvery > 0 && iter%cfg.LogEvery == 0 {
			slog.Debug("training", "iteration", iter, "loss", m.Loss(lines))
		}
	}

	return nil
}

// Loss returns the mean logistic loss over lines.
func (m *Model) Loss(lines dataset.Lines) float64 {
	var total float64
	for _, line := range lines {
		z, err := m.Decision(line.Inputs)
		if err != nil {
			return math.NaN()
		}
		total += logisticLoss(line.Label, z)
	}
	return total / float64(len(lines))
}

// Decision returns the raw score w·x + b.
func (m *Model) Decision(x []float64) (float64, error) {
	if len(x) != m.Dim() {
		return 0, fmt.Errorf("linear: input has %d features, model expects %d", len(x), m.Dim())
	}
	return mat.Dot(mat.NewVecDense(len(x), x), m.weights) + m.bias, nil
}

// PredictProba returns the class probabilities (P(+1), P(-1)).
func (m *Model) PredictProba(x []float64) (pos, neg float64, err error) {
	z, err := m.Decision(x)
	if err != nil {
		return 0, 0, err
	}
	p := sigmoid(z)
	return p, 1 - p, nil
}

// Predict returns +1 when the score is non-negative and -1 otherwise.
func (m *Model) Predict(x []float64) (float64, error) {
	z, err := m.Decision(x)
	if err != nil {
		return 0, err
	}
	if z >= 0 {
		return 1, nil
	}
	return -1, nil
}

// Weights returns a copy of the weight vector and the bias.
func (m *Model) Weights() ([]float64, float64) {
	out := make([]float64, m.Dim())
	copy(out, m.weights.RawVector().Data)
	return out, m.bias
}

// InputGradient returns the gradient of the logistic loss with respect
// to the input x for a sample labelled y. For a linear model this is a
// scalar multiple of the weight vector.
func (m *Model) InputGradient(x []float64, y float64) ([]float64, error) {
	z, err := m.Decision(x)
	if err != nil {
		return nil, err
	}
	g := -y * sigmoid(-y*z)
	out := make([]float64, m.Dim())
	for i, wi := range m.weights.RawVector().Data {
		out[i] = g * wi
	}
	return out, nil
}

// Accuracy returns the fraction of lines the model labels correctly.
func (m *Model) Accuracy(lines dataset.Lines) (float64, error) {
	if len(lines) == 0 {
		return 0, errors.New("linear: no samples to score")
	}
	var correct float64
	for _, line := range lines {
		pred, err := m.Predict(line.Inputs)
		if err != nil {
			return 0, err
		}
		if pred == line.Label {
			correct++
		}
	}
	return correct / float64(len(lines)), nil
}
