package linear

import (
	"encoding/json"
	"fmt"
	"os"
)

const weightsVersion = "1"

// modelFile is the JSON layout of a saved model.
type modelFile struct {
	Version string    `json:"version"`
	Dim     int       `json:"dim"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Save writes the model parameters to a JSON file.
func (m *Model) Save(path string) error {
	w, b := m.Weights()
	data, err := json.MarshalIndent(modelFile{
		Version: weightsVersion,
		Dim:     len(w),
		Weights: w,
		Bias:    b,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling weights: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a model saved with Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weights file: %w", err)
	}
	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("unmarshalling weights: %w", err)
	}
	if mf.Version != weightsVersion {
		return nil, fmt.Errorf("unsupported weights version %q", mf.Version)
	}
	if mf.Dim != len(mf.Weights) {
		return nil, fmt.Errorf("weights file claims %d features but holds %d", mf.Dim, len(mf.Weights))
	}
	return NewWithWeights(mf.Weights, mf.Bias), nil
}
