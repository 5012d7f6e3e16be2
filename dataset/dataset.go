// Package dataset loads MNIST-style CSV data and prepares the two-class
// subsets the linear attack is run against.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
)

// Line is a single labelled sample: the flattened pixel intensities and
// the label. After FilterBinary the label is +1 or -1; straight out of
// ReadCSV it is the digit value.
type Line struct {
	Inputs []float64
	Label  float64
}

type Lines []Line

// ReadCSV reads MNIST CSV records: the first value in each row is the
// digit label, the rest are pixel intensities in [0, 255]. Pixels are
// scaled to [0.01, 1.0] so no input is exactly zero.
func ReadCSV(reader io.Reader, inputNum int) (Lines, error) {
	var lines Lines
	r := csv.NewReader(bufio.NewReader(reader))
	lineNum := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		lineNum++
		if len(record) != inputNum+1 {
			return nil, errInvalidLine{
				lineNum:  lineNum,
				splits:   len(record),
				expected: inputNum + 1,
			}
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("parsing label at line %d: %w", lineNum, err)
		}

		inputs := make([]float64, inputNum)
		for i := range inputs {
			x, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing input at line %d: %w", lineNum, err)
			}
			inputs[i] = (x / 255.0 * 0.99) + 0.01
		}

		lines = append(lines, Line{Inputs: inputs, Label: float64(label)})
	}

	return lines, nil
}

// ReadFile is ReadCSV on a file path.
func ReadFile(filename string, inputNum int) (Lines, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer file.Close()
	lines, err := ReadCSV(file, inputNum)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return lines, nil
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

// FilterBinary keeps only the two requested digit classes and relabels
// them +1 (pos) and -1 (neg). Input slices are shared, not copied.
func FilterBinary(lines Lines, pos, neg int) Lines {
	var out Lines
	for _, line := range lines {
		switch int(line.Label) {
		case pos:
			out = append(out, Line{Inputs: line.Inputs, Label: 1})
		case neg:
			out = append(out, Line{Inputs: line.Inputs, Label: -1})
		}
	}
	return out
}

// Split shuffles lines with rng and splits them into train and test
// sets, with testFrac of the samples going to the test set.
func Split(lines Lines, testFrac float64, rng *rand.Rand) (train, test Lines) {
	shuffled := make(Lines, len(lines))
	for i, j := range rng.Perm(len(lines)) {
		shuffled[i] = lines[j]
	}
	n := int(float64(len(shuffled)) * testFrac)
	return shuffled[n:], shuffled[:n]
}

// Mean returns the per-feature mean over all lines.
func Mean(lines Lines) []float64 {
	if len(lines) == 0 {
		return nil
	}
	mean := make([]float64, len(lines[0].Inputs))
	for _, line := range lines {
		for i, x := range line.Inputs {
			mean[i] += x
		}
	}
	for i := range mean {
		mean[i] /= float64(len(lines))
	}
	return mean
}

// StdDev returns the per-feature population standard deviation.
func StdDev(lines Lines) []float64 {
	if len(lines) == 0 {
		return nil
	}
	mean := Mean(lines)
	std := make([]float64, len(lines[0].Inputs))
	for _, line := range lines {
		for i, x := range line.Inputs {
			diff := x - mean[i]
			std[i] += diff * diff
		}
	}
	for i := range std {
		std[i] = math.Sqrt(std[i] / float64(len(lines)))
	}
	return std
}

// Standardize returns a copy of lines with each feature shifted by mean
// and divided by std. Features with zero deviation are only shifted.
func Standardize(lines Lines, mean, std []float64) Lines {
	out := make(Lines, len(lines))
	for i, line := range lines {
		inputs := make([]float64, len(line.Inputs))
		for j, x := range line.Inputs {
			if std[j] == 0 {
				inputs[j] = x - mean[j]
				continue
			}
			inputs[j] = (x - mean[j]) / std[j]
		}
		out[i] = Line{Inputs: inputs, Label: line.Label}
	}
	return out
}
