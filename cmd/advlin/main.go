// advlin trains a two-digit logistic-regression model on MNIST CSV data
// and crafts hyperplane-projection adversarial examples against it.
//
// Usage:
//
//	advlin train -data mnist_train.csv -pos 3 -neg 7 -out weights.json
//	advlin attack -weights weights.json -data mnist_test.csv -index 0 -outdir out
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"

	"advlin/attack"
	"advlin/dataset"
	"advlin/enc"
	"advlin/linear"
	"advlin/render"
)

const (
	imageSide = 28
	inputNum  = imageSide * imageSide
)

func init() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "a command must be specified: train or attack")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "attack":
		err = runAttack(os.Args[2:])
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		slog.Error(os.Args[1] + ": " + err.Error())
		os.Exit(1)
	}
}

func runTrain(args []string) error {
	flags := flag.NewFlagSet("train", flag.ContinueOnError)
	flagData := flags.String("data", "./data/mnist_train.csv", "MNIST CSV training data")
	flagPos := flags.Int("pos", 3, "digit mapped to the +1 class")
	flagNeg := flags.Int("neg", 7, "digit mapped to the -1 class")
	flagRate := flags.Float64("rate", 0.1, "learning rate")
	flagIters := flags.Int("iters", 500, "gradient descent iterations")
	flagL2 := flags.Float64("l2", 0.001, "L2 penalty")
	flagTestFrac := flags.Float64("test", 0.2, "fraction of samples held out for testing")
	flagSeed := flags.Int64("seed", 42, "random seed for the train/test split")
	flagOut := flags.String("out", "weights.json", "output weights file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *flagPos == *flagNeg {
		return fmt.Errorf("pos and neg must be different digits")
	}

	lines, err := dataset.ReadFile(*flagData, inputNum)
	if err != nil {
		return err
	}
	binary := dataset.FilterBinary(lines, *flagPos, *flagNeg)
	if len(binary) == 0 {
		return fmt.Errorf("no samples with digits %d or %d in %s", *flagPos, *flagNeg, *flagData)
	}
	rng := rand.New(rand.NewSource(*flagSeed))
	train, test := dataset.Split(binary, *flagTestFrac, rng)
	slog.Info("loaded data", "total", len(binary), "train", len(train), "test", len(test))

	model := linear.New(inputNum)
	err = model.Fit(train, linear.Config{
		LearningRate: *flagRate,
		Iterations:   *flagIters,
		L2:           *flagL2,
		LogEvery:     100,
	})
	if err != nil {
		return err
	}

	trainAcc, err := model.Accuracy(train)
	if err != nil {
		return err
	}
	testAcc, err := model.Accuracy(test)
	if err != nil {
		return err
	}
	slog.Info("training complete", "train_accuracy", trainAcc, "test_accuracy", testAcc)

	if err := model.Save(*flagOut); err != nil {
		return err
	}
	slog.Info("saved weights", "path", *flagOut)
	return nil
}

func runAttack(args []string) error {
	flags := flag.NewFlagSet("attack", flag.ContinueOnError)
	flagWeights := flags.String("weights", "weights.json", "weights file written by train")
	flagData := flags.String("data", "./data/mnist_test.csv", "MNIST CSV data to pick the victim sample from")
	flagPos := flags.Int("pos", 3, "digit mapped to the +1 class")
	flagNeg := flags.Int("neg", 7, "digit mapped to the -1 class")
	flagIndex := flags.Int("index", 0, "index of the victim sample after filtering")
	flagAlpha := flags.Float64("alpha", attack.FlipAlpha, "overshoot factor for the flip attack")
	flagGain := flags.Float64("gain", 10, "amplification for the perturbation image")
	flagOutDir := flags.String("outdir", "out", "directory for the rendered PNGs")
	flagEncrypted := flags.Bool("encrypted", false, "also score both inputs under CKKS encryption")
	flagLogN := flags.Int("logN", 13, "CKKS ring degree log2 (with -encrypted)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	model, err := linear.Load(*flagWeights)
	if err != nil {
		return err
	}
	lines, err := dataset.ReadFile(*flagData, inputNum)
	if err != nil {
		return err
	}
	binary := dataset.FilterBinary(lines, *flagPos, *flagNeg)
	if *flagIndex < 0 || *flagIndex >= len(binary) {
		return fmt.Errorf("index %d out of range, have %d samples", *flagIndex, len(binary))
	}
	victim := binary[*flagIndex]

	boundary, err := attack.Boundary(model, victim.Inputs)
	if err != nil {
		return err
	}
	slog.Info("boundary projection",
		"true_label", victim.Label,
		"predicted", boundary.OriginalLabel,
		"confidence", boundary.OriginalConfidence,
		"distance", boundary.Distance,
		"boundary_confidence", boundary.AdversarialConfidence)

	flip, err := attack.Craft(model, victim.Inputs, *flagAlpha)
	if err != nil {
		return err
	}
	slog.Info("flip attack",
		"alpha", flip.Alpha,
		"flipped", flip.Flipped,
		"adversarial_label", flip.AdversarialLabel,
		"adversarial_confidence", flip.AdversarialConfidence)

	if *flagEncrypted {
		if err := scoreEncrypted(model, flip, *flagLogN); err != nil {
			return err
		}
	}

	return writeImages(*flagOutDir, flip, *flagGain)
}

// scoreEncrypted replays the decision function under CKKS to show the
// flip survives encrypted inference.
func scoreEncrypted(model *linear.Model, ex *attack.Example, logN int) error {
	slog.Info("initializing CKKS", "logN", logN)
	cs, err := enc.NewCryptoSystem(logN)
	if err != nil {
		return err
	}
	w, b := model.Weights()
	orig, err := cs.Decision(w, ex.Original, b)
	if err != nil {
		return err
	}
	adv, err := cs.Decision(w, ex.Adversarial, b)
	if err != nil {
		return err
	}
	slog.Info("encrypted scores", "original", orig, "adversarial", adv)
	return nil
}

func writeImages(dir string, ex *attack.Example, gain float64) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	orig, err := render.Gray(ex.Original, imageSide, imageSide)
	if err != nil {
		return err
	}
	delta, err := render.Diff(ex.Original, ex.Adversarial, imageSide, imageSide, gain)
	if err != nil {
		return err
	}
	adv, err := render.Gray(ex.Adversarial, imageSide, imageSide)
	if err != nil {
		return err
	}

	if err := render.SavePNG(filepath.Join(dir, "original.png"), orig); err != nil {
		return err
	}
	if err := render.SavePNG(filepath.Join(dir, "perturbation.png"), delta); err != nil {
		return err
	}
	if err := render.SavePNG(filepath.Join(dir, "adversarial.png"), adv); err != nil {
		return err
	}
	triptych := render.Triptych(4, orig, delta, adv)
	if err := render.SavePNG(filepath.Join(dir, "triptych.png"), triptych); err != nil {
		return err
	}
	slog.Info("wrote images", "dir", dir)
	return nil
}
