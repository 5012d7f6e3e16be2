// Package attack crafts adversarial examples against linear classifiers
// by projecting inputs onto, or past, the model's decision hyperplane.
package attack

import (
	"fmt"

	"advlin/perturb"
)

// Classifier is the capability the attack needs from a model: raw
// scores, class probabilities, hard labels, and the hyperplane itself.
// linear.Model implements it.
type Classifier interface {
	Decision(x []float64) (float64, error)
	PredictProba(x []float64) (pos, neg float64, err error)
	Predict(x []float64) (float64, error)
	Weights() ([]float64, float64)
}

// Alpha values for the two canonical invocations: project exactly onto
// the boundary, and overshoot far enough past it to flip the label with
// some confidence.
const (
	BoundaryAlpha = 1.0
	FlipAlpha     = 1.3
)

// Example is one crafted adversarial sample and how the classifier
// judged it before and after.
type Example struct {
	Original     []float64
	Adversarial  []float64
	Perturbation []float64
	Alpha        float64

	OriginalLabel    float64
	AdversarialLabel float64
	// Confidence is the probability of the predicted class.
	OriginalConfidence    float64
	AdversarialConfidence float64
	// Distance is the signed distance from the original input to the
	// decision hyperplane.
	Distance float64
	Flipped  bool
}

// Craft projects x with the given alpha and evaluates both points with
// the classifier.
func Craft(clf Classifier, x []float64, alpha float64) (*Example, error) {
	w, b := clf.Weights()

	adv, err := perturb.Project(x, w, b, alpha)
	if err != nil {
		return nil, fmt.Errorf("projecting input: %w", err)
	}
	dist, err := perturb.Distance(x, w, b)
	if err != nil {
		return nil, err
	}

	origLabel, err := clf.Predict(x)
	if err != nil {
		return nil, err
	}
	advLabel, err := clf.Predict(adv)
	if err != nil {
		return nil, err
	}

	origConf, err := confidence(clf, x)
	if err != nil {
		return nil, err
	}
	advConf, err := confidence(clf, adv)
	if err != nil {
		return nil, err
	}

	delta := make([]float64, len(x))
	for i := range x {
		delta[i] = adv[i] - x[i]
	}

	return &Example{
		Original:              append([]float64(nil), x...),
		Adversarial:           adv,
		Perturbation:          delta,
		Alpha:                 alpha,
		OriginalLabel:         origLabel,
		AdversarialLabel:      advLabel,
		OriginalConfidence:    origConf,
		AdversarialConfidence: advConf,
		Distance:              dist,
		Flipped:               origLabel != advLabel,
	}, nil
}

// Boundary projects x exactly onto the decision hyperplane, where the
// classifier's probabilities become 0.5/0.5.
func Boundary(clf Classifier, x []float64) (*Example, error) {
	return Craft(clf, x, BoundaryAlpha)
}

// Flip moves x past the hyperplane so the predicted label changes.
func Flip(clf Classifier, x []float64) (*Example, error) {
	return Craft(clf, x, FlipAlpha)
}

// Sweep crafts one example per alpha, in order.
func Sweep(clf Classifier, x []float64, alphas []float64) ([]*Example, error) {
	out := make([]*Example, 0, len(alphas))
	for _, a := range alphas {
		ex, err := Craft(clf, x, a)
		if err != nil {
			return nil, fmt.Errorf("alpha %v: %w", a, err)
		}
		out = append(out, ex)
	}
	return out, nil
}

func confidence(clf Classifier, x []float64) (float64, error) {
	pos, neg, err := clf.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if neg > pos {
		return neg, nil
	}
	return pos, nil
}
