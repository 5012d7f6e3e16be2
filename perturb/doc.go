// Package perturb computes adversarial perturbations for linear
// classifiers in closed form.
//
// A linear classifier with weight vector w and bias b separates its two
// classes by the hyperplane w·x + b = 0. Project moves an input x along
// w by a multiple alpha of its signed distance to that hyperplane:
//
//	x' = x - alpha * (w·x + b) / (w·w) * w
//
// With alpha = 1 the result lies exactly on the decision boundary, where
// a two-class logistic model assigns equal probability to both classes.
// With alpha > 1 the result lands on the opposite side of the boundary,
// flipping the predicted class while perturbing every pixel by an amount
// that is imperceptible for high-dimensional image inputs.
package perturb
