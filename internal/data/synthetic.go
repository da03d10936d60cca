package data

import (
	"math/rand"
)

// Synthetic generates a labeled dataset with class-dependent structure,
// for exercising the training pipeline without real data files.
//
// Each sample's features are Gaussian noise around a per-class mean
// pattern, so a linear model can separate the classes. The same seed
// produces the same dataset.
func Synthetic(numSamples, features, classes int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible synthetic data

	// One mean pattern per class.
	means := make([][]float32, classes)
	for c := range means {
		means[c] = make([]float32, features)
		for j := range means[c] {
			means[c][j] = float32(rng.NormFloat64())
		}
	}

	inputs := make([][]float32, numSamples)
	labels := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		c := i % classes
		labels[i] = int32(c)
		inputs[i] = make([]float32, features)
		for j := range inputs[i] {
			inputs[i][j] = means[c][j] + 0.3*float32(rng.NormFloat64())
		}
	}

	return &Dataset{Inputs: inputs, Labels: labels}
}
