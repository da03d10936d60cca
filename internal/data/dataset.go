// Package data provides labeled datasets and mini-batch construction for
// training classifiers.
//
// A Dataset holds flattened float32 feature vectors with int32 class
// labels. Batches materializes it as mini-batch tensor pairs, and
// InMemorySource re-batches with a fresh shuffle every epoch.
package data

import (
	"fmt"
)

// Dataset holds labeled samples: flattened feature vectors and their class
// indices.
type Dataset struct {
	Inputs []([]float32) // [num_samples][features]
	Labels []int32       // [num_samples]
}

// NumSamples returns the total number of samples in the dataset.
func (d *Dataset) NumSamples() int {
	return len(d.Inputs)
}

// NumFeatures returns the per-sample feature count, or 0 for an empty
// dataset.
func (d *Dataset) NumFeatures() int {
	if len(d.Inputs) == 0 {
		return 0
	}
	return len(d.Inputs[0])
}

// Validate checks that inputs and labels line up and that every sample has
// the same feature count.
func (d *Dataset) Validate() error {
	if len(d.Inputs) != len(d.Labels) {
		return fmt.Errorf("data: %d inputs but %d labels", len(d.Inputs), len(d.Labels))
	}
	features := d.NumFeatures()
	for i, input := range d.Inputs {
		if len(input) != features {
			return fmt.Errorf("data: sample %d has %d features, want %d", i, len(input), features)
		}
	}
	return nil
}

// Split divides the dataset into train and validation sets, keeping the
// first (1-validationRatio) fraction for training. The returned datasets
// share backing arrays with the original.
func (d *Dataset) Split(validationRatio float32) (train, validation *Dataset) {
	splitIdx := int(float32(d.NumSamples()) * (1.0 - validationRatio))
	return &Dataset{
			Inputs: d.Inputs[:splitIdx],
			Labels: d.Labels[:splitIdx],
		}, &Dataset{
			Inputs: d.Inputs[splitIdx:],
			Labels: d.Labels[splitIdx:],
		}
}
