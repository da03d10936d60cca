package data

import (
	"fmt"
	"math/rand"

	"github.com/ember-ml/ember/internal/tensor"
)

// Batch is a mini-batch materialized as tensors: stacked feature vectors
// and their labels.
type Batch[B tensor.Backend] struct {
	Inputs *tensor.Tensor[float32, B] // [batch_size, features]
	Labels *tensor.Tensor[int32, B]   // [batch_size]
	Size   int
}

// Batches splits a dataset into mini-batch tensors.
//
// Every sample appears in exactly one batch; the last batch is smaller when
// the dataset size does not divide evenly. When shuffle is true, sample
// order is permuted with the given seed before batching, so the same seed
// reproduces the same batch sequence.
func Batches[B tensor.Backend](
	dataset *Dataset,
	batchSize int,
	shuffle bool,
	seed int64,
	backend B,
) ([]*Batch[B], error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("data: batch size must be positive, got %d", batchSize)
	}
	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	numSamples := dataset.NumSamples()
	features := dataset.NumFeatures()

	indices := make([]int, numSamples)
	for i := range indices {
		indices[i] = i
	}
	if shuffle {
		rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible batch order, not crypto
		rng.Shuffle(numSamples, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	numBatches := (numSamples + batchSize - 1) / batchSize
	batches := make([]*Batch[B], 0, numBatches)

	for start := 0; start < numSamples; start += batchSize {
		end := start + batchSize
		if end > numSamples {
			end = numSamples
		}
		size := end - start

		inputsRaw, err := tensor.NewRaw(tensor.Shape{size, features}, tensor.Float32, backend.Device())
		if err != nil {
			return nil, fmt.Errorf("failed to create inputs tensor: %w", err)
		}
		labelsRaw, err := tensor.NewRaw(tensor.Shape{size}, tensor.Int32, backend.Device())
		if err != nil {
			return nil, fmt.Errorf("failed to create labels tensor: %w", err)
		}

		inputsData := inputsRaw.AsFloat32()
		labelsData := labelsRaw.AsInt32()
		for j := start; j < end; j++ {
			idx := indices[j]
			copy(inputsData[(j-start)*features:(j-start+1)*features], dataset.Inputs[idx])
			labelsData[j-start] = dataset.Labels[idx]
		}

		batches = append(batches, &Batch[B]{
			Inputs: tensor.New[float32, B](inputsRaw, backend),
			Labels: tensor.New[int32, B](labelsRaw, backend),
			Size:   size,
		})
	}

	return batches, nil
}

// InMemorySource serves mini-batches from an in-memory dataset, reshuffling
// with a fresh permutation on every call so each epoch sees a different
// sample order. The per-epoch seeds derive deterministically from the
// source seed.
type InMemorySource[B tensor.Backend] struct {
	dataset   *Dataset
	batchSize int
	shuffle   bool
	seed      int64
	epoch     int64
	backend   B
}

// NewInMemorySource creates a batch source over the given dataset.
func NewInMemorySource[B tensor.Backend](dataset *Dataset, batchSize int, shuffle bool, seed int64, backend B) *InMemorySource[B] {
	return &InMemorySource[B]{
		dataset:   dataset,
		batchSize: batchSize,
		shuffle:   shuffle,
		seed:      seed,
		backend:   backend,
	}
}

// Batches returns the next epoch's mini-batches.
func (s *InMemorySource[B]) Batches() ([]*Batch[B], error) {
	epochSeed := s.seed + s.epoch
	s.epoch++
	return Batches(s.dataset, s.batchSize, s.shuffle, epochSeed, s.backend)
}

// NumSamples returns the size of the underlying dataset.
func (s *InMemorySource[B]) NumSamples() int {
	return s.dataset.NumSamples()
}
