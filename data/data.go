// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides labeled datasets and mini-batch construction.
//
// Example:
//
//	dataset, err := data.LoadMNIST("./data", true, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	train, val := dataset.Split(0.2)
//	source := data.NewInMemorySource(train, 64, true, 42, backend)
package data

import (
	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/tensor"
)

// Dataset holds labeled samples: feature vectors with class indices.
type Dataset = data.Dataset

// Batch is a mini-batch materialized as tensors.
type Batch[B tensor.Backend] = data.Batch[B]

// Batches splits a dataset into mini-batch tensors, optionally shuffling
// with the given seed.
func Batches[B tensor.Backend](dataset *Dataset, batchSize int, shuffle bool, seed int64, backend B) ([]*Batch[B], error) {
	return data.Batches(dataset, batchSize, shuffle, seed, backend)
}

// InMemorySource serves mini-batches with a fresh shuffle every epoch.
type InMemorySource[B tensor.Backend] = data.InMemorySource[B]

// NewInMemorySource creates a batch source over the given dataset.
func NewInMemorySource[B tensor.Backend](dataset *Dataset, batchSize int, shuffle bool, seed int64, backend B) *InMemorySource[B] {
	return data.NewInMemorySource(dataset, batchSize, shuffle, seed, backend)
}

// LoadMNIST loads the MNIST dataset from IDX binary files.
func LoadMNIST(dataDir string, train bool, maxSamples int) (*Dataset, error) {
	return data.LoadMNIST(dataDir, train, maxSamples)
}

// Synthetic generates a reproducible labeled dataset with class-dependent
// structure, for runs without real data files.
func Synthetic(numSamples, features, classes int, seed int64) *Dataset {
	return data.Synthetic(numSamples, features, classes, seed)
}
