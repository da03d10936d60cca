// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the epoch-driven training loop.
//
// Example:
//
//	trainer, err := train.New(model, criterion, optimizer, source, backend, train.Config{
//	    Epochs: 10,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stats, err := trainer.Run()
package train

import (
	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
	"github.com/ember-ml/ember/internal/train"
)

// Config holds training loop settings.
type Config = train.Config

// EpochStats summarizes one epoch of training.
type EpochStats = train.EpochStats

// Criterion computes a single-element loss from model output and targets.
type Criterion[B tensor.Backend] = train.Criterion[B]

// DataSource yields one epoch's mini-batches per call.
type DataSource[B tensor.Backend] = train.DataSource[B]

// Trainer drives the training loop over an autodiff-wrapped backend.
type Trainer[B tensor.Backend] = train.Trainer[B]

// New creates a Trainer.
func New[B tensor.Backend](
	model nn.Module[*autodiff.Backend[B]],
	criterion Criterion[*autodiff.Backend[B]],
	optimizer optim.Optimizer,
	source DataSource[*autodiff.Backend[B]],
	backend *autodiff.Backend[B],
	config Config,
) (*Trainer[B], error) {
	return train.New(model, criterion, optimizer, source, backend, config)
}
