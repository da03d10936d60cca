// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks: layers, activations,
// loss criteria and containers.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*autodiff.Backend[*cpu.CPUBackend]](),
//	    nn.NewLinear(128, 10, backend),
//	)
//	criterion := nn.NewCrossEntropyLoss(backend)
package nn

import (
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Module is the common interface for all neural network components.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a trainable tensor with a gradient slot.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter wraps an initialized tensor as a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear is a fully connected layer computing y = x @ W.T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier-initialized weights and
// zero biases.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Activations

// ReLU applies max(0, x) element-wise.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// LogSoftmax maps raw scores to log-probabilities along the class
// dimension. Pair with NLLLoss.
type LogSoftmax[B tensor.Backend] = nn.LogSoftmax[B]

// NewLogSoftmax creates a LogSoftmax output module.
func NewLogSoftmax[B tensor.Backend]() *LogSoftmax[B] {
	return nn.NewLogSoftmax[B]()
}

// Containers

// Sequential chains modules so each output feeds the next input.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container from the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Loss criteria

// CrossEntropyLoss is the fused softmax + NLL criterion over raw logits.
type CrossEntropyLoss[B tensor.Backend] = nn.CrossEntropyLoss[B]

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return nn.NewCrossEntropyLoss(backend)
}

// NLLLoss is the negative-log-likelihood criterion over log-probabilities
// produced by a LogSoftmax output module.
type NLLLoss[B tensor.Backend] = nn.NLLLoss[B]

// NewNLLLoss creates a negative-log-likelihood criterion.
func NewNLLLoss[B tensor.Backend](backend B) *NLLLoss[B] {
	return nn.NewNLLLoss(backend)
}

// Initialization

// Xavier initializes a weight tensor with the Glorot uniform distribution.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// Metrics

// Accuracy returns the fraction of rows whose argmax matches the target.
func Accuracy[B tensor.Backend](scores *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) float64 {
	return nn.Accuracy(scores, targets)
}
