// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// The package wraps any tensor backend with a gradient tape that records
// differentiable operations during the forward pass. Walking the tape in
// reverse yields gradients for every tensor that contributed to the loss.
//
// Example:
//
//	import (
//	    "github.com/ember-ml/ember/autodiff"
//	    "github.com/ember-ml/ember/backend/cpu"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    // ... forward pass producing a scalar loss ...
//
//	    grads := autodiff.Backward(loss, backend)
//	    backend.Tape().Clear()
//	}
package autodiff

import (
	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for reverse-mode differentiation.
type GradientTape = autodiff.GradientTape

// Backward computes gradients of a single-element loss with respect to
// every tensor recorded on the backend's tape, seeding with ones.
func Backward[T tensor.DType, B autodiff.BackwardCapable](loss *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(loss, backend)
}
