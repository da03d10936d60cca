// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure-Go CPU compute backend.
//
// The backend implements the tensor.Backend interface with cache-blocked
// matrix multiplication (block size chosen from detected CPU features)
// and NumPy-style broadcasting for element-wise operations.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package cpu

import (
	"github.com/ember-ml/ember/internal/backend/cpu"
)

// CPUBackend is the CPU compute backend.
type CPUBackend = cpu.CPUBackend

// New creates a new CPU backend.
func New() *CPUBackend {
	return cpu.New()
}
