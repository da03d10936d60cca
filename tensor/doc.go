// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for the Ember ML
// framework.
//
// # Overview
//
// Tensors are the fundamental data structure in Ember. This package
// provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting for element-wise operations
//   - A Backend interface for pluggable compute implementations
//
// # Basic Usage
//
//	import (
//	    "github.com/ember-ml/ember/tensor"
//	    "github.com/ember-ml/ember/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    z := x.Add(y)
//	    result := x.MatMul(y.Transpose())
//	}
//
// # Supported Data Types
//
// The DType constraint covers float32, float64, int32, int64 and uint8.
// Training runs on float32; int32 carries class labels; uint8 holds raw
// image bytes before normalization.
package tensor
