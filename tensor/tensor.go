// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// DType is the constraint for tensor element types.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU Device = tensor.CPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} is a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is the high-level generic tensor. T is the element type, B the
// compute backend.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// New wraps a RawTensor in a typed Tensor.
func New[T DType, B Backend](raw *RawTensor, backend B) *Tensor[T, B] {
	return tensor.New[T, B](raw, backend)
}

// FromSlice creates a tensor from a Go slice with the given shape.
func FromSlice[T DType, B Backend](data []T, shape Shape, backend B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, backend)
}

// Zeros creates a zero-filled tensor.
func Zeros[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, backend)
}

// Full creates a tensor filled with the given value.
func Full[T DType, B Backend](shape Shape, value T, backend B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, backend)
}

// Randn creates a float tensor with values drawn from N(0, 1).
func Randn[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, backend)
}

// BroadcastShapes computes the broadcast result shape for two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
