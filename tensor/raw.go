// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// RawTensor is the low-level, type-erased tensor: a byte buffer plus
// shape, strides, dtype and device. Backends and the autodiff tape work
// at this level; most user code works with Tensor[T, B] instead.
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-initialized RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}
