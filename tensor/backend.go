// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend is the interface compute implementations satisfy. Operations
// allocate fresh output tensors and never mutate their operands, which is
// what lets the autodiff tape reuse operand pointers as map keys.
type Backend = tensor.Backend
