// Package nn implements neural network modules.
//
// Building blocks for constructing networks:
//   - Module interface: base interface for all components
//   - Parameter: trainable tensors with gradient slots
//   - Linear: fully connected layer
//   - ReLU, LogSoftmax: activation and output modules
//   - CrossEntropyLoss, NLLLoss: classification criteria
//   - Sequential: container for stacking layers
//
// Design inspired by PyTorch's nn.Module, adapted for Go generics.
package nn

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into larger architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[Backend](),
//	    nn.NewLinear(128, 10, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the module's output for the given input.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// state (activations) return nil.
	Parameters() []*Parameter[B]
}
