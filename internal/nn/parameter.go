package nn

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// Parameter is a trainable tensor in a neural network: a weight or a bias
// that the optimizer updates from its gradient.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad() // nil until a backward pass ran
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter wraps an initialized tensor as a trainable parameter.
// The gradient slot starts empty and is filled after a backward pass.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil if no backward pass has run
// since the last ZeroGrad.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad stores the gradient computed during a backward pass.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad discards the stored gradient. Called before each training step
// so gradients from the previous batch never leak into the next update.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
