package autodiff

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// BackwardCapable is satisfied by backends that carry a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	Tape() *GradientTape
}

// Backward computes gradients of a single-element loss tensor with respect
// to every tensor recorded on the backend's tape.
//
// It seeds the backward pass with a gradient of ones, which is the
// derivative of the loss with respect to itself.
func Backward[T tensor.DType, B BackwardCapable](loss *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	seed := OnesLike(loss.Raw())
	return backend.Tape().Backward(seed, backend)
}

// OnesLike allocates a gradient seed of ones with t's shape and dtype.
func OnesLike(t *tensor.RawTensor) *tensor.RawTensor {
	seed, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(err)
	}
	switch t.DType() {
	case tensor.Float32:
		data := seed.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := seed.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		panic("autodiff: gradient seed requires a float tensor")
	}
	return seed
}
