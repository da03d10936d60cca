package ops

import "github.com/ember-ml/ember/internal/tensor"

// reduceBroadcast sums a gradient along the dimensions that were broadcast
// in the forward pass, so the result matches the original input shape.
//
// Example: bias add broadcasts [1, n] across [batch, n]; the bias gradient
// is the output gradient summed over the batch dimension back to [1, n].
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	// Collapse leading dimensions the target does not have.
	for len(grad.Shape()) > len(targetShape) {
		grad = backend.SumDim(grad, 0, false)
	}

	// Sum dimensions where the target is 1 but the gradient is larger.
	for dim, size := range targetShape {
		if size == 1 && grad.Shape()[dim] != 1 {
			grad = backend.SumDim(grad, dim, true)
		}
	}
	return grad
}

// zerosLike allocates a zero gradient with the same shape and dtype as t.
func zerosLike(t *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(err)
	}
	return out
}
