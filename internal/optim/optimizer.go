// Package optim implements optimization algorithms for training neural
// networks.
//
// Provided optimizers:
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation
//
// Design inspired by PyTorch's torch.optim, adapted for Go generics.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01}, backend)
//
//	for batch := range batches {
//	    optimizer.ZeroGrad()
//	    output := model.Forward(batch.Images)
//	    loss := criterion.Forward(output, batch.Labels)
//	    grads := autodiff.Backward(loss, backend)
//	    optimizer.Step(grads)
//	}
package optim

import (
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in-place, reading
	// each parameter's gradient from the map produced by a backward pass.
	// Parameters absent from the map are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients. Call before each forward
	// pass so gradients never accumulate across batches.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration shared by all optimizers.
type Config struct {
	LR float32
}

// getGradient retrieves the gradient for a parameter, or nil if the
// parameter did not participate in the recorded computation.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
