// Package autodiff implements automatic differentiation using the
// decorator pattern.
//
// Backend[B] wraps any tensor.Backend and records differentiable
// operations on a GradientTape during the forward pass. Walking the tape
// in reverse yields gradients for every tensor that contributed to the
// output (reverse-mode AD).
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	// ... forward pass, loss ...
//	grads := backend.Tape().Backward(seed, backend)
package autodiff

import (
	"github.com/ember-ml/ember/internal/autodiff/ops"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend wraps a tensor.Backend and adds gradient tracking.
type Backend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return &Backend[B]{inner: backend, tape: NewGradientTape()}
}

// Tape returns the gradient tape for manual control: starting and stopping
// recording, clearing between batches, inspecting recorded operations.
func (b *Backend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend.
func (b *Backend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *Backend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *Backend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Add performs element-wise addition and records the operation.
func (b *Backend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *Backend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *Backend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, result))
	return result
}

// Div performs element-wise division and records the operation.
func (b *Backend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, result))
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *Backend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, result))
	return result
}

// Reshape reshapes a tensor and records the operation, so gradients flow
// back to parameters that were reshaped for broadcasting (e.g. bias).
func (b *Backend[B]) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(x, newShape)
	b.tape.Record(ops.NewReshapeOp(x, result))
	return result
}

// Transpose transposes a tensor and records the operation. The backend
// materializes a new tensor for the transpose, so without recording, the
// gradient of a transposed weight would never reach the parameter.
func (b *Backend[B]) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Transpose(x)
	b.tape.Record(ops.NewTransposeOp(x, result))
	return result
}

// MulScalar multiplies by a scalar. Not recorded: scalar scaling appears
// only in gradient arithmetic and optimizer updates, never on the loss path.
func (b *Backend[B]) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return b.inner.MulScalar(x, scalar)
}

// AddScalar adds a scalar. Not recorded, same as MulScalar.
func (b *Backend[B]) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return b.inner.AddScalar(x, scalar)
}

// Exp computes the element-wise exponential and records the operation.
func (b *Backend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Exp(x)
	b.tape.Record(ops.NewExpOp(x, result))
	return result
}

// Log computes the element-wise logarithm and records the operation.
func (b *Backend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Log(x)
	b.tape.Record(ops.NewLogOp(x, result))
	return result
}

// ReLU applies the activation and records the operation.
func (b *Backend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.ReLU(x)
	b.tape.Record(ops.NewReLUOp(x, result))
	return result
}

// Softmax computes row-wise probabilities. Not recorded: it is an
// inference/reporting surface; training goes through LogSoftmax or the
// fused CrossEntropy.
func (b *Backend[B]) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Softmax(x)
}

// LogSoftmax computes row-wise log-probabilities and records the operation.
func (b *Backend[B]) LogSoftmax(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.LogSoftmax(x)
	b.tape.Record(ops.NewLogSoftmaxOp(x, result))
	return result
}

// Sum reduces to a single-element total. Not recorded: used for reporting.
func (b *Backend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Sum(x)
}

// SumDim sums along a dimension and records the operation.
func (b *Backend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	result := b.inner.SumDim(x, dim, keepDim)
	b.tape.Record(ops.NewSumDimOp(x, result, dim, keepDim))
	return result
}

// Argmax returns indices of maxima. Not differentiable, not recorded.
func (b *Backend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(x, dim)
}

// CrossEntropy computes the fused softmax + NLL loss over raw logits and
// records the operation. This is the raw-score loss configuration.
func (b *Backend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	result := ops.CrossEntropyForward(logits, targets, b.Device())
	b.tape.Record(ops.NewCrossEntropyOp(logits, targets, result))
	return result
}

// NLL computes the negative-log-likelihood loss over log-probabilities and
// records the operation. This is the log-probability loss configuration.
func (b *Backend[B]) NLL(logProbs, targets *tensor.RawTensor) *tensor.RawTensor {
	result := ops.NLLForward(logProbs, targets, b.Device())
	b.tape.Record(ops.NewNLLOp(logProbs, targets, result))
	return result
}
