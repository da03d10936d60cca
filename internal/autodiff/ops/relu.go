package ops

import "github.com/ember-ml/ember/internal/tensor"

// ReLUOp represents a ReLU activation: output = max(0, x).
//
// d(ReLU(x))/dx = 1 where x > 0, else 0.
type ReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input, output: output}
}

// Backward masks the output gradient by the positive entries of the input.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input)

	inputData := op.input.AsFloat32()
	gradData := grad.AsFloat32()
	outGradData := outputGrad.AsFloat32()

	for i, v := range inputData {
		if v > 0 {
			gradData[i] = outGradData[i]
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the activated tensor.
func (op *ReLUOp) Output() *tensor.RawTensor { return op.output }
