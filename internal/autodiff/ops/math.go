package ops

import "github.com/ember-ml/ember/internal/tensor"

// ExpOp represents the element-wise exponential: output = exp(x).
//
// d(exp(x))/dx = exp(x), which is exactly the forward output.
type ExpOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpOp creates a new ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{input: input, output: output}
}

// Backward computes grad_input = outputGrad * exp(x).
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// Inputs returns the input tensor.
func (op *ExpOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *ExpOp) Output() *tensor.RawTensor { return op.output }

// LogOp represents the element-wise natural logarithm: output = log(x).
//
// d(log(x))/dx = 1/x. Assumes x > 0.
type LogOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogOp creates a new LogOp.
func NewLogOp(input, output *tensor.RawTensor) *LogOp {
	return &LogOp{input: input, output: output}
}

// Backward computes grad_input = outputGrad / x.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

// Inputs returns the input tensor.
func (op *LogOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor.
func (op *LogOp) Output() *tensor.RawTensor { return op.output }

// SumDimOp represents a sum along one dimension.
type SumDimOp struct {
	input   *tensor.RawTensor
	output  *tensor.RawTensor
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(input, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{input: input, output: output, dim: dim, keepDim: keepDim}
}

// Backward broadcasts the output gradient back across the summed dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	// Reshape the gradient to keep-dim form, then rely on broadcasting of
	// Add with a zero tensor to expand it to the input shape.
	inShape := op.input.Shape()
	keepShape := inShape.Clone()
	keepShape[op.dim] = 1

	g := outputGrad
	if !g.Shape().Equal(keepShape) {
		g = backend.Reshape(g, keepShape)
	}
	return []*tensor.RawTensor{backend.Add(zerosLike(op.input), g)}
}

// Inputs returns the input tensor.
func (op *SumDimOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the reduced tensor.
func (op *SumDimOp) Output() *tensor.RawTensor { return op.output }
