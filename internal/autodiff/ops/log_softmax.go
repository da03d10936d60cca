package ops

import (
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// LogSoftmaxOp represents a row-wise log-softmax along the last dimension.
//
// Forward:
//
//	y[b,i] = x[b,i] - logsumexp(x[b,:])
//
// Backward:
//
//	∂L/∂x[b,i] = g[b,i] - softmax(x[b,:])[i] * Σ_j g[b,j]
//
// where softmax(x) = exp(y), recovered from the stored forward output.
type LogSoftmaxOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogSoftmaxOp creates a new LogSoftmaxOp.
func NewLogSoftmaxOp(input, output *tensor.RawTensor) *LogSoftmaxOp {
	return &LogSoftmaxOp{input: input, output: output}
}

// Backward computes the gradient with respect to the pre-softmax scores.
func (op *LogSoftmaxOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.input.Shape()
	classes := shape[len(shape)-1]

	grad := zerosLike(op.input)

	logProbs := op.output.AsFloat32()
	gradData := grad.AsFloat32()
	outGradData := outputGrad.AsFloat32()

	for row := 0; row < len(logProbs); row += classes {
		gSum := float32(0)
		for i := 0; i < classes; i++ {
			gSum += outGradData[row+i]
		}
		for i := 0; i < classes; i++ {
			prob := float32(math.Exp(float64(logProbs[row+i])))
			gradData[row+i] = outGradData[row+i] - prob*gSum
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *LogSoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the log-probability tensor.
func (op *LogSoftmaxOp) Output() *tensor.RawTensor { return op.output }
