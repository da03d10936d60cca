package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// NLLOp represents negative-log-likelihood loss over log-probabilities,
// i.e. the second half of the LogSoftmax + NLL decomposition.
//
// Forward:
//
//	loss = mean_b(-logProbs[b, targets[b]])
//
// Backward:
//
//	∂L/∂logProbs[b,i] = -1/batch at i == targets[b], else 0
//
// Paired with a model that ends in LogSoftmax, this produces the same loss
// and the same end-to-end gradients as CrossEntropyOp over raw logits.
type NLLOp struct {
	logProbs *tensor.RawTensor // [batch, classes]
	targets  *tensor.RawTensor // [batch] int32 class indices
	output   *tensor.RawTensor // single-element loss
}

// NewNLLOp creates a new negative-log-likelihood operation.
func NewNLLOp(logProbs, targets, output *tensor.RawTensor) *NLLOp {
	return &NLLOp{logProbs: logProbs, targets: targets, output: output}
}

// Inputs returns the log-probabilities; targets carry no gradient.
func (op *NLLOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logProbs}
}

// Output returns the loss tensor.
func (op *NLLOp) Output() *tensor.RawTensor { return op.output }

// Backward computes the gradient with respect to the log-probabilities.
func (op *NLLOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.logProbs.Shape()
	batch, classes := shape[0], shape[1]

	grad := zerosLike(op.logProbs)
	gradData := grad.AsFloat32()
	targetsData := op.targets.AsInt32()
	gradScale := outputGrad.AsFloat32()[0]

	for b := 0; b < batch; b++ {
		target := int(targetsData[b])
		gradData[b*classes+target] = -gradScale / float32(batch)
	}
	return []*tensor.RawTensor{grad}
}

// NLLForward computes the mean negative log-likelihood over a batch of
// log-probabilities.
func NLLForward(logProbs, targets *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	batch, classes := checkLossShapes("NLLForward", logProbs, targets)

	output, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, device)
	if err != nil {
		panic(err)
	}

	logProbsData := logProbs.AsFloat32()
	targetsData := targets.AsInt32()

	total := float32(0)
	for b := 0; b < batch; b++ {
		target := int(targetsData[b])
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("NLLForward: target %d out of range [0, %d)", target, classes))
		}
		total += -logProbsData[b*classes+target]
	}
	output.AsFloat32()[0] = total / float32(batch)
	return output
}
