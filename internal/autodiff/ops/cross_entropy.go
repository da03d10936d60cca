package ops

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// CrossEntropyOp represents the fused softmax + negative-log-likelihood
// loss over raw logits.
//
// Forward:
//
//	loss = mean_b(-log_softmax(logits[b])[targets[b]])
//
// Backward:
//
//	∂L/∂logits[b,i] = (softmax(logits[b])[i] - onehot(targets[b])[i]) / batch
//
// Fusing the two keeps the computation in log space: probabilities near 0
// or 1 never have to be materialized, so the loss stays finite where a
// softmax-then-log pipeline would underflow.
type CrossEntropyOp struct {
	logits  *tensor.RawTensor // [batch, classes]
	targets *tensor.RawTensor // [batch] int32 class indices
	output  *tensor.RawTensor // single-element loss
}

// NewCrossEntropyOp creates a new cross-entropy operation.
func NewCrossEntropyOp(logits, targets, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, output: output}
}

// Inputs returns the logits; targets carry no gradient.
func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits}
}

// Output returns the loss tensor.
func (op *CrossEntropyOp) Output() *tensor.RawTensor { return op.output }

// Backward computes the gradient with respect to the logits.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.logits.Shape()
	batch, classes := shape[0], shape[1]

	grad := zerosLike(op.logits)

	logitsData := op.logits.AsFloat32()
	targetsData := op.targets.AsInt32()
	gradData := grad.AsFloat32()
	gradScale := outputGrad.AsFloat32()[0]

	probs := make([]float32, classes)
	for b := 0; b < batch; b++ {
		row := logitsData[b*classes : (b+1)*classes]
		softmaxRow(row, probs)

		target := int(targetsData[b])
		for i := 0; i < classes; i++ {
			g := probs[i]
			if i == target {
				g -= 1.0
			}
			gradData[b*classes+i] = gradScale * g / float32(batch)
		}
	}
	return []*tensor.RawTensor{grad}
}

// CrossEntropyForward computes the mean cross-entropy loss over a batch of
// logits. Used by the autodiff backend for the forward pass and directly by
// non-recording callers.
func CrossEntropyForward(logits, targets *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	batch, classes := checkLossShapes("CrossEntropyForward", logits, targets)

	output, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, device)
	if err != nil {
		panic(err)
	}

	logitsData := logits.AsFloat32()
	targetsData := targets.AsInt32()

	total := float32(0)
	logProbs := make([]float32, classes)
	for b := 0; b < batch; b++ {
		row := logitsData[b*classes : (b+1)*classes]
		logSoftmaxRow(row, logProbs)

		target := int(targetsData[b])
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("CrossEntropyForward: target %d out of range [0, %d)", target, classes))
		}
		total += -logProbs[target]
	}
	output.AsFloat32()[0] = total / float32(batch)
	return output
}

// checkLossShapes validates the [batch, classes] / [batch] pairing shared
// by the classification losses and returns the two sizes.
func checkLossShapes(name string, scores, targets *tensor.RawTensor) (batch, classes int) {
	scoresShape := scores.Shape()
	if len(scoresShape) != 2 {
		panic(fmt.Sprintf("%s: scores must be 2D [batch, classes], got %v", name, scoresShape))
	}
	targetsShape := targets.Shape()
	if len(targetsShape) != 1 || targetsShape[0] != scoresShape[0] {
		panic(fmt.Sprintf("%s: targets must be 1D [batch]=%d, got %v", name, scoresShape[0], targetsShape))
	}
	if targets.DType() != tensor.Int32 {
		panic(fmt.Sprintf("%s: targets must be int32, got %s", name, targets.DType()))
	}
	return scoresShape[0], scoresShape[1]
}

// logSoftmaxRow writes z - logsumexp(z) into dst using the max-shift trick.
func logSoftmaxRow(z, dst []float32) {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}
	sumExp := 0.0
	for _, v := range z {
		sumExp += math.Exp(float64(v - maxZ))
	}
	logSumExp := maxZ + float32(math.Log(sumExp))
	for i, v := range z {
		dst[i] = v - logSumExp
	}
}

// softmaxRow writes exp(logsoftmax(z)) into dst.
func softmaxRow(z, dst []float32) {
	logSoftmaxRow(z, dst)
	for i := range dst {
		dst[i] = float32(math.Exp(float64(dst[i])))
	}
}
