package nn

import (
	"github.com/ember-ml/ember/internal/autodiff/ops"
	"github.com/ember-ml/ember/internal/tensor"
)

// NLLLoss computes the mean negative log-likelihood over log-probabilities:
//
//	loss = mean_b(-logProbs[b, targets[b]])
//
// The input must already be log-probabilities, i.e. the model ends in a
// LogSoftmax module. Composed that way, NLLLoss produces the same loss and
// the same end-to-end gradients as CrossEntropyLoss over raw logits.
type NLLLoss[B tensor.Backend] struct {
	backend B
}

// NewNLLLoss creates a new negative-log-likelihood criterion.
func NewNLLLoss[B tensor.Backend](backend B) *NLLLoss[B] {
	return &NLLLoss[B]{backend: backend}
}

// Forward computes the mean NLL loss over the batch.
//
// logProbs: [batch_size, num_classes] log-probabilities.
// targets: [batch_size] int32 class indices.
func (n *NLLLoss[B]) Forward(
	logProbs *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) *tensor.Tensor[float32, B] {
	type nllBackend interface {
		NLL(logProbs, targets *tensor.RawTensor) *tensor.RawTensor
	}

	if adBackend, ok := any(n.backend).(nllBackend); ok {
		resultRaw := adBackend.NLL(logProbs.Raw(), targets.Raw())
		return tensor.New[float32, B](resultRaw, n.backend)
	}

	resultRaw := ops.NLLForward(logProbs.Raw(), targets.Raw(), n.backend.Device())
	return tensor.New[float32, B](resultRaw, n.backend)
}

// Parameters returns nil (loss functions have no trainable parameters).
func (n *NLLLoss[B]) Parameters() []*Parameter[B] {
	return nil
}
