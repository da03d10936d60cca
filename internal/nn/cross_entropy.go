package nn

import (
	"github.com/ember-ml/ember/internal/autodiff/ops"
	"github.com/ember-ml/ember/internal/tensor"
)

// CrossEntropyLoss computes the mean cross-entropy loss for multi-class
// classification over raw logits.
//
// The softmax and the negative log-likelihood are fused into one operation
// using the log-sum-exp trick, so the loss stays finite for logits beyond
// the float32 exp range.
//
// Mathematical formulation:
//
//	loss = mean_b(-log_softmax(logits[b])[targets[b]])
//
// Gradient:
//
//	∂L/∂logits = (softmax(logits) - y_onehot) / batch
//
// Usage:
//
//	criterion := nn.NewCrossEntropyLoss(backend)
//	logits := model.Forward(input)          // [batch_size, num_classes]
//	loss := criterion.Forward(logits, targets) // targets: [batch_size]
//
// The model must NOT end in LogSoftmax when using this criterion; a
// log-probability model pairs with NLLLoss instead.
type CrossEntropyLoss[B tensor.Backend] struct {
	backend B
}

// NewCrossEntropyLoss creates a new cross-entropy criterion.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{backend: backend}
}

// Forward computes the mean cross-entropy loss over the batch.
//
// logits: [batch_size, num_classes] raw scores.
// targets: [batch_size] int32 class indices.
//
// With an autodiff-aware backend the fused operation is recorded on the
// tape; otherwise only the forward value is computed.
func (c *CrossEntropyLoss[B]) Forward(
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) *tensor.Tensor[float32, B] {
	type crossEntropyBackend interface {
		CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor
	}

	if adBackend, ok := any(c.backend).(crossEntropyBackend); ok {
		resultRaw := adBackend.CrossEntropy(logits.Raw(), targets.Raw())
		return tensor.New[float32, B](resultRaw, c.backend)
	}

	resultRaw := ops.CrossEntropyForward(logits.Raw(), targets.Raw(), c.backend.Device())
	return tensor.New[float32, B](resultRaw, c.backend)
}

// Parameters returns nil (loss functions have no trainable parameters).
func (c *CrossEntropyLoss[B]) Parameters() []*Parameter[B] {
	return nil
}
