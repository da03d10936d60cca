package nn

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function f(x) = max(0, x).
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU()
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// LogSoftmax is an output module that maps raw scores to log-probabilities
// along the class dimension.
//
// Pair a model that ends in LogSoftmax with NLLLoss. A model producing raw
// logits pairs with CrossEntropyLoss instead; the two configurations yield
// the same loss and the same gradients.
type LogSoftmax[B tensor.Backend] struct{}

// NewLogSoftmax creates a new LogSoftmax module.
func NewLogSoftmax[B tensor.Backend]() *LogSoftmax[B] {
	return &LogSoftmax[B]{}
}

// Forward computes log_softmax over the last dimension.
func (l *LogSoftmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.LogSoftmax()
}

// Parameters returns nil (LogSoftmax has no trainable parameters).
func (l *LogSoftmax[B]) Parameters() []*Parameter[B] {
	return nil
}
