package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

func TestCrossEntropyLoss_UniformLogits(t *testing.T) {
	backend := newBackend()
	criterion := nn.NewCrossEntropyLoss(backend)

	logits := tensor.Zeros[float32](tensor.Shape{4, 10}, backend)
	targets, err := tensor.FromSlice([]int32{0, 3, 7, 9}, tensor.Shape{4}, backend)
	require.NoError(t, err)

	loss := criterion.Forward(logits, targets)
	assert.InDelta(t, math.Log(10), float64(loss.Item()), 1e-5)
}

func TestCrossEntropyLoss_ConfidentPrediction(t *testing.T) {
	backend := newBackend()
	criterion := nn.NewCrossEntropyLoss(backend)

	// Strongly favoring the correct class drives the loss toward zero.
	logits, err := tensor.FromSlice([]float32{20, 0, 0}, tensor.Shape{1, 3}, backend)
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]int32{0}, tensor.Shape{1}, backend)
	require.NoError(t, err)

	loss := criterion.Forward(logits, targets)
	assert.Less(t, float64(loss.Item()), 1e-6)
}

func TestCrossEntropyLoss_ExtremeLogitsStayFinite(t *testing.T) {
	backend := newBackend()
	criterion := nn.NewCrossEntropyLoss(backend)

	logits, err := tensor.FromSlice([]float32{500, -500, 300, -300}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]int32{1, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	loss := criterion.Forward(logits, targets)
	value := float64(loss.Item())
	assert.False(t, math.IsNaN(value) || math.IsInf(value, 0), "loss = %f", value)
}

func TestNLLLoss_KnownValue(t *testing.T) {
	backend := newBackend()
	criterion := nn.NewNLLLoss(backend)

	// loss = mean(-logProbs[b, target[b]]) = -(−0.5 + −1.5)/2 = 1.0
	logProbs, err := tensor.FromSlice([]float32{-0.5, -2.0, -3.0, -1.5}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	loss := criterion.Forward(logProbs, targets)
	assert.InDelta(t, 1.0, float64(loss.Item()), 1e-6)
}

func TestLossConfigurations_Equivalent(t *testing.T) {
	// The fused cross-entropy over raw logits and the log-softmax + NLL
	// decomposition must produce the same loss value.
	logitsData := []float32{1.2, -0.4, 0.0, 2.1, 0.5, -1.0}
	targetsData := []int32{2, 0}

	ceBackend := newBackend()
	ceLogits, err := tensor.FromSlice(logitsData, tensor.Shape{2, 3}, ceBackend)
	require.NoError(t, err)
	ceTargets, err := tensor.FromSlice(targetsData, tensor.Shape{2}, ceBackend)
	require.NoError(t, err)
	ceLoss := nn.NewCrossEntropyLoss(ceBackend).Forward(ceLogits, ceTargets)

	nllBackend := newBackend()
	nllLogits, err := tensor.FromSlice(logitsData, tensor.Shape{2, 3}, nllBackend)
	require.NoError(t, err)
	nllTargets, err := tensor.FromSlice(targetsData, tensor.Shape{2}, nllBackend)
	require.NoError(t, err)
	logSoftmax := nn.NewLogSoftmax[Backend]()
	nllLoss := nn.NewNLLLoss(nllBackend).Forward(logSoftmax.Forward(nllLogits), nllTargets)

	assert.InDelta(t, float64(ceLoss.Item()), float64(nllLoss.Item()), 1e-5)
}

func TestCrossEntropyLoss_GradientsReachLinearParams(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	layer := nn.NewLinear(784, 10, backend)
	criterion := nn.NewCrossEntropyLoss(backend)

	input := tensor.Randn[float32](tensor.Shape{64, 784}, backend)
	targetsData := make([]int32, 64)
	for i := range targetsData {
		targetsData[i] = int32(i % 10)
	}
	targets, err := tensor.FromSlice(targetsData, tensor.Shape{64}, backend)
	require.NoError(t, err)

	logits := layer.Forward(input)
	loss := criterion.Forward(logits, targets)

	value := float64(loss.Item())
	require.False(t, math.IsNaN(value) || math.IsInf(value, 0))
	require.GreaterOrEqual(t, value, 0.0)

	grads := autodiff.Backward(loss, backend)

	// Every layer parameter must receive a gradient of its own shape.
	for _, param := range layer.Parameters() {
		grad, ok := grads[param.Tensor().Raw()]
		require.True(t, ok, "no gradient for %s", param.Name())
		assert.True(t, grad.Shape().Equal(param.Tensor().Shape()),
			"%s grad shape %v, param shape %v", param.Name(), grad.Shape(), param.Tensor().Shape())
	}
}

func TestAccuracy(t *testing.T) {
	backend := newBackend()

	scores, err := tensor.FromSlice([]float32{
		0.9, 0.1, // predicts 0
		0.2, 0.8, // predicts 1
		0.6, 0.4, // predicts 0
	}, tensor.Shape{3, 2}, backend)
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]int32{0, 1, 1}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, nn.Accuracy(scores, targets), 1e-9)
}

func TestCrossEntropyLoss_RejectsBadTargets(t *testing.T) {
	backend := newBackend()
	criterion := nn.NewCrossEntropyLoss(backend)

	logits := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
	outOfRange, err := tensor.FromSlice([]int32{0, 5}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	assert.Panics(t, func() { criterion.Forward(logits, outOfRange) })
}
