package autodiff_test

import (
	"math"
	"testing"

	"github.com/ember-ml/ember/internal/tensor"
)

// numericGradient estimates df/dx[i] with central differences.
func numericGradient(f func() float32, x []float32, i int, eps float32) float32 {
	orig := x[i]
	x[i] = orig + eps
	plus := f()
	x[i] = orig - eps
	minus := f()
	x[i] = orig
	return (plus - minus) / (2 * eps)
}

// Checks the full chain transpose → matmul → cross-entropy against
// central-difference estimates on the input.
func TestGradientCheck_LinearCrossEntropy(t *testing.T) {
	backend := newBackend()

	x := fromSlice(t, []float32{0.5, -0.2, 0.8, -0.1, 0.4, 0.3}, tensor.Shape{2, 3}, backend)
	w := fromSlice(t, []float32{
		0.1, -0.3, 0.2,
		0.4, 0.0, -0.1,
		-0.2, 0.5, 0.3,
		0.0, 0.1, -0.4,
	}, tensor.Shape{4, 3}, backend)
	targets, err := tensor.FromSlice([]int32{1, 3}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	forward := func() float32 {
		logits := x.MatMul(w.Transpose())
		loss := backend.CrossEntropy(logits.Raw(), targets.Raw())
		return loss.AsFloat32()[0]
	}

	// Analytic gradients from one recorded forward pass.
	backend.Tape().StartRecording()
	forward()
	grads := backend.Tape().Backward(onesSeed(t, backend), backend)
	backend.Tape().StopRecording()
	backend.Tape().Clear()

	checkAgainstNumeric(t, "x", forward, x.Raw(), grads[x.Raw()])
	checkAgainstNumeric(t, "w", forward, w.Raw(), grads[w.Raw()])
}

// Checks log-softmax + NLL gradients the same way.
func TestGradientCheck_LogSoftmaxNLL(t *testing.T) {
	backend := newBackend()

	x := fromSlice(t, []float32{1.5, -0.5, 0.2, 0.9, -1.1, 0.0}, tensor.Shape{2, 3}, backend)
	targets, err := tensor.FromSlice([]int32{0, 2}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	forward := func() float32 {
		logProbs := x.LogSoftmax()
		loss := backend.NLL(logProbs.Raw(), targets.Raw())
		return loss.AsFloat32()[0]
	}

	backend.Tape().StartRecording()
	forward()
	grads := backend.Tape().Backward(onesSeed(t, backend), backend)
	backend.Tape().StopRecording()
	backend.Tape().Clear()

	checkAgainstNumeric(t, "x", forward, x.Raw(), grads[x.Raw()])
}

func checkAgainstNumeric(t *testing.T, name string, forward func() float32, input, analytic *tensor.RawTensor) {
	t.Helper()
	if analytic == nil {
		t.Fatalf("%s: no analytic gradient", name)
	}

	data := input.AsFloat32()
	analyticData := analytic.AsFloat32()
	const eps = 1e-2

	for i := range data {
		numeric := numericGradient(forward, data, i, eps)
		diff := math.Abs(float64(numeric - analyticData[i]))
		scale := math.Max(1.0, math.Abs(float64(numeric)))
		if diff/scale > 1e-2 {
			t.Errorf("%s[%d]: analytic %f, numeric %f", name, i, analyticData[i], numeric)
		}
	}
}
