package optim_test

import (
	"testing"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
)

type Backend = *autodiff.Backend[*cpu.CPUBackend]

func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

func newParam(t *testing.T, backend Backend, values ...float32) *nn.Parameter[Backend] {
	t.Helper()
	x, err := tensor.FromSlice(values, tensor.Shape{len(values)}, backend)
	if err != nil {
		t.Fatal(err)
	}
	return nn.NewParameter("x", x)
}

func gradFor(t *testing.T, backend Backend, param *nn.Parameter[Backend], values ...float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	grad, err := tensor.NewRaw(tensor.Shape{len(values)}, tensor.Float32, backend.Device())
	if err != nil {
		t.Fatal(err)
	}
	copy(grad.AsFloat32(), values)
	return map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): grad}
}

func TestSGD_SimpleUpdate(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := newParam(t, backend, 2.0)

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1})
	optimizer.Step(gradFor(t, backend, param, 1.0))

	// x_new = 2.0 - 0.1*1.0 = 1.9
	got := param.Tensor().Data()[0]
	if !floatEqual(got, 1.9, 1e-6) {
		t.Errorf("SGD update: got %f, want 1.9", got)
	}
}

func TestSGD_WithMomentum(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := newParam(t, backend, 1.0)

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = 1.0, x = 1.0 - 0.1*1.0 = 0.9
	optimizer.Step(gradFor(t, backend, param, 1.0))
	if got := param.Tensor().Data()[0]; !floatEqual(got, 0.9, 1e-6) {
		t.Fatalf("after step 1: got %f, want 0.9", got)
	}

	// Step 2: v = 0.9*1.0 + 1.0 = 1.9, x = 0.9 - 0.1*1.9 = 0.71
	optimizer.Step(gradFor(t, backend, param, 1.0))
	if got := param.Tensor().Data()[0]; !floatEqual(got, 0.71, 1e-6) {
		t.Errorf("after step 2: got %f, want 0.71", got)
	}
}

func TestSGD_SkipsMissingGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := newParam(t, backend, 5.0)

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1})
	optimizer.Step(map[*tensor.RawTensor]*tensor.RawTensor{})

	if got := param.Tensor().Data()[0]; got != 5.0 {
		t.Errorf("parameter changed without a gradient: %f", got)
	}
}

func TestSGD_DefaultLR(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := newParam(t, backend, 0.0)

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{})
	if optimizer.GetLR() != 0.01 {
		t.Errorf("default LR = %f, want 0.01", optimizer.GetLR())
	}
}

func TestAdam_FirstStep(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := newParam(t, backend, 1.0)

	optimizer := optim.NewAdam([]*nn.Parameter[Backend]{param}, optim.AdamConfig{LR: 0.001})
	optimizer.Step(gradFor(t, backend, param, 0.5))

	// With bias correction, the first Adam step moves by ~lr in the
	// gradient's direction regardless of its magnitude.
	got := param.Tensor().Data()[0]
	if !floatEqual(got, 1.0-0.001, 1e-5) {
		t.Errorf("after first step: got %f, want ~0.999", got)
	}
}

func TestAdam_Converges(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := newParam(t, backend, 5.0)

	// Minimize f(x) = x² with analytic grad 2x.
	optimizer := optim.NewAdam([]*nn.Parameter[Backend]{param}, optim.AdamConfig{LR: 0.1})
	for i := 0; i < 500; i++ {
		x := param.Tensor().Data()[0]
		optimizer.Step(gradFor(t, backend, param, 2*x))
	}

	got := param.Tensor().Data()[0]
	if got > 0.05 || got < -0.05 {
		t.Errorf("Adam did not converge: x = %f", got)
	}
}

func TestZeroGrad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := newParam(t, backend, 1.0)
	param.SetGrad(tensor.Ones[float32](tensor.Shape{1}, backend))

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1})
	optimizer.ZeroGrad()

	if param.Grad() != nil {
		t.Error("ZeroGrad left a gradient in place")
	}
}

func TestSGD_GradientSizeMismatchPanics(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := newParam(t, backend, 1.0, 2.0)

	optimizer := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1})

	bad, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, backend.Device())
	if err != nil {
		t.Fatal(err)
	}
	grads := map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): bad}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on gradient size mismatch")
		}
	}()
	optimizer.Step(grads)
}
