package train_test

import (
	"math"
	"testing"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/train"
)

type Backend = *autodiff.Backend[*cpu.CPUBackend]

func setup(t *testing.T, numSamples, features, classes int, lr float32) (
	Backend,
	*nn.Sequential[Backend],
	*optim.SGD[Backend],
	*data.InMemorySource[Backend],
) {
	t.Helper()
	backend := autodiff.New(cpu.New())
	model := nn.NewSequential[Backend](
		nn.NewLinear(features, classes, backend),
	)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: lr})
	dataset := data.Synthetic(numSamples, features, classes, 11)
	source := data.NewInMemorySource(dataset, 16, true, 11, backend)
	return backend, model, optimizer, source
}

func TestConfig_Validate(t *testing.T) {
	if err := (train.Config{Epochs: 1}).Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if err := (train.Config{Epochs: 0}).Validate(); err == nil {
		t.Error("zero epochs accepted")
	}
	if err := (train.Config{Epochs: 1, LogEvery: -1}).Validate(); err == nil {
		t.Error("negative log interval accepted")
	}
}

func TestTrainer_RunProducesStats(t *testing.T) {
	backend, model, optimizer, source := setup(t, 64, 8, 2, 0.1)
	criterion := nn.NewCrossEntropyLoss(backend)

	trainer, err := train.New(model, criterion, optimizer, source, backend, train.Config{Epochs: 3})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := trainer.Run()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 3 {
		t.Fatalf("got %d epoch stats, want 3", len(stats))
	}
	for i, s := range stats {
		if s.Epoch != i+1 {
			t.Errorf("stats[%d].Epoch = %d", i, s.Epoch)
		}
		if s.NumBatches != 4 {
			t.Errorf("epoch %d: %d batches, want 4", s.Epoch, s.NumBatches)
		}
		if math.IsNaN(float64(s.AvgLoss)) || math.IsInf(float64(s.AvgLoss), 0) {
			t.Errorf("epoch %d: avg loss %f", s.Epoch, s.AvgLoss)
		}
		if s.AvgLoss < 0 {
			t.Errorf("epoch %d: negative cross-entropy %f", s.Epoch, s.AvgLoss)
		}
	}
}

func TestTrainer_LossDecreases(t *testing.T) {
	backend, model, optimizer, source := setup(t, 320, 8, 2, 0.5)
	criterion := nn.NewCrossEntropyLoss(backend)

	trainer, err := train.New(model, criterion, optimizer, source, backend, train.Config{Epochs: 5})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := trainer.Run()
	if err != nil {
		t.Fatal(err)
	}

	first, last := stats[0].AvgLoss, stats[len(stats)-1].AvgLoss
	if last >= first {
		t.Errorf("loss did not decrease: first %f, last %f", first, last)
	}
}

func TestTrainer_NLLConfigurationTrains(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := nn.NewSequential[Backend](
		nn.NewLinear(8, 2, backend),
		nn.NewLogSoftmax[Backend](),
	)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.5})
	dataset := data.Synthetic(320, 8, 2, 11)
	source := data.NewInMemorySource(dataset, 16, true, 11, backend)
	criterion := nn.NewNLLLoss(backend)

	trainer, err := train.New(model, criterion, optimizer, source, backend, train.Config{Epochs: 5})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := trainer.Run()
	if err != nil {
		t.Fatal(err)
	}
	if last := stats[len(stats)-1]; last.AvgLoss >= stats[0].AvgLoss {
		t.Errorf("log-softmax + NLL did not train: first %f, last %f", stats[0].AvgLoss, last.AvgLoss)
	}
}

// With a vanishing learning rate the parameters barely move, so the
// epoch's average must match an independent evaluation pass: the reported
// number is the mean of the per-batch losses.
func TestTrainer_AvgLossIsBatchMean(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := nn.NewSequential[Backend](
		nn.NewLinear(8, 2, backend),
	)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 1e-12})
	dataset := data.Synthetic(64, 8, 2, 11)
	source := data.NewInMemorySource(dataset, 16, false, 11, backend)
	criterion := nn.NewCrossEntropyLoss(backend)

	trainer, err := train.New(model, criterion, optimizer, source, backend, train.Config{Epochs: 1})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := trainer.Run()
	if err != nil {
		t.Fatal(err)
	}

	evalSource := data.NewInMemorySource(dataset, 16, false, 11, backend)
	evalLoss, _, err := trainer.Evaluate(evalSource)
	if err != nil {
		t.Fatal(err)
	}

	diff := math.Abs(float64(stats[0].AvgLoss - evalLoss))
	if diff > 1e-4 {
		t.Errorf("epoch avg %f, eval avg %f", stats[0].AvgLoss, evalLoss)
	}
}

type emptySource struct{}

func (emptySource) Batches() ([]*data.Batch[Backend], error) {
	return nil, nil
}

func TestTrainer_EmptyEpochReportsNaN(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := nn.NewSequential[Backend](nn.NewLinear(4, 2, backend))
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
	criterion := nn.NewCrossEntropyLoss(backend)

	trainer, err := train.New[*cpu.CPUBackend](model, criterion, optimizer, emptySource{}, backend, train.Config{Epochs: 2})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := trainer.Run()
	if err != nil {
		t.Fatalf("empty epochs must not fail the run: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d epoch stats, want 2", len(stats))
	}
	for _, s := range stats {
		if !math.IsNaN(float64(s.AvgLoss)) {
			t.Errorf("epoch %d: avg loss %f, want NaN", s.Epoch, s.AvgLoss)
		}
	}
}

func TestTrainer_EvaluateDoesNotMutateParams(t *testing.T) {
	backend, model, optimizer, source := setup(t, 64, 8, 2, 0.1)
	criterion := nn.NewCrossEntropyLoss(backend)

	trainer, err := train.New(model, criterion, optimizer, source, backend, train.Config{Epochs: 1})
	if err != nil {
		t.Fatal(err)
	}

	before := make([][]float32, 0)
	for _, p := range model.Parameters() {
		snapshot := make([]float32, p.Tensor().NumElements())
		copy(snapshot, p.Tensor().Data())
		before = append(before, snapshot)
	}

	if _, _, err := trainer.Evaluate(source); err != nil {
		t.Fatal(err)
	}

	for i, p := range model.Parameters() {
		for j, v := range p.Tensor().Data() {
			if v != before[i][j] {
				t.Fatalf("parameter %d changed during evaluation", i)
			}
		}
	}
}

func TestTrainer_EvaluateRestoresRecording(t *testing.T) {
	backend, model, optimizer, source := setup(t, 64, 8, 2, 0.1)
	criterion := nn.NewCrossEntropyLoss(backend)

	trainer, err := train.New(model, criterion, optimizer, source, backend, train.Config{Epochs: 1})
	if err != nil {
		t.Fatal(err)
	}

	backend.Tape().StartRecording()
	if _, _, err := trainer.Evaluate(source); err != nil {
		t.Fatal(err)
	}
	if !backend.Tape().IsRecording() {
		t.Error("Evaluate did not restore recording state")
	}
}

func TestTrainer_RejectsBadConfig(t *testing.T) {
	backend, model, optimizer, source := setup(t, 16, 8, 2, 0.1)
	criterion := nn.NewCrossEntropyLoss(backend)

	if _, err := train.New(model, criterion, optimizer, source, backend, train.Config{Epochs: 0}); err == nil {
		t.Error("zero-epoch config accepted")
	}
}
