// Package train implements the epoch-driven training loop: for every
// mini-batch, zero gradients, run the forward pass, compute the loss,
// backpropagate through the recorded tape, and step the optimizer, while
// tracking the running mean of the per-batch losses.
package train

import (
	"fmt"
	"log"
	"math"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
)

// Criterion computes a single-element loss from model output and targets.
//
// The two standard configurations:
//   - model emits raw logits, criterion is nn.CrossEntropyLoss
//   - model ends in nn.LogSoftmax, criterion is nn.NLLLoss
//
// Both produce identical losses and gradients; mixing them up (logits into
// NLLLoss, log-probabilities into CrossEntropyLoss) trains on the wrong
// objective.
type Criterion[B tensor.Backend] interface {
	Forward(output *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B]
}

// DataSource yields one epoch's mini-batches per call. Implementations
// that reshuffle between calls (data.InMemorySource) give each epoch a
// fresh sample order.
type DataSource[B tensor.Backend] interface {
	Batches() ([]*data.Batch[B], error)
}

// Config holds training loop settings.
type Config struct {
	Epochs   int // number of passes over the dataset
	LogEvery int // log running loss every N batches (0 = epoch summaries only)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("train: epochs must be positive, got %d", c.Epochs)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("train: log interval must be non-negative, got %d", c.LogEvery)
	}
	return nil
}

// EpochStats summarizes one epoch of training.
type EpochStats struct {
	Epoch      int     // 1-based epoch number
	AvgLoss    float32 // mean of per-batch losses; NaN if the epoch had no batches
	Accuracy   float64 // fraction of training samples classified correctly
	NumBatches int
}

// Trainer drives the training loop over an autodiff-wrapped backend.
type Trainer[B tensor.Backend] struct {
	model     nn.Module[*autodiff.Backend[B]]
	criterion Criterion[*autodiff.Backend[B]]
	optimizer optim.Optimizer
	source    DataSource[*autodiff.Backend[B]]
	backend   *autodiff.Backend[B]
	config    Config
}

// New creates a Trainer. The backend must be the same autodiff backend the
// model's parameters were created on, or gradients will not reach them.
func New[B tensor.Backend](
	model nn.Module[*autodiff.Backend[B]],
	criterion Criterion[*autodiff.Backend[B]],
	optimizer optim.Optimizer,
	source DataSource[*autodiff.Backend[B]],
	backend *autodiff.Backend[B],
	config Config,
) (*Trainer[B], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Trainer[B]{
		model:     model,
		criterion: criterion,
		optimizer: optimizer,
		source:    source,
		backend:   backend,
		config:    config,
	}, nil
}

// Run trains for the configured number of epochs and returns per-epoch
// statistics.
//
// Recording is enabled for the duration of the run; the tape is cleared
// after every batch so memory stays proportional to one batch's graph.
func (t *Trainer[B]) Run() ([]EpochStats, error) {
	t.backend.Tape().StartRecording()
	defer t.backend.Tape().StopRecording()

	stats := make([]EpochStats, 0, t.config.Epochs)
	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		epochStats, err := t.trainEpoch(epoch)
		if err != nil {
			return stats, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		stats = append(stats, epochStats)
		log.Printf("epoch %d/%d: avg loss %.4f, accuracy %.2f%% (%d batches)",
			epoch, t.config.Epochs, epochStats.AvgLoss, epochStats.Accuracy*100, epochStats.NumBatches)
	}
	return stats, nil
}

// trainEpoch runs one full pass over the data source.
func (t *Trainer[B]) trainEpoch(epoch int) (EpochStats, error) {
	batches, err := t.source.Batches()
	if err != nil {
		return EpochStats{}, fmt.Errorf("fetching batches: %w", err)
	}

	if len(batches) == 0 {
		// An empty epoch has no mean loss. Report and move on rather
		// than failing the whole run.
		log.Printf("epoch %d: no batches produced by data source", epoch)
		return EpochStats{
			Epoch:   epoch,
			AvgLoss: float32(math.NaN()),
		}, nil
	}

	totalLoss := float32(0)
	totalCorrect := 0
	totalSamples := 0

	for i, batch := range batches {
		t.optimizer.ZeroGrad()

		output := t.model.Forward(batch.Inputs)
		loss := t.criterion.Forward(output, batch.Labels)

		grads := autodiff.Backward(loss, t.backend)
		t.optimizer.Step(grads)

		// Item detaches the scalar, so accumulating it never touches
		// the graph.
		totalLoss += loss.Item()
		totalCorrect += int(math.Round(nn.Accuracy(output, batch.Labels) * float64(batch.Size)))
		totalSamples += batch.Size

		t.backend.Tape().Clear()

		if t.config.LogEvery > 0 && (i+1)%t.config.LogEvery == 0 {
			log.Printf("epoch %d batch %d/%d: running loss %.4f",
				epoch, i+1, len(batches), totalLoss/float32(i+1))
		}
	}

	return EpochStats{
		Epoch:      epoch,
		AvgLoss:    totalLoss / float32(len(batches)),
		Accuracy:   float64(totalCorrect) / float64(totalSamples),
		NumBatches: len(batches),
	}, nil
}

// Evaluate runs the model over a data source without recording gradients
// or touching parameters, returning mean loss and accuracy.
func (t *Trainer[B]) Evaluate(source DataSource[*autodiff.Backend[B]]) (avgLoss float32, accuracy float64, err error) {
	batches, err := source.Batches()
	if err != nil {
		return 0, 0, fmt.Errorf("fetching batches: %w", err)
	}
	if len(batches) == 0 {
		return float32(math.NaN()), 0, nil
	}

	wasRecording := t.backend.Tape().IsRecording()
	t.backend.Tape().StopRecording()
	defer func() {
		if wasRecording {
			t.backend.Tape().StartRecording()
		}
	}()

	totalLoss := float32(0)
	totalCorrect := 0
	totalSamples := 0
	for _, batch := range batches {
		output := t.model.Forward(batch.Inputs)
		loss := t.criterion.Forward(output, batch.Labels)

		totalLoss += loss.Item()
		totalCorrect += int(math.Round(nn.Accuracy(output, batch.Labels) * float64(batch.Size)))
		totalSamples += batch.Size
	}

	return totalLoss / float32(len(batches)), float64(totalCorrect) / float64(totalSamples), nil
}
