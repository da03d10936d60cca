// Package main provides the Ember ML Framework CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ember-ml/ember/autodiff"
	"github.com/ember-ml/ember/backend/cpu"
	"github.com/ember-ml/ember/data"
	"github.com/ember-ml/ember/internal/config"
	"github.com/ember-ml/ember/nn"
	"github.com/ember-ml/ember/optim"
	"github.com/ember-ml/ember/train"
)

const version = "v0.1.0-dev"

// Backend is the training backend: CPU wrapped with autodiff.
type Backend = *autodiff.Backend[*cpu.CPUBackend]

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("Ember ML Framework %s\n", version)
	case "train":
		runTrain(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Ember ML Framework - neural network training in Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  train      Train a classifier (see 'train -h' for flags)")
}

func runTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config file")
	dataDir := fs.String("data", "", "Directory containing MNIST IDX files")
	epochs := fs.Int("epochs", 0, "Number of training epochs")
	batchSize := fs.Int("batch", 0, "Batch size")
	lr := fs.Float64("lr", 0, "Learning rate")
	seed := fs.Int64("seed", 0, "Random seed for shuffling and synthetic data")
	loss := fs.String("loss", "", `Loss configuration: "cross-entropy" or "nll"`)
	opt := fs.String("optimizer", "", `Optimizer: "sgd" or "adam"`)
	synthetic := fs.Bool("synthetic", false, "Use synthetic data instead of MNIST files")
	samples := fs.Int("samples", 0, "Max samples to load (0 = all)")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	cfg.ApplyOverrides(config.Overrides{
		Epochs:    *epochs,
		BatchSize: *batchSize,
		LR:        *lr,
		Seed:      *seed,
		DataDir:   *dataDir,
		Loss:      *loss,
		Optimizer: *opt,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	backend := autodiff.New(cpu.New())

	var trainSet, valSet *data.Dataset
	if *synthetic {
		log.Printf("using synthetic data")
		full := data.Synthetic(1280, 784, 10, cfg.Seed)
		trainSet, valSet = full.Split(0.2)
	} else {
		log.Printf("loading MNIST from %s", cfg.DataDir)
		full, err := data.LoadMNIST(cfg.DataDir, true, *samples)
		if err != nil {
			log.Fatalf("loading data: %v", err)
		}
		trainSet, valSet = full.Split(0.2)
	}
	log.Printf("train: %d samples, val: %d samples", trainSet.NumSamples(), valSet.NumSamples())

	model, criterion := buildModel(cfg, backend)

	var optimizer optim.Optimizer
	switch cfg.Optimizer {
	case config.OptimizerAdam:
		optimizer = optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: float32(cfg.LR)})
	default:
		optimizer = optim.NewSGD(model.Parameters(), optim.SGDConfig{
			LR:       float32(cfg.LR),
			Momentum: float32(cfg.Momentum),
		})
	}

	source := data.NewInMemorySource(trainSet, cfg.BatchSize, true, cfg.Seed, backend)

	trainer, err := train.New[*cpu.CPUBackend](model, criterion, optimizer, source, backend, train.Config{
		Epochs:   cfg.Epochs,
		LogEvery: cfg.LogEvery,
	})
	if err != nil {
		log.Fatalf("trainer: %v", err)
	}

	if _, err := trainer.Run(); err != nil {
		log.Fatalf("training: %v", err)
	}

	valSource := data.NewInMemorySource(valSet, 256, false, cfg.Seed, backend)
	valLoss, valAcc, err := trainer.Evaluate(valSource)
	if err != nil {
		log.Fatalf("evaluation: %v", err)
	}
	log.Printf("validation: loss %.4f, accuracy %.2f%%", valLoss, valAcc*100)
}

// buildModel constructs the MLP and its matching criterion.
//
// The two loss configurations are mutually exclusive: a raw-logit model
// pairs with CrossEntropyLoss, a log-softmax model with NLLLoss.
func buildModel(cfg *config.Config, backend Backend) (*nn.Sequential[Backend], train.Criterion[Backend]) {
	model := nn.NewSequential[Backend](
		nn.NewLinear(784, cfg.Hidden, backend),
		nn.NewReLU[Backend](),
		nn.NewLinear(cfg.Hidden, 10, backend),
	)

	if cfg.Loss == config.LossNLL {
		model.Add(nn.NewLogSoftmax[Backend]())
		return model, nn.NewNLLLoss(backend)
	}
	return model, nn.NewCrossEntropyLoss(backend)
}
