// Package config loads training run configuration from YAML, with CLI
// overrides layered on top.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loss and optimizer selections accepted in config files.
const (
	LossCrossEntropy = "cross-entropy" // model emits raw logits
	LossNLL          = "nll"           // model ends in log-softmax

	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Epochs    int     `yaml:"epochs"`
	BatchSize int     `yaml:"batch_size"`
	LR        float64 `yaml:"lr"`
	Momentum  float64 `yaml:"momentum"`
	Seed      int64   `yaml:"seed"`
	DataDir   string  `yaml:"data_dir"`
	Loss      string  `yaml:"loss"`      // "cross-entropy" or "nll"
	Optimizer string  `yaml:"optimizer"` // "sgd" or "adam"
	Hidden    int     `yaml:"hidden"`    // hidden layer width
	LogEvery  int     `yaml:"log_every"`
}

// Overrides captures CLI-supplied values. Zero values leave the config
// untouched.
type Overrides struct {
	Epochs    int
	BatchSize int
	LR        float64
	Seed      int64
	DataDir   string
	Loss      string
	Optimizer string
}

// Default returns a runnable baseline configuration.
func Default() *Config {
	return &Config{
		Epochs:    5,
		BatchSize: 64,
		LR:        0.01,
		Momentum:  0.9,
		Seed:      42,
		Loss:      LossCrossEntropy,
		Optimizer: OptimizerSGD,
		Hidden:    128,
		LogEvery:  100,
	}
}

// Load reads and validates a Config from a YAML file. Fields absent from
// the file keep their Default values.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LR > 0 {
		c.LR = o.LR
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Loss != "" {
		c.Loss = o.Loss
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LR <= 0 {
		return fmt.Errorf("lr must be > 0 (got %g)", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1) (got %g)", c.Momentum)
	}
	if c.Hidden <= 0 {
		return fmt.Errorf("hidden must be > 0 (got %d)", c.Hidden)
	}
	switch c.Loss {
	case LossCrossEntropy, LossNLL:
	default:
		return fmt.Errorf("loss must be %q or %q (got %q)", LossCrossEntropy, LossNLL, c.Loss)
	}
	switch c.Optimizer {
	case OptimizerSGD, OptimizerAdam:
	default:
		return fmt.Errorf("optimizer must be %q or %q (got %q)", OptimizerSGD, OptimizerAdam, c.Optimizer)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("log_every must be >= 0 (got %d)", c.LogEvery)
	}
	return nil
}
