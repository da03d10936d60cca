package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, config.Default().Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
epochs: 20
batch_size: 128
lr: 0.001
seed: 7
loss: nll
optimizer: adam
hidden: 256
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Epochs)
	assert.Equal(t, 128, cfg.BatchSize)
	assert.Equal(t, 0.001, cfg.LR)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, config.LossNLL, cfg.Loss)
	assert.Equal(t, config.OptimizerAdam, cfg.Optimizer)
	assert.Equal(t, 256, cfg.Hidden)
	// Unset fields keep their defaults.
	assert.Equal(t, config.Default().Momentum, cfg.Momentum)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero epochs", "epochs: 0"},
		{"negative lr", "lr: -0.5"},
		{"unknown loss", "loss: hinge"},
		{"unknown optimizer", "optimizer: rmsprop"},
		{"momentum out of range", "momentum: 1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "epochs: [not a number")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.ApplyOverrides(config.Overrides{
		Epochs: 3,
		LR:     0.5,
		Loss:   config.LossNLL,
	})

	assert.Equal(t, 3, cfg.Epochs)
	assert.Equal(t, 0.5, cfg.LR)
	assert.Equal(t, config.LossNLL, cfg.Loss)
	// Zero-valued overrides leave fields alone.
	assert.Equal(t, config.Default().BatchSize, cfg.BatchSize)
	assert.Equal(t, config.Default().Optimizer, cfg.Optimizer)
}
