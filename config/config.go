// SPDX-License-Identifier: MIT

// Package config reads the YAML run configuration of an sseq computation and
// builds the logger it asks for.
//
// A minimal file names the module and the range to resolve:
//
//	module: C2
//	algebra: adem
//	max_s: 6
//	max_t: 30
//	concurrency: 4
//	checkpoint:
//	  url: badger:///var/lib/sseq
//	  compress: true
//	log:
//	  level: debug
//
// Unknown keys are rejected. Missing keys keep the values of Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/sseq/checkpoint"
)

// ErrInvalid is wrapped by every decoding and validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

var validate = validator.New()

// Config is one resolution run.
type Config struct {
	Module      string           `yaml:"module" validate:"required"`
	Algebra     string           `yaml:"algebra" validate:"omitempty,oneof=milnor adem"`
	SearchPath  []string         `yaml:"search_path" validate:"omitempty,dive,required"`
	MaxS        int              `yaml:"max_s" validate:"gte=0"`
	MaxT        int              `yaml:"max_t" validate:"gte=0"`
	MaxDegree   int              `yaml:"max_degree" validate:"gte=0"`
	Concurrency int              `yaml:"concurrency" validate:"gte=0"`
	Checkpoint  CheckpointConfig `yaml:"checkpoint"`
	Log         LogConfig        `yaml:"log"`
}

// CheckpointConfig selects the checkpoint store. An empty URL disables
// checkpointing.
type CheckpointConfig struct {
	URL      string        `yaml:"url"`
	Compress bool          `yaml:"compress"`
	Retries    uint          `yaml:"retries" validate:"lte=100"`
	Backoff    time.Duration `yaml:"backoff" validate:"gte=0"`
	MaxBackoff time.Duration `yaml:"max_backoff" validate:"gte=0"`
}

// Retry converts the retry knobs to a checkpoint.RetryPolicy. Zero values
// fall back to checkpoint.DefaultRetry.
func (c CheckpointConfig) Retry() checkpoint.RetryPolicy {
	return checkpoint.RetryPolicy{Attempts: c.Retries, InitialDelay: c.Backoff, MaxDelay: c.MaxBackoff}
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Algebra: "milnor",
		MaxS:    4,
		MaxT:    20,
		Log:     LogConfig{Level: "info"},
	}
}

// Parse decodes and validates a YAML document on top of Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the struct tags of c.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// NewLogger builds a JSON production logger, or a console development logger
// when Development is set. An empty level means info.
func NewLogger(c LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: log level: %w", ErrInvalid, err)
		}
		zc.Level = level
	}
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}

	return log, nil
}
