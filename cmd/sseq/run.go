// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/sseq/algebra"
	"github.com/katalvlaran/sseq/checkpoint"
	"github.com/katalvlaran/sseq/config"
	"github.com/katalvlaran/sseq/fp"
	"github.com/katalvlaran/sseq/module"
	"github.com/katalvlaran/sseq/resolution"
)

const defaultModule = "S_2"

// runFlags are shared by every command that builds a resolution.
type runFlags struct {
	algebra     string
	concurrency int
	checkpoint  string
	compress    bool
	maxDegree   int
	searchPath  []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.algebra, "algebra", "", "Basis of the Steenrod algebra: milnor or adem")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "j", 0, "Worker count (0 or 1 resolves serially)")
	cmd.Flags().StringVar(&f.checkpoint, "checkpoint", "", "Checkpoint store URL (dir, file://, mem://, badger://, sqlite://, s3://)")
	cmd.Flags().BoolVar(&f.compress, "compress", false, "zstd-compress checkpoint records")
	cmd.Flags().IntVar(&f.maxDegree, "max-degree", 0, "Largest algebra degree to enumerate (0 keeps the default)")
	cmd.Flags().StringSliceVar(&f.searchPath, "search-path", nil, "Directories searched for module specifications")
}

// loadConfig merges the configuration file, the module argument and any
// flags the user set explicitly, in that order.
func loadConfig(cmd *cobra.Command, args []string, f *runFlags) (config.Config, error) {
	cfg := fileConfig
	if len(args) > 0 {
		cfg.Module = args[0]
	}
	if cfg.Module == "" {
		cfg.Module = defaultModule
	}
	flags := cmd.Flags()
	if flags.Changed("algebra") {
		cfg.Algebra = f.algebra
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if flags.Changed("checkpoint") {
		cfg.Checkpoint.URL = f.checkpoint
	}
	if flags.Changed("compress") {
		cfg.Checkpoint.Compress = f.compress
	}
	if flags.Changed("max-degree") {
		cfg.MaxDegree = f.maxDegree
	}
	if flags.Changed("search-path") {
		cfg.SearchPath = f.searchPath
	}

	return cfg, cfg.Validate()
}

// buildModule resolves the configured module name against the search path
// and the built-in specifications.
func buildModule(cfg config.Config) (module.Module, error) {
	name, err := module.ParseModuleName(cfg.Module)
	if err != nil {
		return nil, err
	}
	typName := name.Algebra
	if typName == "" {
		typName = cfg.Algebra
	}
	typ, err := algebra.ParseType(typName)
	if err != nil {
		return nil, err
	}
	spec, err := module.Find(name, cfg.SearchPath...)
	if err != nil {
		return nil, err
	}
	p, err := fp.NewPrime(spec.P)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", name, err)
	}
	var opts []algebra.Option
	if cfg.MaxDegree > 0 {
		opts = append(opts, algebra.WithMaxDegree(cfg.MaxDegree))
	}
	alg, err := algebra.New(p, typ, opts...)
	if err != nil {
		return nil, err
	}
	mod, err := module.NewFiniteModule(spec, alg)
	if err != nil {
		return nil, err
	}

	return mod, nil
}

// openResolution builds the module and the resolution for cfg. The returned
// close function releases the checkpoint store.
func openResolution(ctx context.Context, cfg config.Config, log *zap.Logger, reg prometheus.Registerer) (*resolution.Resolution, func() error, error) {
	mod, err := buildModule(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := []resolution.Option{
		resolution.WithLogger(log),
		resolution.WithConcurrency(cfg.Concurrency),
		resolution.WithCompression(cfg.Checkpoint.Compress),
		resolution.WithRetry(cfg.Checkpoint.Retry()),
	}
	if reg != nil {
		opts = append(opts, resolution.WithMetrics(reg))
	}
	closer := func() error { return nil }
	if cfg.Checkpoint.URL != "" {
		st, err := checkpoint.Open(ctx, cfg.Checkpoint.URL)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, resolution.WithCheckpoints(st))
		closer = st.Close
		log.Info("checkpoints enabled", zap.String("url", cfg.Checkpoint.URL))
	}
	res, err := resolution.New(mod, opts...)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}

	return res, closer, nil
}
