// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resolveFlags runFlags
	maxS, maxT   int
	byStem       bool
	metricsAddr  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [module]",
	Short: "Resolve a module and print its Ext chart",
	Long: `Resolve a module through homological degree --max-s and internal degree
--max-t (or stem --max-t with --stem) and print the chart of generator counts,
one row per s from the top down.`,
	Example: `  sseq resolve S_2 --max-s 4 --max-t 20
  sseq resolve C2@adem --stem --max-t 15 -j 8 --checkpoint badger://./ckpt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveFlags.register(resolveCmd)
	resolveCmd.Flags().IntVarP(&maxS, "max-s", "s", 0, "Largest homological degree")
	resolveCmd.Flags().IntVarP(&maxT, "max-t", "t", 0, "Largest internal degree (stem with --stem)")
	resolveCmd.Flags().BoolVar(&byStem, "stem", false, "Treat --max-t as a stem bound")
	resolveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while resolving")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args, &resolveFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-s") {
		cfg.MaxS = maxS
	}
	if cmd.Flags().Changed("max-t") {
		cfg.MaxT = maxT
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()

	reg := prometheus.NewRegistry()
	if metricsAddr != "" {
		stop := serveMetrics(metricsAddr, reg, logger)
		defer stop()
	}

	res, closeStore, err := openResolution(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing checkpoint store", zap.Error(err))
		}
	}()

	start := time.Now()
	if byStem {
		err = res.ResolveThroughStem(ctx, cfg.MaxS, cfg.MaxT)
	} else {
		err = res.ResolveThroughDegree(ctx, cfg.MaxS, cfg.MaxT)
	}
	if err != nil {
		return err
	}
	logger.Info("done", zap.String("config", res.Config()), zap.Duration("elapsed", time.Since(start)))

	_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Chart(cfg.MaxS))
	return err
}

// serveMetrics exposes reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
