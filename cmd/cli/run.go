package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/limaJavier/festival/pkg/config"
	"github.com/limaJavier/festival/pkg/logger"
	"github.com/limaJavier/festival/pkg/metrics"
	"github.com/limaJavier/festival/pkg/model"
	"github.com/limaJavier/festival/pkg/output"
	"github.com/limaJavier/festival/pkg/scheduler"
)

const shutdownTimeout = 5 * time.Second

func (o *options) run(cmd *cobra.Command, strategy, inputFile, outputFile string, build schedulerBuilder) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	o.override(cmd, cfg)

	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("cannot build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("run_id", uuid.NewString()), zap.String("strategy", strategy))

	//** Input
	input, err := model.InputFromFile(inputFile)
	if err != nil {
		log.Error("cannot read instance", zap.String("file", inputFile), zap.Error(err))
		return err
	}
	log.Info("instance loaded",
		zap.String("file", inputFile),
		zap.Int("films", len(input.Films)),
		zap.Int("incompatibilities", len(input.Incompatibilities)),
		zap.Int("rooms", len(input.Rooms)),
	)

	//** Engines
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	searchMetrics, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("cannot register metrics: %w", err)
	}

	if strategy == graspStrategy {
		log.Info("random seed", zap.Uint64("seed", cfg.Search.Seed))
	}
	engine, err := build(o, cfg, scheduler.Observability{Logger: log, Metrics: searchMetrics})
	if err != nil {
		return err
	}

	conflicts := model.ConflictModelFromInput(input)
	file := output.NewFileRecorder(outputFile, input)
	recorder := scheduler.RecorderFunc(func(schedule model.Schedule) error {
		if err := model.Verify(schedule, conflicts, input.Capacity()); err != nil {
			return err
		}
		return file.Record(schedule)
	})

	//** Search
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Search.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.TimeLimit)
		defer cancel()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	searched := make(chan struct{})

	var best model.Schedule
	group.Go(func() error {
		defer close(searched)

		var err error
		best, err = engine.Schedule(groupCtx, input, recorder)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Info("search interrupted", zap.Error(err))
			return nil
		}
		return err
	})

	if cfg.Metrics.Addr != "" {
		server := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: shutdownTimeout,
		}
		group.Go(func() error {
			log.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			select {
			case <-searched:
			case <-groupCtx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("search failed", zap.Error(err))
		return err
	}

	if best == nil {
		log.Warn("no schedule was found")
		return nil
	}
	log.Info("search finished", zap.Int("days", best.Days()), zap.Int("records", file.Records()), zap.String("output", outputFile))
	return nil
}

// override applies the command-line flags the user set on top of the loaded configuration
func (o *options) override(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if flags.Changed("timeout") {
		cfg.Search.TimeLimit = o.timeout
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}
	if flags.Changed("seed") {
		cfg.Search.Seed = o.seed
	}
	if flags.Changed("iterations") {
		cfg.Search.MaxIterations = o.iterations
	}

	if cfg.Search.Seed == 0 {
		cfg.Search.Seed = rand.Uint64()
	}
}
