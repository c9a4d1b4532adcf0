package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/limaJavier/festival/pkg/config"
	"github.com/limaJavier/festival/pkg/sat"
	"github.com/limaJavier/festival/pkg/scheduler"
)

const (
	graspStrategy = "grasp"

	giniBackend      = "gini"
	gophersatBackend = "gophersat"
	kissatBackend    = "kissat"
	minisatBackend   = "minisat"
)

var validBackends = []string{giniBackend, gophersatBackend, kissatBackend, minisatBackend}

type options struct {
	configFile  string
	logLevel    string
	logFormat   string
	timeout     time.Duration
	metricsAddr string

	seed       uint64
	iterations int
	backend    string
}

// schedulerBuilder creates the scheduler of a strategy once the configuration is known
type schedulerBuilder func(o *options, cfg *config.Config, observability scheduler.Observability) (scheduler.Scheduler, error)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "festival",
		Short: "Organizes a film festival in as few days as possible",
		Long: `Assigns every film of a festival to a day and a cinema room so that incompatible films are never
projected on the same day, using as few days as possible.

  $ festival grasp --timeout 1m instance.txt schedule.txt

The output file is overwritten every time a schedule with fewer days is found.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "path to a configuration file (yaml, json, toml or env)")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&o.logFormat, "log-format", "", "log encoding: console or json")
	flags.DurationVar(&o.timeout, "timeout", 0, "time limit for the search, 0 means no limit")
	flags.StringVar(&o.metricsAddr, "metrics-addr", "", "address to serve prometheus metrics on, empty disables it")

	cmd.AddCommand(
		newStrategyCmd(o, "exhaustive", "Branch and bound search, optimal but exponential", buildExhaustive),
		newStrategyCmd(o, "greedy", "Single first-fit construction in decreasing conflict order", buildGreedy),
		newGraspCmd(o),
		newSatCmd(o),
	)

	return cmd
}

func newStrategyCmd(o *options, strategy, short string, build schedulerBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   strategy + " <input> <output>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, strategy, args[0], args[1], build)
		},
	}
}

func newGraspCmd(o *options) *cobra.Command {
	cmd := newStrategyCmd(o, graspStrategy, "Randomized constructions improved by day elimination and simulated annealing", buildGrasp)
	cmd.Flags().Uint64Var(&o.seed, "seed", 0, "random seed, 0 picks one and logs it")
	cmd.Flags().IntVar(&o.iterations, "iterations", 0, "number of constructions, 0 runs until interrupted")
	return cmd
}

func newSatCmd(o *options) *cobra.Command {
	cmd := newStrategyCmd(o, "sat", "Exact search asking a SAT solver for one day less at a time", buildSat)
	cmd.Flags().StringVar(&o.backend, "backend", giniBackend, fmt.Sprintf("SAT solver: %v", strings.Join(validBackends, ", ")))
	return cmd
}

func buildExhaustive(_ *options, _ *config.Config, observability scheduler.Observability) (scheduler.Scheduler, error) {
	return scheduler.NewExhaustiveScheduler(observability), nil
}

func buildGreedy(_ *options, _ *config.Config, observability scheduler.Observability) (scheduler.Scheduler, error) {
	return scheduler.NewGreedyScheduler(observability), nil
}

func buildGrasp(_ *options, cfg *config.Config, observability scheduler.Observability) (scheduler.Scheduler, error) {
	params := scheduler.GraspParams{
		InitialTemperature: cfg.Search.InitialTemperature,
		TemperatureFloor:   cfg.Search.TemperatureFloor,
		Cooling:            cfg.Search.Cooling,
		MaxIterations:      cfg.Search.MaxIterations,
		Seed:               cfg.Search.Seed,
	}
	return scheduler.NewGraspScheduler(params, observability), nil
}

func buildSat(o *options, cfg *config.Config, observability scheduler.Observability) (scheduler.Scheduler, error) {
	backend := strings.ToLower(o.backend)
	if !lo.Contains(validBackends, backend) {
		return nil, fmt.Errorf("%v is not a valid sat backend", o.backend)
	}

	var solver sat.SATSolver
	switch backend {
	case giniBackend:
		solver = sat.NewGiniSolver()
	case gophersatBackend:
		solver = sat.NewGophersatSolver()
	case kissatBackend:
		solver = sat.NewKissatSolver(cfg.Solvers.KissatPath)
	case minisatBackend:
		solver = sat.NewMinisatSolver(cfg.Solvers.MinisatPath)
	}
	return scheduler.NewSatScheduler(solver, observability), nil
}
