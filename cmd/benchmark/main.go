package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/limaJavier/festival/pkg/config"
	"github.com/limaJavier/festival/pkg/logger"
	"github.com/limaJavier/festival/pkg/model"
	"github.com/limaJavier/festival/pkg/sat"
	"github.com/limaJavier/festival/pkg/scheduler"
)

type StrategyType int

const (
	greedyStrategy StrategyType = iota
	graspStrategy
	satStrategy
	exhaustiveStrategy
)

type ResultType int

const (
	finished ResultType = iota // The strategy stopped on its own
	timeout
	failed
)

var (
	strategyTypes = map[StrategyType]string{
		greedyStrategy:     "greedy",
		graspStrategy:      "grasp",
		satStrategy:        "sat",
		exhaustiveStrategy: "exhaustive",
	}
	resultTypes = map[ResultType]string{
		finished: "finished",
		timeout:  "timeout",
		failed:   "failed",
	}
	validExtensions = []string{".txt", ".json", ".in"}
)

type TestMetadata struct {
	Name              string
	Input             model.ModelInput
	Films             int
	Incompatibilities int
	Rooms             int
}

type BenchmarkResult struct {
	Strategy StrategyType
	Test     TestMetadata
	Days     int
	Records  int
	Duration time.Duration // Until the search returned
	Best     time.Duration // Until the best schedule was recorded
	Result   ResultType
}

type options struct {
	directory string
	timeout   time.Duration
	out       string
	seed      uint64
	solver    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Runs every strategy over a directory of instances and writes a CSV report",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&o.directory, "dir", "", "directory holding the instances")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 10*time.Second, "time limit for each strategy on each instance")
	cmd.Flags().StringVar(&o.out, "out", "benchmark_results.csv", "path of the CSV report")
	cmd.Flags().Uint64Var(&o.seed, "seed", 1, "random seed of the local search")
	cmd.Flags().StringVar(&o.solver, "solver", "gini", "SAT solver of the sat strategy: gini, gophersat, kissat or minisat")
	if err := cmd.MarkFlagRequired("dir"); err != nil {
		panic(err)
	}

	return cmd
}

func (o options) run(ctx context.Context) error {
	if !lo.Contains([]string{"gini", "gophersat", "kissat", "minisat"}, strings.ToLower(o.solver)) {
		return fmt.Errorf("%v is not a valid sat solver", o.solver)
	}

	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tests, err := getTests(o.directory)
	if err != nil {
		return err
	}

	results := make([]BenchmarkResult, 0, len(tests)*len(strategyTypes))
	for _, test := range tests {
		for _, strategy := range getStrategies() {
			log.Info("running", zap.String("test", test.Name), zap.String("strategy", strategyTypes[strategy]))
			result := measure(ctx, o.newScheduler(strategy, cfg), strategy, test, o.timeout)
			if result.Result == failed {
				log.Warn("strategy failed", zap.String("test", test.Name), zap.String("strategy", strategyTypes[strategy]))
			}
			results = append(results, result)
		}
	}

	return toCsv(o.out, results)
}

func (o options) newScheduler(strategy StrategyType, cfg *config.Config) scheduler.Scheduler {
	observability := scheduler.Observability{}
	switch strategy {
	case graspStrategy:
		params := scheduler.DefaultGraspParams
		params.Seed = o.seed
		return scheduler.NewGraspScheduler(params, observability)
	case satStrategy:
		return scheduler.NewSatScheduler(o.satSolver(cfg), observability)
	case exhaustiveStrategy:
		return scheduler.NewExhaustiveScheduler(observability)
	default:
		return scheduler.NewGreedyScheduler(observability)
	}
}

func (o options) satSolver(cfg *config.Config) sat.SATSolver {
	switch strings.ToLower(o.solver) {
	case "gophersat":
		return sat.NewGophersatSolver()
	case "kissat":
		return sat.NewKissatSolver(cfg.Solvers.KissatPath)
	case "minisat":
		return sat.NewMinisatSolver(cfg.Solvers.MinisatPath)
	default:
		return sat.NewGiniSolver()
	}
}

func getTests(directory string) ([]TestMetadata, error) {
	files, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	files = lo.Filter(files, func(file os.DirEntry, _ int) bool {
		return !file.IsDir() && slices.Contains(validExtensions, strings.ToLower(filepath.Ext(file.Name())))
	})

	tests := make([]TestMetadata, 0, len(files))
	for _, file := range files {
		filename := filepath.Join(directory, file.Name())
		input, err := model.InputFromFile(filename)
		if err != nil {
			return nil, fmt.Errorf("cannot parse input file %v: %w", filename, err)
		}

		tests = append(tests, TestMetadata{
			Name:              filename,
			Input:             input,
			Films:             len(input.Films),
			Incompatibilities: len(input.Incompatibilities),
			Rooms:             len(input.Rooms),
		})
	}
	return tests, nil
}

func getStrategies() []StrategyType {
	return []StrategyType{greedyStrategy, graspStrategy, satStrategy, exhaustiveStrategy}
}

func measure(ctx context.Context, engine scheduler.Scheduler, strategy StrategyType, test TestMetadata, limit time.Duration) BenchmarkResult {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	result := BenchmarkResult{
		Strategy: strategy,
		Test:     test,
	}

	start := time.Now()
	recorder := scheduler.RecorderFunc(func(schedule model.Schedule) error {
		result.Records++
		result.Best = time.Since(start)
		return nil
	})

	best, err := engine.Schedule(ctx, test.Input, recorder)
	result.Duration = time.Since(start)
	result.Days = best.Days()

	switch {
	case errors.Is(err, context.DeadlineExceeded) || (err == nil && strategy == graspStrategy):
		// The local search only stops at the deadline
		result.Result = timeout
	case err != nil:
		result.Result = failed
	default:
		result.Result = finished
	}
	return result
}

func toCsv(path string, results []BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Strategy", "Test", "Films", "Incompatibilities", "Rooms", "Days", "Records", "Best(ms)", "Duration(ms)", "Result"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{
			strategyTypes[result.Strategy],
			result.Test.Name,
			fmt.Sprintf("%d", result.Test.Films),
			fmt.Sprintf("%d", result.Test.Incompatibilities),
			fmt.Sprintf("%d", result.Test.Rooms),
			fmt.Sprintf("%d", result.Days),
			fmt.Sprintf("%d", result.Records),
			fmt.Sprintf("%d", result.Best.Milliseconds()),
			fmt.Sprintf("%d", result.Duration.Milliseconds()),
			resultTypes[result.Result],
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
