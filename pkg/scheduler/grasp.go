package scheduler

import (
	"context"
	"math/rand/v2"

	"github.com/limaJavier/festival/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const graspStrategy = "grasp"

type GraspParams struct {
	InitialTemperature float64
	TemperatureFloor   float64
	Cooling            float64 // Factor applied to the temperature after each evaluated swap
	MaxIterations      int     // Constructions to perform; 0 means run until the context ends
	Seed               uint64
}

var DefaultGraspParams = GraspParams{
	InitialTemperature: 0.1,
	TemperatureFloor:   5e-7,
	Cooling:            0.999,
}

type graspScheduler struct {
	params        GraspParams
	observability Observability
}

// NewGraspScheduler returns a Greedy Randomized Adaptive Search Procedure: random greedy constructions followed by
// day elimination and simulated annealing repair
func NewGraspScheduler(params GraspParams, observability Observability) Scheduler {
	return &graspScheduler{
		params:        params,
		observability: observability,
	}
}

func (scheduler *graspScheduler) Schedule(ctx context.Context, input model.ModelInput, recorder Recorder) (model.Schedule, error) {
	logger := scheduler.observability.logger()
	metrics := scheduler.observability.Metrics

	conflicts := model.ConflictModelFromInput(input)
	capacity := input.Capacity()
	incumbent := newIncumbent(graspStrategy, recorder, scheduler.observability)
	rng := rand.New(rand.NewPCG(scheduler.params.Seed, scheduler.params.Seed))
	annealing := annealingParams{
		initialTemperature: scheduler.params.InitialTemperature,
		temperatureFloor:   scheduler.params.TemperatureFloor,
		cooling:            scheduler.params.Cooling,
	}

	order := lo.Range(conflicts.Films())
	iteration := 0
	for ; scheduler.params.MaxIterations == 0 || iteration < scheduler.params.MaxIterations; iteration++ {
		if ctx.Err() != nil {
			break
		}

		//** Construct
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		schedule := Greedy(conflicts, capacity, order)
		if _, err := incumbent.Offer(schedule); err != nil {
			return incumbent.Best(), err
		}

		//** Eliminate days and repair
		state := newSearchState(conflicts, capacity, schedule)
		for ctx.Err() == nil {
			dropped := state.eliminate()

			if state.total > 0 {
				repaired := state.repair(ctx, rng, annealing)
				metrics.ObserveRepair(repaired)
				if !repaired {
					break
				}
			}

			if _, err := incumbent.Offer(state.schedule); err != nil {
				return incumbent.Best(), err
			}

			// A stuck elimination leaves the same number of days, start over from a new construction
			if !dropped {
				break
			}
		}

		metrics.AddIterations(graspStrategy, 1)
	}

	logger.Debug("grasp finished", zap.Int("iterations", iteration), zap.Int("days", incumbent.days))
	return incumbent.Best(), nil
}
