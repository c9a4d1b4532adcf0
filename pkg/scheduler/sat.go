package scheduler

import (
	"context"
	"fmt"

	"github.com/limaJavier/festival/pkg/model"
	"github.com/limaJavier/festival/pkg/sat"
	"go.uber.org/zap"
)

const satStrategy = "sat"

type satScheduler struct {
	solver        sat.SATSolver
	observability Observability
}

// NewSatScheduler returns an exact scheduler that starts from the greedy organization and asks the SAT solver for an
// organization with one day less until the solver proves there is none
func NewSatScheduler(solver sat.SATSolver, observability Observability) Scheduler {
	return &satScheduler{
		solver:        solver,
		observability: observability,
	}
}

func (scheduler *satScheduler) Schedule(ctx context.Context, input model.ModelInput, recorder Recorder) (model.Schedule, error) {
	logger := scheduler.observability.logger()

	conflicts := model.ConflictModelFromInput(input)
	capacity := input.Capacity()
	incumbent := newIncumbent(satStrategy, recorder, scheduler.observability)
	order := conflicts.DegreeOrder()

	//** Upper bound
	if _, err := incumbent.Offer(Greedy(conflicts, capacity, order)); err != nil {
		return nil, err
	}

	//** Lower bound: rooms alone force this many days
	films := conflicts.Films()
	lower := (films + capacity - 1) / capacity

	constraints := []func(state constraintState) [][]int64{
		completenessConstraints,
		uniquenessConstraints,
		incompatibilityConstraints,
		capacityConstraints,
		symmetryConstraints,
	}

	for days := incumbent.days - 1; days >= lower && days >= 1; days-- {
		if err := ctx.Err(); err != nil {
			return incumbent.Best(), err
		}

		state := constraintState{
			indexer:   newIndexer(uint64(films), uint64(days)),
			conflicts: conflicts,
			order:     order,
			films:     uint64(films),
			days:      uint64(days),
			capacity:  uint64(capacity),
		}
		satInstance := buildSat(constraints, state)
		logger.Debug("solving sat instance",
			zap.Int("days", days),
			zap.Uint64("variables", satInstance.Variables),
			zap.Int("clauses", len(satInstance.Clauses)),
		)

		solution, err := scheduler.solver.Solve(satInstance)
		if err != nil {
			return incumbent.Best(), fmt.Errorf("cannot solve sat instance for %d days: %w", days, err)
		} else if solution == nil { // The incumbent is optimal
			logger.Debug("sat instance is unsatisfiable", zap.Int("days", days))
			break
		}

		schedule := decodeSolution(solution, state.indexer, days)
		if err := model.Verify(schedule, conflicts, capacity); err != nil {
			return incumbent.Best(), fmt.Errorf("solver returned an invalid organization: %w", err)
		}
		if _, err := incumbent.Offer(schedule); err != nil {
			return incumbent.Best(), err
		}

		// The organization may leave days empty, continue below the days it actually uses
		days = min(days, schedule.Days())
	}

	return incumbent.Best(), nil
}

// decodeSolution builds the organization from the (film, day) variables set to true, empty days are dropped
func decodeSolution(solution sat.SATSolution, indexer indexer, days int) model.Schedule {
	schedule := make(model.Schedule, days)
	for _, literal := range solution {
		if literal <= 0 || uint64(literal) > indexer.Variables() {
			continue
		}
		film, day := indexer.Attributes(uint64(literal))
		schedule.Place(int(day), int(film))
	}
	return schedule.Compact()
}
