package scheduler

import (
	"context"

	"github.com/limaJavier/festival/pkg/model"
)

const greedyStrategy = "greedy"

// Greedy places the films in the given order, each one on the first day (by creation) with a free room and no
// incompatible film, opening a new day when none qualifies. Films are never moved once placed
func Greedy(conflicts *model.ConflictModel, capacity int, order []int) model.Schedule {
	schedule := model.Schedule{}
	for _, film := range order {
		projected := false
		for day := range schedule.Days() {
			if schedule.HasRoom(day, capacity) && schedule.CanPlace(conflicts, day, film) {
				schedule.Place(day, film)
				projected = true
				break
			}
		}
		if !projected {
			schedule.Open(film)
		}
	}
	return schedule
}

type greedyScheduler struct {
	observability Observability
}

func NewGreedyScheduler(observability Observability) Scheduler {
	return &greedyScheduler{
		observability: observability,
	}
}

func (scheduler *greedyScheduler) Schedule(ctx context.Context, input model.ModelInput, recorder Recorder) (model.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conflicts := model.ConflictModelFromInput(input)
	incumbent := newIncumbent(greedyStrategy, recorder, scheduler.observability)

	schedule := Greedy(conflicts, input.Capacity(), conflicts.DegreeOrder())
	if _, err := incumbent.Offer(schedule); err != nil {
		return nil, err
	}
	return incumbent.Best(), nil
}
