package scheduler

import (
	"context"

	"github.com/limaJavier/festival/pkg/model"
	"go.uber.org/zap"
)

const (
	exhaustiveStrategy = "exhaustive"
	cancellationPoll   = 1024 // Nodes explored between two context checks
)

type exhaustiveScheduler struct {
	observability Observability
}

// NewExhaustiveScheduler returns a branch and bound scheduler that always finds the optimal number of days. Its running
// time is exponential in the number of films
func NewExhaustiveScheduler(observability Observability) Scheduler {
	return &exhaustiveScheduler{
		observability: observability,
	}
}

type exhaustiveSearch struct {
	ctx       context.Context
	conflicts *model.ConflictModel
	capacity  int
	order     []int
	incumbent *incumbent
	schedule  model.Schedule
	nodes     uint64
	err       error // First error found, it stops the search
}

func (scheduler *exhaustiveScheduler) Schedule(ctx context.Context, input model.ModelInput, recorder Recorder) (model.Schedule, error) {
	conflicts := model.ConflictModelFromInput(input)
	search := &exhaustiveSearch{
		ctx:       ctx,
		conflicts: conflicts,
		capacity:  input.Capacity(),
		order:     conflicts.DegreeOrder(),
		incumbent: newIncumbent(exhaustiveStrategy, recorder, scheduler.observability),
		schedule:  model.Schedule{},
	}

	search.explore(0)

	scheduler.observability.Metrics.AddNodes(exhaustiveStrategy, search.nodes)
	scheduler.observability.logger().Debug("exhaustive search finished",
		zap.Uint64("nodes", search.nodes),
		zap.Int("days", search.incumbent.days),
		zap.Bool("complete", search.err == nil),
	)

	return search.incumbent.Best(), search.err
}

// explore places the film at position index of the order (and all the following ones) in every possible way that
// could still beat the incumbent
func (search *exhaustiveSearch) explore(index int) {
	if search.err != nil {
		return
	}

	search.nodes++
	if search.nodes%cancellationPoll == 0 {
		if err := search.ctx.Err(); err != nil {
			search.err = err
			return
		}
	}

	// Days never decrease along a branch, so a branch that already uses as many days as the incumbent cannot beat it
	if !search.incumbent.Improves(search.schedule.Days()) {
		return
	}

	// Every film is placed
	if index == len(search.order) {
		if _, err := search.incumbent.Offer(search.schedule); err != nil {
			search.err = err
		}
		return
	}

	film := search.order[index]

	// Try each of the days already opened
	for day := range search.schedule.Days() {
		if search.schedule.HasRoom(day, search.capacity) && search.schedule.CanPlace(search.conflicts, day, film) {
			search.withPlacement(day, film, func() { search.explore(index + 1) })
		}
	}

	// Try a new day
	search.withNewDay(film, func() { search.explore(index + 1) })
}

// withPlacement places film on day for the duration of fn
func (search *exhaustiveSearch) withPlacement(day, film int, fn func()) {
	search.schedule.Place(day, film)
	// Deeper levels may reallocate the schedule, so the undo must read it when it runs
	defer func() { search.schedule.Pop(day) }()
	fn()
}

// withNewDay opens a day holding film for the duration of fn
func (search *exhaustiveSearch) withNewDay(film int, fn func()) {
	search.schedule.Open(film)
	defer search.schedule.Drop()
	fn()
}
