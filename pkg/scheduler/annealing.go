package scheduler

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/limaJavier/festival/pkg/model"
)

// searchState is a schedule that may temporarily violate incompatibilities, together with the number of incompatible
// pairs on each day and in total. Counts are updated incrementally on every mutation
type searchState struct {
	conflicts    *model.ConflictModel
	capacity     int
	schedule     model.Schedule
	dayConflicts []int
	total        int
}

func newSearchState(conflicts *model.ConflictModel, capacity int, schedule model.Schedule) *searchState {
	state := &searchState{
		conflicts:    conflicts,
		capacity:     capacity,
		schedule:     schedule,
		dayConflicts: make([]int, schedule.Days()),
	}
	for day, films := range schedule {
		state.dayConflicts[day] = conflicts.DayConflicts(films)
		state.total += state.dayConflicts[day]
	}
	return state
}

// eliminate tries to empty the last day by moving its films, last one first, to earlier days with a free room. Each
// film goes to the day where it introduces the fewest incompatibilities (first such day on ties). It stops as soon as
// a film finds no free room. The last day is dropped if it ends up empty, in which case it returns true
func (state *searchState) eliminate() bool {
	last := state.schedule.Days() - 1
	if last < 0 {
		return false
	}

	for len(state.schedule[last]) > 0 {
		film := state.schedule[last][len(state.schedule[last])-1]

		target, introduced := -1, 0
		for day := range last {
			if !state.schedule.HasRoom(day, state.capacity) {
				continue
			}
			if conflicts := state.conflicts.Conflicts(film, state.schedule[day]); target < 0 || conflicts < introduced {
				target, introduced = day, conflicts
			}
		}

		// No empty room left on the previous days
		if target < 0 {
			return false
		}

		state.schedule.Pop(last)
		removed := state.conflicts.Conflicts(film, state.schedule[last])
		state.dayConflicts[last] -= removed
		state.schedule.Place(target, film)
		state.dayConflicts[target] += introduced
		state.total += introduced - removed
	}

	state.schedule.Drop()
	state.dayConflicts = state.dayConflicts[:last]
	return true
}

// annealingParams drive the conflict repair
type annealingParams struct {
	initialTemperature float64
	temperatureFloor   float64
	cooling            float64
}

// repair removes incompatibilities by swapping films between days, following a simulated annealing acceptance rule.
// It returns true if the schedule ends without incompatibilities
func (state *searchState) repair(ctx context.Context, rng *rand.Rand, params annealingParams) bool {
	temperature := params.initialTemperature

	for state.total > 0 && temperature > params.temperatureFloor {
		// A swap needs two days
		if ctx.Err() != nil || state.schedule.Days() < 2 {
			return false
		}

		day := slices.IndexFunc(state.dayConflicts, func(conflicts int) bool { return conflicts > 0 })
		evaluated := false

		for position := range len(state.schedule[day]) {
			film := state.schedule[day][position]
			oldFirst := state.conflicts.Conflicts(film, state.schedule[day])
			if oldFirst == 0 {
				continue
			}
			evaluated = true

			// Pick a random film from a different random day
			other := rng.IntN(state.schedule.Days() - 1)
			if other >= day {
				other++
			}
			if len(state.schedule[other]) == 0 {
				temperature *= params.cooling
				continue
			}
			partnerPosition := rng.IntN(len(state.schedule[other]))
			partner := state.schedule[other][partnerPosition]
			oldSecond := state.conflicts.Conflicts(partner, state.schedule[other])

			// Swap and compute the incompatibilities each film has on its new day
			state.schedule[day][position], state.schedule[other][partnerPosition] = partner, film
			newFirst := state.conflicts.Conflicts(partner, state.schedule[day])
			newSecond := state.conflicts.Conflicts(film, state.schedule[other])
			delta := (newFirst + newSecond) - (oldFirst + oldSecond)

			// Improvements are always kept, anything else with probability exp(-delta/T)
			if delta < 0 || rng.Float64() <= math.Exp(-float64(delta)/temperature) {
				state.dayConflicts[day] += newFirst - oldFirst
				state.dayConflicts[other] += newSecond - oldSecond
				state.total += delta
			} else {
				state.schedule[day][position], state.schedule[other][partnerPosition] = film, partner
			}

			temperature *= params.cooling
		}

		// Counts claim a conflict the day does not have
		if !evaluated {
			break
		}
	}

	return state.total == 0
}
