package scheduler

import (
	"github.com/limaJavier/festival/pkg/model"
	"github.com/limaJavier/festival/pkg/sat"
)

type constraintState struct {
	indexer   indexer
	conflicts *model.ConflictModel
	order     []int

	films,
	days,
	capacity uint64
}

// auxiliaryVariables returns how many extra variables the capacity encoding needs on top of the (film, day) ones
func (state constraintState) auxiliaryVariables() uint64 {
	if state.capacity >= state.films {
		return 0
	}
	return state.days * (state.films - 1) * state.capacity
}

// counter returns the auxiliary variable s(i, j) of the sequential counter of day: "at least j of the first i films
// are projected on day". Both i and j start at 1
func (state constraintState) counter(day, i, j uint64) int64 {
	base := state.indexer.Variables() + day*(state.films-1)*state.capacity
	return int64(base + (i-1)*state.capacity + (j - 1) + 1)
}

func (state constraintState) variable(film, day uint64) int64 {
	return int64(state.indexer.Index(film, day))
}

// Each film is projected on at least one day
func completenessConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0, state.films)
	for film := range state.films {
		clause := make([]int64, 0, state.days)
		for day := range state.days {
			clause = append(clause, state.variable(film, day))
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

// Each film is projected on at most one day
func uniquenessConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for film := range state.films {
		for day := range state.days {
			for otherDay := day + 1; otherDay < state.days; otherDay++ {
				clauses = append(clauses, []int64{-state.variable(film, day), -state.variable(film, otherDay)})
			}
		}
	}
	return clauses
}

// Incompatible films are never projected on the same day
func incompatibilityConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for film := range state.films {
		for other := film + 1; other < state.films; other++ {
			if state.conflicts.Compatible(int(film), int(other)) {
				continue
			}
			for day := range state.days {
				clauses = append(clauses, []int64{-state.variable(film, day), -state.variable(other, day)})
			}
		}
	}
	return clauses
}

// No day projects more films than there are rooms (sequential counter encoding)
func capacityConstraints(state constraintState) [][]int64 {
	if state.capacity >= state.films {
		return [][]int64{}
	}

	n, k := state.films, state.capacity
	clauses := make([][]int64, 0)
	for day := range state.days {
		x := func(i uint64) int64 { return state.variable(i-1, day) }
		s := func(i, j uint64) int64 { return state.counter(day, i, j) }

		clauses = append(clauses, []int64{-x(1), s(1, 1)})
		for j := uint64(2); j <= k; j++ {
			clauses = append(clauses, []int64{-s(1, j)})
		}
		for i := uint64(2); i < n; i++ {
			clauses = append(clauses,
				[]int64{-x(i), s(i, 1)},
				[]int64{-s(i-1, 1), s(i, 1)},
			)
			for j := uint64(2); j <= k; j++ {
				clauses = append(clauses,
					[]int64{-x(i), -s(i-1, j-1), s(i, j)},
					[]int64{-s(i-1, j), s(i, j)},
				)
			}
			clauses = append(clauses, []int64{-x(i), -s(i-1, k)})
		}
		clauses = append(clauses, []int64{-x(n), -s(n-1, k)})
	}
	return clauses
}

// The most constrained film goes to the first day, which removes day permutations of the same organization
func symmetryConstraints(state constraintState) [][]int64 {
	if len(state.order) == 0 || state.days == 0 {
		return [][]int64{}
	}
	return [][]int64{{state.variable(uint64(state.order[0]), 0)}}
}

func buildSat(constraints []func(state constraintState) [][]int64, state constraintState) sat.SAT {
	satInstance := sat.SAT{
		Variables: state.indexer.Variables() + state.auxiliaryVariables(),
		Clauses:   [][]int64{},
	}
	for _, constraint := range constraints {
		satInstance.Clauses = append(satInstance.Clauses, constraint(state)...)
	}
	return satInstance
}
