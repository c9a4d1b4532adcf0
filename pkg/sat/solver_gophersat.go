package sat

import (
	"fmt"

	"github.com/crillab/gophersat/solver"
	"github.com/samber/lo"
)

type gophersatSolver struct{}

// NewGophersatSolver returns a second in-process solver, useful to cross-check gini
func NewGophersatSolver() SATSolver {
	return &gophersatSolver{}
}

func (s *gophersatSolver) Solve(sat SAT) (SATSolution, error) {
	clauses := lo.Map(sat.Clauses, func(clause []int64, _ int) []int {
		return lo.Map(clause, func(literal int64, _ int) int { return int(literal) })
	})

	var model []bool
	if len(clauses) > 0 {
		gs := solver.New(solver.ParseSlice(clauses))
		switch gs.Solve() {
		case solver.Sat:
			model = gs.Model()
		case solver.Unsat:
			return nil, nil
		default:
			return nil, fmt.Errorf("gophersat could not decide the instance")
		}
	}

	// The model only covers variables up to the greatest one appearing in a clause
	solution := make(SATSolution, 0, sat.Variables)
	for variable := int64(1); variable <= int64(sat.Variables); variable++ {
		if int(variable) <= len(model) && model[variable-1] {
			solution = append(solution, variable)
		} else {
			solution = append(solution, -variable)
		}
	}
	return solution, nil
}
