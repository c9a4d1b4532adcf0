package sat

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

type giniSolver struct{}

// NewGiniSolver returns a solver running in-process, no external executable is needed
func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(sat SAT) (SATSolution, error) {
	g := gini.NewVc(int(sat.Variables), len(sat.Clauses))
	for _, clause := range sat.Clauses {
		for _, literal := range clause {
			g.Add(z.Dimacs2Lit(int(literal)))
		}
		g.Add(z.LitNull)
	}

	switch g.Solve() {
	case satisfiable:
	case unsatisfiable:
		return nil, nil
	default:
		return nil, fmt.Errorf("gini could not decide the instance")
	}

	// Variables that appear in no clause are unknown to gini, they are reported as false
	known := int64(g.MaxVar())
	solution := make(SATSolution, 0, sat.Variables)
	for variable := int64(1); variable <= int64(sat.Variables); variable++ {
		if variable <= known && g.Value(z.Dimacs2Lit(int(variable))) {
			solution = append(solution, variable)
		} else {
			solution = append(solution, -variable)
		}
	}
	return solution, nil
}
