package sat

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const DefaultMinisatPath = "minisat"

type minisatSolver struct {
	path string
}

// NewMinisatSolver returns a solver that runs a MiniSat-style executable (minisat, glucose-simp, ...) reading the
// instance from a file and writing its result to another one
func NewMinisatSolver(path string) SATSolver {
	if path == "" {
		path = DefaultMinisatPath
	}
	return &minisatSolver{path: path}
}

func (solver *minisatSolver) Solve(sat SAT) (SATSolution, error) {
	dimacs := sat.ToDIMACS() // Transform SAT into DIMACS-CNF string format

	// Create a temporary file to hold the DIMACS content
	inputTempFile, err := os.CreateTemp("", "festival-*.cnf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(inputTempFile.Name())

	outputTempFile, err := os.CreateTemp("", "festival-minisat-*.out")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	outputTempFile.Close()
	defer os.Remove(outputTempFile.Name())

	// Write the DIMACS content to the temporary file
	if _, err := inputTempFile.WriteString(dimacs); err != nil {
		inputTempFile.Close()
		return nil, fmt.Errorf("failed to write DIMACS to temporary file: %w", err)
	}
	if err := inputTempFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	cmd := exec.Command(solver.path, "-verb=0", inputTempFile.Name(), outputTempFile.Name())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if cmd.ProcessState == nil {
		return nil, fmt.Errorf("cannot start %v: %w", solver.path, err)
	}

	// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable
	if err != nil && cmd.ProcessState.ExitCode() != 10 && cmd.ProcessState.ExitCode() != 20 {
		return nil, fmt.Errorf("an error occurred during %v execution: %v : %v", solver.path, err.Error(), stderr.String())
	} else if cmd.ProcessState.ExitCode() == 20 {
		return nil, nil
	}

	output, err := os.ReadFile(outputTempFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	return parseMinisatSolution(string(output))
}

// parseMinisatSolution reads a MiniSat result file: a "SAT" or "UNSAT" header followed, when satisfiable, by the
// literals of the model closed by 0
func parseMinisatSolution(solverOutput string) (SATSolution, error) {
	lines := strings.Split(strings.TrimSpace(solverOutput), "\n")
	switch strings.TrimSpace(lines[0]) {
	case "SAT":
	case "UNSAT":
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected solver result: %q", lines[0])
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("solver reported a model but did not write it")
	}

	var parseErr error
	literals := lo.Map(strings.Fields(lines[1]), func(valueStr string, _ int) int64 {
		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("invalid literal in solver output: %w", err)
		}
		return value
	})
	if parseErr != nil {
		return nil, parseErr
	}

	// The model is closed by 0
	return lo.Filter(literals, func(literal int64, _ int) bool { return literal != 0 }), nil
}
