package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/festival/pkg/config"
)

func writeTests(t *testing.T) string {
	t.Helper()
	directory := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(directory, "triangle.txt"), []byte("3 A B C 3 A B B C A C 2 R1 R2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "pair.json"), []byte(`{"films": ["A", "B"], "incompatibilities": [], "rooms": ["R1"]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "notes.md"), []byte("not an instance"), 0o644))
	return directory
}

func TestGetTests(t *testing.T) {
	// Arrange
	directory := writeTests(t)

	// Act
	tests, err := getTests(directory)

	// Assert
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, filepath.Join(directory, "pair.json"), tests[0].Name)
	assert.Equal(t, 2, tests[0].Films)
	assert.Equal(t, 1, tests[0].Rooms)
	assert.Equal(t, filepath.Join(directory, "triangle.txt"), tests[1].Name)
	assert.Equal(t, 3, tests[1].Incompatibilities)
}

func TestMeasure(t *testing.T) {
	// Arrange
	tests, err := getTests(writeTests(t))
	require.NoError(t, err)
	triangle := tests[1]
	o := options{seed: 3}
	cfg := &config.Config{}

	for _, strategy := range getStrategies() {
		t.Run(strategyTypes[strategy], func(t *testing.T) {
			// Act
			result := measure(context.Background(), o.newScheduler(strategy, cfg), strategy, triangle, 100*time.Millisecond)

			// Assert
			assert.Equal(t, 3, result.Days)
			assert.Equal(t, 1, result.Records) // Every construction already needs three days
			if strategy == graspStrategy {
				assert.Equal(t, timeout, result.Result)
			} else {
				assert.Equal(t, finished, result.Result)
			}
		})
	}
}

func TestToCsv(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "results.csv")
	results := []BenchmarkResult{
		{
			Strategy: satStrategy,
			Test:     TestMetadata{Name: "triangle.txt", Films: 3, Incompatibilities: 3, Rooms: 2},
			Days:     3,
			Records:  1,
			Best:     2 * time.Millisecond,
			Duration: 5 * time.Millisecond,
			Result:   finished,
		},
	}

	// Act
	err := toCsv(path, results)

	// Assert
	require.NoError(t, err)
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"sat", "triangle.txt", "3", "3", "2", "3", "1", "2", "5", "finished"}, records[1])
}

func TestRunRejectsUnknownSolver(t *testing.T) {
	// Arrange
	o := options{directory: t.TempDir(), solver: "cadical"}

	// Act
	err := o.run(context.Background())

	// Assert
	assert.ErrorContains(t, err, "cadical")
}
