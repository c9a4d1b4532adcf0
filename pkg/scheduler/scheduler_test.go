package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/festival/pkg/metrics"
	"github.com/limaJavier/festival/pkg/model"
	"github.com/limaJavier/festival/pkg/sat"
)

// collector keeps every recorded schedule
type collector struct {
	schedules []model.Schedule
}

func (c *collector) Record(schedule model.Schedule) error {
	c.schedules = append(c.schedules, schedule)
	return nil
}

func (c *collector) days() []int {
	days := make([]int, 0, len(c.schedules))
	for _, schedule := range c.schedules {
		days = append(days, schedule.Days())
	}
	return days
}

func newInput(t *testing.T, films []string, incompatibilities [][]string, rooms []string) model.ModelInput {
	t.Helper()
	input, err := model.ProcessRawInput(model.RawModelInput{
		Films:             films,
		Incompatibilities: incompatibilities,
		Rooms:             rooms,
	})
	require.NoError(t, err)
	return input
}

// crownInput is the crown graph on a0..a2 and b0..b2 (a_i incompatible with b_j when i != j), listed so that a
// first-fit pass needs three days while two are enough
func crownInput(t *testing.T) model.ModelInput {
	return newInput(t,
		[]string{"a0", "b0", "a1", "b1", "a2", "b2"},
		[][]string{{"a0", "b1"}, {"a0", "b2"}, {"a1", "b0"}, {"a1", "b2"}, {"a2", "b0"}, {"a2", "b1"}},
		[]string{"R1", "R2", "R3"},
	)
}

func assertValid(t *testing.T, input model.ModelInput, schedule model.Schedule) {
	t.Helper()
	require.NotNil(t, schedule)
	assert.NoError(t, model.Verify(schedule, model.ConflictModelFromInput(input), input.Capacity()))
}

func assertStrictlyDecreasing(t *testing.T, days []int) {
	t.Helper()
	for i := 1; i < len(days); i++ {
		assert.Less(t, days[i], days[i-1], "recorded days: %v", days)
	}
}

type namedScheduler struct {
	name      string
	scheduler Scheduler
	exact     bool
}

func allSchedulers() []namedScheduler {
	grasp := DefaultGraspParams
	grasp.MaxIterations = 50
	grasp.Seed = 1

	return []namedScheduler{
		{"exhaustive", NewExhaustiveScheduler(Observability{}), true},
		{"greedy", NewGreedyScheduler(Observability{}), false},
		{"grasp", NewGraspScheduler(grasp, Observability{}), false},
		{"sat", NewSatScheduler(sat.NewGiniSolver(), Observability{}), true},
		{"sat-gophersat", NewSatScheduler(sat.NewGophersatSolver(), Observability{}), true},
	}
}

func TestSchedulers(t *testing.T) {
	tests := []struct {
		name    string
		input   model.ModelInput
		optimum int
	}{
		{
			name:    "incompatible pair with two rooms",
			input:   newInput(t, []string{"A", "B", "C"}, [][]string{{"A", "B"}}, []string{"R1", "R2"}),
			optimum: 2,
		},
		{
			name:    "incompatible pair with one room",
			input:   newInput(t, []string{"A", "B", "C"}, [][]string{{"A", "B"}}, []string{"R1"}),
			optimum: 3,
		},
		{
			name:    "triangle",
			input:   newInput(t, []string{"A", "B", "C"}, [][]string{{"A", "B"}, {"B", "C"}, {"A", "C"}}, []string{"R1", "R2", "R3"}),
			optimum: 3,
		},
		{
			name: "five cycle",
			input: newInput(t,
				[]string{"A", "B", "C", "D", "E"},
				[][]string{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"}, {"E", "A"}},
				[]string{"R1", "R2", "R3", "R4", "R5"},
			),
			optimum: 3,
		},
		{
			name:    "rooms bound the days",
			input:   newInput(t, []string{"A", "B", "C", "D", "E", "F", "G"}, nil, []string{"R1", "R2", "R3"}),
			optimum: 3,
		},
		{
			name:    "no rooms",
			input:   newInput(t, []string{"A", "B", "C"}, nil, nil),
			optimum: 3,
		},
		{
			name:    "crown",
			input:   crownInput(t),
			optimum: 2,
		},
		{
			name: "ten films",
			input: newInput(t,
				[]string{"F0", "F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9"},
				[][]string{
					{"F0", "F1"}, {"F0", "F2"}, {"F1", "F2"}, {"F2", "F3"}, {"F3", "F4"},
					{"F4", "F5"}, {"F5", "F6"}, {"F6", "F7"}, {"F7", "F8"}, {"F8", "F9"},
				},
				[]string{"R1", "R2", "R3"},
			),
			optimum: 4, // Ten films in rooms of three
		},
	}

	for _, tt := range tests {
		for _, s := range allSchedulers() {
			t.Run(tt.name+"/"+s.name, func(t *testing.T) {
				// Arrange
				recorder := &collector{}

				// Act
				schedule, err := s.scheduler.Schedule(context.Background(), tt.input, recorder)

				// Assert
				require.NoError(t, err)
				assertValid(t, tt.input, schedule)
				assertStrictlyDecreasing(t, recorder.days())
				require.NotEmpty(t, recorder.schedules)
				assert.Equal(t, schedule, recorder.schedules[len(recorder.schedules)-1])
				if s.exact {
					assert.Equal(t, tt.optimum, schedule.Days())
				} else {
					assert.GreaterOrEqual(t, schedule.Days(), tt.optimum)
				}
			})
		}
	}
}

func TestIncompatiblePairIsSplit(t *testing.T) {
	input := newInput(t, []string{"A", "B", "C"}, [][]string{{"A", "B"}}, []string{"R1", "R2"})

	for _, s := range allSchedulers() {
		t.Run(s.name, func(t *testing.T) {
			// Act
			schedule, err := s.scheduler.Schedule(context.Background(), input, nil)

			// Assert
			require.NoError(t, err)
			require.Equal(t, 2, schedule.Days())
			for _, day := range schedule {
				assert.False(t, len(day) == 2 && !model.ConflictModelFromInput(input).Compatible(day[0], day[1]))
			}
		})
	}
}

func TestEmptyInstance(t *testing.T) {
	input := newInput(t, nil, nil, []string{"R1"})

	for _, s := range allSchedulers() {
		t.Run(s.name, func(t *testing.T) {
			// Arrange
			recorder := &collector{}

			// Act
			schedule, err := s.scheduler.Schedule(context.Background(), input, recorder)

			// Assert
			require.NoError(t, err)
			assert.Zero(t, schedule.Days())
			assert.Equal(t, []int{0}, recorder.days())
		})
	}
}

func TestRecorderErrorStopsTheSearch(t *testing.T) {
	failure := errors.New("disk full")
	recorder := RecorderFunc(func(model.Schedule) error { return failure })

	for _, s := range allSchedulers() {
		t.Run(s.name, func(t *testing.T) {
			// Act
			_, err := s.scheduler.Schedule(context.Background(), crownInput(t), recorder)

			// Assert
			assert.ErrorIs(t, err, failure)
		})
	}
}

func TestExhaustiveFindsOptimumAfterGreedy(t *testing.T) {
	// Arrange
	registry := prometheus.NewRegistry()
	searchMetrics, err := metrics.New(registry)
	require.NoError(t, err)
	recorder := &collector{}

	// Act
	schedule, err := NewExhaustiveScheduler(Observability{Metrics: searchMetrics}).Schedule(context.Background(), crownInput(t), recorder)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, recorder.days())
	assert.Equal(t, model.Schedule{{0, 2, 4}, {1, 3, 5}}, schedule)
	assert.Equal(t, float64(2), testutil.ToFloat64(searchMetrics.Incumbents.WithLabelValues(exhaustiveStrategy)))
	assert.Equal(t, float64(2), testutil.ToFloat64(searchMetrics.BestDays.WithLabelValues(exhaustiveStrategy)))
	assert.Positive(t, testutil.ToFloat64(searchMetrics.Nodes.WithLabelValues(exhaustiveStrategy)))
}

func TestExhaustiveCancellation(t *testing.T) {
	// Arrange
	films := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N"}
	input := newInput(t, films, nil, []string{"R1", "R2"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	schedule, err := NewExhaustiveScheduler(Observability{}).Schedule(ctx, input, nil)

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	assertValid(t, input, schedule)
	assert.Equal(t, 7, schedule.Days())
}

func TestSatFindsOptimumAfterGreedy(t *testing.T) {
	// Arrange
	recorder := &collector{}

	// Act
	schedule, err := NewSatScheduler(sat.NewGiniSolver(), Observability{}).Schedule(context.Background(), crownInput(t), recorder)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, recorder.days())
	assertValid(t, crownInput(t), schedule)
}

func TestSatCancellation(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	schedule, err := NewSatScheduler(sat.NewGiniSolver(), Observability{}).Schedule(ctx, crownInput(t), nil)

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, schedule.Days()) // Only the greedy bound was known
}

func TestGraspStopsWithContext(t *testing.T) {
	// Arrange
	params := DefaultGraspParams
	params.Seed = 3
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recorder := RecorderFunc(func(schedule model.Schedule) error {
		if schedule.Days() == 2 {
			cancel()
		}
		return nil
	})

	// Act
	schedule, err := NewGraspScheduler(params, Observability{}).Schedule(ctx, crownInput(t), recorder)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, schedule.Days())
}

func TestGraspIsReproducible(t *testing.T) {
	// Arrange
	params := DefaultGraspParams
	params.MaxIterations = 20
	params.Seed = 11
	first, second := &collector{}, &collector{}

	// Act
	_, err := NewGraspScheduler(params, Observability{}).Schedule(context.Background(), crownInput(t), first)
	require.NoError(t, err)
	_, err = NewGraspScheduler(params, Observability{}).Schedule(context.Background(), crownInput(t), second)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first.schedules, second.schedules)
}

func TestGraspMetrics(t *testing.T) {
	// Arrange
	searchMetrics, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	params := DefaultGraspParams
	params.MaxIterations = 5
	params.Seed = 2

	// Act
	_, err = NewGraspScheduler(params, Observability{Metrics: searchMetrics}).Schedule(context.Background(), crownInput(t), nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, float64(5), testutil.ToFloat64(searchMetrics.Iterations.WithLabelValues(graspStrategy)))
}
