package scheduler

import (
	"fmt"
	"math"

	"github.com/limaJavier/festival/pkg/metrics"
	"github.com/limaJavier/festival/pkg/model"
	"go.uber.org/zap"
)

// incumbent keeps track of the best schedule found during a run
type incumbent struct {
	strategy string
	days     int // math.MaxInt until a first schedule is recorded
	best     model.Schedule
	recorder Recorder
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func newIncumbent(strategy string, recorder Recorder, observability Observability) *incumbent {
	return &incumbent{
		strategy: strategy,
		days:     math.MaxInt,
		recorder: recorder,
		logger:   observability.logger(),
		metrics:  observability.Metrics,
	}
}

// Improves checks whether a schedule with the given number of days would beat the incumbent
func (inc *incumbent) Improves(days int) bool {
	return days < inc.days
}

// Offer records schedule if it has strictly fewer days than the incumbent. The schedule is copied, so the caller may
// keep mutating it
func (inc *incumbent) Offer(schedule model.Schedule) (bool, error) {
	days := schedule.Days()
	if !inc.Improves(days) {
		return false, nil
	}

	inc.days = days
	inc.best = schedule.Clone()
	inc.metrics.ObserveIncumbent(inc.strategy, days)
	inc.logger.Info("new incumbent", zap.String("strategy", inc.strategy), zap.Int("days", days))

	if inc.recorder != nil {
		if err := inc.recorder.Record(inc.best); err != nil {
			return true, fmt.Errorf("cannot record schedule: %w", err)
		}
	}
	return true, nil
}

// Best returns the best schedule recorded so far (nil if none)
func (inc *incumbent) Best() model.Schedule {
	return inc.best
}
