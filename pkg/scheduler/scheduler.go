package scheduler

import (
	"context"

	"github.com/limaJavier/festival/pkg/metrics"
	"github.com/limaJavier/festival/pkg/model"
	"go.uber.org/zap"
)

// Recorder persists every schedule that improves the best known number of days
type Recorder interface {
	Record(schedule model.Schedule) error
}

// RecorderFunc adapts a plain function into a Recorder
type RecorderFunc func(schedule model.Schedule) error

func (f RecorderFunc) Record(schedule model.Schedule) error {
	return f(schedule)
}

type Scheduler interface {
	// Schedule searches for a festival organization with as few days as possible, forwarding every improving schedule
	// to the recorder. It returns the best schedule found; when the context ends before the search does, the best
	// schedule is returned together with the context's error (the local search never ends on its own, so it returns
	// a nil error instead)
	Schedule(ctx context.Context, input model.ModelInput, recorder Recorder) (model.Schedule, error)
}

// Observability groups the logging and metrics sinks shared by every scheduler. Both fields are optional
type Observability struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func (o Observability) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
