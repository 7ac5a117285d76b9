package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

type inactiveFilter struct {
	toggle
	logger *zap.Logger
}

// NewInactive creates a filter that removes postings that are closed.
func NewInactive(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inactiveFilter{logger: logger}
}

func (f *inactiveFilter) Name() string { return "inactive" }

func (f *inactiveFilter) Validate() error { return nil }

func (f *inactiveFilter) Apply(_ context.Context, jobs *farol.Jobs) (*farol.Jobs, Step, error) {
	initial := jobs.Len()
	excluded := jobs.ExcludeInactive()
	if len(excluded) > 0 {
		f.logger.Info("excluding closed jobs. It is impossible to apply them",
			zap.Ints("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}

func (f *inactiveFilter) Status() Status {
	return f.status(f.Name(), nil)
}
