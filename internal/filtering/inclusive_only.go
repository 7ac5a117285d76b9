package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

type inclusiveOnlyFilter struct {
	toggle
	logger *zap.Logger
}

// NewInclusiveOnly creates a filter that keeps only jobs from companies
// flagged as inclusive. It starts disabled unless enabled is true.
func NewInclusiveOnly(enabled bool, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &inclusiveOnlyFilter{logger: logger}
	if !enabled {
		f.Disable("inclusive-only is not set")
	}
	return f
}

func (f *inclusiveOnlyFilter) Name() string { return "inclusive_only" }

func (f *inclusiveOnlyFilter) Validate() error { return nil }

func (f *inclusiveOnlyFilter) Apply(_ context.Context, jobs *farol.Jobs) (*farol.Jobs, Step, error) {
	initial := jobs.Len()
	excluded := jobs.ExcludeNonInclusive()
	if len(excluded) > 0 {
		f.logger.Info("excluding jobs from companies not flagged inclusive",
			zap.Ints("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}

func (f *inclusiveOnlyFilter) Status() Status {
	return f.status(f.Name(), nil)
}
