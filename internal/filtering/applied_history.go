package filtering

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

const forceFlagSetMsg = "force flag is set"

// ApplicationsLister is the part of the Farol client the applied history filter needs.
type ApplicationsLister interface {
	GetMyApplications(ctx context.Context) (farol.Applications, error)
}

type AppliedHistoryConfig struct {
	Ignore bool
}

type AppliedHistoryDeps struct {
	Client ApplicationsLister
	Logger *zap.Logger
}

type appliedHistoryFilter struct {
	toggle
	deps   *AppliedHistoryDeps
	ignore bool
}

// NewAppliedHistory creates a filter that removes jobs the candidate already applied to.
func NewAppliedHistory(cfg *AppliedHistoryConfig, deps *AppliedHistoryDeps) Filter {
	ignore := false
	if cfg != nil {
		ignore = cfg.Ignore
	}

	return &appliedHistoryFilter{deps: deps, ignore: ignore}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Validate() error {
	if f.deps == nil || f.deps.Client == nil {
		return errors.New("farol client is required")
	}

	if f.deps.Logger == nil {
		return errors.New("logger is required")
	}

	return nil
}

func (f *appliedHistoryFilter) Apply(ctx context.Context, jobs *farol.Jobs) (*farol.Jobs, Step, error) {
	if f.ignore {
		f.deps.Logger.Info("ignoring already applied jobs", zap.String("reason", forceFlagSetMsg))
		return jobs, unchanged(jobs), nil
	}

	initial := jobs.Len()

	applications, err := f.deps.Client.GetMyApplications(ctx)
	if unsupportedHistory(err) {
		f.deps.Logger.Warn("application history is not available, keeping all jobs",
			zap.Error(err),
			zap.String("hint", "use --do-not-exclude-applied to skip this step"),
		)
		return jobs, unchanged(jobs), nil
	}
	if err != nil {
		return jobs, Step{}, fmt.Errorf("get my applications: %w", err)
	}

	excluded := jobs.Exclude(farol.JobIDField, itoa(applications.JobIDs()))
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding jobs based on my applications",
			zap.Ints("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}

// unsupportedHistory reports whether the API routed /jobs/my-applications to
// the single job handler, which rejects the path segment with 422.
func unsupportedHistory(err error) bool {
	var apiErr *farol.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity
}

func (f *appliedHistoryFilter) Status() Status {
	status := f.status(f.Name(), map[string]string{
		"exclude_applied": strconv.FormatBool(!f.ignore),
	})
	if f.ignore && status.Reason == "" {
		status.Reason = "skip requested via flag"
	}
	return status
}
