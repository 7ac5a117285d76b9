package filtering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/ai"
	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

// JobGetter fetches the full posting before it is sent to the model.
type JobGetter interface {
	GetJob(ctx context.Context, id int) (*farol.Job, error)
}

type AIFitFilterConfig struct {
	Enabled bool
	Model   string
}

type AIFitFilterDeps struct {
	Logger      *zap.Logger
	Client      JobGetter
	Matcher     ai.Matcher
	Profile     *farol.Profile
	ExcludeFile string
}

type aiFitFilter struct {
	toggle
	config *AIFitFilterConfig
	deps   *AIFitFilterDeps
}

// NewAIFit creates the AI-based filtering step. Jobs the model rejects are
// dropped and, when an exclude file is configured, recorded there.
func NewAIFit(cfg *AIFitFilterConfig, deps *AIFitFilterDeps) Filter {
	if cfg == nil {
		cfg = &AIFitFilterConfig{}
	}

	f := &aiFitFilter{config: cfg, deps: deps}
	if !cfg.Enabled {
		f.Disable("ai is not enabled")
	}
	return f
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Validate() error {
	if f.deps == nil {
		return errors.New("deps are not initialized: filter is not usable")
	}
	if f.deps.Matcher == nil {
		return errors.New("ai matcher is required when ai filter is enabled")
	}
	if f.deps.Profile == nil {
		return errors.New("candidate profile is required for AI evaluation")
	}
	if f.deps.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, jobs *farol.Jobs) (*farol.Jobs, Step, error) {
	initial := jobs.Len()
	approved := make([]*farol.Job, 0, initial)
	var rejected []*farol.Job

	for _, job := range jobs.Items {
		if err := ctx.Err(); err != nil {
			return jobs, Step{}, err
		}

		detailed := f.detailed(ctx, job)

		assessment, err := f.deps.Matcher.Evaluate(ctx, f.deps.Profile, detailed)
		if err != nil {
			f.deps.Logger.Warn("AI evaluation failed",
				zap.Int("job_id", job.ID),
				zap.Error(err),
			)
			detailed.AI = ai.Failure(err)
			approved = append(approved, detailed)
			continue
		}

		detailed.AI = assessment.Annotation()

		if !assessment.Fit {
			f.deps.Logger.Info("job rejected by AI provider",
				zap.Int("job_id", job.ID),
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)
			rejected = append(rejected, detailed)
			continue
		}

		f.deps.Logger.Info("job approved by AI",
			zap.Int("job_id", job.ID),
			zap.Float64("ai_score", assessment.Score),
		)
		approved = append(approved, detailed)
	}

	jobs.Items = approved

	if err := f.appendToExcludeFile(rejected); err != nil {
		f.deps.Logger.Warn("failed to append rejected jobs to exclude file", zap.Error(err))
	}

	f.deps.Logger.Info("AI filtering completed",
		zap.Int("initial_jobs", initial),
		zap.Int("approved_jobs", len(approved)),
	)

	return jobs, Step{Initial: initial, Dropped: initial - len(approved), Left: len(approved)}, nil
}

// detailed returns the full posting, falling back to the list entry.
func (f *aiFitFilter) detailed(ctx context.Context, job *farol.Job) *farol.Job {
	if f.deps.Client == nil {
		return job
	}

	full, err := f.deps.Client.GetJob(ctx, job.ID)
	if err != nil || full == nil {
		f.deps.Logger.Debug("fetching detailed job failed",
			zap.Int("job_id", job.ID),
			zap.Error(err),
		)
		return job
	}
	return full
}

func (f *aiFitFilter) appendToExcludeFile(rejected []*farol.Job) error {
	path := strings.TrimSpace(f.deps.ExcludeFile)
	if path == "" || len(rejected) == 0 {
		return nil
	}

	excluded, err := farol.GetExcludedJobsFromFile(path)
	if err != nil {
		return fmt.Errorf("load excluded jobs: %w", err)
	}

	for _, job := range rejected {
		reason := ""
		if job.AI != nil {
			reason = job.AI.Reason
		}
		excluded.Append((&farol.Jobs{Items: []*farol.Job{job}}).ToExcluded(farol.ExcludeActorAI, reason))
	}

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("write excluded jobs: %w", err)
	}

	f.deps.Logger.Info("rejected jobs appended to exclude file",
		zap.Int("count", len(rejected)),
		zap.String("exclude_file", path),
	)

	return nil
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{}
	if f.config.Model != "" {
		details["model"] = f.config.Model
	}
	if f.deps != nil && f.deps.ExcludeFile != "" {
		details["exclude_file"] = f.deps.ExcludeFile
	}
	return f.status(f.Name(), details)
}
