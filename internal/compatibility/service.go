package compatibility

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

// Service binds a calculator to the profile being matched and runs batch
// operations over job lists. Create one per candidate; the bound profile can
// be swapped at any time and is read once per batch.
type Service struct {
	calculator *Calculator
	logger     *zap.Logger

	mu             sync.RWMutex
	profile        *farol.Profile
	defaultProfile bool
}

// NewService returns a service bound to DefaultProfile.
func NewService(calculator *Calculator, logger *zap.Logger) *Service {
	if calculator == nil {
		calculator = NewCalculator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		calculator:     calculator,
		logger:         logger,
		profile:        DefaultProfile(),
		defaultProfile: true,
	}
}

// UpdateProfile replaces the bound profile. nil selects DefaultProfile.
// The service keeps its own copy.
func (s *Service) UpdateProfile(profile *farol.Profile) {
	isDefault := profile == nil
	if isDefault {
		profile = DefaultProfile()
	} else {
		copied := *profile
		profile = &copied
	}

	s.mu.Lock()
	s.profile = profile
	s.defaultProfile = isDefault
	s.mu.Unlock()

	s.logger.Debug("compatibility profile updated",
		zap.Bool("default_profile", isDefault),
		zap.Int("profile_id", profile.ID),
	)
}

// Profile returns a copy of the bound profile.
func (s *Service) Profile() *farol.Profile {
	profile, _ := s.snapshot()
	copied := *profile
	return &copied
}

// UsesDefaultProfile reports whether the bound profile is the fallback persona.
func (s *Service) UsesDefaultProfile() bool {
	_, isDefault := s.snapshot()
	return isDefault
}

func (s *Service) snapshot() (*farol.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, s.defaultProfile
}

func (s *Service) CalculateJob(job *farol.Job) Score {
	profile, _ := s.snapshot()
	return s.calculator.Calculate(profile, job)
}

// CalculateJobs decorates every job with its score, preserving order. All jobs
// are scored against the same profile even if UpdateProfile runs concurrently.
func (s *Service) CalculateJobs(jobs []*farol.Job) []*JobWithCompatibility {
	profile, isDefault := s.snapshot()

	scored := make([]*JobWithCompatibility, 0, len(jobs))
	for _, job := range jobs {
		score := s.calculator.Calculate(profile, job)
		scored = append(scored, &JobWithCompatibility{Job: job, Compatibility: &score})
	}

	s.logger.Debug("scored jobs",
		zap.Int("count", len(scored)),
		zap.Bool("default_profile", isDefault),
	)

	return scored
}

// SortJobs returns a new slice ordered by descending score. Ties keep their
// input order; a missing score counts as 0.
func (s *Service) SortJobs(jobs []*JobWithCompatibility) []*JobWithCompatibility {
	sorted := slices.Clone(jobs)
	if sorted == nil {
		sorted = []*JobWithCompatibility{}
	}

	slices.SortStableFunc(sorted, func(a, b *JobWithCompatibility) int {
		return b.ScoreValue() - a.ScoreValue()
	})

	return sorted
}

// FilterJobs keeps jobs scoring at least minScore; a missing score counts as 0.
func (s *Service) FilterJobs(jobs []*JobWithCompatibility, minScore int) []*JobWithCompatibility {
	kept := make([]*JobWithCompatibility, 0, len(jobs))
	for _, job := range jobs {
		if job.ScoreValue() >= minScore {
			kept = append(kept, job)
		}
	}

	if dropped := len(jobs) - len(kept); dropped > 0 {
		s.logger.Debug("jobs below minimum compatibility dropped",
			zap.Int("min_score", minScore),
			zap.Int("dropped", dropped),
			zap.Int("left", len(kept)),
		)
	}

	return kept
}
