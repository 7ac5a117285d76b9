package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

// CompaniesConfig lists companies whose jobs are never shown. Names are
// compared case-insensitively.
type CompaniesConfig struct {
	IDs   []string `mapstructure:"ids"`
	Names []string `mapstructure:"names"`
}

type companiesFilter struct {
	toggle
	cfg    CompaniesConfig
	logger *zap.Logger
}

// NewExcludedCompanies creates a filter that removes jobs by company id or name.
func NewExcludedCompanies(cfg *CompaniesConfig, logger *zap.Logger) Filter {
	f := &companiesFilter{logger: logger}
	if cfg != nil {
		f.cfg = *cfg
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, jobs *farol.Jobs) (*farol.Jobs, Step, error) {
	initial := jobs.Len()
	if len(f.cfg.IDs) == 0 && len(f.cfg.Names) == 0 {
		return jobs, unchanged(jobs), nil
	}

	excluded := jobs.Exclude(farol.JobCompanyIDField, f.cfg.IDs)
	excluded = append(excluded, jobs.Exclude(farol.JobCompanyNameField, f.cfg.Names)...)

	if len(excluded) > 0 {
		f.logger.Info("excluding jobs by companies",
			zap.Strings("excluded_company_ids", f.cfg.IDs),
			zap.Strings("excluded_company_names", f.cfg.Names),
			zap.Ints("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.cfg.IDs) > 0 {
		details["ids"] = strings.Join(f.cfg.IDs, ",")
	}
	if len(f.cfg.Names) > 0 {
		details["names"] = strings.Join(f.cfg.Names, ",")
	}
	return f.status(f.Name(), details)
}
