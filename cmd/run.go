package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/ai"
	"github.com/farol-inclusivo/farol-matcher/internal/ai/gemini"
	"github.com/farol-inclusivo/farol-matcher/internal/compatibility"
	"github.com/farol-inclusivo/farol-matcher/internal/farol"
	"github.com/farol-inclusivo/farol-matcher/internal/filtering"
	"github.com/farol-inclusivo/farol-matcher/internal/logger"
	"github.com/farol-inclusivo/farol-matcher/internal/secrets"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptReportByCompanies   = "Report by companies"
	PromptManualApply         = "Apply to jobs in manual mode"
	PromptAppendToExcludeFile = "Append all jobs to exclude file"
	PromptJobsToFile          = "Dump jobs to file"
	defaultFallbackLetter     = "Olá! Tenho interesse nesta vaga e gostaria de me candidatar."
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompanies, PromptManualApply, PromptJobsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch jobs, rank them against your profile and apply",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude jobs if already applied")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation if found suitable jobs")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	runCmd.Flags().IntP("min-score", "m", 0, "drop jobs with a compatibility score below this value (0-100)")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("compatibility.min-score", runCmd.Flags().Lookup("min-score"))
}

// session is everything the prompt actions work with.
type session struct {
	client  *farol.Client
	logger  *zap.Logger
	config  *Config
	service *compatibility.Service
	jobs    []*compatibility.JobWithCompatibility
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the farol-matcher")

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	token, err := resolveToken(config)
	if err != nil {
		logger.Fatal(
			"loading farol token",
			zap.Error(err),
			zap.String("hint", "set FAROL_TOKEN_FILE environment variable or the 'token-file' key in the configuration file"),
		)
	}

	client := newFarolClient(config, token, logger)

	tables, err := compatibility.LoadTables(config.KeywordsFile)
	if err != nil {
		logger.Fatal("loading keyword tables", zap.Error(err))
	}

	service := compatibility.NewService(compatibility.NewCalculator(tables), logger)

	profile, err := getProfile(ctx, client, logger)
	if err != nil {
		logger.Fatal("getting my profile", zap.Error(err))
	}
	service.UpdateProfile(profile)

	jobs, err := client.GetJobs(ctx, config.Search)
	if err != nil {
		logger.Fatal("getting available jobs", zap.Error(err))
	}

	logger.Info("getting jobs", zap.Int("count", jobs.Len()))

	if jobs.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs found"))
		return
	}

	filters := prepareFilters(ctx, cmd, client, config, service.Profile(), logger)

	jobs, err = filters.RunFilters(ctx, jobs)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	scored := service.SortJobs(service.FilterJobs(service.CalculateJobs(jobs.Items), config.Compatibility.MinScore))

	if len(scored) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	s := &session{client: client, logger: logger, config: config, service: service, jobs: scored}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	action := PromptYes
	for {
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of jobs", zap.Int("count", len(s.jobs)))

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove || len(s.jobs) == 0 {
			return
		}
	}
}

// getProfile returns the candidate profile, or nil when the user has none and
// the default persona should be used.
func getProfile(ctx context.Context, client *farol.Client, logger *zap.Logger) (*farol.Profile, error) {
	profile, err := client.GetMyProfile(ctx)
	if errors.Is(err, farol.ErrNotFound) || errors.Is(err, farol.ErrForbidden) {
		logger.Warn("no candidate profile, scoring against the default persona",
			zap.Error(err),
			zap.String("hint", "create a candidate profile on Farol for personal scores"),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info("using candidate profile", zap.Int("profile_id", profile.ID), zap.String("name", profile.FullName()))
	return profile, nil
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptYes:
		return s.apply(ctx, s.jobs)
	case PromptNo:
		s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptManualApply:
		return s.manualApply(ctx)
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(compatibility.ReportByCompany(s.jobs), "", "  ")
		s.logger.Info(string(pretty), zap.Int("jobs count", len(s.jobs)))
		return nil
	case PromptJobsToFile:
		filename, err := dumpToTmpFile(s.jobs)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) manualApply(ctx context.Context) error {
	for {
		items := make([]string, 0, len(s.jobs)+2)
		for _, job := range s.jobs {
			band := compatibility.BandFor(job.ScoreValue())
			items = append(items, fmt.Sprintf("%d %s / %s / %d%% %s",
				job.ID, job.Title, job.CompanyName(), job.ScoreValue(), band.Label(),
			))
		}

		excludeFile := viper.GetString("exclude-file")
		if excludeFile != "" && len(s.jobs) != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptBack:
			return nil
		case PromptAppendToExcludeFile:
			excluded, err := farol.GetExcludedJobsFromFile(excludeFile)
			if err != nil {
				return err
			}

			excluded.Append(s.farolJobs().ToExcluded(farol.ExcludeActorUser, "excluded from manual mode"))

			if err = excluded.ToFile(excludeFile); err != nil {
				return err
			}

			s.logger.Info("appended to exclude file", zap.String("filename", excludeFile))
			s.jobs = nil
		default:
			id, err := strconv.Atoi(strings.Fields(selected)[0])
			if err != nil {
				return fmt.Errorf("there is no such job %q", selected)
			}

			idx := slices.IndexFunc(s.jobs, func(job *compatibility.JobWithCompatibility) bool { return job.ID == id })
			if idx == -1 {
				return fmt.Errorf("there is no such job id %d", id)
			}

			if err := s.apply(ctx, s.jobs[idx:idx+1]); err != nil {
				return err
			}

			s.jobs = slices.Delete(s.jobs, idx, idx+1)
		}
	}
}

func (s *session) apply(ctx context.Context, jobs []*compatibility.JobWithCompatibility) error {
	applied := make(map[int]struct{}, len(jobs))

	for _, job := range jobs {
		letter := ""
		if job.AI != nil {
			letter = job.AI.Message
		}
		if letter == "" {
			letter = s.config.Apply.CoverLetter
		}
		if letter == "" {
			letter = defaultFallbackLetter
			s.logger.Warn("falling back to default built-in cover letter",
				zap.Int(logger.FieldJobID, job.ID),
				zap.String("hint", "specify cover-letter in apply section"),
			)
		}

		application := farol.ApplicationCreate{CoverLetter: letter, ResumeURL: s.config.Apply.ResumeURL}
		if err := s.client.ApplyToJob(ctx, job.ID, application); err != nil {
			return err
		}
		applied[job.ID] = struct{}{}

		s.logger.Info("successfully applied to job",
			zap.Int(logger.FieldJobID, job.ID),
			zap.String("job_title", job.Title),
			zap.Int("compatibility", job.ScoreValue()),
		)
	}

	s.jobs = slices.DeleteFunc(s.jobs, func(job *compatibility.JobWithCompatibility) bool {
		_, ok := applied[job.ID]
		return ok
	})

	s.logger.Info("successfully applied to jobs", zap.Int("count", len(applied)))
	return nil
}

func (s *session) farolJobs() *farol.Jobs {
	items := make([]*farol.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		items = append(items, job.Job)
	}
	return &farol.Jobs{Items: items}
}

func dumpToTmpFile(jobs []*compatibility.JobWithCompatibility) (string, error) {
	file, err := os.CreateTemp("", app+"-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jobs); err != nil {
		return "", err
	}

	return file.Name(), nil
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.ForAI(log, "gemini", cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	minScore := max(cfg.MinimumFitScore, 0)

	matcherLogger := logger.ForAI(log, "gemini", generator.Model()).With(
		zap.Float64("minimum_fit_score", minScore),
	)

	matcher := gemini.NewMatcher(generator, minScore, cfg.Gemini.MaxLogLength, matcherLogger)
	matcher.SetPromptOverrides(cfg.Prompt)

	return matcher, nil
}

func prepareFilters(ctx context.Context, cmd *cobra.Command, client *farol.Client, config *Config, profile *farol.Profile, log *zap.Logger) *filtering.Filtering {
	aiFilter, err := prepareAIFilter(ctx, client, config, profile, log)
	if err != nil {
		log.Warn("skipping AI filter", zap.Error(err))
		aiFilter = filtering.NewAIFit(nil, nil)
		aiFilter.Disable(err.Error())
	}

	steps := []filtering.Filter{
		filtering.NewInactive(log),
		prepareAppliedHistoryFilter(cmd, client, log),
		filtering.NewExcludedCompanies(&config.Filters.Companies, log),
		filtering.NewInclusiveOnly(config.Filters.InclusiveOnly, log),
		filtering.NewExcludeFile(viper.GetString("exclude-file"), log),
		aiFilter,
	}

	f := filtering.New(steps, log)
	for _, status := range f.Describe() {
		log.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return f
}

func prepareAppliedHistoryFilter(cmd *cobra.Command, client *farol.Client, log *zap.Logger) filtering.Filter {
	ignore := false
	if cmd != nil {
		ignore, _ = cmd.Flags().GetBool("do-not-exclude-applied")
	}

	return filtering.NewAppliedHistory(
		&filtering.AppliedHistoryConfig{Ignore: ignore},
		&filtering.AppliedHistoryDeps{Client: client, Logger: log},
	)
}

func prepareAIFilter(ctx context.Context, client *farol.Client, config *Config, profile *farol.Profile, log *zap.Logger) (filtering.Filter, error) {
	if config.AI == nil || !config.AI.Enabled {
		return filtering.NewAIFit(&filtering.AIFitFilterConfig{Enabled: false}, nil), nil
	}

	if config.AI.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai filter is enabled")
	}

	matcher, err := newAIMatcher(ctx, config.AI, log)
	if err != nil {
		return nil, fmt.Errorf("building ai matcher: %w", err)
	}

	return filtering.NewAIFit(
		&filtering.AIFitFilterConfig{Enabled: true, Model: config.AI.Gemini.Model},
		&filtering.AIFitFilterDeps{
			Logger:      log,
			Client:      client,
			Matcher:     matcher,
			Profile:     profile,
			ExcludeFile: viper.GetString("exclude-file"),
		},
	), nil
}
