package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/compatibility"
	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score job postings from JSON files without calling the Farol API",
	Example: "  farol-matcher score --profile me.json --job job1.json --job jobs.json\n" +
		"  farol-matcher score --job job.json --min-score 60",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			return err
		}

		profilePath, _ := cmd.Flags().GetString("profile")
		jobPaths, _ := cmd.Flags().GetStringArray("job")
		minScore, _ := cmd.Flags().GetInt("min-score")

		tables, err := compatibility.LoadTables(config.KeywordsFile)
		if err != nil {
			return fmt.Errorf("loading keyword tables: %w", err)
		}

		scored, err := scoreFiles(compatibility.NewCalculator(tables), profilePath, jobPaths, minScore, logger)
		if err != nil {
			return err
		}

		return writeJSON(cmd.OutOrStdout(), scored)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("profile", "p", "", "candidate profile JSON file (default persona when unset)")
	scoreCmd.Flags().StringArrayP("job", "J", nil, "job JSON file, a single job or a list; repeatable")
	scoreCmd.Flags().IntP("min-score", "m", 0, "drop jobs with a compatibility score below this value (0-100)")

	scoreCmd.MarkFlagRequired("job")
}

func scoreFiles(calculator *compatibility.Calculator, profilePath string, jobPaths []string, minScore int, logger *zap.Logger) ([]*compatibility.JobWithCompatibility, error) {
	if minScore < 0 || minScore > 100 {
		return nil, fmt.Errorf("min-score must be between 0 and 100, got %d", minScore)
	}

	service := compatibility.NewService(calculator, logger)

	if profilePath != "" {
		var profile farol.Profile
		if err := readJSONFile(profilePath, &profile); err != nil {
			return nil, fmt.Errorf("reading profile: %w", err)
		}
		service.UpdateProfile(&profile)
	}

	var jobs []*farol.Job
	for _, path := range jobPaths {
		loaded, err := readJobsFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading jobs from %s: %w", path, err)
		}
		jobs = append(jobs, loaded...)
	}

	logger.Debug("scoring jobs from files",
		zap.Int("count", len(jobs)),
		zap.Bool("default_profile", service.UsesDefaultProfile()),
	)

	return service.SortJobs(service.FilterJobs(service.CalculateJobs(jobs), minScore)), nil
}

// readJobsFile accepts either one job object or an array of them.
func readJobsFile(path string) ([]*farol.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var jobs []*farol.Job
		if err := json.Unmarshal(data, &jobs); err != nil {
			return nil, err
		}
		return jobs, nil
	}

	var job farol.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return []*farol.Job{&job}, nil
}

func readJSONFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
