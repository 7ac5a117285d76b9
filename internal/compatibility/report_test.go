package compatibility

import (
	"testing"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

func TestReportByCompanyIncludesScoreAndAI(t *testing.T) {
	jobs := []*JobWithCompatibility{
		{
			Job: &farol.Job{
				ID:         1,
				Title:      "Go Developer",
				Location:   "Recife, PE",
				RemoteWork: true,
				SalaryMin:  8000,
				SalaryMax:  12000,
				Company:    &farol.Company{ID: 7, Name: "Acme", IsInclusive: true},
				AI: &farol.AIAssessment{
					Fit:     true,
					Score:   0.91,
					Reason:  "Matches tech stack",
					Message: "Olá",
				},
			},
			Compatibility: &Score{
				Score: 84,
				Details: Details{
					SkillsMatch:     []string{"backend", "devops"},
					SkillsMissing:   []string{"data"},
					ExperienceLevel: LevelSenior,
				},
			},
		},
	}

	report := ReportByCompany(jobs)

	entries, ok := report["Acme (7) [inclusive]"]
	if !ok {
		t.Fatalf("expected company key in report, got %v", report)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	expected := map[string]string{
		"id":               "1",
		"title":            "Go Developer",
		"location":         "Recife, PE",
		"remote":           "true",
		"salary":           "8000-12000",
		"score":            "84",
		"band":             "Alta compatibilidade",
		"skills_match":     "backend, devops",
		"skills_missing":   "data",
		"experience_level": "senior",
		"ai_fit":           "true",
		"ai_score":         "0.91",
		"ai_reason":        "Matches tech stack",
		"ai_message":       "Olá",
	}
	for key, want := range expected {
		if entry[key] != want {
			t.Fatalf("%s: expected %q, got %q", key, want, entry[key])
		}
	}
}

func TestReportByCompanyIncludesAIError(t *testing.T) {
	jobs := []*JobWithCompatibility{
		{
			Job: &farol.Job{
				ID:    2,
				Title: "Python Developer",
				AI:    &farol.AIAssessment{Error: "quota exceeded"},
			},
		},
		nil,
		{Job: &farol.Job{ID: 3, Title: "Data Analyst"}},
	}

	report := ReportByCompany(jobs)

	entries := report["unknown company"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["ai_error"] != "quota exceeded" {
		t.Fatalf("unexpected ai_error: %q", entries[0]["ai_error"])
	}
	if _, ok := entries[0]["ai_fit"]; ok {
		t.Fatalf("ai_fit must not be set when the assessment failed")
	}
	if _, ok := entries[1]["score"]; ok {
		t.Fatalf("score must not be set for unscored jobs")
	}
}
