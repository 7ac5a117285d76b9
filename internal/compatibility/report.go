package compatibility

import (
	"fmt"
	"strconv"
	"strings"
)

// ReportByCompany groups scored jobs by company for the interactive report.
func ReportByCompany(jobs []*JobWithCompatibility) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range jobs {
		if job == nil || job.Job == nil {
			continue
		}

		key := "unknown company"
		if job.Company != nil {
			key = fmt.Sprintf("%s (%d)", job.Company.Name, job.Company.ID)
			if job.Company.IsInclusive {
				key += " [inclusive]"
			}
		}

		entry := map[string]string{
			"id":       strconv.Itoa(job.ID),
			"title":    job.Title,
			"location": job.Location,
			"remote":   strconv.FormatBool(job.RemoteWork),
		}

		if job.SalaryMin != 0 || job.SalaryMax != 0 {
			entry["salary"] = fmt.Sprintf("%.0f-%.0f", job.SalaryMin, job.SalaryMax)
		}

		if score := job.Compatibility; score != nil {
			band := BandFor(score.Score)
			entry["score"] = strconv.Itoa(score.Score)
			entry["band"] = band.Label()
			entry["skills_match"] = strings.Join(score.Details.SkillsMatch, ", ")
			entry["skills_missing"] = strings.Join(score.Details.SkillsMissing, ", ")
			entry["experience_level"] = string(score.Details.ExperienceLevel)
		}

		if ai := job.AI; ai != nil {
			if ai.Error != "" {
				entry["ai_error"] = ai.Error
			} else {
				entry["ai_fit"] = strconv.FormatBool(ai.Fit)
				entry["ai_score"] = strconv.FormatFloat(ai.Score, 'f', -1, 64)
				if ai.Reason != "" {
					entry["ai_reason"] = ai.Reason
				}
				if ai.Message != "" {
					entry["ai_message"] = ai.Message
				}
			}
		}

		report[key] = append(report[key], entry)
	}
	return report
}
